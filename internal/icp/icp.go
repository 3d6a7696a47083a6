// Package icp defines the Ideal Customer Profile used to score leads.
//
// The industries and locations dimensions accept two wire formats for
// backward compatibility: a legacy list of free-text terms (each worth a
// flat match award) or a mapping of canonical key to point value. The format
// is detected at parse time and carried as an explicit sum type so scoring
// code dispatches in exactly one place.
package icp

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Dimension is a tagged union: exactly one of Legacy or Weights is set after
// a successful parse. The zero value means "dimension not configured" and
// awards no points.
type Dimension struct {
	Legacy  []string
	Weights map[string]float64
}

// IsLegacy reports whether the dimension was supplied in the legacy
// list-of-terms format.
func (d Dimension) IsLegacy() bool {
	return d.Weights == nil && d.Legacy != nil
}

// IsZero reports whether the dimension is unconfigured.
func (d Dimension) IsZero() bool {
	return d.Legacy == nil && d.Weights == nil
}

// UnmarshalYAML detects the wire format from the node kind: a sequence node
// is the legacy list, a mapping node is the weighted form.
func (d *Dimension) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var terms []string
		if err := value.Decode(&terms); err != nil {
			return eris.Wrap(err, "icp: decode legacy list")
		}
		d.Legacy = terms
		d.Weights = nil
		return nil
	case yaml.MappingNode:
		var weights map[string]float64
		if err := value.Decode(&weights); err != nil {
			return eris.Wrap(err, "icp: decode weight mapping")
		}
		d.Weights = weights
		d.Legacy = nil
		return nil
	case yaml.ScalarNode:
		// Null (missing) dimension.
		if value.Tag == "!!null" {
			*d = Dimension{}
			return nil
		}
	}
	return eris.Errorf("icp: dimension must be a list or a mapping (got yaml kind %d)", value.Kind)
}

// UnmarshalJSON detects the wire format from the first JSON token.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Dimension{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var terms []string
		if err := json.Unmarshal(trimmed, &terms); err != nil {
			return eris.Wrap(err, "icp: decode legacy list")
		}
		d.Legacy = terms
		d.Weights = nil
		return nil
	case '{':
		var weights map[string]float64
		if err := json.Unmarshal(trimmed, &weights); err != nil {
			return eris.Wrap(err, "icp: decode weight mapping")
		}
		d.Weights = weights
		d.Legacy = nil
		return nil
	}
	return eris.New("icp: dimension must be a JSON array or object")
}

// MarshalJSON writes the dimension back out in the format it was parsed from.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.IsLegacy() {
		return json.Marshal(d.Legacy)
	}
	if d.Weights != nil {
		return json.Marshal(d.Weights)
	}
	return []byte("null"), nil
}

// Profile is the scoring configuration for one run. Unknown fields in the
// source document are ignored; missing dimensions simply award no points.
type Profile struct {
	Industries     Dimension          `yaml:"industries" json:"industries"`
	Locations      Dimension          `yaml:"locations" json:"locations"`
	EmployeeRanges map[string]float64 `yaml:"employee_ranges" json:"employeeRanges"`
}

// LoadFile reads a profile from a YAML (or JSON, which YAML subsumes) file.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "icp: read profile %s", path)
	}
	return Parse(data)
}

// Parse decodes a profile from YAML bytes.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "icp: parse profile")
	}
	return &p, nil
}
