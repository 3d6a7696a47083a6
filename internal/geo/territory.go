// Package geo restricts pipeline runs to a sales territory described by an
// ESRI shapefile (for example a Census TIGER county or CBSA extract).
package geo

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Territory is a set of polygons a lead's coordinates are tested against.
type Territory struct {
	name  string
	polys *geom.MultiPolygon
}

// NewTerritory wraps an already-built MultiPolygon, mainly for tests and
// callers that source geometry from somewhere other than a shapefile.
func NewTerritory(name string, polys *geom.MultiPolygon) *Territory {
	return &Territory{name: name, polys: polys}
}

func (t *Territory) Name() string { return t.name }

// LoadShapefile reads every polygon record from the shapefile at path and
// merges them into one territory. Coordinates are WGS84 lng/lat, matching
// TIGER exports.
func LoadShapefile(name, path string) (*Territory, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	records := 0

	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			zap.L().Debug("geo: skipping non-polygon shape", zap.Int("record", n))
			continue
		}
		if err := pushShapePolygons(mp, poly); err != nil {
			zap.L().Warn("geo: skipping malformed polygon record",
				zap.Int("record", n),
				zap.Error(err),
			)
			continue
		}
		records++
	}

	if mp.NumPolygons() == 0 {
		return nil, eris.Errorf("geo: shapefile %s contains no polygons", path)
	}

	zap.L().Info("territory loaded",
		zap.String("territory", name),
		zap.Int("records", records),
		zap.Int("polygons", mp.NumPolygons()),
	)
	return &Territory{name: name, polys: mp}, nil
}

// pushShapePolygons converts one shapefile polygon record into geom polygons.
// Per the shapefile spec, clockwise rings open a new polygon and
// counter-clockwise rings are holes in the polygon that precedes them.
func pushShapePolygons(mp *geom.MultiPolygon, p *shp.Polygon) error {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return eris.New("empty polygon record")
	}

	var current *geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		// A hole before any exterior ring gets promoted to an exterior.
		if current != nil && ringArea(flat) > 0 {
			if err := current.Push(ring); err != nil {
				return eris.Wrap(err, "push hole ring")
			}
			continue
		}

		if current != nil {
			if err := mp.Push(current); err != nil {
				return eris.Wrap(err, "push polygon")
			}
		}
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			return eris.Wrap(err, "push exterior ring")
		}
	}

	if current != nil {
		if err := mp.Push(current); err != nil {
			return eris.Wrap(err, "push polygon")
		}
	}
	return nil
}

// ringArea is the shoelace signed area of a flat XY ring. Positive means
// counter-clockwise.
func ringArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		x1, y1 := flat[2*i], flat[2*i+1]
		j := (i + 1) % n
		x2, y2 := flat[2*j], flat[2*j+1]
		area += x1*y2 - x2*y1
	}
	return area / 2
}

// Contains reports whether the lng/lat point falls inside the territory:
// within some polygon's exterior ring and outside all of its holes.
func (t *Territory) Contains(lat, lng float64) bool {
	point := geom.Coord{lng, lat}

	for i := 0; i < t.polys.NumPolygons(); i++ {
		poly := t.polys.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(geom.XY, point, poly.LinearRing(0).FlatCoords()) {
			continue
		}

		inHole := false
		for r := 1; r < poly.NumLinearRings(); r++ {
			if xy.IsPointInRing(geom.XY, point, poly.LinearRing(r).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Allows decides whether a lead belongs in this territory. Leads without
// coordinates pass through so the filter never drops unenriched rows.
func (t *Territory) Allows(lead *model.Lead) bool {
	if t == nil {
		return true
	}
	if lead.Latitude == nil || lead.Longitude == nil {
		return true
	}
	return t.Contains(*lead.Latitude, *lead.Longitude)
}
