package fetcher

import (
	"strconv"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// columnAliases maps the canonical lead field to the header spellings seen
// in the wild. Headers are normalized (lowercase, spaces to underscores)
// before lookup.
var columnAliases = map[string][]string{
	"business_name":  {"business_name", "name", "company", "business"},
	"email":          {"email", "email_address"},
	"phone":          {"phone", "phone_number", "telephone"},
	"website":        {"website", "url", "site"},
	"address":        {"address", "full_address", "location"},
	"category":       {"category", "industry", "type"},
	"rating":         {"rating", "stars"},
	"review_count":   {"review_count", "reviews", "num_reviews"},
	"claimed":        {"claimed", "verified"},
	"employee_count": {"employee_count", "employees", "headcount"},
	"latitude":       {"latitude", "lat"},
	"longitude":      {"longitude", "lng", "lon"},
	"maps_url":       {"maps_url", "google_maps_url", "gmaps_url"},
}

// columnIndex maps canonical field names to positions in the header row.
type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if _, dup := normalized[key]; !dup {
			normalized[key] = i
		}
	}

	idx := make(columnIndex)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := normalized[alias]; ok {
				idx[field] = i
				break
			}
		}
	}
	return idx
}

func (idx columnIndex) get(record []string, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// leadFromRecord builds a Lead from one row. Empty cells map to nil fields;
// unparsable numeric cells are dropped rather than failing the row.
func leadFromRecord(idx columnIndex, record []string) model.Lead {
	lead := model.Lead{
		BusinessName:  idx.get(record, "business_name"),
		GoogleMapsURL: idx.get(record, "maps_url"),
	}

	setString := func(field string, dst **string) {
		if v := idx.get(record, field); v != "" {
			*dst = &v
		}
	}
	setString("email", &lead.Email)
	setString("phone", &lead.Phone)
	setString("website", &lead.Website)
	setString("address", &lead.Address)
	setString("category", &lead.Category)

	if v := idx.get(record, "rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lead.Rating = &f
		}
	}
	if v := idx.get(record, "review_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			lead.ReviewCount = &n
		}
	}
	if v := idx.get(record, "employee_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			lead.EmployeeCount = &n
		}
	}
	if v := idx.get(record, "claimed"); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			lead.Claimed = b
		}
	}
	if v := idx.get(record, "latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lead.Latitude = &f
		}
	}
	if v := idx.get(record, "longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			lead.Longitude = &f
		}
	}

	return lead
}
