package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestClassifyRegion(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"explicit country", "742 Evergreen Terrace, Springfield, USA", RegionNorthAmerica},
		{"canada", "100 Queen St W, Toronto, Canada", RegionNorthAmerica},
		{"state abbreviation", "123 Main St, Austin, TX", RegionNorthAmerica},
		{"state abbreviation lowercase", "123 main st, austin, tx", RegionNorthAmerica},
		{"state token not matched inside words", "Maple Grove, Germany", RegionEurope},
		{"united kingdom", "10 Downing Street, London, United Kingdom", RegionEurope},
		{"uk substring", "Manchester, UK", RegionEurope},
		{"france", "12 Rue de Rivoli, Paris, France", RegionEurope},
		{"japan", "Shibuya, Tokyo, Japan", RegionAPAC},
		{"australia", "Sydney, Australia", RegionAPAC},
		{"singapore", "Marina Bay, Singapore", RegionAPAC},
		{"north america wins over apac", "Chinatown, San Francisco, CA", RegionNorthAmerica},
		{"unrecognizable", "Somewhere Nice 42", RegionOther},
		{"empty", "", RegionOther},
		{"whitespace only", "   ", RegionOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRegion(tt.address))
		})
	}
}

func TestEmployeeBucket(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "1-10"},
		{1, "1-10"},
		{10, "1-10"},
		{11, "11-50"},
		{50, "11-50"},
		{51, "51-200"},
		{200, "51-200"},
		{201, "201-500"},
		{500, "201-500"},
		{501, "500+"},
		{25000, "500+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EmployeeBucket(tt.count), "count %d", tt.count)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.Grade
	}{
		{100, model.GradeAPlus},
		{85, model.GradeAPlus},
		{84, model.GradeA},
		{75, model.GradeA},
		{74, model.GradeB},
		{65, model.GradeB},
		{64, model.GradeC},
		{55, model.GradeC},
		{54, model.GradeD},
		{45, model.GradeD},
		{44, model.GradeF},
		{0, model.GradeF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestFuzzyIndustryTableOrder(t *testing.T) {
	// "digital health" matches both technology ("digital") and healthcare
	// ("health"); the table is ordered, so technology wins.
	keys := make([]string, len(fuzzyIndustryTable))
	for i, entry := range fuzzyIndustryTable {
		keys[i] = entry.Key
	}
	assert.Equal(t, []string{
		"technology", "professional_services", "healthcare", "manufacturing", "retail",
	}, keys)

	dim := icp.Dimension{Weights: map[string]float64{"technology": 7, "healthcare": 9}}
	got := industryPoints(strPtr("Digital Health Platform"), dim)
	assert.Equal(t, 7.0, got)
}
