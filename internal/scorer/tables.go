package scorer

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// The lookup tables below are versioned constants rather than inline
// literals: they are matched against free text, so every change shifts
// scores, and keeping them here lets the tables be tested independently of
// the scoring control flow.

// industryKeywords maps a canonical industry key to the fuzzy keywords that
// resolve a lead's raw category to it. Entries are tested in slice order and
// the first key with any matching keyword wins.
type industryKeywords struct {
	Key      string
	Keywords []string
}

var fuzzyIndustryTable = []industryKeywords{
	{"technology", []string{"software", "tech", "it ", "computer", "digital", "saas", "app"}},
	{"professional_services", []string{"consulting", "legal", "accounting", "financial", "advisory"}},
	{"healthcare", []string{"medical", "health", "clinic", "hospital", "doctor", "dental"}},
	{"manufacturing", []string{"manufacturing", "factory", "industrial", "production"}},
	{"retail", []string{"store", "shop", "retail", "boutique", "market"}},
}

// Region names are the canonical keys expected in a weighted ICP locations
// mapping.
const (
	RegionNorthAmerica = "North America"
	RegionEurope       = "Europe"
	RegionAPAC         = "APAC"
	RegionOther        = "Other"
)

var (
	northAmericaTokens = []string{"usa", "united states", "canada"}
	europeTokens       = []string{"uk", "united kingdom", "europe", "germany", "france", "spain", "italy"}
	apacTokens         = []string{"asia", "china", "japan", "india", "singapore", "australia"}

	// The 50 two-letter US state abbreviations, matched as word-bounded
	// tokens so "TX" in "Austin, TX" matches but "in" inside "Main" does not.
	usStateRe = regexp.MustCompile(`\b(?:al|ak|az|ar|ca|co|ct|de|fl|ga|hi|id|il|in|ia|ks|ky|la|me|md|ma|mi|mn|ms|mo|mt|ne|nv|nh|nj|nm|ny|nc|nd|oh|ok|or|pa|ri|sc|sd|tn|tx|ut|vt|va|wa|wv|wi|wy)\b`)
)

// ClassifyRegion buckets a free-text address into one of the four canonical
// regions. Rules are checked in order; the first hit wins. Empty or
// unrecognizable addresses classify as Other.
func ClassifyRegion(address string) string {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return RegionOther
	}

	for _, tok := range northAmericaTokens {
		if strings.Contains(addr, tok) {
			return RegionNorthAmerica
		}
	}
	if usStateRe.MatchString(addr) {
		return RegionNorthAmerica
	}

	for _, tok := range europeTokens {
		if strings.Contains(addr, tok) {
			return RegionEurope
		}
	}
	for _, tok := range apacTokens {
		if strings.Contains(addr, tok) {
			return RegionAPAC
		}
	}
	return RegionOther
}

// EmployeeBucket maps a headcount to its ICP bucket label.
func EmployeeBucket(count int) string {
	switch {
	case count <= 10:
		return "1-10"
	case count <= 50:
		return "11-50"
	case count <= 200:
		return "51-200"
	case count <= 500:
		return "201-500"
	default:
		return "500+"
	}
}

// gradeBand pairs a minimum score with its letter grade.
type gradeBand struct {
	Min   int
	Grade model.Grade
}

// gradeBands is checked top-down; thresholds are deliberately generous for
// B2B data where most complete leads should land A/A+.
var gradeBands = []gradeBand{
	{85, model.GradeAPlus},
	{75, model.GradeA},
	{65, model.GradeB},
	{55, model.GradeC},
	{45, model.GradeD},
}

// GradeFor returns the letter grade for a rounded, clamped score.
func GradeFor(score int) model.Grade {
	for _, band := range gradeBands {
		if score >= band.Min {
			return band.Grade
		}
	}
	return model.GradeF
}
