// Package scorer computes deterministic 0-100 lead quality scores against a
// configurable Ideal Customer Profile.
package scorer

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	dataQualityCap  = 35.0
	firmographicCap = 40.0
	legacyMatchAward = 30.0

	// Theoretical max without any discoverable social presence: the 5
	// engagement points from social links are unreachable, so raw totals
	// are rescaled against 95 instead of 100.
	maxWithSocial    = 100.0
	maxWithoutSocial = 95.0
)

// Score evaluates a lead against a profile. It is a pure function: identical
// inputs always produce identical output, the lead is never mutated, and
// there is no error path; missing or nil fields contribute zero to their
// category. A nil profile scores the firmographic category as zero.
func Score(lead *model.Lead, profile *icp.Profile) model.ScoreResult {
	if lead == nil {
		lead = &model.Lead{}
	}

	dataQuality := scoreDataQuality(lead)
	engagement, hasSocial := scoreEngagement(lead)
	firmographic := scoreFirmographic(lead, profile)

	total := dataQuality + engagement + firmographic
	if !hasSocial {
		// No social links were discoverable at all: rescale so the lead is
		// not penalized for the unreachable social component.
		total = total / maxWithoutSocial * maxWithSocial
	}
	if total > maxWithSocial {
		total = maxWithSocial
	}

	final := int(math.Round(total))
	return model.ScoreResult{
		Score: final,
		Grade: GradeFor(final),
		Breakdown: model.ScoreBreakdown{
			DataQuality:  int(math.Round(dataQuality)),
			Engagement:   int(math.Round(engagement)),
			Firmographic: int(math.Round(firmographic)),
		},
	}
}

// scoreDataQuality awards completeness/validity points, capped at 35:
// email 10 (+5 validated), phone 7 (+3 validated), website 5, claimed 5.
func scoreDataQuality(lead *model.Lead) float64 {
	var pts float64

	if lead.Email != nil && *lead.Email != "" {
		pts += 10
		if lead.EmailValid != nil && *lead.EmailValid {
			pts += 5
		}
	}
	if lead.Phone != nil && *lead.Phone != "" {
		pts += 7
		if lead.PhoneValid != nil && *lead.PhoneValid {
			pts += 3
		}
	}
	if lead.HasWebsite() {
		pts += 5
	}
	if lead.Claimed {
		pts += 5
	}

	if pts > dataQualityCap {
		pts = dataQualityCap
	}
	return pts
}

// scoreEngagement awards activity-signal points (component maxima cap the
// category at 25 implicitly) and reports whether any social links exist,
// which drives final-score normalization.
func scoreEngagement(lead *model.Lead) (pts float64, hasSocial bool) {
	if lead.Rating != nil {
		switch r := *lead.Rating; {
		case r >= 4.8:
			pts += 10
		case r >= 4.5:
			pts += 8
		case r >= 4.0:
			pts += 5
		case r >= 3.5:
			pts += 2
		}
	}

	if lead.ReviewCount != nil {
		switch n := *lead.ReviewCount; {
		case n >= 100:
			pts += 10
		case n >= 50:
			pts += 8
		case n >= 20:
			pts += 5
		case n >= 10:
			pts += 3
		}
	}

	count := lead.SocialLinks.Count()
	pts += math.Min(float64(count)*1.25, 5)

	return pts, count > 0
}

// scoreFirmographic sums industry, location, and employee-size fit, then
// clamps to 40. The clamp matters: legacy industry + location matches alone
// reach 60 before clamping.
func scoreFirmographic(lead *model.Lead, profile *icp.Profile) float64 {
	if profile == nil {
		return 0
	}

	pts := industryPoints(lead.Category, profile.Industries) +
		locationPoints(lead.Address, profile.Locations) +
		employeePoints(lead.EmployeeCount, profile.EmployeeRanges)

	if pts > firmographicCap {
		pts = firmographicCap
	}
	return pts
}

// industryPoints resolves the lead's raw category against the industries
// dimension. Legacy lists award a flat 30 on any substring match; weighted
// mappings resolve to a canonical key by direct substring match first, then
// the fixed fuzzy keyword table.
func industryPoints(category *string, dim icp.Dimension) float64 {
	if category == nil || *category == "" || dim.IsZero() {
		return 0
	}
	cat := strings.ToLower(*category)

	if dim.IsLegacy() {
		for _, term := range dim.Legacy {
			if term != "" && strings.Contains(cat, strings.ToLower(term)) {
				return legacyMatchAward
			}
		}
		return 0
	}

	// Direct key match. Keys are sorted so ties resolve deterministically.
	keys := make([]string, 0, len(dim.Weights))
	for k := range dim.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != "" && strings.Contains(cat, strings.ToLower(k)) {
			return dim.Weights[k]
		}
	}

	// Fuzzy fallback against the fixed keyword table; first key wins.
	for _, entry := range fuzzyIndustryTable {
		for _, kw := range entry.Keywords {
			if strings.Contains(cat, kw) {
				return dim.Weights[entry.Key]
			}
		}
	}
	return 0
}

// locationPoints resolves the lead's address against the locations
// dimension: legacy lists award a flat 30 on any substring match; weighted
// mappings award the configured points for the classified region.
func locationPoints(address *string, dim icp.Dimension) float64 {
	if address == nil || *address == "" || dim.IsZero() {
		return 0
	}

	if dim.IsLegacy() {
		addr := strings.ToLower(*address)
		for _, term := range dim.Legacy {
			if term != "" && strings.Contains(addr, strings.ToLower(term)) {
				return legacyMatchAward
			}
		}
		return 0
	}

	return dim.Weights[ClassifyRegion(*address)]
}

// employeePoints awards the configured points for the lead's headcount
// bucket, when both headcount and bucket weights are present.
func employeePoints(count *int, ranges map[string]float64) float64 {
	if count == nil || len(ranges) == 0 {
		return 0
	}
	return ranges[EmployeeBucket(*count)]
}
