// Package model defines the lead, scoring, and page types shared across the pipeline.
package model

// Grade is the letter bucket derived from the normalized lead score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// AllGrades returns the six grades in descending order.
func AllGrades() []Grade {
	return []Grade{GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF}
}

// SocialLinks holds one profile URL per supported platform. All four keys are
// always present in JSON output; absent profiles serialize as null.
type SocialLinks struct {
	LinkedIn  *string `json:"linkedin"`
	Facebook  *string `json:"facebook"`
	Twitter   *string `json:"twitter"`
	Instagram *string `json:"instagram"`
}

// Count returns the number of non-null profile URLs.
func (s SocialLinks) Count() int {
	n := 0
	for _, v := range []*string{s.LinkedIn, s.Facebook, s.Twitter, s.Instagram} {
		if v != nil && *v != "" {
			n++
		}
	}
	return n
}

// Merge fills nil entries from other. Existing entries win.
func (s SocialLinks) Merge(other SocialLinks) SocialLinks {
	out := s
	if out.LinkedIn == nil {
		out.LinkedIn = other.LinkedIn
	}
	if out.Facebook == nil {
		out.Facebook = other.Facebook
	}
	if out.Twitter == nil {
		out.Twitter = other.Twitter
	}
	if out.Instagram == nil {
		out.Instagram = other.Instagram
	}
	return out
}

// Review is a single customer review attached to a lead.
type Review struct {
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
	Author string  `json:"author"`
	Date   string  `json:"date"`
}

// Lead is one discovered business and everything known about it.
// Nullable fields use pointers so "unknown" is distinguishable from zero.
type Lead struct {
	ID            string      `json:"id,omitempty"`
	BusinessName  string      `json:"businessName"`
	GoogleMapsURL string      `json:"googleMapsUrl,omitempty"`
	Email         *string     `json:"email"`
	EmailValid    *bool       `json:"emailValid"`
	Phone         *string     `json:"phone"`
	PhoneValid    *bool       `json:"phoneValid"`
	Website       *string     `json:"website"`
	Address       *string     `json:"address"`
	Category      *string     `json:"category"`
	Rating        *float64    `json:"rating"`
	ReviewCount   *int        `json:"reviewCount"`
	Claimed       bool        `json:"claimed"`
	EmployeeCount *int        `json:"employeeCount,omitempty"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	SocialLinks   SocialLinks `json:"socialLinks"`
	Reviews       []Review    `json:"reviews,omitempty"`

	// Score fields, set once the lead has been scored. Field names are a
	// persisted contract consumed by CRM export and webhook delivery.
	LeadScore      *int            `json:"leadScore,omitempty"`
	LeadGrade      *Grade          `json:"leadGrade,omitempty"`
	ScoreBreakdown *ScoreBreakdown `json:"scoreBreakdown,omitempty"`
}

// HasWebsite reports whether the lead carries a non-empty website URL.
func (l *Lead) HasWebsite() bool {
	return l.Website != nil && *l.Website != ""
}

// ApplyScore embeds a score result into the lead's output fields.
func (l *Lead) ApplyScore(r ScoreResult) {
	score := r.Score
	grade := r.Grade
	breakdown := r.Breakdown
	l.LeadScore = &score
	l.LeadGrade = &grade
	l.ScoreBreakdown = &breakdown
}

// ScoreBreakdown holds the per-category integer sub-scores.
type ScoreBreakdown struct {
	DataQuality  int `json:"dataQuality"`
	Engagement   int `json:"engagement"`
	Firmographic int `json:"firmographic"`
}

// ScoreResult is the output of scoring a single lead against an ICP.
// Produced fresh per call; the scorer never mutates its input lead.
type ScoreResult struct {
	Score     int            `json:"leadScore"`
	Grade     Grade          `json:"leadGrade"`
	Breakdown ScoreBreakdown `json:"scoreBreakdown"`
}

// ContactResult is the output of website contact resolution. A failed or
// timed-out resolution yields the zero value (all nulls), never an error.
type ContactResult struct {
	Email        *string     `json:"email"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	PagesVisited int         `json:"pagesVisited"`
}
