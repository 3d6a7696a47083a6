package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var leadColumns = []string{
	"business_name", "email", "email_valid", "phone", "website", "address",
	"category", "rating", "review_count", "claimed", "score", "grade",
}

// CSVSink streams leads to an io.Writer as CSV. The header row is written
// lazily on the first Emit so an empty export produces an empty file.
type CSVSink struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Emit(_ context.Context, lead *model.Lead) error {
	if !s.wroteHeader {
		if err := s.w.Write(leadColumns); err != nil {
			return eris.Wrap(err, "export: csv header")
		}
		s.wroteHeader = true
	}
	if err := s.w.Write(leadRow(lead)); err != nil {
		return eris.Wrapf(err, "export: csv row for %s", lead.BusinessName)
	}
	return nil
}

func (s *CSVSink) Flush(_ context.Context) error {
	s.w.Flush()
	return eris.Wrap(s.w.Error(), "export: csv flush")
}

// leadRow renders one lead in leadColumns order. Missing fields stay empty.
func leadRow(lead *model.Lead) []string {
	row := make([]string, 0, len(leadColumns))
	row = append(row,
		lead.BusinessName,
		strDeref(lead.Email),
		boolStr(lead.EmailValid),
		strDeref(lead.Phone),
		strDeref(lead.Website),
		strDeref(lead.Address),
		strDeref(lead.Category),
	)

	if lead.Rating != nil {
		row = append(row, strconv.FormatFloat(*lead.Rating, 'f', -1, 64))
	} else {
		row = append(row, "")
	}
	if lead.ReviewCount != nil {
		row = append(row, strconv.Itoa(*lead.ReviewCount))
	} else {
		row = append(row, "")
	}
	row = append(row, strconv.FormatBool(lead.Claimed))

	if lead.LeadScore != nil {
		row = append(row, strconv.Itoa(*lead.LeadScore))
	} else {
		row = append(row, "")
	}
	if lead.LeadGrade != nil {
		row = append(row, string(*lead.LeadGrade))
	} else {
		row = append(row, "")
	}
	return row
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolStr(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
