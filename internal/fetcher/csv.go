package fetcher

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ParseCSV reads candidate leads from CSV. The first row must be a header;
// columns are matched by normalized name with aliases (see columnAliases).
// Rows with no business name are skipped.
func ParseCSV(ctx context.Context, r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	idx := indexColumns(header)
	if _, ok := idx["business_name"]; !ok {
		return nil, eris.New("csv: no business name column found")
	}

	var leads []model.Lead
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		lead := leadFromRecord(idx, record)
		if lead.BusinessName == "" {
			continue
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
