package fetcher

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ParseXLSX reads candidate leads from the first sheet of an XLSX workbook.
// The first row must be a header; same column matching as ParseCSV.
func ParseXLSX(r io.Reader) ([]model.Lead, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: read input")
	}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("xlsx: empty sheet")
	}

	idx := indexColumns(rowToStrings(sheet.Rows[0]))
	if _, ok := idx["business_name"]; !ok {
		return nil, eris.New("xlsx: no business name column found")
	}

	var leads []model.Lead
	for _, row := range sheet.Rows[1:] {
		lead := leadFromRecord(idx, rowToStrings(row))
		if lead.BusinessName == "" {
			continue
		}
		leads = append(leads, lead)
	}

	return leads, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
