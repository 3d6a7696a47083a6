package export

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// XLSXSink buffers leads into a single "Leads" worksheet and writes the
// workbook on Flush.
type XLSXSink struct {
	out   io.Writer
	file  *xlsx.File
	sheet *xlsx.Sheet
}

func NewXLSXSink(w io.Writer) (*XLSXSink, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return nil, eris.Wrap(err, "export: xlsx add sheet")
	}

	header := sheet.AddRow()
	for _, col := range leadColumns {
		header.AddCell().Value = col
	}

	return &XLSXSink{out: w, file: file, sheet: sheet}, nil
}

func (s *XLSXSink) Name() string { return "xlsx" }

func (s *XLSXSink) Emit(_ context.Context, lead *model.Lead) error {
	row := s.sheet.AddRow()
	for _, v := range leadRow(lead) {
		row.AddCell().Value = v
	}
	return nil
}

func (s *XLSXSink) Flush(_ context.Context) error {
	return eris.Wrap(s.file.Write(s.out), "export: xlsx write")
}
