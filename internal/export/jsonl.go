package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// JSONLSink writes one JSON object per line. Lines are complete as soon as
// Emit returns, so the output is tailable mid-run.
type JSONLSink struct {
	enc *json.Encoder
}

func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{enc: json.NewEncoder(w)}
}

func (s *JSONLSink) Name() string { return "jsonl" }

func (s *JSONLSink) Emit(_ context.Context, lead *model.Lead) error {
	return eris.Wrapf(s.enc.Encode(lead), "export: jsonl row for %s", lead.BusinessName)
}

func (s *JSONLSink) Flush(_ context.Context) error { return nil }
