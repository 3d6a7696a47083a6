// Package export delivers scored leads to downstream destinations: flat
// files (CSV, JSONL, XLSX) and external systems (Notion, Salesforce).
package export

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Sink receives leads one at a time. Flush must be called after the last
// Emit; file-backed sinks buffer until then.
type Sink interface {
	Name() string
	Emit(ctx context.Context, lead *model.Lead) error
	Flush(ctx context.Context) error
}

// MultiSink fans each lead out to every underlying sink.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Emit(ctx context.Context, lead *model.Lead) error {
	for _, s := range m.sinks {
		if err := s.Emit(ctx, lead); err != nil {
			return eris.Wrapf(err, "export: %s emit", s.Name())
		}
	}
	return nil
}

func (m *MultiSink) Flush(ctx context.Context) error {
	for _, s := range m.sinks {
		if err := s.Flush(ctx); err != nil {
			return eris.Wrapf(err, "export: %s flush", s.Name())
		}
	}
	return nil
}
