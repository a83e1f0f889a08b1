package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// EmitSink writes structured output.
//
// Formats:
//   - json: aggregates per-repository records and writes a single JSON array on Close
//   - ndjson: streams every Event (one JSON object per line, flushed per write)
type EmitSink struct {
	writer  io.Writer
	format  string // "json" | "ndjson"
	mu      sync.Mutex
	records []RepoRecord
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, errors.New("emit sink writer must not be nil")
	}
	if format != "json" && format != "ndjson" {
		return nil, errors.Newf("unsupported emit format: %s", format)
	}
	return &EmitSink{writer: w, format: format}, nil
}

func (s *EmitSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		if e.Record != nil {
			s.records = append(s.records, *e.Record)
		}
		return nil
	}

	if err := json.NewEncoder(s.writer).Encode(e); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != "json" {
		return nil
	}
	records := s.records
	if records == nil {
		records = []RepoRecord{}
	}
	encoder := json.NewEncoder(s.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}
