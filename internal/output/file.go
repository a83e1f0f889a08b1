package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// FileSink writes structured output to a file. The format is inferred from
// the extension (.json, .ndjson, .jsonl) unless given explicitly.
type FileSink struct {
	*EmitSink
	file *os.File
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, errors.New("output path required")
	}

	format, err := InferFormat(path, format)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create output directory")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create output file")
	}

	es, err := NewEmitSink(f, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileSink{EmitSink: es, file: f}, nil
}

func (s *FileSink) Close() error {
	err := s.EmitSink.Close()
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// InferFormat returns format when set, otherwise the format implied by the
// path's extension.
func InferFormat(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		case "":
			return "", errors.New("cannot infer output format from file extension (missing extension); use --out-format")
		default:
			return "", errors.Newf("cannot infer output format from file extension %q; use --out-format", ext)
		}
	}
	if format != "json" && format != "ndjson" {
		return "", errors.Newf("unsupported output format: %s", format)
	}
	return format, nil
}
