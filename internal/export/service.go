package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format selects the written file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Saved describes a written export.
type Saved struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Rows   int    `json:"rows"`
}

// Service saves tables into an output directory and advances the counter.
type Service struct {
	dir     string
	counter *Counter
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service writing into dir.
func NewService(dir string, counter *Counter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, counter: counter, logger: logger, now: time.Now}
}

// Counter returns the save counter.
func (s *Service) Counter() *Counter {
	return s.counter
}

// NextName returns the name the next save of source would use.
func (s *Service) NextName(source string, format Format) string {
	return FileName(source, s.now(), format.Ext())
}

// Render encodes a table in format.
func Render(t *manifest.Table, format Format) (*bytes.Buffer, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, t.Records); err != nil {
			return nil, err
		}
		return &buf, nil
	case FormatXLSX:
		return WriteXLSX(t.Records)
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

// Save writes t into the output directory. The counter advances only after
// the file is complete. Empty tables are rejected.
func (s *Service) Save(t *manifest.Table, format Format) (Saved, error) {
	if t.Empty() {
		return Saved{}, fmt.Errorf("export: no rows to save")
	}

	buf, err := Render(t, format)
	if err != nil {
		return Saved{}, fmt.Errorf("export: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("export: %w", err)
	}
	name := FileName(t.Source, s.now(), format.Ext())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Saved{}, fmt.Errorf("export: %w", err)
	}

	n, err := s.counter.Advance()
	if err != nil {
		// The file exists; only bookkeeping failed.
		s.logger.Warn("export.counter.failed", "file", name, "error", err)
	}

	s.logger.Info("export.saved", "file", name, "format", string(format), "rows", t.Len(), "number", n)
	return Saved{Path: path, Name: name, Number: n, Rows: t.Len()}, nil
}
