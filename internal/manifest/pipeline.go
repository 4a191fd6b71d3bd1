package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// DefaultPollInterval is the readiness re-check delay of ClassifyWhenReady.
const DefaultPollInterval = 250 * time.Millisecond

// Pipeline sequences classification, extraction and normalization. It is the
// only entry point hosts need.
type Pipeline struct {
	loader     *Loader
	classifier *Classifier
	ready      *Readiness
	logger     *slog.Logger
}

// NewPipeline creates a Pipeline gated by ready. A nil latch is treated as
// ready and a nil logger uses slog.Default().
func NewPipeline(ready *Readiness, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if ready == nil {
		ready = ReadyNow()
	}
	loader := NewLoader(logger)
	return &Pipeline{
		loader:     loader,
		classifier: NewClassifier(loader, ready, logger),
		ready:      ready,
		logger:     logger,
	}
}

// Readiness returns the latch gating content classification.
func (p *Pipeline) Readiness() *Readiness {
	return p.ready
}

// Classify returns the layout of path without waiting for readiness.
func (p *Pipeline) Classify(path string) LayoutKind {
	return p.classifier.Classify(path)
}

// ClassifyWhenReady classifies path, re-checking every interval while the
// answer is LayoutPendingInit. It returns early when the latch flips or ctx
// ends. A latch whose initializer failed never flips, so that failure is
// returned instead of polling forever.
func (p *Pipeline) ClassifyWhenReady(ctx context.Context, path string, interval time.Duration) (LayoutKind, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		kind := p.classifier.Classify(path)
		if kind != LayoutPendingInit {
			return kind, nil
		}
		if err := p.ready.Err(); err != nil {
			return kind, fmt.Errorf("%w: %v", ErrClassificationPending, err)
		}

		select {
		case <-ctx.Done():
			return kind, ctx.Err()
		case <-p.ready.Done():
		case <-ticker.C:
		}
	}
}

// Process classifies path and extracts its canonical table. Any failure is
// a *ProcessingError. A file with no usable rows yields an empty table and
// a nil error.
func (p *Pipeline) Process(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProcessingError{Path: path, Err: err}
	}
	kind := p.classifier.Classify(path)
	if !kind.Extractable() {
		return nil, &ProcessingError{Path: path, Layout: kind, Err: kindError(kind)}
	}
	return p.ProcessAs(ctx, path, kind)
}

// ProcessWhenReady is Process with ClassifyWhenReady as its first step.
// The detected kind is returned alongside any error so callers can report it.
func (p *Pipeline) ProcessWhenReady(ctx context.Context, path string, interval time.Duration) (*Table, LayoutKind, error) {
	kind, err := p.ClassifyWhenReady(ctx, path, interval)
	if err != nil {
		return nil, kind, &ProcessingError{Path: path, Layout: kind, Err: err}
	}
	if !kind.Extractable() {
		return nil, kind, &ProcessingError{Path: path, Layout: kind, Err: kindError(kind)}
	}
	t, err := p.ProcessAsWhenReady(ctx, path, kind, interval)
	return t, kind, err
}

// ProcessAsWhenReady is ProcessAs for callers that may run before the
// spreadsheet engine warm-up finishes. Layouts that need the engine wait for
// it; TXT_EXCELLENCE runs immediately.
func (p *Pipeline) ProcessAsWhenReady(ctx context.Context, path string, kind LayoutKind, interval time.Duration) (*Table, error) {
	if def, ok := Lookup(kind); ok && def.NeedsEngine {
		if err := p.WaitForEngine(ctx, interval); err != nil {
			return nil, &ProcessingError{Path: path, Layout: kind, Err: err}
		}
	}
	return p.ProcessAs(ctx, path, kind)
}

// WaitForEngine blocks until the readiness latch is Ready, ctx ends, or the
// initializer reports a failure. A failed warm-up yields ErrEngineNotReady.
func (p *Pipeline) WaitForEngine(ctx context.Context, interval time.Duration) error {
	if p.ready.Ready() {
		return nil
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if p.ready.Ready() {
			return nil
		}
		if err := p.ready.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrEngineNotReady, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ready.Done():
		case <-ticker.C:
		}
	}
}

// ProcessAs extracts path with a known layout, skipping classification.
func (p *Pipeline) ProcessAs(ctx context.Context, path string, kind LayoutKind) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProcessingError{Path: path, Layout: kind, Err: err}
	}
	def, ok := Lookup(kind)
	if !ok {
		return nil, &ProcessingError{Path: path, Layout: kind, Err: kindError(kind)}
	}
	if def.NeedsEngine && !p.ready.Ready() {
		return nil, &ProcessingError{Path: path, Layout: kind, Err: ErrEngineNotReady}
	}

	start := time.Now()
	raw, err := def.Extract(p.loader, path)
	if err != nil {
		p.logger.Warn("pipeline.extract.failed", "file", filepath.Base(path), "layout", kind, "error", err)
		return nil, &ProcessingError{Path: path, Layout: kind, Err: err}
	}

	records := Normalize(def, raw)
	p.logger.Info("pipeline.processed",
		"file", filepath.Base(path),
		"layout", kind,
		"raw_rows", len(raw),
		"rows", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Table{Source: filepath.Base(path), Layout: kind, Records: records}, nil
}

// Normalize cleans raw rows with the layout's normalizers, drops rows whose
// document number is empty or all zeros and numbers the rest from 1.
func Normalize(def LayoutDefinition, raw []RawRecord) []Record {
	cleanDoc, cleanDate := def.CleanDoc, def.CleanDate
	if cleanDoc == nil {
		cleanDoc = CleanDocNumber
	}
	if cleanDate == nil {
		cleanDate = FormatDate
	}

	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		doc := cleanDoc(r.Doc)
		if doc == "" || doc == EmptyDocNumber {
			continue
		}
		records = append(records, Record{
			Item:         len(records) + 1,
			DocNumber:    doc,
			ExpectedDate: cleanDate(r.Expected),
			ActualDate:   cleanDate(r.Actual),
		})
	}
	return records
}

// IsPending reports whether err is the classification retry signal.
func IsPending(err error) bool {
	return errors.Is(err, ErrClassificationPending) || errors.Is(err, ErrEngineNotReady)
}
