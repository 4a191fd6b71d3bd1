// Package history keeps a log of processing runs.
//
// Postgres backs the log when a database is configured; otherwise an
// in-memory ring keeps the most recent runs for the life of the process.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Status is the outcome of one run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Run is one processed file.
type Run struct {
	ID        uuid.UUID           `json:"id"`
	FileName  string              `json:"file_name"`
	Layout    manifest.LayoutKind `json:"layout"`
	Rows      int                 `json:"rows"`
	Status    Status              `json:"status"`
	Error     string              `json:"error,omitempty"`
	Duration  time.Duration       `json:"duration_ns"`
	CreatedAt time.Time           `json:"created_at"`
}

// Store records and lists runs.
type Store interface {
	Record(ctx context.Context, run Run) error
	List(ctx context.Context, limit int) ([]Run, error)
}

// ErrInvalidRun is returned when a run lacks a file name.
var ErrInvalidRun = errors.New("history store: run has no file name")

// NewRun builds a Run from the result of a pipeline call. A nil error with
// an empty table is StatusEmpty.
func NewRun(fileName string, layout manifest.LayoutKind, table *manifest.Table, err error, elapsed time.Duration) Run {
	run := Run{
		ID:        uuid.New(),
		FileName:  fileName,
		Layout:    layout,
		Rows:      table.Len(),
		Duration:  elapsed,
		CreatedAt: time.Now().UTC(),
	}
	switch {
	case err != nil:
		run.Status = StatusFailed
		run.Error = err.Error()
	case table.Empty():
		run.Status = StatusEmpty
	default:
		run.Status = StatusOK
	}
	if table != nil && table.Layout != "" {
		run.Layout = table.Layout
	}
	return run
}

// prepare fills defaults before a run is stored.
func prepare(run Run) (Run, error) {
	if run.FileName == "" {
		return run, ErrInvalidRun
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return run, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
