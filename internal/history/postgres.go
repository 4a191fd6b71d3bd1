package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS processing_runs (
	id          UUID PRIMARY KEY,
	file_name   TEXT NOT NULL,
	layout      TEXT NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS processing_runs_created_at_idx ON processing_runs (created_at DESC);
`

const insertRun = `
INSERT INTO processing_runs (id, file_name, layout, row_count, status, error, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const listRuns = `
SELECT id, file_name, layout, row_count, status, error, duration_ms, created_at
FROM processing_runs
ORDER BY created_at DESC
LIMIT $1`

const pruneRuns = `DELETE FROM processing_runs WHERE created_at < $1`

// PostgresStore persists runs in the processing_runs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. Call Migrate before first use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the runs table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("history store: migrate: %w", err)
	}
	return nil
}

// Record inserts run.
func (s *PostgresStore) Record(ctx context.Context, run Run) error {
	run, err := prepare(run)
	if err != nil {
		return err
	}

	errText := pgtype.Text{String: run.Error, Valid: run.Error != ""}
	_, err = s.pool.Exec(ctx, insertRun,
		run.ID, run.FileName, string(run.Layout), run.Rows, string(run.Status),
		errText, run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history store: record: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, listRuns, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history store: list: %w", err)
	}
	defer rows.Close()

	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("history store: list: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.CollectableRow) (Run, error) {
	var (
		run        Run
		layout     string
		status     string
		errText    pgtype.Text
		durationMS int64
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&run.ID, &run.FileName, &layout, &run.Rows, &status, &errText, &durationMS, &createdAt); err != nil {
		return Run{}, err
	}
	run.Layout = manifest.LayoutKind(layout)
	run.Status = Status(status)
	if errText.Valid {
		run.Error = errText.String
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt = createdAt.Time
	return run, nil
}

// Prune deletes runs created before the cutoff.
func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, pruneRuns, before)
	if err != nil {
		return 0, fmt.Errorf("history store: prune: %w", err)
	}
	return tag.RowsAffected(), nil
}
