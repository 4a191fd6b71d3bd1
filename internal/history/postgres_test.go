package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// TestPostgresStore runs against a real database when HISTORY_TEST_DATABASE_URL
// is set.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("HISTORY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HISTORY_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	run := NewRun("postgres_test.csv", manifest.LayoutTNT, nil, nil, 1500*time.Millisecond)
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM processing_runs WHERE id = $1", run.ID)
	})

	if n, err := store.Prune(ctx, time.Now().Add(-24*time.Hour)); err != nil || n < 0 {
		t.Fatalf("Prune() = %d, %v", n, err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, r := range runs {
		if r.ID == run.ID {
			if r.Status != StatusEmpty || r.Layout != manifest.LayoutTNT || r.Duration != 1500*time.Millisecond {
				t.Errorf("stored run = %+v", r)
			}
			return
		}
	}
	t.Errorf("recorded run %s not listed", run.ID)
}
