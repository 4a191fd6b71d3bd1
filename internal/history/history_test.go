package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

func TestNewRun(t *testing.T) {
	full := &manifest.Table{Layout: manifest.LayoutTNT, Records: []manifest.Record{{Item: 1, DocNumber: "000001"}}}

	tests := []struct {
		name       string
		layout     manifest.LayoutKind
		table      *manifest.Table
		err        error
		wantStatus Status
		wantLayout manifest.LayoutKind
		wantRows   int
	}{
		{"ok", manifest.LayoutUnknown, full, nil, StatusOK, manifest.LayoutTNT, 1},
		{"empty", manifest.LayoutAlfa, &manifest.Table{Layout: manifest.LayoutAlfa}, nil, StatusEmpty, manifest.LayoutAlfa, 0},
		{"failed", manifest.LayoutAGE, nil, errors.New("extract AGE: fiscal number column not found"), StatusFailed, manifest.LayoutAGE, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewRun("f.csv", tt.layout, tt.table, tt.err, time.Second)
			if run.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", run.Status, tt.wantStatus)
			}
			if run.Layout != tt.wantLayout {
				t.Errorf("Layout = %q, want %q", run.Layout, tt.wantLayout)
			}
			if run.Rows != tt.wantRows {
				t.Errorf("Rows = %d, want %d", run.Rows, tt.wantRows)
			}
			if run.ID == uuid.Nil {
				t.Error("ID not set")
			}
			if tt.err != nil && run.Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", run.Error, tt.err.Error())
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	for i := 1; i <= 5; i++ {
		if err := store.Record(ctx, Run{FileName: fmt.Sprintf("f%d.csv", i), Status: StatusOK}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, r := range runs {
		names = append(names, r.FileName)
		if r.ID == uuid.Nil || r.CreatedAt.IsZero() {
			t.Errorf("run %s missing defaults", r.FileName)
		}
	}
	want := []string{"f5.csv", "f4.csv", "f3.csv"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("List() = %v, want %v", names, want)
	}

	runs, _ = store.List(ctx, 1)
	if len(runs) != 1 || runs[0].FileName != "f5.csv" {
		t.Errorf("List(1) = %+v, want only f5.csv", runs)
	}

	if err := store.Record(ctx, Run{}); !errors.Is(err, ErrInvalidRun) {
		t.Errorf("Record(empty) error = %v, want ErrInvalidRun", err)
	}
}
