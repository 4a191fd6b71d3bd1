package history

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds MemoryStore.
const DefaultMemoryCapacity = 500

// MemoryStore keeps the most recent runs in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	runs     []Run
	capacity int
}

// NewMemoryStore keeps at most capacity runs, oldest dropped first.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Record stores run.
func (m *MemoryStore) Record(_ context.Context, run Run) error {
	run, err := prepare(run)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if over := len(m.runs) - m.capacity; over > 0 {
		m.runs = append(m.runs[:0:0], m.runs[over:]...)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	limit = clampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Run, 0, min(limit, len(m.runs)))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Prune drops runs created before the cutoff.
func (m *MemoryStore) Prune(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.runs[:0]
	for _, r := range m.runs {
		if !r.CreatedAt.Before(before) {
			kept = append(kept, r)
		}
	}
	n := int64(len(m.runs) - len(kept))
	clear(m.runs[len(kept):])
	m.runs = kept
	return n, nil
}
