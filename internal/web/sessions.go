package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// DefaultSessionTTL is how long a processed table stays available for
// download or save.
const DefaultSessionTTL = 30 * time.Minute

// session is one processed upload awaiting export.
type session struct {
	table   *manifest.Table
	elapsed time.Duration
	created time.Time
}

// sessionStore keeps processed tables in memory, keyed by uuid.
// Expired entries are swept on every put.
type sessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[uuid.UUID]session
	now   func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		items: make(map[uuid.UUID]session),
		now:   time.Now,
	}
}

func (s *sessionStore) put(t *manifest.Table, elapsed time.Duration) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, item := range s.items {
		if now.Sub(item.created) > s.ttl {
			delete(s.items, id)
		}
	}

	id := uuid.New()
	s.items[id] = session{table: t, elapsed: elapsed, created: now}
	return id
}

func (s *sessionStore) get(id uuid.UUID) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || s.now().Sub(item.created) > s.ttl {
		return session{}, false
	}
	return item, true
}

func (s *sessionStore) remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
