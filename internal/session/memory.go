package session

import (
	"context"
	"sync"
	"time"

	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
)

type memoryEntry struct {
	records []comparison.Record
	expires time.Time
}

// MemoryStore keeps session records in process memory with a TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Append adds a record to the session and refreshes its TTL.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, record comparison.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.now().After(entry.expires) {
		entry = &memoryEntry{}
		s.sessions[sessionID] = entry
	}
	entry.records = append(entry.records, record)
	entry.expires = s.now().Add(s.ttl)
	return nil
}

// Records returns the session's records in append order.
func (s *MemoryStore) Records(ctx context.Context, sessionID string) ([]comparison.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.now().After(entry.expires) {
		return []comparison.Record{}, nil
	}
	out := make([]comparison.Record, len(entry.records))
	copy(out, entry.records)
	return out, nil
}

// Clear drops the session.
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
