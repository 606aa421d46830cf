package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state   State
	expires time.Time
}

// MemoryStore keeps sessions in-process; fine for a single kiosk box.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

// NewMemoryStore creates a store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, m: make(map[string]memoryEntry)}
}

// Get returns the stored state, or Initial() when the session is unknown or
// expired.
func (s *MemoryStore) Get(_ context.Context, sid string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[sid]
	if !ok || time.Now().After(e.expires) {
		delete(s.m, sid)
		return Initial(), nil
	}
	return e.state, nil
}

// Put stores the state and refreshes the TTL.
func (s *MemoryStore) Put(_ context.Context, sid string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sid] = memoryEntry{state: st, expires: time.Now().Add(s.ttl)}
	return nil
}

// Delete drops the session.
func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sid)
	return nil
}
