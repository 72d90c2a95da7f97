package session

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// MemoryStore keeps sessions in a process-local map.  Finished sessions are
// evicted lazily once they exceed the TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore builds an in-memory store.  A non-positive ttl disables
// eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, s *Session) (*Session, error) {
	if s.ID == "" {
		s.ID = NewID()
	}
	now := m.now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusPending
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	clone := *s
	m.sessions[s.ID] = &clone
	return s, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.sessions[id]
	if !ok || m.expired(stored) {
		return nil, apperrors.New(apperrors.ErrCodeSessionNotFound, "session not found").
			WithDetail(id)
	}
	clone := *stored
	clone.History = append([]ChatEntry(nil), stored.History...)
	return &clone, nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[s.ID]
	if !ok || m.expired(stored) {
		return apperrors.New(apperrors.ErrCodeSessionNotFound, "session not found").
			WithDetail(s.ID)
	}
	s.CreatedAt = stored.CreatedAt
	s.UpdatedAt = m.now().UTC()
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

// AppendHistory implements Store.
func (m *MemoryStore) AppendHistory(_ context.Context, id string, entry ChatEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[id]
	if !ok || m.expired(stored) {
		return apperrors.New(apperrors.ErrCodeSessionNotFound, "session not found").
			WithDetail(id)
	}
	stored.History = append(stored.History, entry)
	stored.UpdatedAt = m.now().UTC()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) expired(s *Session) bool {
	if m.ttl <= 0 {
		return false
	}
	// Only finished sessions age out; a long run stays addressable.
	switch s.Status {
	case StatusDone, StatusStopped, StatusFailed:
		return m.now().UTC().Sub(s.UpdatedAt) > m.ttl
	default:
		return false
	}
}

func (m *MemoryStore) evictLocked() {
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
		}
	}
}

//Personal.AI order the ending
