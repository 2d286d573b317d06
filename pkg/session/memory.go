package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
// Suitable for tests and single-instance deployments.
type MemoryStore struct {
	byID    map[string]*Session
	byToken map[string]string // token -> id
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Session),
		byToken: make(map[string]string),
	}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s.clone()
	m.byToken[s.Token] = s.ID
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	id, ok := m.byToken[token]
	var s *Session
	if ok {
		s = m.byID[id]
	}
	m.mu.RUnlock()

	if s == nil {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	c := s.clone()
	c.ClearNew()
	c.ClearDirty()
	return c, nil
}

// Update implements Store. A rotated token replaces the previous one.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	if prev.Token != s.Token {
		delete(m.byToken, prev.Token)
	}
	m.byID[s.ID] = s.clone()
	m.byToken[s.Token] = s.ID
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		delete(m.byToken, s.Token)
		delete(m.byID, id)
	}
	return nil
}

// DeleteByUserID implements Store.
func (m *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.UserID != nil && *s.UserID == userID {
			delete(m.byToken, s.Token)
			delete(m.byID, id)
		}
	}
	return nil
}

// Touch implements Store.
func (m *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.LastActiveAt = lastActiveAt
	return nil
}

var _ Store = (*MemoryStore)(nil)
