package session

import (
	"fmt"
	"maps"
	"time"
)

// Flash is a one-shot message shown on the next response.
type Flash struct {
	Type string `json:"type"` // e.g. "success", "error"
	Text string `json:"text"`
}

// Session represents a user session with metadata and arbitrary values.
type Session struct {
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`

	UserID    *string        `json:"user_id,omitempty"` // nil = anonymous session
	Values    map[string]any `json:"values,omitempty"`
	Flashes   []Flash        `json:"flashes,omitempty"`
	ID        string         `json:"id"`
	Token     string         `json:"token"`      // cookie token, different from ID
	CSRFToken string         `json:"csrf_token"` // per-session anti-forgery token
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`

	dirty bool
	isNew bool
}

// New creates a new session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated returns true if the session has an associated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetUserID attaches a user to the session.
func (s *Session) SetUserID(userID string) {
	s.UserID = &userID
	s.dirty = true
}

// SetValue stores a value in the session.
// Marks the session as dirty for automatic saving.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value from the session.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value from the session.
// Marks the session as dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if s.Values == nil {
		return
	}
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// AddFlash queues a message for the next response.
func (s *Session) AddFlash(typ, text string) {
	s.Flashes = append(s.Flashes, Flash{Type: typ, Text: text})
	s.dirty = true
}

// TakeFlashes returns the queued messages and clears the queue.
func (s *Session) TakeFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return out
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as clean (saved).
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as no longer new.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w for key: %s", ErrTypeMismatch, key)
	}

	return typed, nil
}

// ValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}

// clone returns a deep enough copy for stores that must not share state with callers.
func (s *Session) clone() *Session {
	c := *s
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	c.Values = maps.Clone(s.Values)
	c.Flashes = append([]Flash(nil), s.Flashes...)
	return &c
}
