package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/session"
)

func newSession() *session.Session {
	return session.New("id", "token", time.Now().Add(time.Hour))
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	s := newSession()
	assert.Equal(t, "id", s.ID)
	assert.Equal(t, "token", s.Token)
	assert.True(t, s.IsNew())
	assert.True(t, s.IsDirty(), "a new session must be stored")
	assert.NotNil(t, s.Values)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsExpired())
}

func TestSessionUser(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.ClearDirty()

	s.SetUserID("ann")
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsDirty())

	s.SetUserID("")
	assert.False(t, s.IsAuthenticated(), "an empty user id signs the user out")
}

func TestSessionDirtyTracking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*session.Session)
		dirty  bool
	}{
		{"set value", func(s *session.Session) { s.SetValue("k", 1) }, true},
		{"delete present value", func(s *session.Session) { s.DeleteValue("seeded") }, true},
		{"delete missing value", func(s *session.Session) { s.DeleteValue("missing") }, false},
		{"add flash", func(s *session.Session) { s.AddFlash("info", "hi") }, true},
		{"take no flashes", func(s *session.Session) { s.TakeFlashes() }, false},
		{"read value", func(s *session.Session) { s.GetValue("seeded") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newSession()
			s.SetValue("seeded", true)
			s.ClearDirty()

			tt.mutate(s)
			assert.Equal(t, tt.dirty, s.IsDirty())
		})
	}
}

func TestSessionFlashes(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.AddFlash("success", "Note saved")
	s.AddFlash("error", "Title is required")

	got := s.TakeFlashes()
	require.Len(t, got, 2)
	assert.Equal(t, session.Flash{Type: "success", Text: "Note saved"}, got[0])
	assert.Equal(t, "error", got[1].Type)
	assert.Nil(t, s.TakeFlashes(), "flashes are shown once")
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, s.IsExpired())

	s.ClearNew()
	assert.False(t, s.IsNew())
}

func TestTypedValues(t *testing.T) {
	t.Parallel()

	s := newSession()
	s.SetValue("name", "ann")
	s.SetValue("limit", 20)

	name, err := session.Value[string](s, "name")
	require.NoError(t, err)
	assert.Equal(t, "ann", name)

	_, err = session.Value[int](s, "name")
	assert.ErrorIs(t, err, session.ErrTypeMismatch)

	_, err = session.Value[string](s, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = session.Value[string](nil, "name")
	assert.ErrorIs(t, err, session.ErrNotFound)

	assert.Equal(t, 20, session.ValueOr(s, "limit", 100))
	assert.Equal(t, 100, session.ValueOr(s, "missing", 100))
	assert.Equal(t, 100, session.ValueOr(s, "name", 100))
}
