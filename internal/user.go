package internal

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/id"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// User is the identity attached to one request.
type User struct {
	session   *UserSession
	id        string
	authentic bool
}

// NewUser creates an anonymous user backed by us.
func NewUser(us *UserSession) *User {
	if us == nil {
		us = NewUserSession(nil, nil)
	}
	return &User{session: us}
}

// ID returns the user id, empty for anonymous users.
func (u *User) ID() string { return u.id }

// SetID sets the user id.
func (u *User) SetID(id string) { u.id = id }

// IsAuthentic reports whether the user is known.
// In strict mode only an explicit SetAuthentic during this request counts;
// otherwise a known user id is enough.
func (u *User) IsAuthentic(strict bool) bool {
	if u.authentic {
		return true
	}
	return !strict && u.id != ""
}

// SetAuthentic marks the user as explicitly authenticated for this request.
func (u *User) SetAuthentic() { u.authentic = true }

// Session returns the user session.
func (u *User) Session() *UserSession { return u.session }

// UserSession binds a SessionManager to one request.
type UserSession struct {
	manager *SessionManager
	raw     *http.Request
	sess    *session.Session
	token   string // used while no session is active
}

// NewUserSession creates an inactive session. A nil manager disables persistence.
func NewUserSession(sm *SessionManager, r *http.Request) *UserSession {
	return &UserSession{manager: sm, raw: r}
}

// IsActive reports whether a session has been started.
func (s *UserSession) IsActive() bool { return s.sess != nil }

// HasCookie reports whether the request carries the session cookie.
func (s *UserSession) HasCookie() bool {
	return s.manager != nil && s.raw != nil && s.manager.HasCookie(s.raw)
}

// Start resumes the session named by the request cookie, or creates a new one
// when the cookie is missing, unknown, expired or tampered with.
func (s *UserSession) Start(ctx context.Context) error {
	if s.sess != nil {
		return nil
	}
	if s.manager == nil || s.raw == nil {
		return session.ErrNotConfigured
	}

	sess, err := s.manager.LoadSession(ctx, s.raw)
	switch {
	case err == nil && sess != nil:
		s.sess = sess
		return nil
	case err == nil,
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrExpired),
		errors.Is(err, session.ErrInvalidToken):
	default:
		return err
	}

	sess, err = s.manager.CreateSession(ctx, s.raw)
	if err != nil {
		return err
	}
	s.sess = sess
	return nil
}

// Session returns the underlying session or nil.
func (s *UserSession) Session() *session.Session { return s.sess }

// UserID returns the user attached to the active session.
func (s *UserSession) UserID() string {
	if s.sess == nil || !s.sess.IsAuthenticated() {
		return ""
	}
	return *s.sess.UserID
}

// Token returns the CSRF token. The session owns the token once active;
// before that a per-request token is generated once and reused.
func (s *UserSession) Token() string {
	if s.sess != nil {
		if s.sess.CSRFToken == "" {
			s.sess.CSRFToken = id.MustToken(0)
			s.sess.MarkDirty()
		}
		return s.sess.CSRFToken
	}
	if s.token == "" {
		s.token = id.MustToken(0)
	}
	return s.token
}

// Messages takes the pending flash messages.
func (s *UserSession) Messages() []session.Flash {
	if s.sess == nil {
		return nil
	}
	return s.sess.TakeFlashes()
}

// Save persists the session and queues its cookie on resp.
func (s *UserSession) Save(ctx context.Context, resp *Response) error {
	if s.sess == nil || s.manager == nil {
		return nil
	}
	c, err := s.manager.SaveSession(ctx, s.sess)
	if err != nil {
		return err
	}
	resp.AddCookie(c)
	return nil
}
