package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/cookie"
	"github.com/dmitrymomot/dispatch/pkg/id"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 30 // 30 days
)

// SessionManager handles session lifecycle and cookie management.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
	cookieOpts []cookie.Option
	maxAge     int
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}

	for _, opt := range opts {
		opt(sm)
	}
	sm.cookies = cookie.New(sm.cookieOpts...)

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session max age in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionCookie applies cookie attributes (domain, path, secure, secret, ...).
// A secret of 32+ bytes makes the session cookie signed.
func WithSessionCookie(opts ...cookie.Option) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, opts...)
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// HasCookie reports whether r carries a session cookie.
func (sm *SessionManager) HasCookie(r *http.Request) bool {
	c, err := r.Cookie(sm.cookieName)
	return err == nil && c.Value != ""
}

// LoadSession loads an existing session from the request cookie.
// Returns nil, nil if no session cookie exists.
// Returns ErrInvalidToken if the cookie signature is wrong.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.cookies.SignedValue(r, sm.cookieName)
	if err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, cookie.ErrBadSig) {
			return nil, session.ErrInvalidToken
		}
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	return sm.store.Get(ctx, token)
}

// CreateSession creates and persists a new anonymous session.
func (sm *SessionManager) CreateSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := id.NewToken(0)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	csrf, err := id.NewToken(0)
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}
	expiresAt := time.Now().Add(time.Duration(sm.maxAge) * time.Second)

	sess := session.New(id.New(), token, expiresAt)
	sess.CSRFToken = csrf
	sess.IP = remoteIP(r)
	sess.UserAgent = r.UserAgent()

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearDirty()
	sm.logger.DebugContext(ctx, "session created", slog.String("session_id", sess.ID))

	return sess, nil
}

// SaveSession persists pending changes and returns the session cookie to send.
func (sm *SessionManager) SaveSession(ctx context.Context, sess *session.Session) (*http.Cookie, error) {
	if sess.IsDirty() {
		if err := sm.store.Update(ctx, sess); err != nil {
			return nil, err
		}
		sess.ClearDirty()
	}
	sess.ClearNew()
	return sm.cookies.Signed(sm.cookieName, sess.Token, sm.maxAge)
}

// RotateToken generates a new token for the session.
// Called after authentication to prevent session fixation.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := id.NewToken(0)
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken // Rollback on error
		return err
	}
	sess.ClearDirty()

	return nil
}

// DestroySession deletes the session and returns a cookie that clears it on the client.
func (sm *SessionManager) DestroySession(ctx context.Context, sess *session.Session) (*http.Cookie, error) {
	if sess != nil {
		if err := sm.store.Delete(ctx, sess.ID); err != nil {
			return nil, err
		}
	}
	return sm.cookies.Expire(sm.cookieName), nil
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
