package internal

import (
	"github.com/dmitrymomot/dispatch/pkg/command"
)

// CookieAuthenticator resumes a session from its cookie. Anonymous
// requests without a session cookie never start a session here.
//
// Once the session is resumed the flash messages move to the response, the
// user becomes authentic when the session names one, the CSRF checks run
// for the same request and the queue halts.
type CookieAuthenticator struct {
	csrf *CSRFAuthenticator
}

// NewCookieAuthenticator creates the authenticator. CSRF validation uses a
// CSRFAuthenticator built from opts.
func NewCookieAuthenticator(opts ...CSRFOption) *CookieAuthenticator {
	return &CookieAuthenticator{csrf: NewCSRFAuthenticator(opts...)}
}

// Scheme implements Authenticator.
func (*CookieAuthenticator) Scheme() string { return "cookie" }

// Priority implements Authenticator.
func (*CookieAuthenticator) Priority() command.Priority { return command.PriorityHigh }

// AuthenticateRequest implements Authenticator.
func (a *CookieAuthenticator) AuthenticateRequest(ctx *Context) (bool, error) {
	us := ctx.User.Session()
	if us.IsActive() || !us.HasCookie() {
		return false, nil
	}

	if err := us.Start(ctx); err != nil {
		return false, err
	}

	ctx.Response.AddMessages(us.Messages()...)

	if uid := us.UserID(); uid != "" {
		ctx.User.SetID(uid)
		ctx.SetAuthentic()
	}
	ctx.Logger().DebugContext(ctx, "session resumed", "authentic", ctx.IsAuthentic())

	if _, err := a.csrf.AuthenticateRequest(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ChallengeResponse implements Authenticator. Response signing is left to
// the CSRF authenticator.
func (*CookieAuthenticator) ChallengeResponse(*Context) (bool, error) {
	return false, nil
}
