package internal

import (
	"crypto/subtle"
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

// CSRF token names.
const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	XSRFHeaderName = "X-XSRF-Token"
	CSRFFieldName  = "csrf_token"
)

const csrfTokenKey = "csrf.token"

// CSRFAuthenticator validates double-submitted tokens on POST requests and
// distributes the session token on GET responses.
type CSRFAuthenticator struct {
	extractor Extractor
	priority  command.Priority
}

// CSRFOption configures a CSRFAuthenticator.
type CSRFOption func(*CSRFAuthenticator)

// WithCSRFPriority overrides the default low priority.
func WithCSRFPriority(p command.Priority) CSRFOption {
	return func(a *CSRFAuthenticator) {
		a.priority = p
	}
}

// NewCSRFAuthenticator creates the authenticator.
func NewCSRFAuthenticator(opts ...CSRFOption) *CSRFAuthenticator {
	a := &CSRFAuthenticator{
		priority: command.PriorityLow,
		extractor: NewExtractor(
			FromHeader(XSRFHeaderName),
			FromHeader(CSRFHeaderName),
			FromData(CSRFFieldName),
		),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scheme implements Authenticator.
func (*CSRFAuthenticator) Scheme() string { return "csrf" }

// Priority implements Authenticator.
func (a *CSRFAuthenticator) Priority() command.Priority { return a.priority }

// Token returns the request token, looked up once per request.
func (a *CSRFAuthenticator) Token(ctx *Context) string {
	if v, ok := command.Attr[string](ctx.Context, csrfTokenKey); ok {
		return v
	}
	token, _ := a.extractor.Extract(ctx.Request)
	ctx.Set(csrfTokenKey, token)
	return token
}

// AuthenticateRequest implements Authenticator. Checks run in order:
// referrer or origin present, token present, token matches the cookie,
// and for authentic users with a session, token matches the session.
func (a *CSRFAuthenticator) AuthenticateRequest(ctx *Context) (bool, error) {
	req := ctx.Request
	if !req.IsPost() {
		return false, nil
	}

	if req.Referrer() == "" && req.Origin() == "" {
		return false, ErrRequestInvalid("Request referrer or origin not found")
	}

	token := a.Token(ctx)
	if token == "" {
		return false, ErrNotAuthenticated("Token Not Found")
	}

	cookie, _ := req.Cookie(CSRFCookieName)
	if !tokensEqual(token, cookie) {
		return false, ErrNotAuthenticated("Invalid Cookie Token")
	}

	us := ctx.User.Session()
	if ctx.User.IsAuthentic(false) && us.IsActive() {
		if !tokensEqual(token, us.Token()) {
			return false, ErrForbidden("Invalid Session Token")
		}
	}

	return false, nil
}

// ChallengeResponse implements Authenticator. On GET it sets the csrf_token
// cookie on the base path and mirrors it in the X-CSRF-Token header.
func (a *CSRFAuthenticator) ChallengeResponse(ctx *Context) (bool, error) {
	if !ctx.Request.IsGet() {
		return false, nil
	}

	token := ctx.User.Session().Token()
	ctx.Response.AddCookie(&http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     ctx.Request.BasePath(),
		Secure:   ctx.Request.Raw().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	ctx.Response.Headers.Set(CSRFHeaderName, token)
	return false, nil
}

func tokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
