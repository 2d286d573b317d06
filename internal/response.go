package internal

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Response is the response being assembled during a dispatch.
// Nothing reaches the client until a transport writes it.
type Response struct {
	Headers     http.Header
	cookies     []*http.Cookie
	messages    []session.Flash
	content     []byte
	contentType string
	message     string
	status      int
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		Headers: make(http.Header),
		status:  http.StatusOK,
	}
}

// Status returns the status code.
func (r *Response) Status() int { return r.status }

// StatusMessage returns the status message, defaulting to the reason phrase.
func (r *Response) StatusMessage() string {
	if r.message != "" {
		return r.message
	}
	return http.StatusText(r.status)
}

// SetStatus sets the status code and an optional message.
func (r *Response) SetStatus(code int, message string) {
	r.status = code
	r.message = message
}

// Content returns the body.
func (r *Response) Content() []byte { return r.content }

// SetContent replaces the body. An empty contentType keeps the current one.
func (r *Response) SetContent(content []byte, contentType string) {
	r.content = content
	if contentType != "" {
		r.contentType = contentType
	}
}

// SetContentString is SetContent for strings and fmt.Stringer values.
func (r *Response) SetContentString(v any) bool {
	switch c := v.(type) {
	case string:
		r.content = []byte(c)
	case []byte:
		r.content = c
	case fmt.Stringer:
		r.content = []byte(c.String())
	default:
		return false
	}
	return true
}

// ContentType returns the body media type.
func (r *Response) ContentType() string { return r.contentType }

// AddCookie queues a cookie. A queued cookie with the same name and path is
// replaced, so a response sent twice carries each cookie once.
func (r *Response) AddCookie(c *http.Cookie) {
	if c == nil {
		return
	}
	i := slices.IndexFunc(r.cookies, func(q *http.Cookie) bool {
		return q.Name == c.Name && q.Path == c.Path
	})
	if i >= 0 {
		r.cookies[i] = c
		return
	}
	r.cookies = append(r.cookies, c)
}

// Cookies returns queued cookies.
func (r *Response) Cookies() []*http.Cookie { return r.cookies }

// Cookie returns the queued cookie with name.
func (r *Response) Cookie(name string) (*http.Cookie, bool) {
	for i := len(r.cookies) - 1; i >= 0; i-- {
		if r.cookies[i].Name == name {
			return r.cookies[i], true
		}
	}
	return nil, false
}

// SetRedirect points the response at location.
func (r *Response) SetRedirect(location string, code int) {
	r.Headers.Set("Location", location)
	r.status = code
	r.message = ""
}

// Location returns the redirect target.
func (r *Response) Location() string { return r.Headers.Get("Location") }

// AddMessages queues flash messages for rendering.
func (r *Response) AddMessages(msgs ...session.Flash) {
	r.messages = append(r.messages, msgs...)
}

// Messages returns the queued flash messages.
func (r *Response) Messages() []session.Flash { return r.messages }

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.status >= 200 && r.status < 300 }

// IsRedirect reports a 3xx status with a Location.
func (r *Response) IsRedirect() bool {
	return r.status >= 300 && r.status < 400 && r.Location() != ""
}

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool { return r.status >= 400 }
