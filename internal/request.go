package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxBodySize caps form and JSON bodies read by NewRequest.
const maxBodySize = 10 << 20

// Request is the dispatcher view of an inbound HTTP request.
// Query is mutable so behaviors and the fragment dispatcher can rewrite it.
type Request struct {
	raw      *http.Request
	parseErr error
	Query    url.Values
	Data     map[string]any
	basePath string
}

// NewRequest wraps r and parses its body. Body parse failures are kept and
// reported by Err so the dispatcher can answer them through its fail path.
func NewRequest(r *http.Request, basePath string) *Request {
	req := &Request{
		raw:      r,
		Query:    r.URL.Query(),
		Data:     make(map[string]any),
		basePath: normalizeBasePath(basePath),
	}
	req.parseErr = req.parseBody()
	return req
}

// Raw returns the underlying *http.Request.
func (r *Request) Raw() *http.Request { return r.raw }

// Err returns the body parse error, if any.
func (r *Request) Err() error { return r.parseErr }

// Method returns the lower-cased HTTP method.
func (r *Request) Method() string { return strings.ToLower(r.raw.Method) }

// URL returns the request URL.
func (r *Request) URL() *url.URL { return r.raw.URL }

// Header returns a request header value.
func (r *Request) Header(key string) string { return r.raw.Header.Get(key) }

// HasHeader reports whether the header is present, even if empty.
func (r *Request) HasHeader(key string) bool {
	_, ok := r.raw.Header[http.CanonicalHeaderKey(key)]
	return ok
}

// Cookie returns a cookie value.
func (r *Request) Cookie(name string) (string, bool) {
	c, err := r.raw.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// Referrer returns the Referer header when it is an absolute URL.
func (r *Request) Referrer() string {
	return absoluteURL(r.raw.Referer())
}

// Origin returns the Origin header when it is an absolute URL.
func (r *Request) Origin() string {
	return absoluteURL(r.raw.Header.Get("Origin"))
}

// UserAgent returns the User-Agent header.
func (r *Request) UserAgent() string { return r.raw.UserAgent() }

// IsGet reports a GET request.
func (r *Request) IsGet() bool { return r.raw.Method == http.MethodGet }

// IsPost reports a POST request.
func (r *Request) IsPost() bool { return r.raw.Method == http.MethodPost }

// IsSafe reports a method without side effects.
func (r *Request) IsSafe() bool {
	switch r.raw.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// IsAjax reports an XMLHttpRequest.
func (r *Request) IsAjax() bool {
	return strings.EqualFold(r.raw.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// IsFormSubmit reports a non-AJAX POST with a form body.
func (r *Request) IsFormSubmit() bool {
	if !r.IsPost() || r.IsAjax() {
		return false
	}
	ct := r.contentType()
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// BasePath returns the path the dispatcher is mounted on, always ending in "/".
func (r *Request) BasePath() string { return r.basePath }

// Format returns "json" when the client asked for JSON, otherwise "html".
func (r *Request) Format() string {
	if f := strings.ToLower(r.Query.Get("format")); f != "" {
		if f == "json" {
			return "json"
		}
		return "html"
	}
	accept := r.raw.Header.Get("Accept")
	first, _, _ := strings.Cut(accept, ",")
	mediaType, _, _ := mime.ParseMediaType(strings.TrimSpace(first))
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return "json"
	}
	return "html"
}

// DataString returns a body field as a string. Non-string values are formatted.
func (r *Request) DataString(key string) string {
	v, ok := r.Data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// HasData reports whether a body field is present.
func (r *Request) HasData(key string) bool {
	_, ok := r.Data[key]
	return ok
}

func (r *Request) contentType() string {
	mediaType, _, _ := mime.ParseMediaType(r.raw.Header.Get("Content-Type"))
	return mediaType
}

func (r *Request) parseBody() error {
	if r.raw.Body == nil || r.raw.Body == http.NoBody {
		return nil
	}
	switch r.raw.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}

	switch ct := r.contentType(); ct {
	case "application/json":
		body, err := io.ReadAll(io.LimitReader(r.raw.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &r.Data); err != nil {
			return fmt.Errorf("decode json body: %w", err)
		}
	case "multipart/form-data":
		if err := r.raw.ParseMultipartForm(maxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("parse multipart body: %w", err)
		}
		r.copyForm()
	case "application/x-www-form-urlencoded":
		r.raw.Body = http.MaxBytesReader(nil, r.raw.Body, maxBodySize)
		if err := r.raw.ParseForm(); err != nil {
			return fmt.Errorf("parse form body: %w", err)
		}
		r.copyForm()
	}
	return nil
}

func (r *Request) copyForm() {
	for k, vs := range r.raw.PostForm {
		if len(vs) == 1 {
			r.Data[k] = vs[0]
			continue
		}
		r.Data[k] = vs
	}
}

func absoluteURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return raw
}

func normalizeBasePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p != "/" {
		p += "/"
	}
	return p
}
