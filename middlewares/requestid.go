package middlewares

import (
	"net/http"
	"regexp"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/id"
)

// DefaultRequestIDHeaders are checked in order for an incoming request id.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// Incoming ids are reused only when they look like ids.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for an existing ID, in order
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers checked for an incoming id.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets the id generator. Default: id.New.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header. Default: X-Request-ID.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID reuses or generates a request id, stores it in the request
// context and echoes it in the response. Register
// internal.RequestIDExtractor on the logger to stamp it on log records;
// failure responses carry it too.
//
// Example:
//
//	log := logger.New(dispatch.RequestIDExtractor)
//	app := dispatch.New(
//	    dispatch.WithLogger(log),
//	    dispatch.WithMiddleware(middlewares.RequestID()),
//	)
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.New,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var reqID string
			for _, h := range cfg.Headers {
				if v := r.Header.Get(h); requestIDPattern.MatchString(v) {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			if cfg.ResponseHeader != "" {
				w.Header().Set(cfg.ResponseHeader, reqID)
			}
			next.ServeHTTP(w, r.WithContext(internal.ContextWithRequestID(r.Context(), reqID)))
		})
	}
}
