package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins that get CORS headers. "*" allows any origin.
	AllowOrigins []string

	// AllowOriginFunc replaces AllowOrigins when set.
	AllowOriginFunc func(origin string) bool

	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string

	// AllowCredentials echoes the origin instead of "*" and sets
	// Access-Control-Allow-Credentials. Session cookies need it.
	AllowCredentials bool

	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithCORSOrigins sets the allowed origins.
func WithCORSOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOrigins = origins }
}

// WithCORSOriginFunc sets a dynamic origin check.
func WithCORSOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOriginFunc = fn }
}

// WithCORSMethods sets the methods announced on preflight.
func WithCORSMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowMethods = methods }
}

// WithCORSHeaders sets the request headers announced on preflight.
func WithCORSHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowHeaders = headers }
}

// WithCORSExposeHeaders sets the response headers readable by scripts.
func WithCORSExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.ExposeHeaders = headers }
}

// WithCORSCredentials allows cookies on cross-origin requests.
func WithCORSCredentials() CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowCredentials = true }
}

// WithCORSMaxAge sets the preflight cache duration.
func WithCORSMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) { cfg.MaxAge = d }
}

// CORS handles Cross-Origin Resource Sharing for the origins it allows.
//
// Only real preflights (OPTIONS carrying Access-Control-Request-Method) are
// answered here with 204. A plain OPTIONS request still reaches the
// dispatcher, which replies with its Allow header. Requests from origins
// that are not allowed pass through untouched and the browser blocks them.
//
// The default headers include X-CSRF-Token and X-XSRF-Token so browser
// clients can send the token the dispatcher checks on writes.
func CORS(opts ...CORSOption) func(http.Handler) http.Handler {
	cfg := &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token", "X-XSRF-Token", "X-Request-ID"},
		MaxAge:       DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	wildcard := slices.Contains(cfg.AllowOrigins, "*")

	allowed := func(origin string) bool {
		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(origin)
		}
		return wildcard || slices.Contains(cfg.AllowOrigins, origin)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials || !wildcard {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
