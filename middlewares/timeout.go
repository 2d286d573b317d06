package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// DefaultTimeout is used when Timeout gets a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Models and stores that
// honour the context stop early; when the handler returns after the
// deadline without writing anything the client gets a 503.
func Timeout(d time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNope()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rw := internal.NewResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}
			err := &TimeoutError{Duration: d}
			log.WarnContext(ctx, "request timeout", logger.Error(err))
			if !rw.Written() {
				http.Error(rw, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			}
		})
	}
}
