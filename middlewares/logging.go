package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// AccessLog logs one record per request. 5xx responses log at error
// level, 4xx at warn, everything else at info.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNope()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := internal.NewResponseWriter(w)
			next.ServeHTTP(rw, r)

			status := rw.Status()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			log.LogAttrs(r.Context(), level, "request",
				logger.Method(r.Method),
				slog.String("path", r.URL.Path),
				logger.Status(status),
				slog.Int64("size", rw.Size()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
