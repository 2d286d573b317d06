package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// DefaultStackSize is the maximum stack trace size captured on panic.
const DefaultStackSize = 4096

// RecoverConfig configures the Recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger
	OnPanic           func(w http.ResponseWriter, r *http.Request, pe *PanicError)
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the captured stack size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack skips stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger used to report panics.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithRecoverHandler replaces the default 500 response. It is only called
// when nothing was written yet.
func WithRecoverHandler(fn func(w http.ResponseWriter, r *http.Request, pe *PanicError)) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.OnPanic = fn
	}
}

// Recover turns a panic into a logged PanicError and a 500 response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
		Logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := internal.NewResponseWriter(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				pe := &PanicError{Value: v}
				attrs := []any{slog.Any("panic", v)}
				if !cfg.DisablePrintStack {
					stack := make([]byte, cfg.StackSize)
					pe.Stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(pe.Stack)))
				}
				cfg.Logger.ErrorContext(r.Context(), "panic recovered", attrs...)

				if rw.Written() {
					return
				}
				if cfg.OnPanic != nil {
					cfg.OnPanic(rw, r, pe)
					return
				}
				http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
