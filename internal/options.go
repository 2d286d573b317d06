package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithDispatcher mounts a dispatcher at pattern. The app supplies the
// registry, logger, session manager and publisher; opts refine the rest.
//
// Example:
//
//	dispatch.New(
//	    dispatch.WithDispatcher("/admin",
//	        dispatch.WithDefaultController("dashboard"),
//	        dispatch.WithMethods("get", "post", "options"),
//	    ),
//	)
func WithDispatcher(pattern string, opts ...DispatcherOption) Option {
	return func(a *App) {
		a.mounts = append(a.mounts, mount{pattern: pattern, opts: opts})
	}
}

// WithControllers registers controller factories on the app registry.
// Invalid or duplicate names panic.
func WithControllers(controllers map[string]ControllerFactory) Option {
	return func(a *App) {
		for name, f := range controllers {
			if err := a.registry.Register(name, f); err != nil {
				panic(err)
			}
		}
	}
}

// WithMiddleware adds global middleware. Middleware runs in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithComponentLogger creates a JSON logger tagged with component.
// Extractors pull values such as the request id from the context.
func WithComponentLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With(logger.Component(component))
	}
}

// WithSession enables server-side sessions backed by store.
//
// Example:
//
//	dispatch.WithSession(session.NewRedisStore(client),
//	    dispatch.WithSessionCookieName("__sid"),
//	    dispatch.WithSessionMaxAge(86400*30),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		if store != nil {
			a.sessions = NewSessionManager(store, opts...)
		}
	}
}

// WithPublisher publishes controller and dispatcher events on p.
func WithPublisher(p *event.Publisher) Option {
	return func(a *App) {
		a.publisher = p
	}
}

// WithHealthChecks registers liveness and readiness endpoints.
//
// Example:
//
//	dispatch.WithHealthChecks(
//	    dispatch.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    dispatch.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checker:       health.New(nil, health.WithLogger(a.logger)),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

// WithNotFoundHandler answers requests no route matches.
func WithNotFoundHandler(h http.Handler) Option {
	return func(a *App) {
		a.notFound = h
	}
}

// WithStaticFiles serves subDir of fsys at pattern. Directory listings are
// disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	dispatch.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		})
		a.statics = append(a.statics, staticRoute{handler: h, pattern: pattern})
	}
}
