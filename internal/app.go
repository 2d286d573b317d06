package internal

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// App mounts dispatchers on a chi router and runs the HTTP server.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router      chi.Router
	logger      *slog.Logger
	registry    *Registry
	sessions    *SessionManager
	publisher   *event.Publisher
	health      *healthConfig
	notFound    http.Handler
	middlewares []Middleware
	mounts      []mount
	statics     []staticRoute
	configs     map[string]*DispatcherConfig
}

type mount struct {
	pattern string
	opts    []DispatcherOption
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application.
//
// Example:
//
//	app := dispatch.New(
//	    dispatch.WithLogger(log),
//	    dispatch.WithSession(session.NewMemoryStore()),
//	    dispatch.WithControllers(map[string]dispatch.ControllerFactory{
//	        "notes": notes.NewController(repo),
//	    }),
//	    dispatch.WithDispatcher("/", dispatch.WithDefaultController("note")),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:   chi.NewRouter(),
		logger:   logger.NewNope(),
		registry: NewRegistry(),
		configs:  make(map[string]*DispatcherConfig),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessions != nil {
		a.sessions.SetLogger(a.logger)
	}
	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router { return a.router }

// Registry returns the controller registry shared by every mount.
func (a *App) Registry() *Registry { return a.registry }

// Dispatcher returns the dispatcher configuration mounted at pattern.
func (a *App) Dispatcher(pattern string) (*DispatcherConfig, bool) {
	cfg, ok := a.configs[normalizeBasePath(pattern)]
	return cfg, ok
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080",
//	    dispatch.ShutdownTimeout(10*time.Second),
//	    dispatch.ShutdownHook(db.Shutdown(pool)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
		listening:       cfg.listening,
	})
}

func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}
	if a.notFound != nil {
		a.router.NotFound(a.notFound.ServeHTTP)
	}

	for _, sr := range a.statics {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, a.health.checker.ReadinessHandler())
	}

	for _, m := range a.mounts {
		a.mountDispatcher(m)
	}
}

// mountDispatcher serves pattern and pattern/{view}. The path segment
// selects the controller unless the query already names one.
func (a *App) mountDispatcher(m mount) {
	base := normalizeBasePath(m.pattern)
	opts := []DispatcherOption{
		WithRegistry(a.registry),
		WithBasePath(base),
		WithDispatcherLogger(a.logger),
	}
	if a.sessions != nil {
		opts = append(opts, WithSessionManager(a.sessions))
	}
	if a.publisher != nil {
		opts = append(opts, WithDispatcherPublisher(a.publisher))
	}
	cfg := NewDispatcherConfig(append(opts, m.opts...)...)
	a.configs[base] = cfg

	h := cfg.Handler()
	root := strings.TrimSuffix(base, "/")
	a.router.Handle(root+"/", h)
	a.router.Handle(root+"/{view}", viewHandler(h))
	if root != "" {
		a.router.Handle(root, h)
	}
}

func viewHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view := chi.URLParam(r, "view")
		q := r.URL.Query()
		if view != "" && q.Get("view") == "" {
			q.Set("view", view)
			u := *r.URL
			u.RawQuery = q.Encode()
			r = r.Clone(r.Context())
			r.URL = &u
		}
		next.ServeHTTP(w, r)
	})
}

// healthConfig holds health endpoint configuration.
type healthConfig struct {
	checker       *health.Checker
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets the liveness endpoint path. Default "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets the readiness endpoint path. Default "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	dispatch.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checker.Register(name, fn)
	}
}
