package internal

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
)

// DefaultMethods are the HTTP methods a dispatcher accepts by default.
var DefaultMethods = []string{"get", "head", "post", "put", "delete", "options"}

// DefaultLimit is the page size applied to collection requests without a limit.
const DefaultLimit = 100

// DispatcherConfig is the immutable configuration shared by every request
// served through one mount point. A fresh Dispatcher is built from it per request.
type DispatcherConfig struct {
	registry          *Registry
	sessions          *SessionManager
	publisher         *event.Publisher
	sanitizer         *sanitizer.Sanitizer
	logger            *slog.Logger
	authenticatable   *Authenticatable
	transportQueue    *TransportQueue
	authenticators    []Authenticator
	transports        []Transport
	behaviors         []Behavior
	defaults          []Behavior
	methods           []string
	defaultController string
	defaultAction     string
	basePath          string
	limit             int
	maxLimit          int
	forwarded         bool
	debug             bool
	noDefaults        bool
}

// DispatcherOption configures a DispatcherConfig.
type DispatcherOption func(*DispatcherConfig)

// NewDispatcherConfig applies opts over the defaults.
func NewDispatcherConfig(opts ...DispatcherOption) *DispatcherConfig {
	cfg := &DispatcherConfig{
		methods:       slices.Clone(DefaultMethods),
		defaultAction: "render",
		basePath:      "/",
		limit:         DefaultLimit,
		logger:        logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	if cfg.sanitizer == nil {
		cfg.sanitizer = sanitizer.New()
	}
	if cfg.authenticators == nil {
		cfg.authenticators = []Authenticator{NewCSRFAuthenticator()}
		if cfg.sessions != nil {
			cfg.authenticators = append(cfg.authenticators, NewCookieAuthenticator())
		}
	}
	if cfg.transports == nil {
		cfg.transports = []Transport{
			NewRedirectTransport(),
			NewJSONTransport(),
			NewHTTPTransport(cfg.sanitizer),
		}
	}
	if cfg.sessions != nil {
		cfg.sessions.SetLogger(cfg.logger)
	}

	cfg.authenticatable = NewAuthenticatable(cfg.authenticators...)
	cfg.transportQueue = NewTransportQueue(cfg.transports...)
	if !cfg.noDefaults {
		cfg.defaults = []Behavior{NewLimitable(cfg.limit, cfg.maxLimit), NewResettable()}
	}
	return cfg
}

// WithRegistry sets the controller registry.
func WithRegistry(r *Registry) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		if r != nil {
			cfg.registry = r
		}
	}
}

// WithController registers a controller factory on the dispatcher registry.
// Registration errors panic at construction.
func WithController(name string, f ControllerFactory) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		if cfg.registry == nil {
			cfg.registry = NewRegistry()
		}
		if err := cfg.registry.Register(name, f); err != nil {
			panic(err)
		}
	}
}

// WithMethods replaces the accepted HTTP methods.
func WithMethods(methods ...string) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.methods = cfg.methods[:0]
		for _, m := range methods {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" && !slices.Contains(cfg.methods, m) {
				cfg.methods = append(cfg.methods, m)
			}
		}
	}
}

// WithDefaultController sets the controller used when the request has no view parameter.
func WithDefaultController(name string) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.defaultController = name
	}
}

// WithDefaultAction sets the controller action used to render a resource. Default "render".
func WithDefaultAction(action string) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		if action != "" {
			cfg.defaultAction = strings.ToLower(action)
		}
	}
}

// WithBasePath sets the path the dispatcher is mounted on.
func WithBasePath(p string) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.basePath = normalizeBasePath(p)
	}
}

// WithForwarded suppresses sending the response after dispatch.
func WithForwarded(forwarded bool) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.forwarded = forwarded
	}
}

// WithDebug exposes messages of plain errors in failure responses.
func WithDebug(debug bool) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.debug = debug
	}
}

// WithBehaviors attaches behaviors to every dispatcher.
// Behaviors are shared between requests and must not keep request state.
func WithBehaviors(behaviors ...Behavior) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.behaviors = append(cfg.behaviors, behaviors...)
	}
}

// WithoutDefaultBehaviors disables the limitable and resettable behaviors.
func WithoutDefaultBehaviors() DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.noDefaults = true
	}
}

// WithLimit sets the default collection limit and an optional maximum (0 = unbounded).
func WithLimit(limit, maxLimit int) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		if limit > 0 {
			cfg.limit = limit
		}
		if maxLimit >= 0 {
			cfg.maxLimit = maxLimit
		}
	}
}

// WithAuthenticators replaces the authenticators. Calling it without
// arguments disables authentication.
func WithAuthenticators(auths ...Authenticator) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.authenticators = append([]Authenticator{}, auths...)
	}
}

// WithTransports replaces the response transports.
func WithTransports(transports ...Transport) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.transports = append([]Transport{}, transports...)
	}
}

// WithSessionManager enables sessions and the cookie authenticator.
func WithSessionManager(sm *SessionManager) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.sessions = sm
	}
}

// WithDispatcherPublisher publishes every dispatcher command as an event.
func WithDispatcherPublisher(p *event.Publisher) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.publisher = p
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSanitizer sets the sanitizer used for HTML error bodies.
func WithSanitizer(s *sanitizer.Sanitizer) DispatcherOption {
	return func(cfg *DispatcherConfig) {
		cfg.sanitizer = s
	}
}

// Registry returns the controller registry.
func (cfg *DispatcherConfig) Registry() *Registry { return cfg.registry }

// Methods returns the accepted HTTP methods.
func (cfg *DispatcherConfig) Methods() []string { return slices.Clone(cfg.methods) }

// Publisher returns the event publisher or nil.
func (cfg *DispatcherConfig) Publisher() *event.Publisher { return cfg.publisher }

// Sessions returns the session manager or nil.
func (cfg *DispatcherConfig) Sessions() *SessionManager { return cfg.sessions }

// Logger returns the logger.
func (cfg *DispatcherConfig) Logger() *slog.Logger { return cfg.logger }
