package dispatch

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/cookie"
	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Type aliases - public API
type (
	// App mounts dispatchers on a chi router and runs the HTTP server.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Middleware wraps an http.Handler.
	Middleware = internal.Middleware

	// Context is the per-request command context handed to controllers.
	Context = internal.Context

	// Request is the normalised view of the incoming HTTP request.
	Request = internal.Request

	// Response accumulates status, headers, content and messages.
	Response = internal.Response

	// User is the request user backed by the session.
	User = internal.User

	// Dispatcher drives one request through the lifecycle phases.
	Dispatcher = internal.Dispatcher
	// DispatcherConfig is the shared per-mount configuration.
	DispatcherConfig = internal.DispatcherConfig
	// DispatcherOption configures a DispatcherConfig.
	DispatcherOption = internal.DispatcherOption
	// DispatcherSettings is the env/yaml form of dispatcher options.
	DispatcherSettings = internal.DispatcherSettings

	// Controller executes named actions against a model.
	Controller = internal.Controller
	// ControllerFactory builds a controller for one request.
	ControllerFactory = internal.ControllerFactory
	// ControllerOption configures a BaseController.
	ControllerOption = internal.ControllerOption
	// BaseController provides the action table and before/after chain.
	BaseController = internal.BaseController
	// ActionFunc implements a single controller action.
	ActionFunc = internal.ActionFunc
	// Renderable controllers can produce a representation after writes.
	Renderable = internal.Renderable
	// Modellable controllers expose their model.
	Modellable = internal.Modellable
	// Model is the data source behind a controller.
	Model = internal.Model
	// Entity is a single model row.
	Entity = internal.Entity
	// State holds the model's lookup keys.
	State = internal.State
	// ModelState is the default State implementation.
	ModelState = internal.ModelState
	// Registry maps controller names to factories.
	Registry = internal.Registry

	// Behavior is a command handler attached to a dispatcher or controller chain.
	Behavior = internal.Behavior
	// Permission is the outcome of an action check.
	Permission = internal.Permission
	// PermissionFunc decides whether an action may run.
	PermissionFunc = internal.PermissionFunc

	// Authenticator resolves the request user.
	Authenticator = internal.Authenticator
	// CSRFOption configures the CSRF authenticator.
	CSRFOption = internal.CSRFOption

	// Transport writes the final response.
	Transport = internal.Transport

	// HTTPError is the error type rendered on failure.
	HTTPError = internal.HTTPError
	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption
	// SessionSettings is the env/yaml form of session options.
	SessionSettings = internal.SessionSettings
	// SessionStore persists sessions.
	SessionStore = session.Store

	// ContextExtractor pulls a slog attribute out of a context.
	ContextExtractor = logger.ContextExtractor
)

// Permission outcomes.
const (
	PermissionAllowed        = internal.PermissionAllowed
	PermissionDenied         = internal.PermissionDenied
	PermissionUnauthorized   = internal.PermissionUnauthorized
	PermissionForbidden      = internal.PermissionForbidden
	PermissionNotImplemented = internal.PermissionNotImplemented
)

// EntityKey is the context attribute holding the entity a PUT writes to.
const EntityKey = internal.EntityKey

// ErrInvalidArgument is returned for malformed dispatcher arguments.
var ErrInvalidArgument = internal.ErrInvalidArgument

// New creates an App.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

func WithDispatcher(pattern string, opts ...DispatcherOption) Option {
	return internal.WithDispatcher(pattern, opts...)
}

func WithControllers(controllers map[string]ControllerFactory) Option {
	return internal.WithControllers(controllers)
}

func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

func WithComponentLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithComponentLogger(component, extractors...)
}

func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithPublisher(p *event.Publisher) Option {
	return internal.WithPublisher(p)
}

func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

func WithNotFoundHandler(h http.Handler) Option {
	return internal.WithNotFoundHandler(h)
}

func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// Health options

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

func OnListening(fn func(net.Addr)) RunOption {
	return internal.OnListening(fn)
}

// Dispatcher options

func WithController(name string, f ControllerFactory) DispatcherOption {
	return internal.WithController(name, f)
}

func WithMethods(methods ...string) DispatcherOption {
	return internal.WithMethods(methods...)
}

func WithDefaultController(name string) DispatcherOption {
	return internal.WithDefaultController(name)
}

func WithDefaultAction(action string) DispatcherOption {
	return internal.WithDefaultAction(action)
}

func WithForwarded(forwarded bool) DispatcherOption {
	return internal.WithForwarded(forwarded)
}

func WithDebug(debug bool) DispatcherOption {
	return internal.WithDebug(debug)
}

func WithBehaviors(behaviors ...Behavior) DispatcherOption {
	return internal.WithBehaviors(behaviors...)
}

func WithoutDefaultBehaviors() DispatcherOption {
	return internal.WithoutDefaultBehaviors()
}

func WithLimit(limit, maxLimit int) DispatcherOption {
	return internal.WithLimit(limit, maxLimit)
}

func WithAuthenticators(auths ...Authenticator) DispatcherOption {
	return internal.WithAuthenticators(auths...)
}

func WithTransports(transports ...Transport) DispatcherOption {
	return internal.WithTransports(transports...)
}

func WithSanitizer(s *sanitizer.Sanitizer) DispatcherOption {
	return internal.WithSanitizer(s)
}

// Controllers

func NewBaseController(name string, opts ...ControllerOption) *BaseController {
	return internal.NewBaseController(name, opts...)
}

func WithOwner(c Controller) ControllerOption {
	return internal.WithOwner(c)
}

func WithControllerBehaviors(behaviors ...Behavior) ControllerOption {
	return internal.WithControllerBehaviors(behaviors...)
}

func WithControllerLogger(l *slog.Logger) ControllerOption {
	return internal.WithControllerLogger(l)
}

func WithControllerPublisher(p *event.Publisher) ControllerOption {
	return internal.WithControllerPublisher(p)
}

func NewModelState(uniqueKeys ...string) *ModelState {
	return internal.NewModelState(uniqueKeys...)
}

// Behaviors

func NewPermissible() *internal.Permissible {
	return internal.NewPermissible()
}

func NewEventable(p *event.Publisher) *internal.Eventable {
	return internal.NewEventable(p)
}

func NewLimitable(limit, maxLimit int) *internal.Limitable {
	return internal.NewLimitable(limit, maxLimit)
}

func NewResettable() *internal.Resettable {
	return internal.NewResettable()
}

// Authenticators

func NewCSRFAuthenticator(opts ...CSRFOption) *internal.CSRFAuthenticator {
	return internal.NewCSRFAuthenticator(opts...)
}

func NewCookieAuthenticator(opts ...CSRFOption) *internal.CookieAuthenticator {
	return internal.NewCookieAuthenticator(opts...)
}

func WithCSRFPriority(p command.Priority) CSRFOption {
	return internal.WithCSRFPriority(p)
}

// Transports

func NewRedirectTransport() Transport { return internal.NewRedirectTransport() }

func NewJSONTransport() Transport { return internal.NewJSONTransport() }

func NewHTTPTransport(s *sanitizer.Sanitizer) Transport { return internal.NewHTTPTransport(s) }

// Sessions

func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

func WithSessionCookie(opts ...cookie.Option) SessionOption {
	return internal.WithSessionCookie(opts...)
}

// Errors

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrRequestInvalid(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrRequestInvalid(message, opts...)
}

func ErrNotAuthenticated(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotAuthenticated(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrMethodNotAllowed(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrNotImplemented(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotImplemented(message, opts...)
}

func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// AsHTTPError converts any error into an HTTPError.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int { return internal.StatusOf(err) }

// RequestIDExtractor stamps request_id on log records. Pair it with
// middlewares.RequestID.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	return internal.RequestIDExtractor(ctx)
}

// ContextValue returns a typed value from the command context attributes.
func ContextValue[T any](c *Context, key string) T {
	v, _ := c.Get(key)
	t, _ := v.(T)
	return t
}
