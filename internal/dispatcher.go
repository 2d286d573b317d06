package internal

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

var (
	actionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	webdavAgent   = regexp.MustCompile(`(?i)Microsoft Office (?:Protocol|Core|Existence)|Microsoft-WebDAV`)

	// Actions covered by other verbs that POST must not select.
	postForbidden = []string{"browse", "read", "render", "delete"}
)

// Dispatcher runs one HTTP request through the dispatch lifecycle:
// before.dispatch resolves the controller, dispatch maps the HTTP verb to a
// controller action, send writes the response and terminate ends the request.
//
// A Dispatcher serves a single request. Build a new one per request from a
// shared DispatcherConfig.
type Dispatcher struct {
	started          time.Time
	cfg              *DispatcherConfig
	chain            *command.Chain[*Context]
	actions          map[string]ActionFunc
	controller       Controller
	writer           *ResponseWriter
	ctx              *Context
	controllerName   string
	controllerAction string
	sent             bool
}

// NewDispatcher creates a dispatcher for one request.
func NewDispatcher(cfg *DispatcherConfig) *Dispatcher {
	if cfg == nil {
		cfg = NewDispatcherConfig()
	}
	d := &Dispatcher{
		cfg:            cfg,
		controllerName: cfg.defaultController,
	}
	d.actions = map[string]ActionFunc{
		"dispatch":  d.dispatch,
		"get":       d.get,
		"head":      d.head,
		"post":      d.post,
		"put":       d.put,
		"delete":    d.delete,
		"options":   d.options,
		"redirect":  d.redirect,
		"fail":      d.fail,
		"send":      d.send,
		"terminate": d.terminate,
	}
	d.chain = command.NewChain[*Context](
		command.WithSubject(d),
		command.WithLogger(cfg.logger.With(logger.Component("dispatcher"))),
	)

	resolver := command.NewHandlerBase[*Context](command.PriorityHighest)
	resolver.On("before.dispatch", d.resolve)
	d.add(&resolver)

	if cfg.authenticatable.Queue().Len() > 0 {
		d.add(cfg.authenticatable)
	}
	for _, b := range cfg.defaults {
		d.add(b)
	}
	if cfg.publisher != nil {
		d.add(NewEventable(cfg.publisher))
	}
	for _, b := range cfg.behaviors {
		d.add(b)
	}
	return d
}

// Handler returns an http.Handler serving every request with a fresh Dispatcher.
func (cfg *DispatcherConfig) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewDispatcher(cfg).Serve(w, r)
	})
}

func (d *Dispatcher) add(b Behavior) {
	if err := d.chain.Add(b); err != nil {
		d.cfg.logger.Error("dispatcher behavior rejected", logger.Error(err))
	}
}

// AddBehavior attaches a behavior to this dispatcher only.
func (d *Dispatcher) AddBehavior(b Behavior) error { return d.chain.Add(b) }

// Name implements Controller.
func (*Dispatcher) Name() string { return "dispatcher" }

// Config returns the shared configuration.
func (d *Dispatcher) Config() *DispatcherConfig { return d.cfg }

// Context returns the context of the request being served.
func (d *Dispatcher) Context() *Context { return d.ctx }

// Controller returns the resolved controller or nil.
func (d *Dispatcher) Controller() Controller { return d.controller }

// ControllerName returns the name the controller is resolved from.
func (d *Dispatcher) ControllerName() string { return d.controllerName }

// SetController selects the controller by registered name.
func (d *Dispatcher) SetController(name string) {
	d.controllerName = name
	d.controller = nil
}

// ControllerAction returns the requested controller action.
func (d *Dispatcher) ControllerAction() string { return d.controllerAction }

// SetControllerAction sets the requested controller action.
func (d *Dispatcher) SetControllerAction(action string) {
	d.controllerAction = strings.ToLower(action)
}

// Authenticators returns the authenticator queue.
func (d *Dispatcher) Authenticators() *AuthenticatorQueue { return d.cfg.authenticatable.Queue() }

// Transports returns the transport queue.
func (d *Dispatcher) Transports() *TransportQueue { return d.cfg.transportQueue }

// IsForwarded reports whether the response is left unsent after dispatch.
func (d *Dispatcher) IsForwarded() bool { return d.cfg.forwarded }

// Actions implements Controller.
func (d *Dispatcher) Actions() []string {
	return slices.Sorted(maps.Keys(d.actions))
}

// CanExecute implements Controller. GET and HEAD need a renderable
// controller; POST, PUT and DELETE need a modellable one.
func (d *Dispatcher) CanExecute(ctx *Context, action string) Permission {
	ctrl := d.controller
	if ctrl == nil && ctx != nil {
		ctrl, _ = d.resolveController(ctx)
	}

	switch strings.ToLower(action) {
	case "get", "head":
		if _, ok := ctrl.(Renderable); ok {
			return PermissionAllowed
		}
		return PermissionDenied
	case "post", "put", "delete":
		if _, ok := ctrl.(Modellable); ok {
			return PermissionAllowed
		}
		return PermissionDenied
	default:
		return PermissionAllowed
	}
}

// Execute implements Controller.
func (d *Dispatcher) Execute(action string, ctx *Context) (any, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return nil, ErrRequestInvalid("Action not found")
	}

	restore := ctx.Snapshot()
	defer restore()

	res, err := d.chain.Execute("before."+action, ctx)
	if err != nil {
		return nil, err
	}
	if res.IsBreak() {
		return ctx.Result, nil
	}

	fn, ok := d.actions[action]
	if !ok {
		return nil, ErrMethodNotAllowed(fmt.Sprintf("Method %s not allowed", strings.ToUpper(action)))
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Result = result

	if _, err := d.chain.Execute("after."+action, ctx); err != nil {
		return nil, err
	}
	return ctx.Result, nil
}

// Serve dispatches r. Every error ends up in the fail action. A behavior
// that breaks before.dispatch still gets its response sent.
func (d *Dispatcher) Serve(w http.ResponseWriter, r *http.Request) {
	d.started = time.Now()
	d.writer = NewResponseWriter(w)
	d.ctx = d.newContext(r)

	_, err := d.Execute("dispatch", d.ctx)
	if err == nil && !d.sent && !d.cfg.forwarded {
		_, err = d.Execute("send", d.ctx)
	}
	if err != nil {
		d.Fail(d.ctx, err)
	}
}

// Fail answers err through the fail action. When fail itself errors the
// client gets a bare 500.
func (d *Dispatcher) Fail(ctx *Context, err error) {
	status := StatusOf(err)
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.RequestID == "" {
		httpErr.RequestID = RequestIDFromContext(ctx)
	}
	ctx.Logger().LogAttrs(ctx, level, "dispatch failed", logger.Error(err), logger.Status(status))

	ctx.Param = err
	if _, ferr := d.Execute("fail", ctx); ferr != nil {
		ctx.Logger().ErrorContext(ctx, "fail action failed", logger.Error(ferr))
		if d.writer != nil && !d.writer.Written() {
			http.Error(d.writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// Include renders target ("name?query") inside the current request.
func (d *Dispatcher) Include(ctx *Context, target string) (any, error) {
	return NewFragment(d.cfg).Include(ctx, target)
}

func (d *Dispatcher) newContext(r *http.Request) *Context {
	req := NewRequest(r, d.cfg.basePath)
	user := NewUser(NewUserSession(d.cfg.sessions, r))
	ctx := NewContext(r.Context(), req, NewResponse(), user, d.cfg.logger)
	ctx.includer = d
	ctx.WithLogAttrs(logger.Method(r.Method))
	return ctx
}

func (d *Dispatcher) resolveController(ctx *Context) (Controller, error) {
	if d.controller != nil {
		return d.controller, nil
	}
	if d.controllerName == "" {
		return nil, ErrNotFound("Controller not found")
	}
	c, err := d.cfg.registry.Resolve(ctx, d.controllerName)
	if err != nil {
		return nil, err
	}
	d.controller = c
	return c, nil
}

func (d *Dispatcher) resolve(ctx *Context) (command.Result, error) {
	method := ctx.Request.Method()
	if !slices.Contains(d.cfg.methods, method) {
		return command.Continue(), ErrMethodNotAllowed(fmt.Sprintf("Method %s not allowed", strings.ToUpper(method)))
	}
	d.SetControllerAction(method)

	if view := ctx.Request.Query.Get("view"); view != "" {
		d.SetController(view)
	}
	if ctx.Request.HasData("_action") {
		d.SetControllerAction(ctx.Request.DataString("_action"))
	}
	if err := ctx.Request.Err(); err != nil {
		return command.Continue(), ErrRequestInvalid("Malformed request body", WithError(err))
	}

	ctrl, err := d.resolveController(ctx)
	if err != nil {
		return command.Continue(), err
	}
	ctx.WithLogAttrs(logger.Controller(ctrl.Name()), logger.Action(d.controllerAction))
	return command.Continue(), nil
}

func (d *Dispatcher) dispatch(ctx *Context) (any, error) {
	ctrl, err := d.resolveController(ctx)
	if err != nil {
		return nil, err
	}

	_, renderable := ctrl.(Renderable)
	_, modellable := ctrl.(Modellable)
	if !renderable && !modellable {
		action := strings.ToLower(ctx.Request.Query.Get("_action"))
		if !actionPattern.MatchString(action) {
			return nil, ErrRequestInvalid("Action not found")
		}
		if _, err := ctrl.Execute(action, ctx); err != nil {
			return nil, err
		}
	} else if _, err := d.Execute(ctx.Request.Method(), ctx); err != nil {
		return nil, err
	}

	result := ctx.Result
	setResultContent(ctx.Response, result)

	if !d.cfg.forwarded {
		if _, err := d.Execute("send", ctx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (d *Dispatcher) get(ctx *Context) (any, error) {
	r, ok := d.controller.(Renderable)
	if !ok {
		return nil, ErrMethodNotAllowed("Method GET not allowed")
	}
	return r.Execute(d.cfg.defaultAction, ctx)
}

func (d *Dispatcher) head(ctx *Context) (any, error) {
	if _, ok := d.controller.(Renderable); !ok {
		return nil, ErrMethodNotAllowed("Method HEAD not allowed")
	}
	return d.Execute("get", ctx)
}

func (d *Dispatcher) post(ctx *Context) (any, error) {
	m, ok := d.controller.(Modellable)
	if !ok {
		return nil, ErrMethodNotAllowed("Method POST not allowed")
	}

	var action string
	switch {
	case ctx.Request.HasData("_action"):
		action = strings.ToLower(ctx.Request.DataString("_action"))
		if slices.Contains(postForbidden, action) {
			return nil, ErrMethodNotAllowed(fmt.Sprintf("Action: %s not allowed", action))
		}
	case m.Model().State().IsUnique():
		action = "edit"
	default:
		action = "add"
	}
	if !actionPattern.MatchString(action) {
		return nil, ErrRequestInvalid("Action not found")
	}

	result, err := m.Execute(action, ctx)
	if err != nil {
		return nil, err
	}
	return d.representation(ctx, m, result)
}

func (d *Dispatcher) put(ctx *Context) (any, error) {
	m, ok := d.controller.(Modellable)
	if !ok {
		return nil, ErrMethodNotAllowed("Method PUT not allowed")
	}

	model := m.Model()
	state := model.State()
	if !state.IsUnique() {
		return nil, ErrRequestInvalid("Resource not found")
	}

	entity, err := model.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, ErrRequestInvalid("Resource not found")
	}

	action := "add"
	if !entity.IsNew() {
		entity.Reset()
		action = "edit"
	}
	entity.SetProperties(state.Values(true))
	ctx.Set(EntityKey, entity)

	result, err := m.Execute(action, ctx)
	if err != nil {
		return nil, err
	}
	return d.representation(ctx, m, result)
}

func (d *Dispatcher) delete(ctx *Context) (any, error) {
	m, ok := d.controller.(Modellable)
	if !ok {
		return nil, ErrMethodNotAllowed("Method DELETE not allowed")
	}
	return m.Execute("delete", ctx)
}

// representation re-renders the resource after a successful write whose
// result is not already content.
func (d *Dispatcher) representation(ctx *Context, ctrl Controller, result any) (any, error) {
	if !ctx.Response.IsSuccess() || isContent(result) {
		return result, nil
	}
	if _, ok := ctrl.(Renderable); !ok {
		return result, nil
	}
	return ctrl.Execute(d.cfg.defaultAction, ctx)
}

func (d *Dispatcher) options(ctx *Context) (any, error) {
	if webdavAgent.MatchString(ctx.Request.UserAgent()) {
		return nil, ErrMethodNotAllowed("Method not allowed")
	}
	ctx.Response.Headers.Set("Allow", d.allow(ctx))
	return nil, nil
}

// allow formats the Allow header, e.g. "GET HEAD POST [add, edit] PUT DELETE OPTIONS".
func (d *Dispatcher) allow(ctx *Context) string {
	parts := make([]string, 0, len(d.cfg.methods))
	for _, method := range d.cfg.methods {
		if _, ok := d.actions[method]; !ok {
			continue
		}
		if !d.CanExecute(ctx, method).IsAllowed() {
			continue
		}
		part := strings.ToUpper(method)
		if method == "post" {
			if sub := d.postActions(ctx); len(sub) > 0 {
				part += " [" + strings.Join(sub, ", ") + "]"
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// postActions lists the controller actions a POST _action would accept.
func (d *Dispatcher) postActions(ctx *Context) []string {
	if d.controller == nil {
		return nil
	}
	var out []string
	for _, a := range d.controller.Actions() {
		if slices.Contains(postForbidden, a) || slices.Contains(d.cfg.methods, a) {
			continue
		}
		if d.controller.CanExecute(ctx, a).IsAllowed() {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

func (d *Dispatcher) redirect(ctx *Context) (any, error) {
	var location string
	switch v := ctx.Param.(type) {
	case string:
		location = v
	case *url.URL:
		if v != nil {
			location = v.String()
		}
	case fmt.Stringer:
		location = v.String()
	}
	if location == "" {
		return nil, fmt.Errorf("%w: redirect requires a target URL", ErrInvalidArgument)
	}

	ctx.Response.SetRedirect(location, http.StatusMovedPermanently)
	_, err := d.Execute("send", ctx)
	return nil, err
}

func (d *Dispatcher) fail(ctx *Context) (any, error) {
	err, ok := ctx.Param.(error)
	if !ok || err == nil {
		return nil, fmt.Errorf("%w: fail requires an error", ErrInvalidArgument)
	}

	status := StatusOf(err)
	ctx.Exception = err
	ctx.Response.SetContent(nil, "")
	ctx.Response.Headers.Del("Location")
	ctx.Response.SetStatus(status, d.failMessage(err, status))

	_, err = d.Execute("send", ctx)
	return nil, err
}

func (d *Dispatcher) failMessage(err error, status int) string {
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Message != "" {
		return httpErr.Message
	}
	if d.cfg.debug && err.Error() != "" {
		return err.Error()
	}
	return http.StatusText(status)
}

func (d *Dispatcher) send(ctx *Context) (any, error) {
	d.sent = true
	if ctx.Response.Status() == http.StatusMethodNotAllowed {
		_, _ = d.options(ctx)
	}

	if err := ctx.User.Session().Save(ctx, ctx.Response); err != nil {
		ctx.Logger().ErrorContext(ctx, "session save failed", logger.Error(err))
	}

	switch {
	case d.writer == nil:
	case d.writer.Written():
		ctx.Logger().DebugContext(ctx, "response already written")
	default:
		if err := d.cfg.transportQueue.Send(ctx, d.writer); err != nil {
			return nil, err
		}
	}

	_, err := d.Execute("terminate", ctx)
	return nil, err
}

func (d *Dispatcher) terminate(ctx *Context) (any, error) {
	attrs := []slog.Attr{logger.Status(ctx.Response.Status())}
	if !d.started.IsZero() {
		attrs = append(attrs, logger.Duration(time.Since(d.started)))
	}
	ctx.Logger().LogAttrs(ctx, slog.LevelDebug, "request terminated", attrs...)
	return nil, nil
}

// EntityKey is the context attribute holding the entity prepared by PUT.
const EntityKey = "entity"

func isContent(v any) bool {
	switch v.(type) {
	case string, []byte, fmt.Stringer:
		return true
	}
	return false
}

func setResultContent(resp *Response, result any) {
	if result == nil || resp.IsRedirect() {
		return
	}
	if !resp.SetContentString(result) {
		return
	}
	if mt, ok := result.(interface{ MediaType() string }); ok {
		resp.SetContent(resp.Content(), mt.MediaType())
	}
}
