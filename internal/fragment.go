package internal

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Fragment renders a controller inside another request. It runs
// before.include, include and after.include and never sends a response;
// the result goes back to the caller.
//
// A Fragment is not safe for concurrent use.
type Fragment struct {
	cfg              *DispatcherConfig
	chain            *command.Chain[*Context]
	controller       Controller
	controllerName   string
	controllerAction string
}

// NewFragment creates a fragment dispatcher sharing cfg's registry.
// Only the limitable behavior is attached.
func NewFragment(cfg *DispatcherConfig) *Fragment {
	if cfg == nil {
		cfg = NewDispatcherConfig()
	}
	f := &Fragment{
		cfg:              cfg,
		controllerName:   cfg.defaultController,
		controllerAction: cfg.defaultAction,
	}
	f.chain = command.NewChain[*Context](
		command.WithSubject(f),
		command.WithLogger(cfg.logger.With(logger.Component("fragment"))),
	)

	resolver := command.NewHandlerBase[*Context](command.PriorityHighest)
	resolver.On("before.include", f.resolve)
	_ = f.chain.Add(&resolver)
	_ = f.chain.Add(NewLimitable(cfg.limit, cfg.maxLimit))
	return f
}

// Name implements Controller.
func (*Fragment) Name() string { return "fragment" }

// Actions implements Controller.
func (*Fragment) Actions() []string { return []string{"include"} }

// CanExecute implements Controller.
func (*Fragment) CanExecute(*Context, string) Permission { return PermissionAllowed }

// Controller returns the resolved controller or nil.
func (f *Fragment) Controller() Controller { return f.controller }

// Chain returns the fragment command chain.
func (f *Fragment) Chain() *command.Chain[*Context] { return f.chain }

// Include renders target, "name?query", for the request of parent.
// The fragment gets its own query and response; the user is shared.
func (f *Fragment) Include(parent *Context, target string) (any, error) {
	req := *parent.Request
	req.Query = url.Values{}

	ctx := NewContext(parent, &req, NewResponse(), parent.User, parent.Logger())
	ctx.includer = parent.includer
	ctx.Param = target

	return f.Execute("include", ctx)
}

// Execute implements Controller. Only the include action exists.
func (f *Fragment) Execute(action string, ctx *Context) (any, error) {
	action = strings.ToLower(action)
	if action != "include" {
		return nil, ErrNotImplemented("Fragments only support include")
	}

	restore := ctx.Snapshot()
	defer restore()

	res, err := f.chain.Execute("before.include", ctx)
	if err != nil {
		return nil, err
	}
	if res.IsBreak() {
		return ctx.Result, nil
	}

	result, err := f.include(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Result = result

	if _, err := f.chain.Execute("after.include", ctx); err != nil {
		return nil, err
	}
	return ctx.Result, nil
}

func (f *Fragment) resolve(ctx *Context) (command.Result, error) {
	if target, _ := ctx.Param.(string); target != "" {
		u, err := url.Parse(target)
		if err != nil {
			return command.Continue(), ErrRequestInvalid("Malformed include target", WithError(err))
		}
		ctx.Request.Query = u.Query()
		f.controllerName = u.Path
		f.controller = nil
	}
	if view := ctx.Request.Query.Get("view"); view != "" {
		f.controllerName = view
		f.controller = nil
	}

	ctrl, err := f.cfg.registry.Resolve(ctx, f.controllerName)
	if err != nil {
		return command.Continue(), err
	}
	f.controller = ctrl
	return command.Continue(), nil
}

func (f *Fragment) include(ctx *Context) (any, error) {
	result, err := f.controller.Execute(f.controllerAction, ctx)
	if err != nil {
		return nil, err
	}
	setResultContent(ctx.Response, result)
	return result, nil
}
