package internal

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// ActionFunc executes one controller action.
type ActionFunc func(ctx *Context) (any, error)

// PermissionFunc decides whether an action may run for the current request.
type PermissionFunc func(ctx *Context) Permission

// Behavior is a handler attached to a controller or dispatcher chain.
type Behavior = command.Handler[*Context]

// ActionProvider is implemented by behaviors that contribute actions to
// the controller they are attached to.
type ActionProvider interface {
	ProvidedActions() map[string]ActionFunc
}

// Controller executes named actions through its command chain.
type Controller interface {
	Name() string
	Execute(action string, ctx *Context) (any, error)
	Actions() []string
	CanExecute(ctx *Context, action string) Permission
}

// Renderable controllers can produce a representation of their resource.
// Render must also be registered as the "render" action.
type Renderable interface {
	Controller
	Render(ctx *Context) (any, error)
}

// Modellable controllers are backed by a model and accept writes.
type Modellable interface {
	Controller
	Model() Model
}

// BaseController is an embeddable Controller with an explicit action map.
//
//	type NoteController struct {
//	    *internal.BaseController
//	}
//
//	func NewNoteController() *NoteController {
//	    c := &NoteController{}
//	    c.BaseController = internal.NewBaseController("note", internal.WithOwner(c))
//	    c.Register("render", c.Render)
//	    return c
//	}
type BaseController struct {
	owner     Controller
	chain     *command.Chain[*Context]
	logger    *slog.Logger
	publisher *event.Publisher
	actions   map[string]ActionFunc
	perms     map[string]PermissionFunc
	behaviors []Behavior
	name      string
}

// ControllerOption configures a BaseController.
type ControllerOption func(*BaseController)

// WithOwner sets the controller that embeds the base. Hooks see it as the
// context subject and permission checks go through its CanExecute.
func WithOwner(c Controller) ControllerOption {
	return func(b *BaseController) {
		if c != nil {
			b.owner = c
		}
	}
}

// WithControllerBehaviors attaches behaviors at construction.
func WithControllerBehaviors(behaviors ...Behavior) ControllerOption {
	return func(b *BaseController) {
		b.behaviors = append(b.behaviors, behaviors...)
	}
}

// WithControllerLogger sets the logger of the controller chain.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(b *BaseController) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithControllerPublisher publishes every before/after command of the
// controller as an event.
func WithControllerPublisher(p *event.Publisher) ControllerOption {
	return func(b *BaseController) {
		b.publisher = p
	}
}

// NewBaseController creates a controller named name. The permissible
// behavior is always attached.
func NewBaseController(name string, opts ...ControllerOption) *BaseController {
	c := &BaseController{
		name:    strings.ToLower(name),
		logger:  logger.NewNope(),
		actions: make(map[string]ActionFunc),
		perms:   make(map[string]PermissionFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.owner == nil {
		c.owner = c
	}

	c.chain = command.NewChain[*Context](
		command.WithSubject(c.owner),
		command.WithLogger(c.logger.With(logger.Controller(c.name))),
	)

	behaviors := c.behaviors
	c.behaviors = nil
	c.mustAddBehavior(NewPermissible())
	if c.publisher != nil {
		c.mustAddBehavior(NewEventable(c.publisher))
	}
	for _, b := range behaviors {
		c.mustAddBehavior(b)
	}
	return c
}

// Name implements Controller.
func (c *BaseController) Name() string { return c.name }

// Register maps an action name to fn, replacing any previous mapping.
func (c *BaseController) Register(action string, fn ActionFunc) {
	c.actions[strings.ToLower(action)] = fn
}

// Allow installs a permission check for action.
func (c *BaseController) Allow(action string, fn PermissionFunc) {
	c.perms[strings.ToLower(action)] = fn
}

// RequireAuthentic makes the given actions answer Unauthorized for anonymous users.
func (c *BaseController) RequireAuthentic(actions ...string) {
	for _, a := range actions {
		c.Allow(a, func(ctx *Context) Permission {
			if ctx.User.IsAuthentic(false) {
				return PermissionAllowed
			}
			return PermissionUnauthorized
		})
	}
}

// AddBehavior attaches a behavior. Actions contributed by the behavior are
// registered unless the controller already has them.
func (c *BaseController) AddBehavior(b Behavior) error {
	if err := c.chain.Add(b); err != nil {
		return err
	}
	c.behaviors = append(c.behaviors, b)
	if p, ok := b.(ActionProvider); ok {
		for name, fn := range p.ProvidedActions() {
			name = strings.ToLower(name)
			if _, exists := c.actions[name]; !exists {
				c.actions[name] = fn
			}
		}
	}
	return nil
}

func (c *BaseController) mustAddBehavior(b Behavior) {
	if err := c.AddBehavior(b); err != nil {
		panic(fmt.Sprintf("controller %s: %v", c.name, err))
	}
}

// Behaviors returns the attached behaviors.
func (c *BaseController) Behaviors() []Behavior { return slices.Clone(c.behaviors) }

// Chain returns the controller command chain.
func (c *BaseController) Chain() *command.Chain[*Context] { return c.chain }

// Actions implements Controller. Names are sorted.
func (c *BaseController) Actions() []string {
	return slices.Sorted(maps.Keys(c.actions))
}

// HasAction reports whether the action is registered.
func (c *BaseController) HasAction(action string) bool {
	_, ok := c.actions[strings.ToLower(action)]
	return ok
}

// CanExecute implements Controller. Without a permission check, registered
// actions are allowed and unknown ones are not implemented.
func (c *BaseController) CanExecute(ctx *Context, action string) Permission {
	action = strings.ToLower(action)
	if fn, ok := c.perms[action]; ok {
		return fn(ctx)
	}
	if _, ok := c.actions[action]; ok {
		return PermissionAllowed
	}
	return PermissionNotImplemented
}

// Execute implements Controller.
//
// It runs before.<action>, the action itself and after.<action>. A break in
// before.<action> vetoes the action and the current ctx.Result is returned.
// The context name and subject are restored on return.
func (c *BaseController) Execute(action string, ctx *Context) (any, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return nil, ErrNotImplemented("Action not specified")
	}

	restore := ctx.Snapshot()
	defer restore()

	res, err := c.chain.Execute("before."+action, ctx)
	if err != nil {
		return nil, err
	}
	if res.IsBreak() {
		return ctx.Result, nil
	}

	fn, ok := c.actions[action]
	if !ok {
		return nil, ErrNotImplemented(fmt.Sprintf("Can't execute %q, action not implemented", action))
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Result = result

	if _, err := c.chain.Execute("after."+action, ctx); err != nil {
		return nil, err
	}

	return ctx.Result, nil
}
