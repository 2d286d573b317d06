package internal

import (
	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/event"
)

// Eventable publishes controller commands as events named
// "<controller>.<phase>.<action>". A listener that stops propagation of a
// before.* event vetoes the action.
type Eventable struct {
	publisher *event.Publisher
}

// NewEventable creates the behavior.
func NewEventable(p *event.Publisher) *Eventable {
	return &Eventable{publisher: p}
}

// Priority implements command.Handler.
func (*Eventable) Priority() command.Priority { return command.PriorityLowest }

// Enabled implements command.Handler.
func (e *Eventable) Enabled() bool { return e.publisher != nil && e.publisher.IsEnabled() }

// Lookup implements command.Handler. It answers every command.
func (e *Eventable) Lookup(h command.Hook) (command.HookFunc[*Context], bool) {
	return func(ctx *Context) (command.Result, error) {
		ctrl, ok := ctx.Subject().(Controller)
		if !ok {
			return command.Continue(), nil
		}

		name := ctrl.Name() + "." + h.String()
		ev, err := e.publisher.Publish(ctx, name, map[string]any{
			"context": ctx,
			"action":  h.Action,
			"result":  ctx.Result,
		}, ctrl)
		if err != nil {
			return command.Continue(), err
		}
		if h.Phase == "before" && ev != nil && !ev.CanPropagate() {
			return command.Break(false), nil
		}
		return command.Continue(), nil
	}, true
}
