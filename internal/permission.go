package internal

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

// Permission is the outcome of a controller permission check.
type Permission int

// Permission values.
const (
	PermissionAllowed Permission = iota
	PermissionDenied
	PermissionUnauthorized
	PermissionForbidden
	PermissionNotImplemented
)

// IsAllowed reports PermissionAllowed.
func (p Permission) IsAllowed() bool { return p == PermissionAllowed }

func (p Permission) String() string {
	switch p {
	case PermissionAllowed:
		return "allowed"
	case PermissionDenied:
		return "denied"
	case PermissionUnauthorized:
		return "unauthorized"
	case PermissionForbidden:
		return "forbidden"
	case PermissionNotImplemented:
		return "not implemented"
	default:
		return fmt.Sprintf("permission(%d)", int(p))
	}
}

// Err converts a refused permission into the matching HTTP error. Allowed returns nil.
func (p Permission) Err(action string) error {
	name := ucfirst(action)
	switch p {
	case PermissionAllowed:
		return nil
	case PermissionNotImplemented:
		return ErrNotImplemented(fmt.Sprintf("Action %q not implemented", name))
	case PermissionUnauthorized:
		return ErrNotAuthenticated(fmt.Sprintf("Action %q requires authentication", name))
	default:
		return ErrForbidden(fmt.Sprintf("Action %q not allowed", name))
	}
}

// Permissible checks the subject controller's CanExecute before every action.
type Permissible struct{}

// NewPermissible creates the permission behavior.
func NewPermissible() *Permissible { return &Permissible{} }

// Priority implements command.Handler.
func (*Permissible) Priority() command.Priority { return command.PriorityHigh }

// Enabled implements command.Handler.
func (*Permissible) Enabled() bool { return true }

// Lookup implements command.Handler. It answers every before.* command.
func (*Permissible) Lookup(h command.Hook) (command.HookFunc[*Context], bool) {
	if h.Phase != "before" {
		return nil, false
	}
	action := h.Action
	return func(ctx *Context) (command.Result, error) {
		ctrl, ok := ctx.Subject().(Controller)
		if !ok {
			return command.Continue(), nil
		}
		if err := ctrl.CanExecute(ctx, action).Err(action); err != nil {
			return command.Continue(), err
		}
		return command.Continue(), nil
	}, true
}

func ucfirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
