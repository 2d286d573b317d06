package command

import (
	"fmt"
	"strings"
)

// Hook identifies a command by phase and action, e.g. {"before", "render"}.
type Hook struct {
	Phase  string
	Action string
}

// ParseHook splits a dotted command name on its first dot.
// Both parts are lower-cased; either part being empty is an error.
func ParseHook(name string) (Hook, error) {
	phase, action, ok := strings.Cut(name, ".")
	phase = strings.ToLower(strings.TrimSpace(phase))
	action = strings.ToLower(strings.TrimSpace(action))
	if !ok || phase == "" || action == "" {
		return Hook{}, fmt.Errorf("%w: %q", ErrInvalidCommand, name)
	}
	return Hook{Phase: phase, Action: action}, nil
}

// MustParseHook is like ParseHook but panics on an invalid name.
// Intended for hook registration at construction time.
func MustParseHook(name string) Hook {
	h, err := ParseHook(name)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the dotted command name.
func (h Hook) String() string {
	return h.Phase + "." + h.Action
}
