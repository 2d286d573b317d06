package internal

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/dmitrymomot/dispatch/pkg/inflector"
)

// ControllerFactory builds a controller for one request.
type ControllerFactory func(ctx *Context) (Controller, error)

var controllerNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry is the closed set of controllers a dispatcher can resolve.
// Request input selects a controller only by a registered name.
type Registry struct {
	factories map[string]ControllerFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ControllerFactory)}
}

// NormalizeControllerName case-folds name, validates it and forces it singular.
func NormalizeControllerName(name string) (string, error) {
	folded := cases.Fold().String(strings.TrimSpace(name))
	if !controllerNamePattern.MatchString(folded) {
		return "", fmt.Errorf("%w: malformed controller name %q", ErrInvalidArgument, name)
	}
	return inflector.Singularize(folded), nil
}

// Register adds a factory under the normalized name.
func (r *Registry) Register(name string, f ControllerFactory) error {
	if f == nil {
		return fmt.Errorf("%w: nil factory for controller %q", ErrInvalidArgument, name)
	}
	key, err := NormalizeControllerName(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: controller %q already registered", ErrInvalidArgument, key)
	}
	r.factories[key] = f
	return nil
}

// Has reports whether name resolves to a registered controller.
func (r *Registry) Has(name string) bool {
	key, err := NormalizeControllerName(name)
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[key]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Resolve builds the controller registered under name.
// Malformed and unknown names both fail with 404 "Controller not found".
func (r *Registry) Resolve(ctx *Context, name string) (Controller, error) {
	key, err := NormalizeControllerName(name)
	if err != nil {
		return nil, ErrNotFound("Controller not found", WithError(err))
	}

	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound("Controller not found", WithDetail(key))
	}

	c, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", key, err)
	}
	if c == nil {
		return nil, ErrNotFound("Controller not found", WithDetail(key))
	}
	return c, nil
}
