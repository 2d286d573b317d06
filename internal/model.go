package internal

import (
	"context"
	"maps"
	"slices"
)

// Model is the data collaborator of a modellable controller.
type Model interface {
	State() State
	Fetch(ctx context.Context) (Entity, error)
}

// State holds model query values. A unique state addresses exactly one resource.
type State interface {
	IsUnique() bool
	Values(uniqueOnly bool) map[string]any
	Get(key string) (any, bool)
	Set(key string, v any)
}

// Entity is a fetched resource or collection.
type Entity interface {
	IsNew() bool
	Reset()
	SetProperties(props map[string]any)
}

// ModelState is a State with a fixed set of unique keys.
// The state is unique once every unique key has a non-empty value.
type ModelState struct {
	values map[string]any
	unique []string
}

// NewModelState creates a state whose uniqueness is decided by uniqueKeys.
func NewModelState(uniqueKeys ...string) *ModelState {
	return &ModelState{
		values: make(map[string]any),
		unique: uniqueKeys,
	}
}

// IsUnique implements State.
func (s *ModelState) IsUnique() bool {
	if len(s.unique) == 0 {
		return false
	}
	for _, k := range s.unique {
		if isEmptyValue(s.values[k]) {
			return false
		}
	}
	return true
}

// Values implements State.
func (s *ModelState) Values(uniqueOnly bool) map[string]any {
	if !uniqueOnly {
		return maps.Clone(s.values)
	}
	out := make(map[string]any, len(s.unique))
	for _, k := range s.unique {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Get implements State.
func (s *ModelState) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set implements State. Setting nil removes the key.
func (s *ModelState) Set(key string, v any) {
	if v == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = v
}

// IsUniqueKey reports whether key identifies a resource.
func (s *ModelState) IsUniqueKey(key string) bool {
	return slices.Contains(s.unique, key)
}

// Limit returns the limit value and whether one is set.
func (s *ModelState) Limit() (int, bool) {
	v, ok := s.values["limit"].(int)
	return v, ok
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	}
	return false
}
