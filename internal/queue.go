package internal

import (
	"slices"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

// queue keeps items in ascending priority, FIFO on ties, one item per key.
type queue[T any] struct {
	key      func(T) string
	priority func(T) command.Priority
	items    []T
}

func newQueue[T any](key func(T) string, priority func(T) command.Priority) queue[T] {
	return queue[T]{key: key, priority: priority}
}

// add inserts v unless an item with the same key exists.
func (q *queue[T]) add(v T) bool {
	k := q.key(v)
	if _, ok := q.get(k); ok {
		return false
	}
	p := q.priority(v)
	i := slices.IndexFunc(q.items, func(it T) bool { return q.priority(it) > p })
	if i < 0 {
		q.items = append(q.items, v)
	} else {
		q.items = slices.Insert(q.items, i, v)
	}
	return true
}

func (q *queue[T]) get(key string) (T, bool) {
	for _, it := range q.items {
		if q.key(it) == key {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (q *queue[T]) all() []T { return slices.Clone(q.items) }
