package event

import "errors"

var (
	// ErrInvalidEvent is returned when an event argument is neither a non-empty name nor an *Event.
	ErrInvalidEvent = errors.New("event: invalid event")

	// ErrInvalidListener is returned for nil or non-comparable listeners.
	ErrInvalidListener = errors.New("event: invalid listener")
)
