package command

import "errors"

var (
	// ErrInvalidCommand is returned when a command name is not of the form "<phase>.<action>".
	ErrInvalidCommand = errors.New("command: invalid command name")

	// ErrInvalidHandler is returned when a nil or non-comparable handler is added to a chain.
	ErrInvalidHandler = errors.New("command: invalid handler")
)
