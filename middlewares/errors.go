package middlewares

import (
	"context"
	"fmt"
	"time"
)

// PanicError is a recovered panic. Unwrap exposes the value when it was an
// error, so errors.Is and errors.As see through it.
type PanicError struct {
	Value any    // recovered value
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// TimeoutError reports a request that outlived its deadline. It matches
// context.DeadlineExceeded.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }
