package command

// Result is the outcome of a single hook.
// The zero value continues the chain.
type Result struct {
	value any
	brk   bool
}

// Continue lets the chain proceed to the next handler.
func Continue() Result {
	return Result{}
}

// Break stops the chain and returns v to the caller of Execute.
func Break(v any) Result {
	return Result{value: v, brk: true}
}

// IsBreak reports whether the chain was stopped.
func (r Result) IsBreak() bool {
	return r.brk
}

// Value returns the value carried by a Break. Nil for Continue.
func (r Result) Value() any {
	return r.value
}
