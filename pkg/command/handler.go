package command

// HookFunc handles one command for a context of type C.
type HookFunc[C any] func(ctx C) (Result, error)

// Handler is a chain member.
// Lookup returns the hook registered for a command; a miss means the
// handler does not take part in that command.
type Handler[C any] interface {
	Priority() Priority
	Enabled() bool
	Lookup(h Hook) (HookFunc[C], bool)
}

// HandlerBase is an embeddable Handler with an explicit hook registry.
// The zero value is ready to use, enabled, with normal priority.
type HandlerBase[C any] struct {
	hooks    map[Hook]HookFunc[C]
	priority Priority
	disabled bool
}

// NewHandlerBase returns a HandlerBase with the given priority.
func NewHandlerBase[C any](p Priority) HandlerBase[C] {
	return HandlerBase[C]{priority: p}
}

// On registers fn for the dotted command name. It panics on a malformed name.
func (b *HandlerBase[C]) On(name string, fn HookFunc[C]) {
	if b.hooks == nil {
		b.hooks = make(map[Hook]HookFunc[C])
	}
	b.hooks[MustParseHook(name)] = fn
}

// Off removes the hook for the dotted command name.
func (b *HandlerBase[C]) Off(name string) {
	if h, err := ParseHook(name); err == nil {
		delete(b.hooks, h)
	}
}

// Lookup implements Handler.
func (b *HandlerBase[C]) Lookup(h Hook) (HookFunc[C], bool) {
	fn, ok := b.hooks[h]
	return fn, ok && fn != nil
}

// Hooks returns the registered command names.
func (b *HandlerBase[C]) Hooks() []Hook {
	out := make([]Hook, 0, len(b.hooks))
	for h := range b.hooks {
		out = append(out, h)
	}
	return out
}

// Priority implements Handler. Zero means PriorityNormal.
func (b *HandlerBase[C]) Priority() Priority {
	if b.priority == 0 {
		return PriorityNormal
	}
	return b.priority
}

// SetPriority changes the priority used the next time the handler is added to a chain.
func (b *HandlerBase[C]) SetPriority(p Priority) { b.priority = p }

// Enabled implements Handler.
func (b *HandlerBase[C]) Enabled() bool { return !b.disabled }

// Enable turns the handler on.
func (b *HandlerBase[C]) Enable() { b.disabled = false }

// Disable turns the handler off. Disabled handlers stay in the chain but are skipped.
func (b *HandlerBase[C]) Disable() { b.disabled = true }
