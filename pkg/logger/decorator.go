package logger

import (
	"context"
	"log/slog"
	"slices"
)

// ContextExtractor derives an attribute from a context, e.g. the request id.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator adds request-scoped attributes to every record: the
// ones stored with WithAttrs on the context first, then extractor output.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewLogHandlerDecorator wraps next. Nil extractors are ignored.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	return &LogHandlerDecorator{
		next:       next,
		extractors: slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool { return ex == nil }),
	}
}

// Enabled implements slog.Handler.
func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	rec.AddAttrs(attrsFromContext(ctx)...)
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.wrap(h.next.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.
func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return h.wrap(h.next.WithGroup(name))
}

func (h *LogHandlerDecorator) wrap(next slog.Handler) *LogHandlerDecorator {
	return &LogHandlerDecorator{next: next, extractors: h.extractors}
}
