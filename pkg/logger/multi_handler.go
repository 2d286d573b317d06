package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// multiHandler fans a record out to several handlers. A failing handler does
// not stop the others; their errors are joined.
type multiHandler []slog.Handler

func newMultiHandler(handlers ...slog.Handler) slog.Handler {
	return multiHandler(slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool { return h == nil }))
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(m, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (m multiHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range m {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m multiHandler) each(fn func(slog.Handler) slog.Handler) multiHandler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = fn(h)
	}
	return out
}
