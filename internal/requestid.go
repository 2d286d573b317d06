package internal

import (
	"context"
	"log/slog"
)

type requestIDKey struct{}

// ContextWithRequestID stores the request id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds request_id to records logged with a request context.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := RequestIDFromContext(ctx)
	return slog.String("request_id", id), id != ""
}
