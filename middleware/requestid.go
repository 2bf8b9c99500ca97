package middleware

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/felixgeelhaar/toolhost/protocol"
)

type requestIDKey struct{}

// RequestID returns middleware that tags each request's context with a ULID.
// An ID already present in the context is kept.
func RequestID() Middleware {
	return RequestIDWithGenerator(newULID)
}

// RequestIDWithGenerator is RequestID with a custom ID source.
func RequestIDWithGenerator(generate func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, generate())
			}
			return next(ctx, req)
		}
	}
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID returns a new context with the request ID set.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// ULIDs sort by creation time, so log lines of one session order naturally.
func newULID() string {
	return ulid.Make().String()
}
