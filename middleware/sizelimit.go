package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// Size units for SizeLimit.
const (
	KB = 1024
	MB = 1024 * KB
)

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger  Logger
	methods map[string]bool
}

// WithSizeLimitLogger sets the logger for rejected requests.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// WithSizeLimitMethods restricts the check to the named methods. Without it
// every method is checked.
func WithSizeLimitMethods(methods ...string) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		if o.methods == nil {
			o.methods = make(map[string]bool, len(methods))
		}
		for _, m := range methods {
			o.methods[m] = true
		}
	}
}

// SizeLimit returns middleware that rejects requests whose params exceed
// maxBytes with an invalid params error. A non-positive maxBytes disables
// the check.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) Middleware {
	cfg := &sizeLimitConfig{logger: NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		if maxBytes <= 0 {
			return next
		}
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.methods != nil && !cfg.methods[req.Method] {
				return next(ctx, req)
			}
			if size := int64(len(req.Params)); size > maxBytes {
				cfg.logger.Warn("params size limit exceeded",
					F("method", req.Method),
					F("size", size),
					F("max", maxBytes),
				)
				return nil, protocol.NewInvalidParams(
					fmt.Sprintf("params size %d exceeds limit of %d bytes", size, maxBytes))
			}
			return next(ctx, req)
		}
	}
}
