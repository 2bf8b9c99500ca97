package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// PanicHandler turns a recovered panic value into the request's outcome.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// RecoverOption configures Recover.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	logger  Logger
	handler PanicHandler
}

// WithRecoverLogger logs every recovered panic with its stack.
func WithRecoverLogger(l Logger) RecoverOption {
	return func(c *recoverConfig) {
		c.logger = l
	}
}

// WithPanicHandler replaces the default conversion to an internal error.
func WithPanicHandler(h PanicHandler) RecoverOption {
	return func(c *recoverConfig) {
		c.handler = h
	}
}

// Recover returns middleware that catches panics and converts them to
// internal errors, so a faulty handler never takes down the session.
func Recover(opts ...RecoverOption) Middleware {
	cfg := &recoverConfig{
		logger:  NopLogger{},
		handler: internalErrorOnPanic,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				if p := recover(); p != nil {
					cfg.logger.Error("panic recovered",
						F("method", req.Method),
						F("panic", fmt.Sprint(p)),
						F("stack", string(debug.Stack())),
					)
					resp, err = cfg.handler(ctx, req, p)
				}
			}()
			return next(ctx, req)
		}
	}
}

func internalErrorOnPanic(_ context.Context, _ *protocol.Request, panicVal any) (*protocol.Response, error) {
	return nil, protocol.NewInternalError(fmt.Sprintf("panic: %v", panicVal))
}
