package middleware

import (
	"context"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// HandlerFunc is the signature shared by the dispatcher and every middleware.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that Chain(a, b)(h) runs a, then b, then h.
// Nil entries are skipped.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			final = middlewares[i](final)
		}
		return final
	}
}

// Stack accumulates middleware before it is applied to a handler.
type Stack struct {
	middlewares []Middleware
}

// Use starts a stack with the given middleware.
func Use(middlewares ...Middleware) *Stack {
	return &Stack{middlewares: middlewares}
}

// Append adds middleware after the ones already in the stack.
func (s *Stack) Append(middlewares ...Middleware) *Stack {
	s.middlewares = append(s.middlewares, middlewares...)
	return s
}

// Len returns the number of middleware in the stack.
func (s *Stack) Len() int {
	return len(s.middlewares)
}

// Then wraps handler with the stack.
func (s *Stack) Then(handler HandlerFunc) HandlerFunc {
	return Chain(s.middlewares...)(handler)
}
