package server

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// Invoke validates args against the tool's input schema and runs its
// handler. A panicking handler yields an internal error Failure; nothing
// escapes to the caller.
func Invoke(ctx context.Context, t *Tool, args Arguments) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Failure(protocol.CodeInternalError, fmt.Sprintf("panic: %v", p))
		}
	}()

	if args == nil {
		args = Arguments{}
	}

	if t.inputSchema != nil {
		if err := t.inputSchema.ValidateValue(map[string]any(args)); err != nil {
			return InvalidParams(fmt.Sprintf("input validation failed: %v", err))
		}
	}

	return t.handler(ctx, args)
}
