package middleware

import "github.com/felixgeelhaar/toolhost/protocol"

// DefaultStack returns request ID injection followed by request logging.
// Panic recovery is not part of it: the dispatcher always installs Recover
// as its outermost link.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		RequestID(),
		Logging(logger),
	}
}

// StackOptions selects the optional middleware of ProductionStack.
type StackOptions struct {
	Logger         Logger
	MaxParamsBytes int64
	Telemetry      bool
	OTel           []OTelOption
}

// ProductionStack returns DefaultStack, then OTel when telemetry is enabled,
// then SizeLimit when a limit is set. The size limit applies to tools/call
// only; initialize and tools/list always succeed.
func ProductionStack(opts StackOptions) []Middleware {
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	stack := DefaultStack(logger)
	if opts.Telemetry {
		stack = append(stack, OTel(opts.OTel...))
	}
	if opts.MaxParamsBytes > 0 {
		stack = append(stack, SizeLimit(opts.MaxParamsBytes,
			WithSizeLimitLogger(logger),
			WithSizeLimitMethods(protocol.MethodToolsCall),
		))
	}
	return stack
}
