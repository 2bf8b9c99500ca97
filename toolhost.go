// Package toolhost serves a fixed set of tools over line-delimited
// JSON-RPC 2.0 on stdin/stdout.
//
// A host declares its tools once, freezes them into a registry and hands
// the registry to a Dispatcher:
//
//	type echoInput struct {
//	    Message string `json:"message" jsonschema:"required"`
//	}
//
//	rb := server.NewRegistryBuilder()
//	rb.Tool("echo").
//	    Description("Echoes back the input text").
//	    Input(schema.MustFor[echoInput]()).
//	    Handler(server.Typed(func(ctx context.Context, in echoInput) server.Result {
//	        return server.Text("Echo: " + in.Message)
//	    }))
//	reg, err := rb.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := toolhost.NewDispatcher(toolhost.ServerInfo{Name: "echo-server", Version: "1.0.0"}, reg)
//	toolhost.ServeStdio(ctx, d)
//
// The dispatcher understands initialize, tools/list and tools/call. Every
// request line gets exactly one response line; failures are reported with
// the JSON-RPC codes -32700, -32601, -32602 and -32603 only.
package toolhost

import (
	"context"

	"github.com/felixgeelhaar/toolhost/transport"
)

// ServeStdio runs the session loop on stdin/stdout until stdin closes or
// ctx is canceled. Options override the streams and the logger.
func ServeStdio(ctx context.Context, d *Dispatcher, opts ...transport.StdioOption) error {
	return transport.NewStdio(opts...).Serve(ctx, d)
}
