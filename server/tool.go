package server

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/toolhost/schema"
)

// HandlerFunc computes a tool's outcome from its argument bag.
// Handlers report failures through the returned Result, never by panicking.
type HandlerFunc func(ctx context.Context, args Arguments) Result

// Tool is a named, schema-described unit of callable functionality.
type Tool struct {
	name        string
	description string
	inputSchema *schema.Schema
	handler     HandlerFunc
}

// ToolInfo is the descriptor of a tool as returned by tools/list.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema *schema.Schema `json:"inputSchema"`
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the human readable description.
func (t *Tool) Description() string { return t.description }

// InputSchema returns the schema arguments are validated against.
func (t *Tool) InputSchema() *schema.Schema { return t.inputSchema }

// Info returns the tool descriptor.
func (t *Tool) Info() ToolInfo {
	return ToolInfo{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema,
	}
}

// ToolBuilder provides a fluent API for declaring a tool.
type ToolBuilder struct {
	tool *Tool
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	b.tool.description = desc
	return b
}

// Input sets the schema the tool's arguments must satisfy.
// Tools without an input schema accept any object.
func (b *ToolBuilder) Input(s *schema.Schema) *ToolBuilder {
	b.tool.inputSchema = s
	return b
}

// Handler sets the function invoked on tools/call.
func (b *ToolBuilder) Handler(fn HandlerFunc) *ToolBuilder {
	b.tool.handler = fn
	return b
}

// Typed adapts a handler taking a decoded struct to a HandlerFunc.
// Pair it with schema.MustFor[T] so arguments are validated before decoding:
//
//	rb.Tool("echo").
//	    Input(schema.MustFor[echoInput]()).
//	    Handler(server.Typed(echo))
func Typed[T any](fn func(ctx context.Context, input T) Result) HandlerFunc {
	return func(ctx context.Context, args Arguments) Result {
		var input T
		if err := args.Decode(&input); err != nil {
			return InvalidParams(fmt.Sprintf("failed to parse input: %v", err))
		}
		return fn(ctx, input)
	}
}
