package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/toolhost/schema"
)

// RegistryBuilder collects tool declarations at process start.
type RegistryBuilder struct {
	tools []*Tool
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// Tool starts declaring a tool with the given name.
// Tools are listed in the order they are declared.
func (b *RegistryBuilder) Tool(name string) *ToolBuilder {
	t := &Tool{name: name}
	b.tools = append(b.tools, t)
	return &ToolBuilder{tool: t}
}

// Build validates the declarations and freezes them into a Registry.
// Empty names, duplicate names and missing handlers are reported together.
func (b *RegistryBuilder) Build() (*Registry, error) {
	r := &Registry{
		tools: make([]*Tool, 0, len(b.tools)),
		index: make(map[string]*Tool, len(b.tools)),
	}

	var errs []error
	for i, t := range b.tools {
		switch {
		case t.name == "":
			errs = append(errs, fmt.Errorf("tool #%d: empty name", i))
			continue
		case t.handler == nil:
			errs = append(errs, fmt.Errorf("tool %q: no handler", t.name))
			continue
		}
		if _, dup := r.index[t.name]; dup {
			errs = append(errs, fmt.Errorf("tool %q: registered twice", t.name))
			continue
		}

		frozen := *t
		if frozen.inputSchema == nil {
			frozen.inputSchema = schema.Object()
		}
		r.tools = append(r.tools, &frozen)
		r.index[frozen.name] = &frozen
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("build registry: %w", errors.Join(errs...))
	}
	return r, nil
}

// Registry is the immutable collection of tools known to a server.
// It is safe for concurrent reads and has no mutators.
type Registry struct {
	tools []*Tool
	index map[string]*Tool
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// List returns the descriptors of every tool in registration order.
func (r *Registry) List() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		infos = append(infos, t.Info())
	}
	return infos
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Call looks up name and invokes it with args.
// The boolean is false when no such tool exists.
func (r *Registry) Call(ctx context.Context, name string, args Arguments) (Result, bool) {
	t, ok := r.Lookup(name)
	if !ok {
		return Result{}, false
	}
	return Invoke(ctx, t, args), true
}
