package toolhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/protocol"
	"github.com/felixgeelhaar/toolhost/server"
)

// ServerInfo is the static identity reported by initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities is the fixed, empty capability object.
type Capabilities struct{}

// InitializeResult is the result of initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools []server.ToolInfo `json:"tools"`
}

// CallToolResult is the result of a successful tools/call.
type CallToolResult struct {
	Content []server.Content `json:"content"`
}

type methodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher maps each request to initialize, tools/list or tools/call and
// always produces exactly one response.
type Dispatcher struct {
	info     ServerInfo
	registry *server.Registry
	methods  map[string]methodFunc
	handler  middleware.HandlerFunc
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	middleware []middleware.Middleware
	logger     middleware.Logger
}

// WithMiddleware adds middleware around dispatch. It runs inside panic
// recovery, in the order given.
func WithMiddleware(m ...middleware.Middleware) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger sets the logger recovered panics are reported to.
func WithLogger(l middleware.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = l
	}
}

// NewDispatcher creates a dispatcher serving the tools of reg.
func NewDispatcher(info ServerInfo, reg *server.Registry, opts ...DispatcherOption) *Dispatcher {
	o := &dispatcherOptions{logger: middleware.NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}

	d := &Dispatcher{
		info:     info,
		registry: reg,
	}
	d.methods = map[string]methodFunc{
		protocol.MethodInitialize: d.initialize,
		protocol.MethodToolsList:  d.listTools,
		protocol.MethodToolsCall:  d.callTool,
	}

	chain := append([]middleware.Middleware{middleware.Recover(middleware.WithRecoverLogger(o.logger))}, o.middleware...)
	d.handler = middleware.Chain(chain...)(d.dispatch)

	return d
}

// Info returns the server identity.
func (d *Dispatcher) Info() ServerInfo {
	return d.info
}

// Registry returns the tools served by d.
func (d *Dispatcher) Registry() *server.Registry {
	return d.registry
}

// HandleRequest answers req. The returned error is always nil: every
// failure is folded into an error response carrying req's id.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	resp, err := d.handler(ctx, req)
	switch {
	case err != nil:
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err)), nil
	case resp == nil:
		return protocol.NewErrorResponse(req.ID, protocol.NewInternalError("no response")), nil
	}
	return resp, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	fn, ok := d.methods[req.Method]
	if !ok {
		return nil, protocol.NewMethodNotFound("Method not found: " + req.Method)
	}

	result, err := fn(ctx, req.Params)
	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result), nil
}

func (d *Dispatcher) initialize(context.Context, json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: protocol.MCPVersion,
		ServerInfo:      d.info,
	}, nil
}

func (d *Dispatcher) listTools(context.Context, json.RawMessage) (any, error) {
	return ToolsListResult{Tools: d.registry.List()}, nil
}

func (d *Dispatcher) callTool(ctx context.Context, params json.RawMessage) (any, error) {
	name, args, err := parseCallParams(params)
	if err != nil {
		return nil, err
	}

	tool, ok := d.registry.Lookup(name)
	if !ok {
		return nil, protocol.NewMethodNotFound("Tool not found")
	}
	middleware.SetSpanAttribute(ctx, middleware.AttrTool, name)

	res := server.Invoke(ctx, tool, args)
	if res.Failed() {
		return nil, toolFailure(res.Err())
	}
	return CallToolResult{Content: res.Content()}, nil
}

// parseCallParams extracts the tool name and argument bag of tools/call.
func parseCallParams(params json.RawMessage) (string, server.Arguments, error) {
	params = bytes.TrimSpace(params)
	if len(params) == 0 {
		return "", nil, protocol.NewInvalidParams("missing params")
	}
	if params[0] != '{' {
		return "", nil, protocol.NewInvalidParams("params must be an object")
	}

	var fields struct {
		Name      json.RawMessage `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &fields); err != nil {
		return "", nil, protocol.NewInvalidParams(fmt.Sprintf("invalid params: %v", err))
	}

	var name string
	raw := bytes.TrimSpace(fields.Name)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, protocol.NewInvalidParams("missing tool name")
	}
	if raw[0] != '"' || json.Unmarshal(raw, &name) != nil {
		return "", nil, protocol.NewInvalidParams("tool name must be a string")
	}

	args, err := server.ParseArguments(fields.Arguments)
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

// toolFailure keeps argument errors as invalid params and reports every
// other tool failure as an internal error with the tool's message.
func toolFailure(e *protocol.Error) *protocol.Error {
	if e.Code == protocol.CodeInvalidParams {
		return e
	}
	return &protocol.Error{Code: protocol.CodeInternalError, Message: e.Message, Data: e.Data}
}
