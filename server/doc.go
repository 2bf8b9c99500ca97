// Package server holds the tool registry and the tool invoker.
//
// # Registry
//
// Tools are declared once at process start with the fluent builder and then
// frozen into an immutable Registry:
//
//	type echoInput struct {
//	    Message string `json:"message" jsonschema:"required,description=Text to echo"`
//	}
//
//	rb := server.NewRegistryBuilder()
//	rb.Tool("echo").
//	    Description("Echoes back the input text").
//	    Input(schema.MustFor[echoInput]()).
//	    Handler(server.Typed(func(ctx context.Context, in echoInput) server.Result {
//	        return server.Text("Echo: " + in.Message)
//	    }))
//
//	reg, err := rb.Build()
//
// Registry.List returns descriptors in declaration order; Registry.Lookup
// and Registry.Call resolve tools by name.
//
// # Results
//
// Every handler returns a Result, which is either a Success carrying text
// content blocks or a Failure carrying a JSON-RPC error code and message:
//
//	if b == 0 {
//	    return server.Failure(protocol.CodeInternalError, "Division by zero")
//	}
//	return server.Textf("Result: %v", a/b)
//
// # Invocation
//
// Invoke validates arguments against the tool's input schema (reporting
// violations as invalid params) and recovers handler panics as internal
// error Failures.
package server
