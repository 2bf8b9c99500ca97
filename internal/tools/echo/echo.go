// Package echo provides the echo tool.
package echo

import (
	"context"

	"github.com/felixgeelhaar/toolhost/schema"
	"github.com/felixgeelhaar/toolhost/server"
)

// Server identity of the echo host.
const (
	ServerName    = "echo-server"
	ServerVersion = "1.0.0"
)

// Input is the argument shape of echo.
type Input struct {
	Message string `json:"message" jsonschema:"required,description=Message to echo back"`
}

// Register declares the echo tool on rb.
func Register(rb *server.RegistryBuilder) {
	rb.Tool("echo").
		Description("Echoes back the input text").
		Input(schema.MustFor[Input]()).
		Handler(server.Typed(Echo))
}

// Echo returns the message with a fixed prefix.
func Echo(_ context.Context, in Input) server.Result {
	return server.Text("Echo: " + in.Message)
}
