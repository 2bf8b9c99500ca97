// Package calculator provides the four arithmetic tools.
package calculator

import (
	"context"
	"math"
	"strconv"

	"github.com/felixgeelhaar/toolhost/protocol"
	"github.com/felixgeelhaar/toolhost/schema"
	"github.com/felixgeelhaar/toolhost/server"
)

// Server identity of the calculator host.
const (
	ServerName    = "calculator-server"
	ServerVersion = "1.0.0"
)

// Operands is the argument shape of add, subtract and multiply.
type Operands struct {
	A float64 `json:"a" jsonschema:"required,description=First number"`
	B float64 `json:"b" jsonschema:"required,description=Second number"`
}

// Quotient documents the arguments of divide. It decodes into Operands.
type Quotient struct {
	A float64 `json:"a" jsonschema:"required,description=Numerator"`
	B float64 `json:"b" jsonschema:"required,description=Denominator"`
}

type operation struct {
	name        string
	description string
	input       *schema.Schema
	apply       func(a, b float64) server.Result
}

var (
	operandsSchema = schema.MustFor[Operands]()
	quotientSchema = schema.MustFor[Quotient]()
)

var operations = []operation{
	{"add", "Add two numbers", operandsSchema, func(a, b float64) server.Result { return result(a + b) }},
	{"subtract", "Subtract two numbers", operandsSchema, func(a, b float64) server.Result { return result(a - b) }},
	{"multiply", "Multiply two numbers", operandsSchema, func(a, b float64) server.Result { return result(a * b) }},
	{"divide", "Divide two numbers", quotientSchema, divide},
}

// Register declares add, subtract, multiply and divide on rb.
func Register(rb *server.RegistryBuilder) {
	for _, op := range operations {
		apply := op.apply
		rb.Tool(op.name).
			Description(op.description).
			Input(op.input).
			Handler(server.Typed(func(_ context.Context, o Operands) server.Result {
				return apply(o.A, o.B)
			}))
	}
}

func divide(a, b float64) server.Result {
	if b == 0 {
		return server.Failure(protocol.CodeInternalError, "Division by zero")
	}
	return result(a / b)
}

// FormatNumber renders n in its shortest decimal form: 5, 2.5, -0.125.
// Overflow renders as inf or -inf.
func FormatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func result(n float64) server.Result {
	return server.Text("Result: " + FormatNumber(n))
}
