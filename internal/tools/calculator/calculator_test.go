package calculator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/toolhost/protocol"
	"github.com/felixgeelhaar/toolhost/server"
)

func registry(t *testing.T) *server.Registry {
	t.Helper()
	rb := server.NewRegistryBuilder()
	Register(rb)
	reg, err := rb.Build()
	require.NoError(t, err)
	return reg
}

func TestRegister(t *testing.T) {
	infos := registry(t).List()

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
		assert.Equal(t, []string{"a", "b"}, info.InputSchema.Required, info.Name)
		assert.Equal(t, "number", info.InputSchema.Properties["a"].Type, info.Name)
	}
	assert.Equal(t, []string{"add", "subtract", "multiply", "divide"}, names)
}

func TestOperandDescriptions(t *testing.T) {
	for _, info := range registry(t).List() {
		a, b := "First number", "Second number"
		if info.Name == "divide" {
			a, b = "Numerator", "Denominator"
		}
		assert.Equal(t, a, info.InputSchema.Properties["a"].Description, info.Name)
		assert.Equal(t, b, info.InputSchema.Properties["b"].Description, info.Name)
	}
}

func TestOperations(t *testing.T) {
	reg := registry(t)

	tests := []struct {
		tool string
		a, b float64
		want string
	}{
		{"add", 2, 3, "Result: 5"},
		{"add", 0.1, 0.2, "Result: 0.30000000000000004"},
		{"subtract", 2, 5, "Result: -3"},
		{"multiply", 1.5, 4, "Result: 6"},
		{"divide", 10, 4, "Result: 2.5"},
		{"divide", 1, 8, "Result: 0.125"},
		{"divide", 0, 5, "Result: 0"},
		{"multiply", 1e308, 10, "Result: inf"},
		{"subtract", -1e308, 1e308, "Result: -inf"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			res, ok := reg.Call(context.Background(), tt.tool, server.Arguments{"a": tt.a, "b": tt.b})
			require.True(t, ok)
			require.False(t, res.Failed(), "unexpected failure: %v", res.Err())
			assert.Equal(t, tt.want, res.Content()[0].Text)
		})
	}
}

func TestDivideByZero(t *testing.T) {
	res, _ := registry(t).Call(context.Background(), "divide", server.Arguments{"a": 10.0, "b": 0.0})

	require.True(t, res.Failed())
	assert.Equal(t, protocol.CodeInternalError, res.Err().Code)
	assert.Equal(t, "Division by zero", res.Err().Message)
}

func TestInvalidOperands(t *testing.T) {
	reg := registry(t)

	for name, args := range map[string]server.Arguments{
		"missing b":     {"a": 1.0},
		"string a":      {"a": "1", "b": 2.0},
		"boolean b":     {"a": 1.0, "b": true},
		"null a":        {"a": nil, "b": 2.0},
		"no arguments":  {},
		"nested object": {"a": map[string]any{"v": 1.0}, "b": 2.0},
	} {
		t.Run(name, func(t *testing.T) {
			res, _ := reg.Call(context.Background(), "add", args)
			require.True(t, res.Failed())
			assert.Equal(t, protocol.CodeInvalidParams, res.Err().Code)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "-2.75", FormatNumber(-2.75))
	assert.Equal(t, "1000000000000000000000", FormatNumber(1e21))
	assert.Equal(t, "inf", FormatNumber(math.Inf(1)))
	assert.Equal(t, "-inf", FormatNumber(math.Inf(-1)))
	assert.Equal(t, "nan", FormatNumber(math.NaN()))
}
