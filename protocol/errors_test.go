package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "simple error message",
			err:  &Error{Code: CodeInternalError, Message: "something went wrong"},
			want: "jsonrpc: something went wrong (code: -32603)",
		},
		{
			name: "parse error",
			err:  &Error{Code: CodeParseError, Message: "invalid JSON"},
			want: "jsonrpc: invalid JSON (code: -32700)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err1 := NewInternalError("test")
	err2 := NewInternalError("different message")
	err3 := NewInvalidParams("test")

	if !errors.Is(err1, err2) {
		t.Error("errors with same code should match with errors.Is")
	}

	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match with errors.Is")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
	}{
		{"parse error", NewParseError("invalid JSON"), CodeParseError},
		{"method not found", NewMethodNotFound("unknown/method"), CodeMethodNotFound},
		{"invalid params", NewInvalidParams("missing required field"), CodeInvalidParams},
		{"internal error", NewInternalError("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
			if !KnownCode(tt.err.Code) {
				t.Errorf("KnownCode(%d) = false, want true", tt.err.Code)
			}
		})
	}
}

func TestKnownCode_RejectsOtherCodes(t *testing.T) {
	for _, code := range []int{0, -32600, -32000, -32001, 1} {
		if KnownCode(code) {
			t.Errorf("KnownCode(%d) = true, want false", code)
		}
	}
}

func TestAsError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if got := AsError(nil); got != nil {
			t.Errorf("AsError(nil) = %v, want nil", got)
		}
	})

	t.Run("protocol error passes through", func(t *testing.T) {
		in := NewInvalidParams("bad a")
		if got := AsError(in); got != in {
			t.Errorf("AsError() = %v, want the same error", got)
		}
	})

	t.Run("wrapped protocol error is unwrapped", func(t *testing.T) {
		in := NewMethodNotFound("Tool not found")
		got := AsError(fmt.Errorf("dispatch: %w", in))
		if got != in {
			t.Errorf("AsError() = %v, want %v", got, in)
		}
	})

	t.Run("unknown code becomes internal error", func(t *testing.T) {
		got := AsError(&Error{Code: -32003, Message: "rate limited"})
		if got.Code != CodeInternalError {
			t.Errorf("Code = %d, want %d", got.Code, CodeInternalError)
		}
		if got.Message != "rate limited" {
			t.Errorf("Message = %q, want %q", got.Message, "rate limited")
		}
	})

	t.Run("plain error becomes internal error", func(t *testing.T) {
		got := AsError(errors.New("disk on fire"))
		if got.Code != CodeInternalError {
			t.Errorf("Code = %d, want %d", got.Code, CodeInternalError)
		}
		if got.Message != "disk on fire" {
			t.Errorf("Message = %q, want %q", got.Message, "disk on fire")
		}
	})
}

func TestError_WithData(t *testing.T) {
	data := map[string]string{"field": "query", "reason": "required"}
	err := NewInvalidParams("validation failed").WithData(data)

	if err.Data == nil {
		t.Fatal("Data should not be nil")
	}

	dataMap, ok := err.Data.(map[string]string)
	if !ok {
		t.Fatalf("Data type = %T, want map[string]string", err.Data)
	}

	if dataMap["field"] != "query" {
		t.Errorf("Data[field] = %q, want %q", dataMap["field"], "query")
	}
}
