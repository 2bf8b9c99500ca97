// Package protocol implements the JSON-RPC 2.0 layer of the tool host.
package protocol

import (
	"errors"
	"fmt"
)

// JSON-RPC 2.0 error codes answered by the tool host. The set is closed:
// every failure is reported with one of these four codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of the error with additional data attached.
func (e *Error) WithData(data any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Data:    data,
	}
}

// KnownCode reports whether code belongs to the closed error code set.
func KnownCode(code int) bool {
	switch code {
	case CodeParseError, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return true
	default:
		return false
	}
}

// AsError folds any error into a protocol error.
// Protocol errors with a known code pass through unchanged, everything
// else becomes an internal error carrying the original message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		if KnownCode(rpcErr.Code) {
			return rpcErr
		}
		return &Error{Code: CodeInternalError, Message: rpcErr.Message, Data: rpcErr.Data}
	}
	return NewInternalError(err.Error())
}

// NewParseError creates a parse error (-32700).
func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(msg string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: msg}
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}
