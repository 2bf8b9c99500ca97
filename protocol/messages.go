package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONRPCVersion is the JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

var jsonNull = []byte("null")

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// UnmarshalJSON decodes a request, rejecting documents that are not
// JSON objects, a non-string method, or an id that is not a string,
// number or null. An explicit null id or null params decode as absent.
func (r *Request) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("request must be a JSON object")
	}

	var wire struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return err
	}

	id := normalizeNull(wire.ID)
	if len(id) > 0 {
		switch c := id[0]; {
		case c == '"', c == '-', c >= '0' && c <= '9':
		default:
			return fmt.Errorf("invalid request id %s", id)
		}
	}

	r.JSONRPC = wire.JSONRPC
	r.ID = id
	r.Method = wire.Method
	r.Params = normalizeNull(wire.Params)
	return nil
}

// IsNotification returns true if this request has no ID (is a notification).
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

func normalizeNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil
	}
	return raw
}

// Response represents a JSON-RPC 2.0 response.
// ID is always serialized; an absent id is written as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a successful response.
func NewResponse(id json.RawMessage, result any) *Response {
	if result == nil {
		result = struct{}{}
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      normalizeNull(id),
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	if err == nil {
		err = NewInternalError("unknown error")
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      normalizeNull(id),
		Error:   err,
	}
}
