package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// Arguments is the argument bag of a tools/call request. Values are the
// decoded JSON kinds: float64, string, bool, map[string]any, []any or nil.
type Arguments map[string]any

// ParseArguments decodes a raw arguments value. An absent or null value
// yields an empty bag; anything but a JSON object is an invalid params error.
func ParseArguments(raw json.RawMessage) (Arguments, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Arguments{}, nil
	}
	if raw[0] != '{' {
		return nil, protocol.NewInvalidParams("arguments must be an object")
	}

	var args Arguments
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("invalid arguments: %v", err))
	}
	return args, nil
}

// Has reports whether key is present and not null.
func (a Arguments) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Number returns the numeric argument key.
func (a Arguments) Number(key string) (float64, error) {
	v, err := a.require(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, mistyped(key, "a number", v)
	}
	return n, nil
}

// String returns the string argument key.
func (a Arguments) String(key string) (string, error) {
	v, err := a.require(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mistyped(key, "a string", v)
	}
	return s, nil
}

// Bool returns the boolean argument key.
func (a Arguments) Bool(key string) (bool, error) {
	v, err := a.require(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, mistyped(key, "a boolean", v)
	}
	return b, nil
}

// Object returns the nested mapping argument key.
func (a Arguments) Object(key string) (Arguments, error) {
	v, err := a.require(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mistyped(key, "an object", v)
	}
	return Arguments(m), nil
}

// Decode stores the arguments in the struct pointed to by v.
func (a Arguments) Decode(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (a Arguments) require(key string) (any, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("missing required argument %q", key))
	}
	return v, nil
}

func mistyped(key, want string, got any) error {
	return protocol.NewInvalidParams(fmt.Sprintf("argument %q must be %s, got %s", key, want, jsonKind(got)))
}

func jsonKind(v any) string {
	switch v.(type) {
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
