package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// JSON Schema type names.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// ValidationError is one violation. Path is the dotted location of the
// offending argument, e.g. "location.city" or "tags[2]".
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors lists every violation found in one value.
type ValidationErrors []*ValidationError

// Error joins the violations with "; " so they fit a single response message.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate decodes data and validates the result.
func (s *Schema) Validate(data json.RawMessage) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return s.ValidateValue(value)
}

// ValidateValue validates a value as produced by encoding/json decoding
// into any: map[string]any, []any, string, float64, bool or nil.
func (s *Schema) ValidateValue(value any) error {
	var c checker
	c.check(s, "", value)
	if len(c.errs) > 0 {
		return c.errs
	}
	return nil
}

type checker struct {
	errs ValidationErrors
}

func (c *checker) fail(path, format string, args ...any) {
	c.errs = append(c.errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// check validates value at path. A null value passes; whether it was
// allowed is decided by the enclosing object's required list.
func (c *checker) check(s *Schema, path string, value any) {
	if value == nil || s.Type == "" {
		return
	}

	if got := kind(value); !accepts(s.Type, got) {
		c.fail(path, "expected %s, got %s", s.Type, got)
		return
	}

	switch v := value.(type) {
	case map[string]any:
		c.checkObject(s, path, v)
	case []any:
		if s.Items != nil {
			for i, item := range v {
				c.check(s.Items, fmt.Sprintf("%s[%d]", path, i), item)
			}
		}
	case string:
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, any(v)) {
			c.fail(path, "value must be one of: %v", s.Enum)
		}
	case float64:
		c.checkNumber(s, path, v)
	}
}

func (c *checker) checkObject(s *Schema, path string, obj map[string]any) {
	for _, name := range s.Required {
		if obj[name] == nil {
			c.fail(join(path, name), "required field is missing")
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if v, ok := obj[name]; ok {
			c.check(s.Properties[name], join(path, name), v)
		}
	}
}

func (c *checker) checkNumber(s *Schema, path string, n float64) {
	if s.Type == typeInteger && n != math.Trunc(n) {
		c.fail(path, "expected integer, got decimal number")
		return
	}
	if s.Minimum != nil && n < *s.Minimum {
		c.fail(path, "value %v is less than minimum %v", n, *s.Minimum)
	}
	if s.Maximum != nil && n > *s.Maximum {
		c.fail(path, "value %v is greater than maximum %v", n, *s.Maximum)
	}
}

// kind names the JSON type of a decoded value.
func kind(v any) string {
	switch v.(type) {
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	case string:
		return typeString
	case float64:
		return typeNumber
	case bool:
		return typeBoolean
	default:
		return fmt.Sprintf("%T", v)
	}
}

func accepts(schemaType, got string) bool {
	if schemaType == typeInteger {
		return got == typeNumber
	}
	return schemaType == got
}

func join(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
