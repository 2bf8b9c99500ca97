// Package schema describes tool input shapes as JSON Schema and validates
// argument bags against them.
package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema represents a JSON Schema.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Description string             `json:"description,omitempty"`
	Default     any                `json:"default,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Object returns an empty object schema, the input shape of a tool that
// takes no arguments.
func Object() *Schema {
	return &Schema{Type: typeObject, Properties: map[string]*Schema{}}
}

// Generate creates a JSON Schema from a Go value.
func Generate(v any) (*Schema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("schema: cannot generate from nil")
	}
	return generateFromType(t)
}

// GenerateFromType creates a JSON Schema from a reflect.Type.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	return generateFromType(t)
}

// For creates the JSON Schema of T.
func For[T any]() (*Schema, error) {
	return generateFromType(reflect.TypeOf((*T)(nil)).Elem())
}

// MustFor is like For but panics on error. It is meant for package-level
// tool declarations whose input types are fixed at compile time.
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func generateFromType(t reflect.Type) (*Schema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return generateStructSchema(t)
	case reflect.String:
		return &Schema{Type: typeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: typeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: typeNumber}, nil
	case reflect.Bool:
		return &Schema{Type: typeBoolean}, nil
	case reflect.Slice, reflect.Array:
		return generateArraySchema(t)
	case reflect.Map:
		return &Schema{Type: typeObject}, nil
	case reflect.Interface:
		return &Schema{}, nil
	default:
		return nil, fmt.Errorf("schema: unsupported kind %s", t.Kind())
	}
}

func generateStructSchema(t reflect.Type) (*Schema, error) {
	schema := &Schema{
		Type:       typeObject,
		Properties: make(map[string]*Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
			fieldName = name
		}

		fieldSchema, err := generateFromType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if err := parseJSONSchemaTag(field.Tag.Get("jsonschema"), fieldSchema, &schema.Required, fieldName); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		schema.Properties[fieldName] = fieldSchema
	}

	return schema, nil
}

func generateArraySchema(t reflect.Type) (*Schema, error) {
	itemSchema, err := generateFromType(t.Elem())
	if err != nil {
		return nil, err
	}

	return &Schema{
		Type:  typeArray,
		Items: itemSchema,
	}, nil
}

// parseJSONSchemaTag applies a `jsonschema:"..."` tag. Recognized parts are
// required, description=..., minimum=... and maximum=... . The description
// runs to the end of the tag so it may contain commas.
func parseJSONSchemaTag(tag string, schema *Schema, required *[]string, fieldName string) error {
	for tag != "" {
		var part string
		if strings.HasPrefix(strings.TrimSpace(tag), "description=") {
			part, tag = strings.TrimSpace(tag), ""
		} else {
			part, tag, _ = strings.Cut(tag, ",")
			part = strings.TrimSpace(part)
		}

		key, value, _ := strings.Cut(part, "=")
		switch key {
		case "":
		case "required":
			*required = append(*required, fieldName)
		case "description":
			schema.Description = value
		case "minimum", "maximum":
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q", key, value)
			}
			if key == "minimum" {
				schema.Minimum = &n
			} else {
				schema.Maximum = &n
			}
		default:
			return fmt.Errorf("unknown jsonschema tag %q", key)
		}
	}
	return nil
}
