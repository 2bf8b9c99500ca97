package schema

import (
	"encoding/json"
	"reflect"
	"testing"
)

type operands struct {
	A float64 `json:"a" jsonschema:"required,description=First number"`
	B float64 `json:"b" jsonschema:"required,description=Second number"`
}

type location struct {
	Latitude  float64 `json:"latitude" jsonschema:"required,minimum=-90,maximum=90,description=Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"required,minimum=-180,maximum=180"`
	Label     string  `json:"label,omitempty" jsonschema:"description=Free text, shown as is"`
	internal  int
	Skipped   string `json:"-"`
}

func TestGenerate(t *testing.T) {
	t.Run("maps Go kinds to JSON types", func(t *testing.T) {
		type Input struct {
			Name   string            `json:"name"`
			Count  int               `json:"count"`
			Price  float64           `json:"price"`
			Active bool              `json:"active"`
			Tags   []string          `json:"tags"`
			Meta   map[string]string `json:"meta"`
			Ptr    *string           `json:"ptr"`
			Any    any               `json:"any"`
		}

		s, err := Generate(Input{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[string]string{
			"name":   "string",
			"count":  "integer",
			"price":  "number",
			"active": "boolean",
			"tags":   "array",
			"meta":   "object",
			"ptr":    "string",
			"any":    "",
		}
		for name, typ := range want {
			prop, ok := s.Properties[name]
			if !ok {
				t.Errorf("missing property %q", name)
				continue
			}
			if prop.Type != typ {
				t.Errorf("%s.Type = %q, want %q", name, prop.Type, typ)
			}
		}
		if s.Properties["tags"].Items == nil || s.Properties["tags"].Items.Type != "string" {
			t.Errorf("tags.Items = %+v, want string items", s.Properties["tags"].Items)
		}
	})

	t.Run("handles nested structs", func(t *testing.T) {
		type Outer struct {
			Where location `json:"where"`
		}

		s, err := Generate(Outer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		where := s.Properties["where"]
		if where.Type != "object" {
			t.Errorf("where.Type = %q, want object", where.Type)
		}
		if len(where.Required) != 2 {
			t.Errorf("where.Required = %v, want 2 entries", where.Required)
		}
	})

	t.Run("rejects nil and unsupported kinds", func(t *testing.T) {
		if _, err := Generate(nil); err == nil {
			t.Error("expected error for nil")
		}
		type Bad struct {
			C chan int `json:"c"`
		}
		if _, err := Generate(Bad{}); err == nil {
			t.Error("expected error for channel field")
		}
	})
}

func TestFor(t *testing.T) {
	t.Run("required fields keep declaration order", func(t *testing.T) {
		s, err := For[operands]()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(s.Required, []string{"a", "b"}) {
			t.Errorf("Required = %v, want [a b]", s.Required)
		}
		if s.Properties["a"].Description != "First number" {
			t.Errorf("a.Description = %q", s.Properties["a"].Description)
		}
	})

	t.Run("parses bounds and trailing descriptions", func(t *testing.T) {
		s := MustFor[location]()

		lat := s.Properties["latitude"]
		if lat.Minimum == nil || *lat.Minimum != -90 {
			t.Errorf("latitude.Minimum = %v, want -90", lat.Minimum)
		}
		if lat.Maximum == nil || *lat.Maximum != 90 {
			t.Errorf("latitude.Maximum = %v, want 90", lat.Maximum)
		}
		if lat.Description != "Latitude of the location" {
			t.Errorf("latitude.Description = %q", lat.Description)
		}
		if got := s.Properties["label"].Description; got != "Free text, shown as is" {
			t.Errorf("label.Description = %q", got)
		}
		if _, ok := s.Properties["internal"]; ok {
			t.Error("unexported field should be skipped")
		}
		if _, ok := s.Properties["Skipped"]; ok {
			t.Error(`json:"-" field should be skipped`)
		}
	})

	t.Run("pointer type parameter", func(t *testing.T) {
		s, err := For[*operands]()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Type != "object" {
			t.Errorf("Type = %q, want object", s.Type)
		}
	})

	t.Run("bad tags are reported", func(t *testing.T) {
		type BadBound struct {
			N float64 `json:"n" jsonschema:"minimum=low"`
		}
		type Unknown struct {
			N float64 `json:"n" jsonschema:"format=email"`
		}
		if _, err := For[BadBound](); err == nil {
			t.Error("expected error for non-numeric minimum")
		}
		if _, err := For[Unknown](); err == nil {
			t.Error("expected error for unknown tag")
		}
	})

	t.Run("MustFor panics on error", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		type Bad struct {
			F func() `json:"f"`
		}
		MustFor[Bad]()
	})
}

func TestSchema_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(MustFor[operands]())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"type":"object","properties":{"a":{"type":"number","description":"First number"},"b":{"type":"number","description":"Second number"}},"required":["a","b"]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant      %s", data, want)
	}
}

func TestObject(t *testing.T) {
	data, err := json.Marshal(Object())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"type":"object"}` {
		t.Errorf("Marshal() = %s", data)
	}
}
