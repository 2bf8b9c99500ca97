// Package schema derives JSON Schema documents from Go structs and
// validates tool arguments against them.
//
// Tool input shapes are declared as plain structs:
//
//	type operands struct {
//	    A float64 `json:"a" jsonschema:"required,description=First number"`
//	    B float64 `json:"b" jsonschema:"required,description=Second number"`
//	}
//
//	s := schema.MustFor[operands]()
//
// which renders on tools/list as
//
//	{"type":"object","properties":{"a":{...},"b":{...}},"required":["a","b"]}
//
// # Struct Tags
//
// The jsonschema tag accepts comma separated parts:
//
//	required            the field must be present and non-null
//	minimum=<number>    inclusive lower bound for numbers
//	maximum=<number>    inclusive upper bound for numbers
//	description=<text>  free text; must come last, may contain commas
//
// # Validation
//
// Validate and ValidateValue report every violation as a ValidationErrors
// value whose message lists them on a single line, sorted by property.
package schema
