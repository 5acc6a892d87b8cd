// Package jsonschema holds the subset of JSON Schema consumed by the record
// compiler, decoded with the key order of the source document preserved.
package jsonschema

import (
	"strconv"
	"strings"
)

// Type is the value of the "type" keyword.
type Type string

const (
	// TypeUnknown marks a node without a usable "type": the keyword is absent,
	// names a type outside the supported set, or lists several types.
	TypeUnknown Type = ""
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Known reports whether t is one of the six supported types.
func (t Type) Known() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Number is the literal text of a JSON number, kept verbatim so that bounds
// are emitted exactly as written in the schema.
type Number string

// Float64 parses the literal.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// IsInteger reports whether the literal has no fraction or exponent part.
func (n Number) IsInteger() bool {
	return n != "" && !strings.ContainsAny(string(n), ".eE")
}

func (n Number) String() string { return string(n) }

// Property is one named entry of "properties" or "definitions".
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is one node of a JSON Schema document. Pointer and slice fields are
// nil when the keyword is absent.
type Schema struct {
	Type Type
	// TypeLabel is the "type" keyword as written, for documentation. It is
	// empty when the keyword is absent and joins multiple types with ",".
	TypeLabel   string
	Title       string
	Description string

	// Object
	Properties    []Property
	HasProperties bool
	Required      []string

	// String
	Format    string
	MinLength *int
	MaxLength *int
	Pattern   *string

	// Numeric
	Minimum *Number
	Maximum *Number

	// Array
	Items    *Schema
	MinItems *int
	MaxItems *int

	// Enum values are string, json.Number, bool, nil or a nested decoded
	// document value.
	Enum []any

	// Union
	AnyOf []*Schema
	OneOf []*Schema

	// Definitions are the entries of the top-level "definitions" map.
	Definitions    []Property
	HasDefinitions bool

	raw any
}

// Property returns the property schema stored under name.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Definition returns the named entry of "definitions".
func (s *Schema) Definition(name string) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	for _, d := range s.Definitions {
		if d.Name == name {
			return d.Schema, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in "required".
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}
