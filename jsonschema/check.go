package jsonschema

import (
	"strings"

	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

const checkURL = "recordgen://input.json"

// Check validates the document against the JSON Schema meta-schema (draft 7
// unless the document declares "$schema"). It catches malformed keywords the
// record compiler would otherwise ignore, such as a string-valued "minimum".
func Check(s *Schema) error {
	_, err := Compile(s)
	return err
}

// Compile compiles the document with a full JSON Schema validator. The
// result validates instances decoded with encoding/json (maps, slices,
// float64 or json.Number).
func Compile(s *Schema) (*sjs.Schema, error) {
	c := sjs.NewCompiler()
	c.Draft = sjs.Draft7
	if err := c.AddResource(checkURL, strings.NewReader(s.Canonical())); err != nil {
		return nil, err
	}
	return c.Compile(checkURL)
}
