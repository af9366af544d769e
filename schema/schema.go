// Package schema provides JSON Schema generation from Go types.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reflector is configured for option and tool input schemas.
// DoNotReference inlines all definitions to avoid $ref.
var Reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// For reflects the schema of T.
// T should be a struct with json and jsonschema tags; fields without
// omitempty are marked required.
//
// Example:
//
//	type Options struct {
//	    Temperature float64 `json:"temperature,omitempty" jsonschema:"minimum=0,maximum=1,default=0.7"`
//	}
//
//	s := schema.For[Options]()
func For[T any]() *jsonschema.Schema {
	var zero T
	return Reflector.Reflect(&zero)
}

// Generate creates a JSON Schema document for T.
func Generate[T any]() (json.RawMessage, error) {
	return json.Marshal(For[T]())
}

// MustGenerate is like Generate but panics on error.
// Useful for package-level schema definitions.
func MustGenerate[T any]() json.RawMessage {
	schema, err := Generate[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
