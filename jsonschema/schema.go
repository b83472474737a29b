package jsonschema

import (
	"bytes"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Schema is a typed JSON Schema document. It covers the keywords the built-in
// ledger schemas need; anything richer can be supplied as a map[string]any.
type Schema struct {
	// Core
	ID     string `json:"$id,omitempty"`
	Ref    string `json:"$ref,omitempty"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Enum   []any  `json:"enum,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// String
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items           *Schema `json:"items,omitempty"`
	AdditionalItems any     `json:"additionalItems,omitempty"`
	MinItems        *int    `json:"minItems,omitempty"`
	MaxItems        *int    `json:"maxItems,omitempty"`

	// Combinators
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
}

// Document converts s to its generic map form.
func (s *Schema) Document() (map[string]any, error) {
	return Document(s)
}

// Document normalizes a schema value into a freshly allocated
// map[string]any with numbers kept as json.Number. Accepted inputs are
// map[string]any, *Schema, Schema, json.RawMessage, []byte and string.
func Document(schema any) (map[string]any, error) {
	var raw []byte
	switch s := schema.(type) {
	case nil:
		return nil, errors.New("jsonschema: nil schema")
	case json.RawMessage:
		raw = s
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, errors.Wrap(err, "jsonschema: encoding schema")
		}
		raw = b
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "jsonschema: decoding schema")
	}
	if doc == nil {
		return nil, errors.New("jsonschema: schema must be a JSON object")
	}
	return doc, nil
}

// Float returns a pointer to f, for Minimum/Maximum.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n, for the length and item-count bounds.
func Int(n int) *int { return &n }
