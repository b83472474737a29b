package ledgerskema

import (
	"github.com/pkg/errors"

	"github.com/reoring/ledgerskema/internal/registry"
	"github.com/reoring/ledgerskema/jsonschema"
)

// TransactionSchema describes one transaction type: its base schema plus the
// signed variant that the composite "transactions" schema references and the
// strict variant that additionally forbids unknown properties.
type TransactionSchema = registry.Definition

// NewTransactionSchema derives a TransactionSchema from a base object schema.
// The signed variant requires a non-empty "signature" string; the strict
// variant is the signed one with additionalProperties set to false.
func NewTransactionSchema(id string, base any) (TransactionSchema, error) {
	if id == "" {
		return TransactionSchema{}, errors.New("transaction schema needs an id")
	}
	baseDoc, err := jsonschema.Document(base)
	if err != nil {
		return TransactionSchema{}, errors.Wrapf(err, "transaction schema %q", id)
	}
	baseDoc["$id"] = id

	signed, _ := jsonschema.Document(baseDoc)
	signed["$id"] = id + registry.SignedSuffix
	props, _ := signed["properties"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
		signed["properties"] = props
	}
	if _, ok := props["signature"]; !ok {
		props["signature"] = map[string]any{"type": "string", "minLength": 1}
	}
	signed["required"] = appendRequired(signed["required"], "signature")

	strict, _ := jsonschema.Document(signed)
	strict["$id"] = id + registry.StrictSuffix
	strict["additionalProperties"] = false

	return TransactionSchema{ID: id, Base: baseDoc, Signed: signed, Strict: strict}, nil
}

func appendRequired(raw any, name string) []any {
	req, _ := raw.([]any)
	for _, r := range req {
		if r == name {
			return req
		}
	}
	return append(req, name)
}

// DefaultBlockSchema is the "block" schema used unless WithBlockSchema
// overrides it: an object with a positive integer height and the composite
// transaction list.
func DefaultBlockSchema() map[string]any {
	s := &jsonschema.Schema{
		ID:       registry.BlockKey,
		Type:     "object",
		Required: []string{"height", "transactions"},
		Properties: map[string]*jsonschema.Schema{
			"id":            {Type: "string", MinLength: jsonschema.Int(1)},
			"height":        {Type: "integer", Minimum: jsonschema.Float(1)},
			"previousBlock": {Type: "string"},
			"transactions":  {Ref: registry.TransactionsKey},
		},
	}
	doc, err := s.Document()
	if err != nil {
		panic(err)
	}
	return doc
}
