package ledgerskema

import (
	"go.uber.org/zap"

	"github.com/reoring/ledgerskema/jsonschema"
)

// AddFormat registers or replaces a string format on the default engine.
func (v *Validator) AddFormat(name string, f jsonschema.Format) {
	v.engine.AddFormat(name, f)
}

// AddKeyword registers a custom keyword on the default engine.
func (v *Validator) AddKeyword(name string, kw jsonschema.Keyword) error {
	return v.engine.AddKeyword(name, kw)
}

// RemoveKeyword drops a custom keyword from the default engine.
func (v *Validator) RemoveKeyword(name string) {
	v.engine.RemoveKeyword(name)
}

// AddSchema adds a named schema to the default engine. An empty key falls
// back to the schema's "$id".
func (v *Validator) AddSchema(schema any, key string) error {
	return v.engine.AddSchema(schema, key)
}

// RemoveSchema drops a named schema from the default engine and reports
// whether it was present.
func (v *Validator) RemoveSchema(key string) bool {
	return v.engine.RemoveSchema(key)
}

// ExtendTransaction registers def, replacing a previous registration of the
// same id, or deregisters def.ID when remove is set. The composite
// "transactions" and "block" schemas are rebuilt before it returns.
func (v *Validator) ExtendTransaction(def TransactionSchema, remove bool) error {
	if remove {
		if err := v.registry.Deregister(v.engine, def.ID); err != nil {
			return err
		}
		v.logger.Debug("transaction schema deregistered", zap.String("id", def.ID))
		return nil
	}
	return v.register(def, false)
}

// ExtendTransactionForce registers def after unconditionally dropping any
// schemas held under its three variant keys.
func (v *Validator) ExtendTransactionForce(def TransactionSchema) error {
	return v.register(def, true)
}

func (v *Validator) register(def TransactionSchema, force bool) error {
	if err := v.registry.Register(v.engine, def, force); err != nil {
		return err
	}
	v.logger.Debug("transaction schema registered",
		zap.String("id", def.ID), zap.Int("types", v.registry.Len()))
	return nil
}

// TransactionTypes returns the registered transaction type ids in the order
// the composite schema lists them.
func (v *Validator) TransactionTypes() []string {
	return v.registry.IDs()
}

// CompositeSchema returns the current composite "transactions" schema.
func (v *Validator) CompositeSchema() map[string]any {
	return v.registry.Composite()
}

// Schema returns a copy of the schema the default engine holds under key.
func (v *Validator) Schema(key string) (map[string]any, bool) {
	return v.engine.Schema(key)
}
