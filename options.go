package ledgerskema

import (
	"go.uber.org/zap"

	"github.com/reoring/ledgerskema/jsonschema"
)

// Option configures a Validator.
type Option func(*config)

type config struct {
	engine       jsonschema.Options
	block        map[string]any
	schemas      []keyedSchema
	formats      map[string]jsonschema.Format
	keywords     []namedKeyword
	transactions []TransactionSchema
	logger       *zap.Logger
	metrics      *Metrics
}

type keyedSchema struct {
	key    string
	schema any
}

type namedKeyword struct {
	name string
	kw   jsonschema.Keyword
}

// defaultConfig strips unknown properties and applies keywords next to $ref,
// which is what historical block data was produced against.
func defaultConfig() *config {
	return &config{
		engine: jsonschema.Options{
			RemoveAdditional: true,
			ExtendRefs:       true,
		},
		formats: make(map[string]jsonschema.Format),
		logger:  zap.NewNop(),
	}
}

// WithRemoveAdditional toggles stripping of properties forbidden by
// additionalProperties: false.
func WithRemoveAdditional(enabled bool) Option {
	return func(c *config) { c.engine.RemoveAdditional = enabled }
}

// WithExtendRefs toggles evaluation of keywords placed next to "$ref".
func WithExtendRefs(enabled bool) Option {
	return func(c *config) { c.engine.ExtendRefs = enabled }
}

// WithBlockSchema replaces DefaultBlockSchema. The schema should reference
// "transactions" for its transaction list.
func WithBlockSchema(schema map[string]any) Option {
	return func(c *config) { c.block = schema }
}

// WithSchema adds a named schema to the default engine at construction. An
// empty key falls back to the schema's "$id".
func WithSchema(key string, schema any) Option {
	return func(c *config) { c.schemas = append(c.schemas, keyedSchema{key: key, schema: schema}) }
}

// WithFormat registers a format at construction.
func WithFormat(name string, f jsonschema.Format) Option {
	return func(c *config) { c.formats[name] = f }
}

// WithKeyword registers a custom keyword at construction.
func WithKeyword(name string, kw jsonschema.Keyword) Option {
	return func(c *config) { c.keywords = append(c.keywords, namedKeyword{name: name, kw: kw}) }
}

// WithTransactionSchemas registers transaction types at construction, in
// order.
func WithTransactionSchemas(defs ...TransactionSchema) Option {
	return func(c *config) { c.transactions = append(c.transactions, defs...) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables the outcome counters.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}
