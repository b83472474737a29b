package ledgerskema

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/reoring/ledgerskema/internal/registry"
	"github.com/reoring/ledgerskema/jsonschema"
)

// Result is the outcome of a single schema check.
type Result struct {
	// Value is the accepted, canonicalized input. It is nil unless the check
	// found no violations.
	Value any
	// Summary is the engine-formatted description of what went wrong.
	Summary string
	// Errors lists the structured violations. It is empty when Err is set.
	Errors []ValidationError
	// Err is set when the engine itself failed and no verdict was reached.
	Err error
}

// Valid reports whether the check passed.
func (r Result) Valid() bool { return r.Err == nil && len(r.Errors) == 0 }

// Validator checks block records against a composite schema that grows as
// transaction types are registered, tolerating violations whose block or
// transaction identifier is a known historical exception.
//
// A Validator is not safe for concurrent use: registration and validation
// must be serialized by the caller.
type Validator struct {
	oracle   ExceptionOracle
	opts     jsonschema.Options
	engine   *jsonschema.Engine
	registry *registry.Registry
	logger   *zap.Logger
	metrics  *Metrics
}

// New builds a Validator. oracle may be nil, in which case nothing is
// exempted.
//
// Schemas are evaluated as draft 2019-09 (draft-07 with WithExtendRefs(false)).
// "$data" references are not supported: a schema that puts
// {"$data": pointer} where a literal keyword value is expected fails to
// compile, and validation reports an engine failure.
func New(oracle ExceptionOracle, opts ...Option) (*Validator, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if oracle == nil {
		oracle = NoExceptions
	}
	if cfg.block == nil {
		cfg.block = DefaultBlockSchema()
	}

	v := &Validator{
		oracle:   oracle,
		opts:     cfg.engine,
		engine:   jsonschema.New(cfg.engine),
		registry: registry.New(cfg.block),
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}
	for name, f := range cfg.formats {
		v.engine.AddFormat(name, f)
	}
	for _, k := range cfg.keywords {
		if err := v.engine.AddKeyword(k.name, k.kw); err != nil {
			return nil, err
		}
	}
	for _, s := range cfg.schemas {
		if err := v.engine.AddSchema(s.schema, s.key); err != nil {
			return nil, errors.Wrapf(err, "adding schema %q", s.key)
		}
	}
	if err := v.registry.Rebuild(v.engine); err != nil {
		return nil, err
	}
	for _, def := range cfg.transactions {
		if err := v.ExtendTransaction(def, false); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Validate runs the strict pass: ref (a schema key or an inline schema)
// against data on the default engine.
func (v *Validator) Validate(ref, data any) Result {
	res, _ := check(v.engine, ref, data)
	return res
}

// ValidateException runs the tolerant pass. A fresh engine collecting every
// violation together with its offending value is built for the call, so the
// default engine's configuration is never disturbed.
func (v *Validator) ValidateException(ref, data any) Result {
	res, _ := v.validateException(ref, data)
	return res
}

func (v *Validator) validateException(ref, data any) (Result, any) {
	opts := v.opts
	opts.AllErrors = true
	opts.Verbose = true
	e := v.engine.Clone(opts)
	if err := v.registry.Apply(e); err != nil {
		return Result{Summary: err.Error(), Err: err}, nil
	}
	return check(e, ref, data)
}

// check runs e and also returns the canonical value, which ApplySchema needs
// even when the result carries violations.
func check(e *jsonschema.Engine, ref, data any) (Result, any) {
	value, errs, err := e.Check(ref, data)
	if err != nil {
		return Result{Summary: err.Error(), Err: err}, nil
	}
	if len(errs) > 0 {
		return Result{Summary: jsonschema.ErrorsText(errs), Errors: errs}, value
	}
	return Result{Value: value}, value
}
