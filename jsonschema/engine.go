package jsonschema

import (
	"bytes"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"
)

// baseURL roots every named schema so that a bare "$ref": "transferSigned"
// resolves against its siblings.
const baseURL = "mem://ledgerskema/"

const inlineURL = baseURL + ".inline"

// Options configures an Engine.
type Options struct {
	// RemoveAdditional drops object properties that a schema declares
	// additionalProperties: false for, instead of reporting them.
	RemoveAdditional bool
	// ExtendRefs applies keywords that sit next to "$ref" (draft 2019-09).
	// When false, draft-07 rules apply and "$ref" siblings are ignored.
	ExtendRefs bool
	// AllErrors reports every violation instead of the first one.
	AllErrors bool
	// Verbose attaches the offending instance value to every Error.
	Verbose bool
}

// Format validates values carrying a "format" keyword. Values of a type the
// format does not apply to should be accepted.
type Format func(v any) bool

// Keyword is a custom validation keyword. schemaValue is the keyword's value
// in the schema document, with numbers as json.Number.
type Keyword interface {
	Validate(schemaValue, data any) error
}

// KeywordFunc adapts a function to Keyword.
type KeywordFunc func(schemaValue, data any) error

func (f KeywordFunc) Validate(schemaValue, data any) error { return f(schemaValue, data) }

// Engine evaluates named or inline schemas against decoded JSON values.
// Named schemas, formats and keywords can be added and removed at any time;
// compilation is lazy and the compiled set is dropped on every change.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts     Options
	schemas  map[string]map[string]any
	formats  map[string]Format
	keywords map[string]Keyword

	compiler *jsv.Compiler
	compiled map[string]*jsv.Schema
}

// New returns an empty Engine.
func New(opts Options) *Engine {
	return &Engine{
		opts:     opts,
		schemas:  make(map[string]map[string]any),
		formats:  make(map[string]Format),
		keywords: make(map[string]Keyword),
		compiled: make(map[string]*jsv.Schema),
	}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Clone returns an independent Engine with the same schemas, formats and
// keywords but configured with opts.
func (e *Engine) Clone(opts Options) *Engine {
	c := New(opts)
	for k, v := range e.schemas {
		c.schemas[k] = v
	}
	for k, v := range e.formats {
		c.formats[k] = v
	}
	for k, v := range e.keywords {
		c.keywords[k] = v
	}
	return c
}

// AddSchema registers schema under key. An empty key falls back to the
// schema's "$id". Adding a key that is already present is an error.
func (e *Engine) AddSchema(schema any, key string) error {
	doc, err := Document(schema)
	if err != nil {
		return err
	}
	if key == "" {
		key, _ = doc["$id"].(string)
	}
	if key == "" {
		return errors.New("jsonschema: schema has neither a key nor an $id")
	}
	if _, dup := e.schemas[key]; dup {
		return errors.Errorf("jsonschema: schema with key or id %q already exists", key)
	}
	e.schemas[key] = doc
	e.invalidate()
	return nil
}

// RemoveSchema drops the schema registered under key and reports whether it
// was present.
func (e *Engine) RemoveSchema(key string) bool {
	if _, ok := e.schemas[key]; !ok {
		return false
	}
	delete(e.schemas, key)
	e.invalidate()
	return true
}

// HasSchema reports whether key is registered.
func (e *Engine) HasSchema(key string) bool {
	_, ok := e.schemas[key]
	return ok
}

// Schema returns a copy of the document registered under key.
func (e *Engine) Schema(key string) (map[string]any, bool) {
	doc, ok := e.schemas[key]
	if !ok {
		return nil, false
	}
	c, _ := cloneValue(doc).(map[string]any)
	return c, true
}

// Keys returns the registered schema keys in sorted order.
func (e *Engine) Keys() []string {
	keys := make([]string, 0, len(e.schemas))
	for k := range e.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddFormat registers or replaces a format.
func (e *Engine) AddFormat(name string, f Format) {
	e.formats[name] = f
	e.invalidate()
}

// AddKeyword registers a custom keyword. Standard keywords and names that are
// already registered are rejected.
func (e *Engine) AddKeyword(name string, kw Keyword) error {
	if name == "" || kw == nil {
		return errors.New("jsonschema: keyword needs a name and an implementation")
	}
	if _, std := standardKeywords[name]; std {
		return errors.Errorf("jsonschema: %q is a standard keyword", name)
	}
	if _, dup := e.keywords[name]; dup {
		return errors.Errorf("jsonschema: keyword %q is already defined", name)
	}
	e.keywords[name] = kw
	e.invalidate()
	return nil
}

// RemoveKeyword drops a custom keyword.
func (e *Engine) RemoveKeyword(name string) {
	if _, ok := e.keywords[name]; !ok {
		return
	}
	delete(e.keywords, name)
	e.invalidate()
}

// Check validates data against ref, which is either the key of a registered
// schema or an inline schema (anything Document accepts). A string that is
// not a registered key and holds a JSON object is compiled as an inline
// schema.
//
// It returns the canonical value, which is a copy of data with additional
// properties stripped when RemoveAdditional is set, and the violations found.
// A non-nil error means the engine itself failed (unknown key, unresolvable
// $ref, malformed schema) and no verdict was reached.
func (e *Engine) Check(ref, data any) (any, []Error, error) {
	sch, doc, err := e.compile(ref)
	if err != nil {
		return nil, nil, err
	}
	value := data
	if e.opts.RemoveAdditional {
		value = cloneValue(data)
		e.strip(doc, value, 0)
	}
	if err := sch.Validate(value); err != nil {
		var ve *jsv.ValidationError
		if !errors.As(err, &ve) {
			return nil, nil, errors.Wrap(err, "jsonschema: validating")
		}
		return value, e.collect(ve, value), nil
	}
	return value, nil, nil
}

func (e *Engine) invalidate() {
	e.compiler = nil
	if len(e.compiled) > 0 {
		e.compiled = make(map[string]*jsv.Schema)
	}
}

func (e *Engine) compile(ref any) (*jsv.Schema, map[string]any, error) {
	if key, ok := ref.(string); ok && !isInlineText(key, e.schemas) {
		doc, ok := e.schemas[key]
		if !ok {
			return nil, nil, errors.Errorf("jsonschema: no schema with key or ref %q", key)
		}
		if sch, ok := e.compiled[key]; ok {
			return sch, doc, nil
		}
		if e.compiler == nil {
			c, err := e.newCompiler()
			if err != nil {
				return nil, nil, err
			}
			e.compiler = c
		}
		sch, err := e.compiler.Compile(baseURL + key)
		if err != nil {
			// A failed compile can leave partial state behind.
			e.compiler = nil
			return nil, nil, errors.Wrapf(err, "jsonschema: compiling %q", key)
		}
		e.compiled[key] = sch
		return sch, doc, nil
	}

	doc, err := Document(ref)
	if err != nil {
		return nil, nil, err
	}
	c, err := e.newCompiler()
	if err != nil {
		return nil, nil, err
	}
	if err := addResource(c, inlineURL, doc); err != nil {
		return nil, nil, err
	}
	sch, err := c.Compile(inlineURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "jsonschema: compiling inline schema")
	}
	return sch, doc, nil
}

// isInlineText reports whether s is JSON schema text rather than a key.
// Registered keys win, so a schema registered under "{...}" stays reachable.
func isInlineText(s string, schemas map[string]map[string]any) bool {
	if _, ok := schemas[s]; ok {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(s), "{")
}

func (e *Engine) newCompiler() (*jsv.Compiler, error) {
	c := jsv.NewCompiler()
	c.Draft = jsv.Draft7
	if e.opts.ExtendRefs {
		c.Draft = jsv.Draft2019
	}
	c.AssertFormat = true
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, errors.Errorf("jsonschema: no schema with key or ref %q", strings.TrimPrefix(s, baseURL))
	}
	for name, f := range e.formats {
		c.Formats[name] = f
	}
	for name, kw := range e.keywords {
		c.RegisterExtension(name, keywordMeta, keywordCompiler{name: name, kw: kw})
	}
	for key, doc := range e.schemas {
		if err := addResource(c, baseURL+key, doc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// addResource hands doc to the compiler under url. The top-level "$id" is
// dropped so that the registration key always wins.
func addResource(c *jsv.Compiler, url string, doc map[string]any) error {
	res := doc
	if _, ok := doc["$id"]; ok {
		res = make(map[string]any, len(doc))
		for k, v := range doc {
			if k != "$id" {
				res[k] = v
			}
		}
	}
	b, err := json.Marshal(res)
	if err != nil {
		return errors.Wrapf(err, "jsonschema: encoding %s", url)
	}
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return errors.Wrapf(err, "jsonschema: adding %s", url)
	}
	return nil
}

// collect flattens the validator's error tree into its leaves.
func (e *Engine) collect(root *jsv.ValidationError, data any) []Error {
	var out []Error
	var walk func(*jsv.ValidationError)
	walk = func(ve *jsv.ValidationError) {
		if !e.opts.AllErrors && len(out) > 0 {
			return
		}
		if len(ve.Causes) == 0 {
			out = append(out, e.newError(ve, data))
			return
		}
		for _, c := range ve.Causes {
			walk(c)
		}
	}
	walk(root)
	return out
}

func (e *Engine) newError(ve *jsv.ValidationError, data any) Error {
	path := ResolvePointer(ve.InstanceLocation, data)
	err := Error{
		Path:          path,
		Pointer:       ve.InstanceLocation,
		SchemaPointer: ve.KeywordLocation,
		Keyword:       lastToken(ve.KeywordLocation),
		Message:       ve.Message,
	}
	if e.opts.Verbose {
		err.Value, _ = path.Lookup(data)
	}
	return err
}

func lastToken(pointer string) string {
	i := strings.LastIndexByte(pointer, '/')
	if i < 0 {
		return pointer
	}
	return strings.ReplaceAll(strings.ReplaceAll(pointer[i+1:], "~1", "/"), "~0", "~")
}

var keywordMeta = jsv.MustCompileString(baseURL+".meta/keyword", `{}`)

type keywordCompiler struct {
	name string
	kw   Keyword
}

func (k keywordCompiler) Compile(_ jsv.CompilerContext, m map[string]interface{}) (jsv.ExtSchema, error) {
	v, ok := m[k.name]
	if !ok {
		return nil, nil
	}
	return keywordSchema{name: k.name, value: v, kw: k.kw}, nil
}

type keywordSchema struct {
	name  string
	value any
	kw    Keyword
}

func (k keywordSchema) Validate(ctx jsv.ValidationContext, v interface{}) error {
	if err := k.kw.Validate(k.value, v); err != nil {
		return ctx.Error(k.name, "%s", err.Error())
	}
	return nil
}

var standardKeywords = map[string]struct{}{
	"$id": {}, "$ref": {}, "$schema": {}, "$defs": {}, "definitions": {},
	"type": {}, "enum": {}, "const": {}, "format": {},
	"properties": {}, "patternProperties": {}, "additionalProperties": {}, "required": {},
	"items": {}, "additionalItems": {}, "contains": {}, "minItems": {}, "maxItems": {}, "uniqueItems": {},
	"minimum": {}, "maximum": {}, "exclusiveMinimum": {}, "exclusiveMaximum": {}, "multipleOf": {},
	"minLength": {}, "maxLength": {}, "pattern": {},
	"allOf": {}, "anyOf": {}, "oneOf": {}, "not": {}, "if": {}, "then": {}, "else": {},
}
