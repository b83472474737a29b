// Package config loads the ledgerskema CLI configuration and the schema
// files it points at.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/ledgerskema"
	"github.com/reoring/ledgerskema/exceptions"
	"github.com/reoring/ledgerskema/formats"
	"github.com/reoring/ledgerskema/jsonschema"
	"github.com/reoring/ledgerskema/keywords"
)

// EnvPrefix prefixes environment overrides, e.g. LEDGERSKEMA_SCHEMA_DIR.
const EnvPrefix = "LEDGERSKEMA"

// Config is the resolved CLI configuration.
type Config struct {
	BlockSchema      string `mapstructure:"block-schema"`
	SchemaDir        string `mapstructure:"schema-dir"`
	Exceptions       string `mapstructure:"exceptions"`
	RemoveAdditional bool   `mapstructure:"remove-additional"`
	ExtendRefs       bool   `mapstructure:"extend-refs"`
	Verbose          bool   `mapstructure:"verbose"`
}

// NewViper returns a viper instance with defaults and environment overrides
// wired. When file is not empty it is read as the config file.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("remove-additional", true)
	v.SetDefault("extend-refs", true)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", file)
		}
	}
	return v, nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	return c, nil
}

// NewValidator builds a Validator from c, with the formats and keywords
// packages registered and the configured schema files and exception list
// loaded.
func (c Config) NewValidator(logger *zap.Logger, metrics *ledgerskema.Metrics) (*ledgerskema.Validator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []ledgerskema.Option{
		ledgerskema.WithRemoveAdditional(c.RemoveAdditional),
		ledgerskema.WithExtendRefs(c.ExtendRefs),
		ledgerskema.WithLogger(logger),
		ledgerskema.WithMetrics(metrics),
	}
	for name, f := range formats.All() {
		opts = append(opts, ledgerskema.WithFormat(name, f))
	}
	opts = append(opts,
		ledgerskema.WithKeyword("bignumber", keywords.BigNumber),
		ledgerskema.WithKeyword("maxBytes", keywords.MaxBytes),
	)

	if c.BlockSchema != "" {
		block, err := LoadSchemaFile(c.BlockSchema)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ledgerskema.WithBlockSchema(block))
	}
	if c.SchemaDir != "" {
		defs, err := LoadTransactionSchemas(c.SchemaDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ledgerskema.WithTransactionSchemas(defs...))
	}

	var oracle ledgerskema.ExceptionOracle = ledgerskema.NoExceptions
	if c.Exceptions != "" {
		set, err := exceptions.Load(c.Exceptions)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded exception list", zap.String("path", c.Exceptions), zap.Int("ids", set.Len()))
		oracle = set
	}
	return ledgerskema.New(oracle, opts...)
}

// LoadSchemaFile reads a JSON or YAML schema document.
func LoadSchemaFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, errors.Wrapf(err, "parsing schema %s", path)
		}
		out, err := jsonschema.Document(doc)
		return out, errors.Wrapf(err, "schema %s", path)
	default:
		doc, err := jsonschema.Document(data)
		return doc, errors.Wrapf(err, "schema %s", path)
	}
}

// LoadTransactionSchemas reads every .json, .yaml and .yml file in dir as a
// transaction base schema, in file name order. The type id is the schema's
// "$id", or the file name without its extension.
func LoadTransactionSchemas(dir string) ([]ledgerskema.TransactionSchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema directory %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]ledgerskema.TransactionSchema, 0, len(names))
	for _, name := range names {
		doc, err := LoadSchemaFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		id, _ := doc["$id"].(string)
		if id == "" {
			id = strings.TrimSuffix(name, filepath.Ext(name))
		}
		def, err := ledgerskema.NewTransactionSchema(id, doc)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
