package main

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reoring/ledgerskema"
	"github.com/reoring/ledgerskema/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "ledgerskema",
		Short:         "Validate ledger block records against registered transaction schemas.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.String("block-schema", "", "block schema file (JSON or YAML); the built-in schema is used when empty")
	flags.String("schema-dir", "", "directory of transaction base schemas, one file per type")
	flags.String("exceptions", "", "exception list file with blocks and transactions ids")
	flags.Bool("remove-additional", true, "strip properties forbidden by additionalProperties: false")
	flags.Bool("extend-refs", true, "apply keywords placed next to $ref")
	flags.BoolP("verbose", "v", false, "log at debug level")

	load := func(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
		v, err := config.NewViper(configFile)
		if err != nil {
			return config.Config{}, nil, err
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return config.Config{}, nil, errors.Wrap(err, "binding flags")
		}
		cfg, err := config.Load(v)
		if err != nil {
			return config.Config{}, nil, err
		}
		logger, err := newLogger(v)
		if err != nil {
			return config.Config{}, nil, err
		}
		return cfg, logger, nil
	}

	root.AddCommand(newValidateCommand(load), newCompositeCommand(load))
	return root
}

type loadFunc func(cmd *cobra.Command) (config.Config, *zap.Logger, error)

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stderr"}
	if v.GetBool("verbose") {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zc.Build()
	return logger, errors.Wrap(err, "building logger")
}

func newValidateCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "validate RECORD...",
		Short: "Apply the block schema to each record file (\"-\" reads stdin).",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			v, err := cfg.NewValidator(logger, nil)
			if err != nil {
				return err
			}
			return validateFiles(v, logger, cmd.InOrStdin(), cmd.OutOrStdout(), args)
		},
	}
}

func newCompositeCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "composite",
		Short: "Print the composite transactions schema built from the schema directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			v, err := cfg.NewValidator(logger, nil)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(v.CompositeSchema(), "", "  ")
			if err != nil {
				return errors.Wrap(err, "encoding composite schema")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

// validateFiles reports one line per record and fails when any record is
// rejected.
func validateFiles(v *ledgerskema.Validator, logger *zap.Logger, stdin io.Reader, out io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		record, err := readRecord(path, stdin)
		if err == nil {
			_, err = v.ApplySchema(record)
		}
		if err != nil {
			failed++
			logger.Info("record rejected", zap.String("file", path), zap.Error(err))
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		logger.Info("record accepted", zap.String("file", path))
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d records failed validation", failed, len(paths))
	}
	return nil
}

func readRecord(path string, stdin io.Reader) (any, error) {
	if path == "-" {
		return ledgerskema.ReadRecord(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening record")
	}
	defer f.Close()
	return ledgerskema.ReadRecord(f)
}
