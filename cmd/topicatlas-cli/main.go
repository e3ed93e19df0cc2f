package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/topicatlas/internal/config"
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/logging"
)

var version = "dev"

// options holds the persistent flags shared by every subcommand.
type options struct {
	dataPath   string
	schemaFile string
	encodings  []string
	verbose    bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "topicatlas",
		Short: "Browse a faculty directory by topic and by person",
		Long: `topicatlas loads a faculty research-interest file and answers two kinds of
question: who is associated with a topic, and which topics a person has.

Labels are compared case-insensitively. Facet counts are the number of
distinct people carrying a label.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = logging.NewWriter(level, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", config.DefaultDataPath, "Dataset file (.csv or .tsv)")
	rootCmd.PersistentFlags().StringVar(&opts.schemaFile, "schema", "", "YAML schema file (default: built-in faculty schema)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.encodings, "encodings", dataset.DefaultEncodings, "Text encodings to try, in order")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newTopicsCmd(opts))
	rootCmd.AddCommand(newMembersCmd(opts))
	rootCmd.AddCommand(newPersonCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newFilterCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	return rootCmd
}

// load reads the dataset named by the persistent flags.
func (o *options) load() (*dataset.Dataset, error) {
	schema := dataset.DefaultSchema()
	if o.schemaFile != "" {
		s, err := dataset.LoadSchema(o.schemaFile)
		if err != nil {
			return nil, err
		}
		schema = s
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader, err := dataset.NewLoader(schema, o.encodings, logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(o.dataPath)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
