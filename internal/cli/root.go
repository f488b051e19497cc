// Package cli implements the physiopipe command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/config"
	"github.com/physiolab/physiopipe/internal/ingest"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json"
	ConfigFile string

	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the physiopipe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "physiopipe",
		Short: "Staged store for multimodal physiological recordings",
		Long: `physiopipe ingests vendor sensor exports into a SQLite store and
derives preprocessed and per-trial feature tables from them, one
contract-checked stage at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))

			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "physiopipe.yaml", "path to config file (optional)")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewExcludeCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore opens the configured store database.
func openStore(opts *RootOptions) (*store.Store, error) {
	s, err := store.Open(opts.Config.DBFile, schema.MustLoad())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return s, nil
}

// datasetConfig resolves the dataset map: the configured override file
// when set, the embedded default otherwise.
func datasetConfig(opts *RootOptions, reg *schema.Registry) (ingest.Config, error) {
	if opts.Config.DatasetConfig != "" {
		return ingest.LoadConfig(opts.Config.DatasetConfig, reg)
	}
	return ingest.DefaultConfig(reg)
}
