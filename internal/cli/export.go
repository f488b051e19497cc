package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/export"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out            string
	ExcludeInvalid bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [tables...]",
		Short: "Export tables to an Excel workbook",
		Long: `Write the named tables - or, with no arguments, every feature table
plus trials - as one workbook sheet each.

Example:
  physiopipe export --out features.xlsx
  physiopipe export eda_feature ppg_feature --out cardiac.xlsx --exclude-invalid`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().BoolVar(&opts.ExcludeInvalid, "exclude-invalid", false,
		"filter out trials on the exclusion list")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, tables []string) error {
	if filepath.Ext(opts.Out) != ".xlsx" {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("--out %s: want an .xlsx path", opts.Out), nil)
	}
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(tables) == 0 {
		for _, m := range schema.Modalities() {
			tables = append(tables, schema.TableName(m, schema.Feature))
		}
		tables = append(tables, schema.TableTrials)
	}

	var sheets []export.Sheet
	for _, table := range tables {
		f, err := s.GetTableByName(cmd.Context(), table, opts.ExcludeInvalid)
		if store.IsNotFound(err) {
			// Export what exists; a half-run store is still exportable.
			continue
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "read "+table, err)
		}
		sheets = append(sheets, export.Sheet{Name: table, Frame: f})
	}
	if len(sheets) == 0 {
		return WrapExitError(ExitFailure, "no requested table is populated", nil)
	}

	if err := export.WriteExcel(opts.Out, sheets); err != nil {
		return WrapExitError(ExitCommandError, "write workbook", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sheets to %s\n", len(sheets), opts.Out)
	return nil
}
