package cli

import (
	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/export"
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	ExcludeInvalid bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Print a stored table",
		Long: `Print a stored table to stdout as CSV (or JSON rows with
--format json). --exclude-invalid filters out trials on the exclusion
list; the stored rows are unaffected.

Example:
  physiopipe query eda_feature
  physiopipe query ppg_preprocess --exclude-invalid > ppg.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.ExcludeInvalid, "exclude-invalid", false,
		"filter out trials on the exclusion list")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, table string) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.GetTableByName(cmd.Context(), table, opts.ExcludeInvalid)
	if err != nil {
		code := ExitFailure
		if !store.IsNotFound(err) {
			code = ExitCommandError
		}
		return WrapExitError(code, "query "+table, err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), frameRows(f))
	}
	return export.WriteCSV(cmd.OutOrStdout(), f)
}

// frameRows renders a frame as a list of column-keyed rows.
func frameRows(f *frame.Frame) []map[string]any {
	rows := make([]map[string]any, f.NumRows())
	cols := f.Columns()
	for row := range rows {
		m := make(map[string]any, len(cols))
		for i, name := range cols {
			m[name] = f.SeriesAt(i).Value(row)
		}
		rows[row] = m
	}
	return rows
}
