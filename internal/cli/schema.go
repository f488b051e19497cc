package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the declared table contracts",
		Long: `Print the compiled table contracts: every declared table, or one
table's full column list with kinds, nullability, and key columns.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "compile table contracts", err)
			}
			if len(args) == 0 {
				return listTables(cmd, rootOpts, reg)
			}
			return showTable(cmd, rootOpts, reg, args[0])
		},
	}
	return cmd
}

func listTables(cmd *cobra.Command, opts *RootOptions, reg *schema.Registry) error {
	names := reg.TableNames()
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), names)
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func showTable(cmd *cobra.Command, opts *RootOptions, reg *schema.Registry, table string) error {
	spec, ok := reg.SpecByName(table)
	if !ok {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("no contract declared for table %s", table), nil)
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), spec)
	}
	fmt.Fprintln(cmd.OutOrStdout(), spec.Name)
	for _, c := range spec.Columns {
		attrs := ""
		if c.Key {
			attrs += " key"
		}
		if c.Nullable {
			attrs += " nullable"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s%s\n", c.Name, c.Kind, attrs)
	}
	return nil
}
