package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/exclusion"
)

// NewExcludeCommand creates the exclude command group.
func NewExcludeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Manage the invalid-trial exclusion list",
		Long: `Exclusions mark (participant, trial) pairs invalid. Excluded trials are
filtered out of reads that ask for it; no stored rows are ever deleted,
so an exclusion can always be reversed by the analyst.`,
	}
	cmd.AddCommand(newExcludeAddCommand(rootOpts))
	cmd.AddCommand(newExcludeListCommand(rootOpts))
	cmd.AddCommand(newExcludeImportCommand(rootOpts))
	return cmd
}

func newExcludeAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		participant int64
		trial       int64
		reason      string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mark one trial (or a whole participant) invalid",
		Long: `Add one exclusion entry. --trial 0 excludes every trial of the
participant.

Example:
  physiopipe exclude add --participant 7 --trial 3 --reason "thermode detached"
  physiopipe exclude add --participant 12 --trial 0 --reason "withdrew consent"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			entry := exclusion.Entry{Participant: participant, Trial: trial, Reason: reason}
			if err := s.AddExclusions(cmd.Context(), []exclusion.Entry{entry}); err != nil {
				return WrapExitError(ExitCommandError, "add exclusion", err)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&participant, "participant", 0, "participant id (required)")
	cmd.Flags().Int64Var(&trial, "trial", 0, "trial number, 0 for all trials")
	cmd.Flags().StringVar(&reason, "reason", "", "experimenter annotation")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}

func newExcludeListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "Print the exclusion list",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.Exclusions(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "list exclusions", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			for _, e := range list {
				trial := fmt.Sprintf("%d", e.Trial)
				if e.Trial == exclusion.TrialAll {
					trial = "all"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "participant %d trial %s: %s\n",
					e.Participant, trial, e.Reason)
			}
			return nil
		},
	}
	return cmd
}

func newExcludeImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import the experimenters' invalid-trials CSV",
		Long: `Append every entry of an invalid-trials CSV to the exclusion list.
Already-known (participant, trial) pairs are skipped. Defaults to the
configured invalid_trials_file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.InvalidTrialsFile
			if len(args) == 1 {
				path = args[0]
			}
			list, err := exclusion.LoadCSV(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "load invalid trials", err)
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.AddExclusions(cmd.Context(), list); err != nil {
				return WrapExitError(ExitCommandError, "import exclusions", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", len(list), path)
			return nil
		},
	}
	return cmd
}
