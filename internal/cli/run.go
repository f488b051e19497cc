package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/pipeline"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
	"github.com/physiolab/physiopipe/internal/transform"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Modality string
	Stage    string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Derive the preprocess and feature tables",
		Long: `Run the pipeline over the ingested raw tables: preprocessing for every
modality, then per-trial features. A failing modality is skipped and
reported; the others complete.

With --modality and --stage, derive a single table instead.

Example:
  physiopipe run
  physiopipe run --modality eda --stage preprocess`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Modality, "modality", "", "run a single modality")
	cmd.Flags().StringVar(&opts.Stage, "stage", "", "run a single stage (preprocess|feature)")
	cmd.MarkFlagsRequiredTogether("modality", "stage")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *RunOptions) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	coord := pipeline.New(s, transform.Default())
	ctx := cmd.Context()

	if opts.Modality != "" {
		m, err := schema.ParseModality(opts.Modality)
		if err != nil {
			return WrapExitError(ExitCommandError, "bad --modality", err)
		}
		st, err := schema.ParseStage(opts.Stage)
		if err != nil {
			return WrapExitError(ExitCommandError, "bad --stage", err)
		}
		run, err := coord.RunStage(ctx, m, st)
		if err != nil {
			return WrapExitError(ExitFailure, "run stage", err)
		}
		return reportRuns(cmd, opts.RootOptions, []pipelineRun{toReport(run)})
	}

	runs, err := coord.RunAll(ctx)
	report := make([]pipelineRun, len(runs))
	for i, r := range runs {
		report[i] = toReport(r)
	}
	if reportErr := reportRuns(cmd, opts.RootOptions, report); reportErr != nil {
		return reportErr
	}
	if err != nil {
		return WrapExitError(ExitFailure, "pipeline completed with failures", err)
	}
	return nil
}

// pipelineRun is the reportable slice of a run-log entry.
type pipelineRun struct {
	Table       string `json:"table"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
	RunID       string `json:"run_id"`
}

func toReport(r store.Run) pipelineRun {
	return pipelineRun{
		Table:       r.Table,
		Rows:        r.RowCount,
		Fingerprint: r.Fingerprint,
		RunID:       r.ID,
	}
}

func reportRuns(cmd *cobra.Command, opts *RootOptions, runs []pipelineRun) error {
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-22s %6d rows  %s\n", r.Table, r.Rows, r.Fingerprint[:12])
	}
	return nil
}
