package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/ingest"
	"github.com/physiolab/physiopipe/internal/schema"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Participants   string
	Calibration    string
	Questionnaires string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load vendor exports into the raw tables",
		Long: `Read each participant's sensor exports from the data directory and
replace the raw tables, the trials metadata table, and the participant
roster. The cohort comes from the participants file unless --participants
narrows it.

Example:
  physiopipe ingest
  physiopipe ingest --participants 1,2,7 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Participants, "participants", "",
		"comma-separated participant ids (default: everyone in the participants file)")
	cmd.Flags().StringVar(&opts.Calibration, "calibration", "",
		"calibration results CSV to store alongside the cohort")
	cmd.Flags().StringVar(&opts.Questionnaires, "questionnaires", "",
		"questionnaire scores CSV to store alongside the cohort")

	return cmd
}

func runIngest(cmd *cobra.Command, opts *IngestOptions) error {
	s, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	roster, err := loadRoster(opts.RootOptions)
	if err != nil {
		return err
	}
	pids, err := selectParticipants(roster, opts.Participants)
	if err != nil {
		return err
	}
	slog.Info("ingesting", "participants", len(pids), "data_dir", opts.Config.DataDir)

	cfg, err := datasetConfig(opts.RootOptions, s.Registry())
	if err != nil {
		return WrapExitError(ExitCommandError, "dataset config", err)
	}
	if err := ingest.New(s, cfg).Ingest(ctx, ingest.Options{
		DataDir:      opts.Config.DataDir,
		Participants: pids,
	}); err != nil {
		return WrapExitError(ExitFailure, "ingest", err)
	}
	if err := s.PutTableByName(ctx, schema.TableParticipants, roster); err != nil {
		return WrapExitError(ExitFailure, "store participants", err)
	}

	statics := []struct{ path, table string }{
		{opts.Calibration, schema.TableCalibration},
		{opts.Questionnaires, schema.TableQuestionnaires},
	}
	for _, st := range statics {
		if st.path == "" {
			continue
		}
		spec, ok := s.Registry().SpecByName(st.table)
		if !ok {
			return WrapExitError(ExitCommandError, st.table+" contract missing", nil)
		}
		f, err := ingest.LoadStatic(st.path, spec)
		if err != nil {
			return WrapExitError(ExitCommandError, "load "+st.table, err)
		}
		if err := s.PutTableByName(ctx, st.table, f); err != nil {
			return WrapExitError(ExitFailure, "store "+st.table, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d participants\n", len(pids))
	return nil
}

// loadRoster reads the participants file into a contract-shaped frame.
func loadRoster(opts *RootOptions) (*frame.Frame, error) {
	spec, ok := schema.MustLoad().SpecByName(schema.TableParticipants)
	if !ok {
		return nil, WrapExitError(ExitCommandError, "participants contract missing", nil)
	}
	if _, err := os.Stat(opts.Config.ParticipantsFile); err != nil {
		return nil, WrapExitError(ExitCommandError, "participants file", err)
	}
	f, err := ingest.LoadStatic(opts.Config.ParticipantsFile, spec)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "participants file", err)
	}
	return f, nil
}

// selectParticipants resolves the requested cohort against the roster.
func selectParticipants(roster *frame.Frame, requested string) ([]int64, error) {
	ids, ok := roster.Series(frame.ColParticipant)
	if !ok {
		return nil, WrapExitError(ExitCommandError, "participants file has no participant_id", nil)
	}
	if requested == "" {
		return append([]int64(nil), ids.Ints...), nil
	}

	known := make(map[int64]bool, len(ids.Ints))
	for _, id := range ids.Ints {
		known[id] = true
	}
	var pids []int64
	for _, part := range strings.Split(requested, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, WrapExitError(ExitCommandError,
				fmt.Sprintf("bad participant id %q", part), err)
		}
		if !known[id] {
			return nil, WrapExitError(ExitCommandError,
				fmt.Sprintf("participant %d not in the participants file", id), nil)
		}
		pids = append(pids, id)
	}
	return pids, nil
}
