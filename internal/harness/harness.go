package harness

import (
	"context"
	"testing"

	"github.com/physiolab/physiopipe/internal/exclusion"
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/pipeline"
	"github.com/physiolab/physiopipe/internal/store"
	"github.com/physiolab/physiopipe/internal/testutil"
	"github.com/physiolab/physiopipe/internal/transform"
)

// Scenario describes one synthetic end-to-end run.
type Scenario struct {
	// Name keys the golden file.
	Name string

	// Keys is the cohort: one entry per (participant, trial).
	Keys []frame.TrialKey

	// Samples per trial, 10 ms apart.
	Samples int

	// Exclusions are registered before the pipeline runs.
	Exclusions []exclusion.Entry

	// Corrupt mutates a raw table after seeding, for failure scenarios.
	Corrupt func(t *testing.T, s *store.Store)
}

// Result carries the run outcome for assertions.
type Result struct {
	Store *store.Store
	Runs  []store.Run

	// Err is the pipeline error, nil on a clean run. Kept as a field so
	// failure scenarios can assert on it rather than abort the test.
	Err error
}

// Run seeds a fresh store from the scenario and executes the full
// pipeline. Store setup failures fail the test immediately; pipeline
// errors are returned in the result.
func Run(t *testing.T, sc Scenario) *Result {
	t.Helper()

	s := testutil.OpenStore(t)
	ctx := context.Background()

	testutil.SeedRaw(t, s, sc.Keys, sc.Samples)
	if sc.Corrupt != nil {
		sc.Corrupt(t, s)
	}
	if len(sc.Exclusions) > 0 {
		if err := s.AddExclusions(ctx, sc.Exclusions); err != nil {
			t.Fatalf("scenario %s: add exclusions: %v", sc.Name, err)
		}
	}

	runs, err := pipeline.New(s, transform.Default()).RunAll(ctx)
	return &Result{Store: s, Runs: runs, Err: err}
}
