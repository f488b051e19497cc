package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
	"github.com/physiolab/physiopipe/internal/transform"
)

// Coordinator runs registered transforms against the store, one stage
// at a time. It holds no state between runs; every decision is a read
// from the store or a lookup in the transform set.
type Coordinator struct {
	store *store.Store
	set   *transform.Set
}

// New creates a coordinator over the given store and transform set.
func New(s *store.Store, set *transform.Set) *Coordinator {
	return &Coordinator{store: s, set: set}
}

// RunStage derives one (modality, target stage) table from its
// predecessor and replaces it in the store. The predecessor is read
// unfiltered: exclusion is a read-time decision for consumers, and
// filtering here would make derived tables depend on when the
// exclusion list was edited.
//
// Returns the recorded run entry. A missing predecessor surfaces as
// *store.NotFoundError; a transform failure as *transform.TransformError.
func (c *Coordinator) RunStage(ctx context.Context, m schema.Modality, target schema.Stage) (store.Run, error) {
	pred, ok := target.Predecessor()
	if !ok {
		return store.Run{}, fmt.Errorf("stage %s is not derived; ingest it instead", target)
	}
	fn, ok := c.set.Lookup(m, target)
	if !ok {
		return store.Run{}, fmt.Errorf("no transform registered for %s", schema.TableName(m, target))
	}

	in, err := c.store.GetTable(ctx, m, pred, false)
	if err != nil {
		return store.Run{}, err
	}

	out, err := fn(in)
	if err != nil {
		return store.Run{}, err
	}

	if err := c.store.PutTable(ctx, m, target, out); err != nil {
		return store.Run{}, err
	}
	run, err := c.store.RecordRun(ctx, schema.TableName(m, target), out)
	if err != nil {
		return store.Run{}, err
	}

	slog.Info("stage complete",
		"table", run.Table,
		"rows_in", in.NumRows(),
		"rows_out", out.NumRows(),
		"fingerprint", run.Fingerprint,
		"run_id", run.ID)
	return run, nil
}

// RunAll executes the full pipeline: Preprocess for every modality,
// then Feature for every modality, in the fixed declaration order.
//
// A transform or contract failure quarantines its modality - the error
// is logged and collected, downstream stages of that modality are
// skipped, and the remaining modalities continue. Storage failures
// abort immediately. The returned error joins all per-modality
// failures; the returned runs are the stages that completed.
func (c *Coordinator) RunAll(ctx context.Context) ([]store.Run, error) {
	var (
		runs        []store.Run
		errs        []error
		quarantined = map[schema.Modality]bool{}
	)
	for _, st := range []schema.Stage{schema.Preprocess, schema.Feature} {
		for _, m := range schema.Modalities() {
			if quarantined[m] {
				continue
			}
			run, err := c.RunStage(ctx, m, st)
			if err == nil {
				runs = append(runs, run)
				continue
			}
			if !isModalityFailure(err) {
				return runs, err
			}
			quarantined[m] = true
			errs = append(errs, err)
			slog.Error("modality quarantined",
				"modality", m,
				"stage", st,
				"err", err)
		}
	}
	return runs, errors.Join(errs...)
}

// isModalityFailure reports whether the error is scoped to one
// modality's data rather than to the environment. Bad or missing input
// data quarantines the modality; anything else aborts the run.
func isModalityFailure(err error) bool {
	return transform.IsTransformError(err) ||
		schema.IsSchemaError(err) ||
		store.IsNotFound(err)
}
