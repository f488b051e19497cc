package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiolab/physiopipe/internal/exclusion"
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
	"github.com/physiolab/physiopipe/internal/testutil"
	"github.com/physiolab/physiopipe/internal/transform"
)

func baseline() Scenario {
	return Scenario{
		Name:    "baseline-cohort",
		Keys:    testutil.DefaultKeys,
		Samples: 40,
	}
}

func TestBaselineCohortGolden(t *testing.T) {
	sc := baseline()
	res := Run(t, sc)
	require.NoError(t, res.Err)
	assert.Len(t, res.Runs, 12)
	AssertGolden(t, sc, res)
}

func TestQuarantinedEEGGolden(t *testing.T) {
	sc := baseline()
	sc.Name = "quarantined-eeg"
	sc.Corrupt = func(t *testing.T, s *store.Store) {
		ctx := context.Background()
		bad := testutil.RawTable(t, schema.EEG, testutil.DefaultKeys, 40)
		ts, ok := bad.Series(frame.ColTimestamp)
		require.True(t, ok)
		ts.Floats[5], ts.Floats[6] = ts.Floats[6], ts.Floats[5]
		require.NoError(t, s.PutTable(ctx, schema.EEG, schema.Raw, bad))
	}

	res := Run(t, sc)
	require.Error(t, res.Err)
	te := transform.AsTransformError(res.Err)
	require.NotNil(t, te)
	assert.Equal(t, schema.EEG, te.Modality)

	// The failing modality must not block the rest.
	_, err := res.Store.GetTable(context.Background(), schema.EDA, schema.Feature, false)
	require.NoError(t, err)
	_, err = res.Store.GetTable(context.Background(), schema.EEG, schema.Preprocess, false)
	require.True(t, store.IsNotFound(err))

	AssertGolden(t, sc, res)
}

// An exclusion entry filters the same trial out of every table, raw
// included, and filtering is a read-time decision only.
func TestExclusionIsUniformAcrossStages(t *testing.T) {
	sc := baseline()
	sc.Exclusions = []exclusion.Entry{
		{Participant: 1, Trial: 2, Reason: "thermode fault"},
	}
	res := Run(t, sc)
	require.NoError(t, res.Err)

	ctx := context.Background()
	excluded := frame.TrialKey{Participant: 1, Trial: 2}
	for _, m := range schema.Modalities() {
		for _, st := range schema.Stages() {
			f, err := res.Store.GetTable(ctx, m, st, true)
			require.NoError(t, err)
			for _, k := range f.TrialKeys() {
				assert.NotEqual(t, excluded, k,
					"excluded trial visible in %s", schema.TableName(m, st))
			}

			full, err := res.Store.GetTable(ctx, m, st, false)
			require.NoError(t, err)
			assert.Contains(t, full.TrialKeys(), excluded,
				"exclusion must not delete rows from %s", schema.TableName(m, st))
		}
	}
}

// Exclusion entries that match no stored trial change nothing.
func TestUnmatchedExclusionIsNoOp(t *testing.T) {
	clean := Run(t, baseline())
	require.NoError(t, clean.Err)

	sc := baseline()
	sc.Exclusions = []exclusion.Entry{
		{Participant: 99, Trial: 1, Reason: "no such participant"},
	}
	res := Run(t, sc)
	require.NoError(t, res.Err)

	ctx := context.Background()
	for _, m := range schema.Modalities() {
		for _, st := range schema.Stages() {
			a, err := clean.Store.GetTable(ctx, m, st, true)
			require.NoError(t, err)
			b, err := res.Store.GetTable(ctx, m, st, true)
			require.NoError(t, err)
			assert.Equal(t, frame.Fingerprint(a), frame.Fingerprint(b),
				"unmatched exclusion changed %s", schema.TableName(m, st))
		}
	}
}

// Every derived table carries its trial keys within the keys of its
// input; no transform invents identity.
func TestDerivedTablesContainOnlyInputKeys(t *testing.T) {
	res := Run(t, baseline())
	require.NoError(t, res.Err)

	ctx := context.Background()
	want := map[frame.TrialKey]bool{}
	for _, k := range testutil.DefaultKeys {
		want[k] = true
	}
	for _, m := range schema.Modalities() {
		for _, st := range []schema.Stage{schema.Preprocess, schema.Feature} {
			f, err := res.Store.GetTable(ctx, m, st, false)
			require.NoError(t, err)
			for _, k := range f.TrialKeys() {
				assert.True(t, want[k], "%s invented key %+v", schema.TableName(m, st), k)
			}
		}
	}
}
