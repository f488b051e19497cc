package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
)

// Manifest renders the structural outcome of a run: every derived
// table's columns and row count, in pipeline order. Missing tables
// (quarantined modalities) are listed as absent, so failure scenarios
// snapshot cleanly too.
func Manifest(t *testing.T, s *store.Store) []byte {
	t.Helper()
	ctx := context.Background()

	var b strings.Builder
	for _, st := range []schema.Stage{schema.Preprocess, schema.Feature} {
		for _, m := range schema.Modalities() {
			name := schema.TableName(m, st)
			f, err := s.GetTable(ctx, m, st, false)
			if store.IsNotFound(err) {
				fmt.Fprintf(&b, "%s: absent\n", name)
				continue
			}
			if err != nil {
				t.Fatalf("manifest: read %s: %v", name, err)
			}
			fmt.Fprintf(&b, "%s: rows=%d columns=%s\n",
				name, f.NumRows(), strings.Join(f.Columns(), ","))
		}
	}
	return []byte(b.String())
}

// AssertGolden compares the run's manifest against the scenario's
// golden file in testdata/golden.
func AssertGolden(t *testing.T, sc Scenario, res *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, Manifest(t, res.Store))
}
