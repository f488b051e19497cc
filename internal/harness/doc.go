// Package harness runs end-to-end pipeline scenarios for tests.
//
// A scenario names a synthetic cohort (trial keys, samples per trial)
// and an optional exclusion list. Running it seeds a fresh store with
// raw fixtures, executes the full pipeline, and hands back the store
// for assertions. Because the fixtures and every transform are
// deterministic, the derived tables are reproducible across runs and
// machines, which makes them suitable for golden comparison.
//
// Golden snapshots capture the structural outcome of a run - each
// derived table's columns and row count - in testdata/golden. To
// regenerate after an intentional contract or transform change:
//
//	go test ./internal/harness -update
package harness
