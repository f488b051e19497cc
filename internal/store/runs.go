package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/physiolab/physiopipe/internal/frame"
)

// Run is one recorded table write: which table, how many rows, and the
// content fingerprint of what landed. Re-running the pipeline on the
// same inputs records a new Run with the same fingerprint.
type Run struct {
	ID          string
	Table       string
	RowCount    int
	Fingerprint string
	RecordedAt  time.Time
}

// RecordRun appends a run-log entry for a table write. The fingerprint
// is computed from the frame's canonical serialization, so two frames
// with the same content always record the same fingerprint.
func (s *Store) RecordRun(ctx context.Context, table string, f *frame.Frame) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Table:       table,
		RowCount:    f.NumRows(),
		Fingerprint: frame.Fingerprint(f),
		RecordedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, table_name, row_count, fingerprint, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Table, run.RowCount, run.Fingerprint,
		run.RecordedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("record run for %s: %w", table, err)
	}
	return run, nil
}

// Runs returns the run log, oldest first. A non-empty table restricts
// the listing to writes of that table.
func (s *Store) Runs(ctx context.Context, table string) ([]Run, error) {
	q := `SELECT id, table_name, row_count, fingerprint, recorded_at
	      FROM pipeline_runs`
	var args []any
	if table != "" {
		q += ` WHERE table_name = ?`
		args = append(args, table)
	}
	q += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var at string
		if err := rows.Scan(&r.ID, &r.Table, &r.RowCount, &r.Fingerprint, &at); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("list runs: bad timestamp %q: %w", at, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
