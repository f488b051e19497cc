package store

import (
	"context"
	"fmt"

	"github.com/physiolab/physiopipe/internal/exclusion"
)

// AddExclusions appends entries to the persisted exclusion list.
// Re-adding an existing (participant, trial) pair is a no-op; the first
// recorded reason wins.
func (s *Store) AddExclusions(ctx context.Context, entries []exclusion.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add exclusions: begin tx: %w", err)
	}
	defer tx.Rollback()

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO exclusions (participant_id, trial_number, reason)
		 VALUES (?, ?, ?)
		 ON CONFLICT (participant_id, trial_number) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("add exclusions: prepare: %w", err)
	}
	defer ins.Close()

	for _, e := range entries {
		if _, err := ins.ExecContext(ctx, e.Participant, e.Trial, e.Reason); err != nil {
			return fmt.Errorf("add exclusion (%d, %d): %w", e.Participant, e.Trial, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add exclusions: commit: %w", err)
	}
	return nil
}

// Exclusions returns the persisted exclusion list in insertion order.
func (s *Store) Exclusions(ctx context.Context) (exclusion.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant_id, trial_number, reason FROM exclusions ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	defer rows.Close()

	var list exclusion.List
	for rows.Next() {
		var e exclusion.Entry
		if err := rows.Scan(&e.Participant, &e.Trial, &e.Reason); err != nil {
			return nil, fmt.Errorf("list exclusions: scan: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	return list, nil
}
