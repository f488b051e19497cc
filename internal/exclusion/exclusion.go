// Package exclusion implements the invalid-data filter applied to store
// reads.
//
// An exclusion list is an append-only set of (participant, trial) entries
// marked invalid by the experimenters. Filtering is a read-time decision:
// the underlying rows, Raw included, are never deleted, so an exclusion
// can always be reversed. The same filter is applied uniformly to every
// modality and stage; there is no per-table filtering logic anywhere else
// in the codebase.
package exclusion

import (
	"github.com/physiolab/physiopipe/internal/frame"
)

// TrialAll marks a participant-level entry: every trial of the
// participant is excluded.
const TrialAll int64 = 0

// Entry marks one (participant, trial) pair invalid. Trial == TrialAll
// excludes the whole participant.
type Entry struct {
	Participant int64
	Trial       int64

	// Reason is a free-form annotation from the experimenter log. It is
	// carried for provenance and ignored by the filter.
	Reason string
}

// List is an exclusion list. Order is insertion order; the filter result
// does not depend on it.
type List []Entry

// Excludes reports whether the list marks the given key invalid, either
// by an exact (participant, trial) entry or a participant-level entry.
func (l List) Excludes(k frame.TrialKey) bool {
	for _, e := range l {
		if e.Participant != k.Participant {
			continue
		}
		if e.Trial == TrialAll || e.Trial == k.Trial {
			return true
		}
	}
	return false
}

// Filter returns f without the rows whose (participant, trial) key the
// list marks invalid.
//
// Pure and deterministic: f is not modified, row order is preserved, and
// filtering twice yields the same result as filtering once. Entries that
// match no row are a deliberate no-op, never an error — the list is
// maintained against the full cohort, not against any one table.
//
// A frame without identity columns (never the case for tables written
// through the store) is returned unchanged.
func Filter(f *frame.Frame, l List) *frame.Frame {
	if len(l) == 0 || f.NumRows() == 0 {
		return f
	}
	if _, ok := f.KeyAt(0); !ok {
		return f
	}
	return f.Filter(func(row int) bool {
		k, _ := f.KeyAt(row)
		return !l.Excludes(k)
	})
}
