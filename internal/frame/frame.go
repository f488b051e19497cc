package frame

import (
	"fmt"
)

// Shared identity column names. Every pipeline table keys on participant
// and trial; time-series stages add the timestamp axis.
const (
	ColParticipant = "participant_id"
	ColTrial       = "trial_number"
	ColTimestamp   = "timestamp"
)

// TrialKey identifies one trial of one participant. It is the unit of
// identity the transforms must preserve and the exclusion filter matches on.
type TrialKey struct {
	Participant int64
	Trial       int64
}

func (k TrialKey) String() string {
	return fmt.Sprintf("participant %d trial %d", k.Participant, k.Trial)
}

// Frame is an ordered set of equal-length columns. The zero Frame is empty
// and usable. Column order is significant and preserved through the store.
type Frame struct {
	series []*Series
	byName map[string]int
}

// New builds a Frame from columns. All series must have the same length
// and unique names.
func New(series ...*Series) (*Frame, error) {
	f := &Frame{byName: make(map[string]int, len(series))}
	for _, s := range series {
		if s == nil {
			return nil, fmt.Errorf("frame: nil series")
		}
		if s.Name == "" {
			return nil, fmt.Errorf("frame: series with empty name")
		}
		if _, dup := f.byName[s.Name]; dup {
			return nil, fmt.Errorf("frame: duplicate column %q", s.Name)
		}
		if len(f.series) > 0 && s.Len() != f.series[0].Len() {
			return nil, fmt.Errorf("frame: column %q has %d rows, want %d",
				s.Name, s.Len(), f.series[0].Len())
		}
		f.byName[s.Name] = len(f.series)
		f.series = append(f.series, s)
	}
	return f, nil
}

// MustNew is New for statically known-good columns; it panics on error.
// Intended for tests and fixture construction.
func MustNew(series ...*Series) *Frame {
	f, err := New(series...)
	if err != nil {
		panic(err)
	}
	return f
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	if len(f.series) == 0 {
		return 0
	}
	return f.series[0].Len()
}

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.series) }

// Columns returns column names in declaration order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.Name
	}
	return names
}

// Series returns the named column, or false if absent.
func (f *Frame) Series(name string) (*Series, bool) {
	i, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return f.series[i], true
}

// SeriesAt returns the column at position i.
func (f *Frame) SeriesAt(i int) *Series { return f.series[i] }

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Select returns a new Frame containing only the named columns, in the
// given order. The underlying series are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := make([]*Series, 0, len(names))
	for _, n := range names {
		s, ok := f.Series(n)
		if !ok {
			return nil, fmt.Errorf("frame: no column %q", n)
		}
		out = append(out, s)
	}
	return New(out...)
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	cols := make([]*Series, len(f.series))
	for i, s := range f.series {
		cols[i] = s.clone()
	}
	out, _ := New(cols...)
	return out
}

// Filter returns a new Frame with only the rows for which keep returns
// true. Row order is preserved. Filtering an empty frame returns an empty
// frame with the same columns.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	rows := make([]int, 0, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return f.Take(rows)
}

// Take returns a new Frame containing the given rows in the given order.
func (f *Frame) Take(rows []int) *Frame {
	cols := make([]*Series, len(f.series))
	for i, s := range f.series {
		cols[i] = s.take(rows)
	}
	out, _ := New(cols...)
	return out
}

// Equal reports whether two frames are identical: same columns in the same
// order, same kinds, same cells, same null masks.
func (f *Frame) Equal(o *Frame) bool {
	if f.NumCols() != o.NumCols() {
		return false
	}
	for i, s := range f.series {
		if !s.equal(o.series[i]) {
			return false
		}
	}
	return true
}

// Concat appends frames with identical column sets (same names and kinds
// in the same order) into one frame. Concat of zero frames is an error;
// callers that may produce an empty result pass an explicit empty frame.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("frame: concat of no frames")
	}
	first := frames[0]
	rows := 0
	for _, f := range frames {
		if f.NumCols() != first.NumCols() {
			return nil, fmt.Errorf("frame: concat column count mismatch")
		}
		for i := range f.series {
			if f.series[i].Name != first.series[i].Name || f.series[i].Kind != first.series[i].Kind {
				return nil, fmt.Errorf("frame: concat column mismatch at %q", first.series[i].Name)
			}
		}
		rows += f.NumRows()
	}

	cols := make([]*Series, first.NumCols())
	for i := range cols {
		out := &Series{Name: first.series[i].Name, Kind: first.series[i].Kind}
		hasNull := false
		for _, f := range frames {
			s := f.series[i]
			out.Ints = append(out.Ints, s.Ints...)
			out.Floats = append(out.Floats, s.Floats...)
			out.Strs = append(out.Strs, s.Strs...)
			if s.Null != nil {
				hasNull = true
			}
		}
		if hasNull {
			out.Null = make([]bool, 0, rows)
			for _, f := range frames {
				s := f.series[i]
				if s.Null != nil {
					out.Null = append(out.Null, s.Null...)
				} else {
					out.Null = append(out.Null, make([]bool, s.Len())...)
				}
			}
		}
		cols[i] = out
	}
	return New(cols...)
}

// KeyAt returns the (participant, trial) key of the given row. The second
// return is false when the frame lacks identity columns.
func (f *Frame) KeyAt(row int) (TrialKey, bool) {
	p, ok := f.Series(ColParticipant)
	if !ok || p.Kind != Identifier {
		return TrialKey{}, false
	}
	t, ok := f.Series(ColTrial)
	if !ok || t.Kind != Identifier {
		return TrialKey{}, false
	}
	return TrialKey{Participant: p.Ints[row], Trial: t.Ints[row]}, true
}

// TrialKeys returns the distinct (participant, trial) keys of the frame in
// first-appearance order.
func (f *Frame) TrialKeys() []TrialKey {
	seen := make(map[TrialKey]bool)
	var keys []TrialKey
	for i := 0; i < f.NumRows(); i++ {
		k, ok := f.KeyAt(i)
		if !ok {
			return nil
		}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// TrialRows returns the row indexes belonging to each distinct trial key,
// grouped in first-appearance order. Transforms iterate trials with this.
func (f *Frame) TrialRows() ([]TrialKey, map[TrialKey][]int) {
	keys := f.TrialKeys()
	rows := make(map[TrialKey][]int, len(keys))
	for i := 0; i < f.NumRows(); i++ {
		k, _ := f.KeyAt(i)
		rows[k] = append(rows[k], i)
	}
	return keys, rows
}
