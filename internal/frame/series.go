package frame

import "fmt"

// Kind identifies the storage and semantic type of a Series.
type Kind int

const (
	// Identifier is an int64 column: participant ids, trial numbers,
	// sample counters, stimulus seeds.
	Identifier Kind = iota

	// Numeric is a float64 column: signal samples and feature values.
	Numeric

	// Timestamp is a float64 column holding milliseconds relative to
	// trial onset. Stored separately from Numeric so schema validation
	// can tell a time axis from a signal.
	Timestamp

	// Categorical is a string column: labels, questionnaire answers.
	Categorical
)

// String returns the lowercase name used in schema declarations and
// error messages.
func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Numeric:
		return "numeric"
	case Timestamp:
		return "timestamp"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindFromString parses a schema declaration type name.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "identifier":
		return Identifier, nil
	case "numeric":
		return Numeric, nil
	case "timestamp":
		return Timestamp, nil
	case "categorical":
		return Categorical, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

// Series is a single named column. Exactly one of the value slices is
// populated, selected by Kind. Null, when non-nil, is a validity mask of
// the same length; a nil Null means every cell is valid.
type Series struct {
	Name string
	Kind Kind

	Ints   []int64
	Floats []float64
	Strs   []string

	Null []bool
}

// Ident creates an Identifier series.
func Ident(name string, vals []int64) *Series {
	return &Series{Name: name, Kind: Identifier, Ints: vals}
}

// Num creates a Numeric series.
func Num(name string, vals []float64) *Series {
	return &Series{Name: name, Kind: Numeric, Floats: vals}
}

// Time creates a Timestamp series.
func Time(name string, vals []float64) *Series {
	return &Series{Name: name, Kind: Timestamp, Floats: vals}
}

// Cat creates a Categorical series.
func Cat(name string, vals []string) *Series {
	return &Series{Name: name, Kind: Categorical, Strs: vals}
}

// Len returns the number of cells in the series.
func (s *Series) Len() int {
	switch s.Kind {
	case Identifier:
		return len(s.Ints)
	case Categorical:
		return len(s.Strs)
	default:
		return len(s.Floats)
	}
}

// IsNull reports whether cell i is null.
func (s *Series) IsNull(i int) bool {
	return s.Null != nil && s.Null[i]
}

// SetNull marks cell i as null, allocating the mask on first use.
func (s *Series) SetNull(i int) {
	if s.Null == nil {
		s.Null = make([]bool, s.Len())
	}
	s.Null[i] = true
}

// Value returns cell i as an any for row-oriented consumers (SQL binding,
// CSV export). Null cells return nil.
func (s *Series) Value(i int) any {
	if s.IsNull(i) {
		return nil
	}
	switch s.Kind {
	case Identifier:
		return s.Ints[i]
	case Categorical:
		return s.Strs[i]
	default:
		return s.Floats[i]
	}
}

// clone returns a deep copy of the series.
func (s *Series) clone() *Series {
	c := &Series{Name: s.Name, Kind: s.Kind}
	if s.Ints != nil {
		c.Ints = append([]int64(nil), s.Ints...)
	}
	if s.Floats != nil {
		c.Floats = append([]float64(nil), s.Floats...)
	}
	if s.Strs != nil {
		c.Strs = append([]string(nil), s.Strs...)
	}
	if s.Null != nil {
		c.Null = append([]bool(nil), s.Null...)
	}
	return c
}

// take returns a copy of the series keeping only the given row indexes,
// in the given order.
func (s *Series) take(rows []int) *Series {
	c := &Series{Name: s.Name, Kind: s.Kind}
	switch s.Kind {
	case Identifier:
		c.Ints = make([]int64, len(rows))
		for i, r := range rows {
			c.Ints[i] = s.Ints[r]
		}
	case Categorical:
		c.Strs = make([]string, len(rows))
		for i, r := range rows {
			c.Strs[i] = s.Strs[r]
		}
	default:
		c.Floats = make([]float64, len(rows))
		for i, r := range rows {
			c.Floats[i] = s.Floats[r]
		}
	}
	if s.Null != nil {
		c.Null = make([]bool, len(rows))
		for i, r := range rows {
			c.Null[i] = s.Null[r]
		}
	}
	return c
}

// equal reports cell-for-cell equality, including null masks. Floats are
// compared by value; transforms are deterministic so byte-identical inputs
// produce byte-identical floats.
func (s *Series) equal(o *Series) bool {
	if s.Name != o.Name || s.Kind != o.Kind || s.Len() != o.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) != o.IsNull(i) {
			return false
		}
		if s.IsNull(i) {
			continue
		}
		switch s.Kind {
		case Identifier:
			if s.Ints[i] != o.Ints[i] {
				return false
			}
		case Categorical:
			if s.Strs[i] != o.Strs[i] {
				return false
			}
		default:
			if s.Floats[i] != o.Floats[i] {
				return false
			}
		}
	}
	return true
}
