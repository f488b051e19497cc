package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// dataMarker terminates the iMotions metadata preamble; the CSV header
// is the next line.
const dataMarker = "#DATA"

// column accumulates one canonical column while scanning vendor rows.
type column struct {
	spec   schema.ColumnSpec
	ints   []int64
	floats []float64
	strs   []string
	null   []bool
	any    bool // any null seen
}

func (c *column) appendCell(cell string) error {
	if cell == "" {
		if !c.spec.Nullable {
			return fmt.Errorf("empty cell in non-nullable column %s", c.spec.Name)
		}
		c.null = append(c.null, true)
		c.any = true
		switch c.spec.Kind {
		case frame.Identifier:
			c.ints = append(c.ints, 0)
		case frame.Categorical:
			c.strs = append(c.strs, "")
		default:
			c.floats = append(c.floats, 0)
		}
		return nil
	}
	c.null = append(c.null, false)
	switch c.spec.Kind {
	case frame.Identifier:
		// Vendor exports render identifiers as floats ("3.0").
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || v != float64(int64(v)) {
			return fmt.Errorf("column %s: %q is not an identifier", c.spec.Name, cell)
		}
		c.ints = append(c.ints, int64(v))
	case frame.Categorical:
		c.strs = append(c.strs, cell)
	default:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Errorf("column %s: %q is not numeric", c.spec.Name, cell)
		}
		c.floats = append(c.floats, v)
	}
	return nil
}

func (c *column) series() *frame.Series {
	s := &frame.Series{Name: c.spec.Name, Kind: c.spec.Kind,
		Ints: c.ints, Floats: c.floats, Strs: c.strs}
	if c.any {
		s.Null = c.null
	}
	return s
}

// readVendorCSV parses one export stream into a frame with the given
// column specs. rename maps vendor header names to canonical names;
// vendor columns outside the map are skipped. Rows where every mapped
// cell is empty (inter-trial gaps in the export) are dropped.
func readVendorCSV(r io.Reader, rename map[string]string, specs []schema.ColumnSpec) (*frame.Frame, error) {
	br := bufio.NewReader(r)
	if err := skipPreamble(br); err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1 // vendor rows are ragged after the last sensor value

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	byName := make(map[string]schema.ColumnSpec, len(specs))
	for _, sp := range specs {
		byName[sp.Name] = sp
	}

	// Map each wanted canonical column to its vendor field index.
	cols := make(map[string]*column, len(specs))
	index := make(map[string]int, len(specs))
	for i, vendor := range header {
		canonical, ok := rename[strings.TrimSpace(vendor)]
		if !ok {
			continue
		}
		sp, ok := byName[canonical]
		if !ok {
			continue
		}
		index[canonical] = i
		cols[canonical] = &column{spec: sp}
	}
	for _, sp := range specs {
		if _, ok := cols[sp.Name]; !ok {
			return nil, fmt.Errorf("export is missing a column for %s", sp.Name)
		}
	}

	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if allEmpty(rec, index) {
			continue
		}
		for name, i := range index {
			var cell string
			if i < len(rec) {
				cell = strings.TrimSpace(rec[i])
			}
			if err := cols[name].appendCell(cell); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
		row++
	}

	series := make([]*frame.Series, len(specs))
	for i, sp := range specs {
		series[i] = cols[sp.Name].series()
	}
	return frame.New(series...)
}

// skipPreamble consumes lines up to and including the #DATA marker. A
// stream with no marker is taken to start at the header directly, so
// plain CSVs (participants, calibration) go through the same reader.
func skipPreamble(br *bufio.Reader) error {
	// Preamble lines all start with '#'; a file whose first byte is
	// anything else starts at the header directly.
	peek, err := br.Peek(1)
	if err != nil || peek[0] != '#' {
		return nil
	}
	for {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(strings.TrimSpace(line), dataMarker) {
			return nil
		}
		if err == io.EOF {
			return fmt.Errorf("no %s marker in export preamble", dataMarker)
		}
		if err != nil {
			return fmt.Errorf("scan preamble: %w", err)
		}
	}
}

// allEmpty reports whether every mapped field of the record is empty.
func allEmpty(rec []string, index map[string]int) bool {
	for _, i := range index {
		if i < len(rec) && strings.TrimSpace(rec[i]) != "" {
			return false
		}
	}
	return true
}
