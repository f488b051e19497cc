package frame

import (
	"bytes"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// CanonicalBytes produces the deterministic serialization used for table
// fingerprints.
//
// Layout, all fields newline-terminated:
//
//	one header line per column: name U+001F kind
//	a blank separator line
//	one line per cell, column-major within each row: rendered value
//
// Rendering rules:
//   - Identifier: base-10 int64
//   - Numeric/Timestamp: strconv.FormatFloat 'g' with shortest
//     round-trip precision, so equal floats always render identically
//   - Categorical: NFC-normalized string (diacritics in labels must not
//     change identity depending on how an editor encoded them)
//   - null cells: the single byte 0x00
//
// The unit separator in header lines prevents a column named "a\nnumeric"
// from colliding with a column "a" of kind numeric.
func CanonicalBytes(f *Frame) []byte {
	var buf bytes.Buffer
	for i := 0; i < f.NumCols(); i++ {
		s := f.SeriesAt(i)
		buf.WriteString(norm.NFC.String(s.Name))
		buf.WriteByte(0x1f)
		buf.WriteString(s.Kind.String())
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	for row := 0; row < f.NumRows(); row++ {
		for i := 0; i < f.NumCols(); i++ {
			s := f.SeriesAt(i)
			if s.IsNull(row) {
				buf.WriteByte(0x00)
				buf.WriteByte('\n')
				continue
			}
			switch s.Kind {
			case Identifier:
				buf.WriteString(strconv.FormatInt(s.Ints[row], 10))
			case Categorical:
				buf.WriteString(norm.NFC.String(s.Strs[row]))
			default:
				buf.WriteString(strconv.FormatFloat(s.Floats[row], 'g', -1, 64))
			}
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
