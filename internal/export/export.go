// Package export renders stored tables for analysis outside the
// pipeline: plain CSV for the statistics tooling, Excel workbooks for
// the experimenters.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/physiolab/physiopipe/internal/frame"
)

// WriteCSV writes the frame as CSV: a header row of canonical column
// names, one row per sample, null cells empty. Floats are rendered with
// the shortest decimal form that round-trips.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, f.NumCols())
	for row := 0; row < f.NumRows(); row++ {
		for i := 0; i < f.NumCols(); i++ {
			rec[i] = cellString(f.SeriesAt(i), row)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sheet names one workbook sheet and its content.
type Sheet struct {
	Name  string
	Frame *frame.Frame
}

// WriteExcel writes one workbook with one sheet per table, in the given
// order. Numeric cells stay numeric so the workbook is usable without
// re-parsing.
func WriteExcel(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("export: no sheets to write")
	}
	wb := excelize.NewFile()
	defer wb.Close()

	for si, sheet := range sheets {
		if si == 0 {
			// Rename the implicit default sheet rather than leaving it
			// empty at the front of the workbook.
			if err := wb.SetSheetName(wb.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := wb.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
		if err := fillSheet(wb, sheet.Name, sheet.Frame); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func fillSheet(wb *excelize.File, name string, f *frame.Frame) error {
	for i, col := range f.Columns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := wb.SetCellValue(name, cell, col); err != nil {
			return err
		}
	}
	for row := 0; row < f.NumRows(); row++ {
		for i := 0; i < f.NumCols(); i++ {
			v := f.SeriesAt(i).Value(row)
			if v == nil {
				continue // null stays a blank cell
			}
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return err
			}
			if err := wb.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellString(s *frame.Series, row int) string {
	if s.IsNull(row) {
		return ""
	}
	switch s.Kind {
	case frame.Identifier:
		return strconv.FormatInt(s.Ints[row], 10)
	case frame.Categorical:
		return s.Strs[row]
	default:
		return strconv.FormatFloat(s.Floats[row], 'g', -1, 64)
	}
}
