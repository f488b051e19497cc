package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/physiolab/physiopipe/internal/exclusion"
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// PutTable validates and atomically replaces the table for a
// (modality, stage) pair. On a *schema.SchemaError nothing is written
// and any previously stored table is left untouched.
func (s *Store) PutTable(ctx context.Context, m schema.Modality, st schema.Stage, f *frame.Frame) error {
	return s.PutTableByName(ctx, schema.TableName(m, st), f)
}

// GetTable reads the persisted table for a (modality, stage) pair.
// Returns *NotFoundError when the table has not been populated. With
// excludeInvalid set, rows matching the persisted exclusion list are
// filtered out of the result; the stored rows are unaffected.
func (s *Store) GetTable(ctx context.Context, m schema.Modality, st schema.Stage, excludeInvalid bool) (*frame.Frame, error) {
	return s.GetTableByName(ctx, schema.TableName(m, st), excludeInvalid)
}

// PutTableByName is PutTable for any declared table, including the
// static siblings (participants, trials, calibration, questionnaires)
// written once at ingestion.
func (s *Store) PutTableByName(ctx context.Context, table string, f *frame.Frame) error {
	spec, ok := s.registry.SpecByName(table)
	if !ok {
		return fmt.Errorf("no contract declared for table %s", table)
	}
	if err := schema.ValidateSpec(f, spec); err != nil {
		return err
	}

	// Normalize column order to the declaration so the stored bytes do
	// not depend on how the producer assembled the frame.
	ordered, err := f.Select(spec.ColumnNames()...)
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %s: begin tx: %w", table, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", spec.Name)); err != nil {
		return fmt.Errorf("put %s: drop: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(spec)); err != nil {
		return fmt.Errorf("put %s: create: %w", table, err)
	}

	ins, err := tx.PrepareContext(ctx, insertSQL(spec))
	if err != nil {
		return fmt.Errorf("put %s: prepare insert: %w", table, err)
	}
	defer ins.Close()

	args := make([]any, ordered.NumCols())
	for row := 0; row < ordered.NumRows(); row++ {
		for i := 0; i < ordered.NumCols(); i++ {
			args[i] = ordered.SeriesAt(i).Value(row)
		}
		if _, err := ins.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("put %s: insert row %d: %w", table, row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %s: commit: %w", table, err)
	}
	return nil
}

// GetTableByName is GetTable for any declared table.
func (s *Store) GetTableByName(ctx context.Context, table string, excludeInvalid bool) (*frame.Frame, error) {
	spec, ok := s.registry.SpecByName(table)
	if !ok {
		return nil, fmt.Errorf("no contract declared for table %s", table)
	}

	exists, err := s.tableExists(ctx, spec.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Table: spec.Name}
	}

	rows, err := s.db.QueryContext(ctx, selectSQL(spec))
	if err != nil {
		return nil, fmt.Errorf("get %s: query: %w", table, err)
	}
	defer rows.Close()

	f, err := scanFrame(rows, spec)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}

	if excludeInvalid {
		list, err := s.Exclusions(ctx)
		if err != nil {
			return nil, err
		}
		f = exclusion.Filter(f, list)
	}
	return f, nil
}

// DropTable removes a (modality, stage) table entirely. Used by tests
// and by full re-ingestion; the pipeline itself only ever replaces.
func (s *Store) DropTable(ctx context.Context, m schema.Modality, st schema.Stage) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", schema.TableName(m, st)))
	if err != nil {
		return fmt.Errorf("drop %s: %w", schema.TableName(m, st), err)
	}
	return nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// scanFrame reads all result rows into a frame shaped by the table
// contract.
func scanFrame(rows *sql.Rows, spec schema.TableSpec) (*frame.Frame, error) {
	n := len(spec.Columns)
	ints := make([]sql.NullInt64, n)
	floats := make([]sql.NullFloat64, n)
	strs := make([]sql.NullString, n)

	dest := make([]any, n)
	for i, c := range spec.Columns {
		switch c.Kind {
		case frame.Identifier:
			dest[i] = &ints[i]
		case frame.Categorical:
			dest[i] = &strs[i]
		default:
			dest[i] = &floats[i]
		}
	}

	cols := make([]*frame.Series, n)
	masks := make([][]bool, n)
	anyNull := make([]bool, n)
	for i, c := range spec.Columns {
		cols[i] = &frame.Series{Name: c.Name, Kind: c.Kind}
	}

	row := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", row, err)
		}
		for i, c := range spec.Columns {
			s := cols[i]
			var null bool
			switch c.Kind {
			case frame.Identifier:
				s.Ints = append(s.Ints, ints[i].Int64)
				null = !ints[i].Valid
			case frame.Categorical:
				s.Strs = append(s.Strs, strs[i].String)
				null = !strs[i].Valid
			default:
				s.Floats = append(s.Floats, floats[i].Float64)
				null = !floats[i].Valid
			}
			masks[i] = append(masks[i], null)
			if null {
				anyNull[i] = true
			}
		}
		row++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	for i := range cols {
		if anyNull[i] {
			cols[i].Null = masks[i]
		}
	}
	return frame.New(cols...)
}
