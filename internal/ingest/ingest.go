package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
)

// Ingestor loads vendor exports into a store.
type Ingestor struct {
	store *store.Store
	cfg   Config
}

// New creates an ingestor over the given store and dataset map.
func New(s *store.Store, cfg Config) *Ingestor {
	return &Ingestor{store: s, cfg: cfg}
}

// Options selects what to ingest. DataDir holds one directory per
// participant, named by participant id, each containing the export
// files the dataset map names.
type Options struct {
	DataDir      string
	Participants []int64
}

// Ingest reads every participant's exports and replaces the six raw
// tables plus the trials metadata table. The whole cohort is read
// before anything is written, so a malformed export leaves the store
// untouched.
func (ig *Ingestor) Ingest(ctx context.Context, opts Options) error {
	if len(opts.Participants) == 0 {
		return fmt.Errorf("ingest: no participants requested")
	}

	raw := make(map[schema.Modality]*frame.Frame)
	var trials *frame.Frame

	for _, m := range schema.Modalities() {
		ds := ig.cfg.Datasets[m]
		var parts []*frame.Frame
		for _, pid := range opts.Participants {
			f, err := ig.readParticipant(m, opts.DataDir, pid)
			if err != nil {
				return err
			}
			parts = append(parts, f)
			slog.Debug("export read",
				"modality", m, "participant", pid, "rows", f.NumRows())
		}
		all, err := frame.Concat(parts...)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", m, err)
		}

		if m == schema.Stimulus {
			trials, err = buildTrials(all, ig.trialsSpec())
			if err != nil {
				return fmt.Errorf("ingest: derive trials: %w", err)
			}
		}
		raw[m], err = all.Select(ig.rawSpec(m).ColumnNames()...)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", m, err)
		}
		slog.Info("modality read", "modality", m, "rows", raw[m].NumRows(),
			"file", ds.File)
	}

	for _, m := range schema.Modalities() {
		if err := ig.store.PutTable(ctx, m, schema.Raw, raw[m]); err != nil {
			return fmt.Errorf("ingest %s: %w", m, err)
		}
	}
	if err := ig.store.PutTableByName(ctx, schema.TableTrials, trials); err != nil {
		return fmt.Errorf("ingest trials: %w", err)
	}
	return nil
}

// readParticipant parses one modality export for one participant and
// returns it with the participant_id column prepended. For stimulus the
// result also carries the trials meta columns.
func (ig *Ingestor) readParticipant(m schema.Modality, dataDir string, pid int64) (*frame.Frame, error) {
	ds := ig.cfg.Datasets[m]
	path := filepath.Join(dataDir, strconv.FormatInt(pid, 10), ds.File)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s for participant %d: %w", m, pid, err)
	}
	defer file.Close()

	specs, rename := ig.vendorColumns(m)
	f, err := readVendorCSV(file, rename, specs)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %s: %w", m, path, err)
	}
	return withParticipant(f, pid)
}

// vendorColumns assembles the columns read from a modality's export:
// the raw table's columns minus participant_id, plus the meta columns
// feeding the trials table.
func (ig *Ingestor) vendorColumns(m schema.Modality) ([]schema.ColumnSpec, map[string]string) {
	ds := ig.cfg.Datasets[m]

	var specs []schema.ColumnSpec
	for _, c := range ig.rawSpec(m).Columns {
		if c.Name != frame.ColParticipant {
			specs = append(specs, c)
		}
	}
	rename := make(map[string]string, len(ds.Columns)+len(ds.Meta))
	for vendor, canonical := range ds.Columns {
		rename[vendor] = canonical
	}
	for vendor, canonical := range ds.Meta {
		rename[vendor] = canonical
		c, _ := ig.trialsSpec().Column(canonical)
		specs = append(specs, c)
	}
	return specs, rename
}

func (ig *Ingestor) rawSpec(m schema.Modality) schema.TableSpec {
	spec, _ := ig.store.Registry().SpecByName(schema.TableName(m, schema.Raw))
	return spec
}

func (ig *Ingestor) trialsSpec() schema.TableSpec {
	spec, _ := ig.store.Registry().SpecByName(schema.TableTrials)
	return spec
}

// withParticipant prepends a constant participant_id column.
func withParticipant(f *frame.Frame, pid int64) (*frame.Frame, error) {
	ids := make([]int64, f.NumRows())
	for i := range ids {
		ids[i] = pid
	}
	series := []*frame.Series{frame.Ident(frame.ColParticipant, ids)}
	for i := 0; i < f.NumCols(); i++ {
		series = append(series, f.SeriesAt(i))
	}
	return frame.New(series...)
}

// buildTrials derives the trials metadata table from the stimulus
// frames: per trial, the stimulus seed and skin area from its first
// sample and the trial's time window.
func buildTrials(stimulus *frame.Frame, spec schema.TableSpec) (*frame.Frame, error) {
	ts, ok := stimulus.Series(frame.ColTimestamp)
	if !ok {
		return nil, fmt.Errorf("stimulus export has no %s column", frame.ColTimestamp)
	}
	seed, ok := stimulus.Series("stimulus_seed")
	if !ok {
		return nil, fmt.Errorf("stimulus export has no stimulus_seed column")
	}
	skin, ok := stimulus.Series("skin_area")
	if !ok {
		return nil, fmt.Errorf("stimulus export has no skin_area column")
	}

	keys, rows := stimulus.TrialRows()
	var (
		participants = make([]int64, 0, len(keys))
		trials       = make([]int64, 0, len(keys))
		seeds        = make([]int64, 0, len(keys))
		skins        = make([]int64, 0, len(keys))
		starts       = make([]float64, 0, len(keys))
		ends         = make([]float64, 0, len(keys))
		durations    = make([]float64, 0, len(keys))
	)
	for _, k := range keys {
		idx := rows[k]
		first, last := idx[0], idx[len(idx)-1]
		participants = append(participants, k.Participant)
		trials = append(trials, k.Trial)
		seeds = append(seeds, seed.Ints[first])
		skins = append(skins, skin.Ints[first])
		starts = append(starts, ts.Floats[first])
		ends = append(ends, ts.Floats[last])
		durations = append(durations, ts.Floats[last]-ts.Floats[first])
	}

	f, err := frame.New(
		frame.Ident(frame.ColParticipant, participants),
		frame.Ident(frame.ColTrial, trials),
		frame.Ident("stimulus_seed", seeds),
		frame.Ident("skin_area", skins),
		frame.Num("timestamp_start", starts),
		frame.Num("timestamp_end", ends),
		frame.Num("duration", durations),
	)
	if err != nil {
		return nil, err
	}
	return f.Select(spec.ColumnNames()...)
}

// LoadStatic reads a plain CSV whose header already uses canonical
// column names into a frame shaped by the named table's contract. Used
// for the participants, calibration, and questionnaire files.
func LoadStatic(path string, spec schema.TableSpec) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Name, err)
	}
	defer file.Close()

	rename := make(map[string]string, len(spec.Columns))
	for _, c := range spec.Columns {
		rename[c.Name] = c.Name
	}
	f, err := readVendorCSV(file, rename, spec.Columns)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Name, err)
	}
	return f, nil
}
