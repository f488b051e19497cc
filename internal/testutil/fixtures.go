// Package testutil builds deterministic synthetic datasets for tests.
//
// Fixtures are generated, not loaded from disk: the waveforms are fixed
// functions of the row index, so two calls with the same arguments
// always yield byte-identical frames. Golden tests and fingerprint
// comparisons depend on that.
package testutil

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
)

// DefaultKeys is the standard two-participant, two-trial cohort used by
// most scenarios.
var DefaultKeys = []frame.TrialKey{
	{Participant: 1, Trial: 1},
	{Participant: 1, Trial: 2},
	{Participant: 2, Trial: 1},
	{Participant: 2, Trial: 2},
}

// RawTable builds a conforming raw-stage frame for one modality:
// len(keys) trials with the given number of samples each, sampled every
// 10 ms. Signal values are smooth deterministic waveforms; the sparse
// vendor streams (PPG estimates, facial action units) carry the null
// patterns seen in real exports.
func RawTable(t *testing.T, m schema.Modality, keys []frame.TrialKey, samples int) *frame.Frame {
	t.Helper()

	n := len(keys) * samples
	participants := make([]int64, 0, n)
	trials := make([]int64, 0, n)
	ts := make([]float64, 0, n)
	for _, k := range keys {
		for i := 0; i < samples; i++ {
			participants = append(participants, k.Participant)
			trials = append(trials, k.Trial)
			ts = append(ts, float64(i)*10)
		}
	}
	cols := []*frame.Series{
		frame.Ident(frame.ColParticipant, participants),
		frame.Ident(frame.ColTrial, trials),
		frame.Time(frame.ColTimestamp, ts),
	}

	wave := func(scale, offset float64) []float64 {
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = offset + scale*math.Sin(float64(i%samples)/5)
		}
		return xs
	}

	switch m {
	case schema.Stimulus:
		cols = append(cols,
			frame.Num("temperature", wave(2, 45)),
			frame.Num("rating", wave(20, 50)),
		)
	case schema.EDA:
		cols = append(cols, frame.Num("eda_raw", wave(0.3, 5)))
	case schema.EEG:
		for ch := 1; ch <= 8; ch++ {
			cols = append(cols, frame.Num(fmt.Sprintf("eeg_ch%d", ch), wave(10, float64(ch))))
		}
	case schema.PPG:
		hr := frame.Num("heart_rate", wave(5, 70))
		ibi := frame.Num("ibi", wave(50, 850))
		for i := 0; i < n; i++ {
			if i%4 != 0 {
				hr.SetNull(i)
				ibi.SetNull(i)
			}
		}
		cols = append(cols, frame.Num("ppg_raw", wave(1, 0)), hr, ibi)
	case schema.Pupil:
		cols = append(cols,
			frame.Num("pupil_l", wave(0.4, 4)),
			frame.Num("pupil_r", wave(0.4, 4.2)),
		)
	case schema.Face:
		for _, spec := range mustSpec(t, schema.TableName(schema.Face, schema.Raw)).Columns {
			if spec.Key {
				continue
			}
			s := frame.Num(spec.Name, wave(10, 20))
			for i := 0; i < n; i += 3 {
				s.SetNull(i)
			}
			cols = append(cols, s)
		}
	default:
		t.Fatalf("no fixture for modality %s", m)
	}
	return frame.MustNew(cols...)
}

// SeedRaw writes a raw table for every modality into the store.
func SeedRaw(t *testing.T, s *store.Store, keys []frame.TrialKey, samples int) {
	t.Helper()
	ctx := context.Background()
	for _, m := range schema.Modalities() {
		if err := s.PutTable(ctx, m, schema.Raw, RawTable(t, m, keys, samples)); err != nil {
			t.Fatalf("seed %s raw: %v", m, err)
		}
	}
}

// OpenStore opens a fresh on-disk store in the test's temp directory.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir()+"/physio.db", schema.MustLoad())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSpec(t *testing.T, name string) schema.TableSpec {
	t.Helper()
	spec, ok := schema.MustLoad().SpecByName(name)
	if !ok {
		t.Fatalf("no contract for %s", name)
	}
	return spec
}
