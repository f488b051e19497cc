package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/testutil"
)

func TestDefaultConfig_MapsEveryModality(t *testing.T) {
	cfg, err := DefaultConfig(schema.MustLoad())
	require.NoError(t, err)
	for _, m := range schema.Modalities() {
		ds, ok := cfg.Datasets[m]
		require.True(t, ok, "modality %s not mapped", m)
		assert.NotEmpty(t, ds.File)
	}
	assert.NotEmpty(t, cfg.Datasets[schema.Stimulus].Meta,
		"stimulus must carry trials meta columns")
}

func TestLoadConfig_RejectsUndeclaredTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets:
  stimulus:
    file: s.csv
    columns: {Trial: trial_number, Timestamp: timestamp, Temp: no_such_column}
`), 0o644))

	_, err := LoadConfig(path, schema.MustLoad())
	require.ErrorContains(t, err, "no_such_column")
}

func TestReadVendorCSV_SkipsPreambleAndRenames(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"#Version: 8.1",
		"#StudyName: tonic heat",
		"#DATA",
		"Trial,Timestamp,EDA_RAW,SampleNumber",
		"1.0,0.0,5.25,0",
		"1.0,100.0,5.5,1",
		",,,", // inter-trial gap
		"2.0,0.0,5.75,2",
		"",
	}, "\n"))

	specs := []schema.ColumnSpec{
		{Name: frame.ColTrial, Kind: frame.Identifier, Key: true},
		{Name: frame.ColTimestamp, Kind: frame.Timestamp, Key: true},
		{Name: "eda_raw", Kind: frame.Numeric},
	}
	rename := map[string]string{
		"Trial": frame.ColTrial, "Timestamp": frame.ColTimestamp, "EDA_RAW": "eda_raw",
	}
	f, err := readVendorCSV(in, rename, specs)
	require.NoError(t, err)

	require.Equal(t, 3, f.NumRows(), "gap row must be dropped")
	trial, _ := f.Series(frame.ColTrial)
	assert.Equal(t, []int64{1, 1, 2}, trial.Ints)
	eda, _ := f.Series("eda_raw")
	assert.Equal(t, []float64{5.25, 5.5, 5.75}, eda.Floats)
}

func TestReadVendorCSV_NoPreamble(t *testing.T) {
	in := strings.NewReader("participant_id,age,gender\n1,25,f\n2,,\n")
	specs := []schema.ColumnSpec{
		{Name: frame.ColParticipant, Kind: frame.Identifier, Key: true},
		{Name: "age", Kind: frame.Numeric, Nullable: true},
		{Name: "gender", Kind: frame.Categorical, Nullable: true},
	}
	rename := map[string]string{
		frame.ColParticipant: frame.ColParticipant, "age": "age", "gender": "gender",
	}
	f, err := readVendorCSV(in, rename, specs)
	require.NoError(t, err)
	require.Equal(t, 2, f.NumRows())

	age, _ := f.Series("age")
	assert.False(t, age.IsNull(0))
	assert.True(t, age.IsNull(1))
	gender, _ := f.Series("gender")
	assert.Equal(t, "f", gender.Strs[0])
	assert.True(t, gender.IsNull(1))
}

func TestReadVendorCSV_EmptyNonNullableCellFails(t *testing.T) {
	in := strings.NewReader("Trial,Timestamp\n1.0,\n")
	specs := []schema.ColumnSpec{
		{Name: frame.ColTrial, Kind: frame.Identifier, Key: true},
		{Name: frame.ColTimestamp, Kind: frame.Timestamp, Key: true},
	}
	rename := map[string]string{"Trial": frame.ColTrial, "Timestamp": frame.ColTimestamp}

	_, err := readVendorCSV(in, rename, specs)
	require.ErrorContains(t, err, "non-nullable")
}

func TestReadVendorCSV_MissingMappedColumnFails(t *testing.T) {
	in := strings.NewReader("Trial\n1.0\n")
	specs := []schema.ColumnSpec{
		{Name: frame.ColTrial, Kind: frame.Identifier, Key: true},
		{Name: frame.ColTimestamp, Kind: frame.Timestamp, Key: true},
	}
	rename := map[string]string{"Trial": frame.ColTrial, "Timestamp": frame.ColTimestamp}

	_, err := readVendorCSV(in, rename, specs)
	require.ErrorContains(t, err, "missing a column")
}

func TestReadVendorCSV_TruncatedPreambleFails(t *testing.T) {
	in := strings.NewReader("#Version: 8.1\n#StudyName: tonic heat\n")
	_, err := readVendorCSV(in, map[string]string{}, nil)
	require.ErrorContains(t, err, "#DATA")
}

// exportDir writes a complete synthetic export tree for the default
// dataset map: two trials of three samples per modality.
func exportDir(t *testing.T, pids ...int64) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][2]string{
		"stimulus.csv": {
			"Trial,Timestamp,Temperature,Rating,Stimuli_Seed,Skin_Area",
			"%T,%S,45.5,10,42,3",
		},
		"shimmer_gsr.csv":  {"Trial,Timestamp,EDA_RAW", "%T,%S,5.25"},
		"shimmer_ppg.csv":  {"Trial,Timestamp,PPG_RAW,PPG_HeartRate,PPG_IBI", "%T,%S,0.5,70,850"},
		"et_eyetracker.csv": {"Trial,Timestamp,Pupillometry_L,Pupillometry_R", "%T,%S,4.1,4.3"},
		"eeg_enobio.csv": {
			"Trial,Timestamp,EEG_RAW_Ch1,EEG_RAW_Ch2,EEG_RAW_Ch3,EEG_RAW_Ch4,EEG_RAW_Ch5,EEG_RAW_Ch6,EEG_RAW_Ch7,EEG_RAW_Ch8",
			"%T,%S,1,2,3,4,5,6,7,8",
		},
		"affectiva.csv": {
			"Trial,Timestamp,Brow Furrow,Brow Raise,Cheek Raise,Nose Wrinkle,Upper Lip Raise,Mouth Open",
			"%T,%S,10,11,12,13,14,15",
		},
	}
	for _, pid := range pids {
		pdir := filepath.Join(dir, strconv.FormatInt(pid, 10))
		require.NoError(t, os.MkdirAll(pdir, 0o755))
		for name, tmpl := range files {
			var b strings.Builder
			b.WriteString("#Source: synthetic\n#DATA\n")
			b.WriteString(tmpl[0] + "\n")
			for trial := 1; trial <= 2; trial++ {
				for sample := 0; sample < 3; sample++ {
					row := strings.ReplaceAll(tmpl[1], "%T", strconv.Itoa(trial)+".0")
					row = strings.ReplaceAll(row, "%S", strconv.Itoa(sample*100)+".0")
					b.WriteString(row + "\n")
				}
			}
			require.NoError(t, os.WriteFile(filepath.Join(pdir, name), []byte(b.String()), 0o644))
		}
	}
	return dir
}

func TestIngest_PopulatesRawAndTrials(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	cfg, err := DefaultConfig(s.Registry())
	require.NoError(t, err)

	dir := exportDir(t, 1, 2)
	err = New(s, cfg).Ingest(ctx, Options{DataDir: dir, Participants: []int64{1, 2}})
	require.NoError(t, err)

	for _, m := range schema.Modalities() {
		f, err := s.GetTable(ctx, m, schema.Raw, false)
		require.NoError(t, err, "raw table for %s missing", m)
		assert.Equal(t, 12, f.NumRows(), "modality %s", m)
		assert.Len(t, f.TrialKeys(), 4)
	}

	trials, err := s.GetTableByName(ctx, schema.TableTrials, false)
	require.NoError(t, err)
	require.Equal(t, 4, trials.NumRows())
	seed, _ := trials.Series("stimulus_seed")
	assert.Equal(t, int64(42), seed.Ints[0])
	start, _ := trials.Series("timestamp_start")
	end, _ := trials.Series("timestamp_end")
	dur, _ := trials.Series("duration")
	assert.Equal(t, 0.0, start.Floats[0])
	assert.Equal(t, 200.0, end.Floats[0])
	assert.Equal(t, 200.0, dur.Floats[0])
}

func TestIngest_MissingExportWritesNothing(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()
	cfg, err := DefaultConfig(s.Registry())
	require.NoError(t, err)

	dir := exportDir(t, 1)
	require.NoError(t, os.Remove(filepath.Join(dir, "1", "affectiva.csv")))

	err = New(s, cfg).Ingest(ctx, Options{DataDir: dir, Participants: []int64{1}})
	require.Error(t, err)

	for _, m := range schema.Modalities() {
		_, err := s.GetTable(ctx, m, schema.Raw, false)
		assert.Error(t, err, "partial ingest wrote %s", m)
	}
}

func TestLoadStatic_Participants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("participant_id,age,gender\n1,31,f\n2,27,m\n"), 0o644))

	spec, ok := schema.MustLoad().SpecByName(schema.TableParticipants)
	require.True(t, ok)
	f, err := LoadStatic(path, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumRows())
}
