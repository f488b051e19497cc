package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiolab/physiopipe/internal/frame"
)

func TestLoadDeclaresEveryPipelineTable(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	for _, m := range Modalities() {
		for _, s := range Stages() {
			spec, ok := r.Spec(m, s)
			require.True(t, ok, "missing spec for %s", TableName(m, s))
			assert.Equal(t, TableName(m, s), spec.Name)
			assert.NotEmpty(t, spec.KeyColumns())
		}
	}
}

func TestTimeSeriesStagesShareKeyShape(t *testing.T) {
	r := MustLoad()
	for _, m := range Modalities() {
		for _, s := range []Stage{Raw, Preprocess} {
			spec, _ := r.Spec(m, s)
			assert.Equal(t,
				[]string{frame.ColParticipant, frame.ColTrial, frame.ColTimestamp},
				spec.KeyColumns(), "table %s", spec.Name)
		}
		spec, _ := r.Spec(m, Feature)
		assert.Equal(t,
			[]string{frame.ColParticipant, frame.ColTrial},
			spec.KeyColumns(), "table %s", spec.Name)
	}
}

func TestStaticTablesDeclared(t *testing.T) {
	r := MustLoad()
	for _, name := range []string{TableParticipants, TableTrials, TableCalibration, TableQuestionnaires} {
		spec, ok := r.SpecByName(name)
		require.True(t, ok, "missing spec for %s", name)
		assert.NotEmpty(t, spec.KeyColumns())
	}
}

func validEDARaw() *frame.Frame {
	return frame.MustNew(
		frame.Ident(frame.ColParticipant, []int64{1, 1}),
		frame.Ident(frame.ColTrial, []int64{1, 1}),
		frame.Time(frame.ColTimestamp, []float64{0, 10}),
		frame.Num("eda_raw", []float64{0.5, 0.6}),
	)
}

func TestValidateAcceptsConformingFrame(t *testing.T) {
	r := MustLoad()
	require.NoError(t, r.Validate(validEDARaw(), EDA, Raw))
}

func TestValidateMissingColumn(t *testing.T) {
	r := MustLoad()
	f := frame.MustNew(
		frame.Ident(frame.ColParticipant, []int64{1}),
		frame.Ident(frame.ColTrial, []int64{1}),
		frame.Time(frame.ColTimestamp, []float64{0}),
	)

	err := r.Validate(f, EDA, Raw)
	require.Error(t, err)
	se := AsSchemaError(err)
	require.NotNil(t, se)
	assert.Equal(t, MissingColumn, se.Kind)
	assert.Equal(t, "eda_raw", se.Column)
}

func TestValidateUnexpectedColumn(t *testing.T) {
	r := MustLoad()
	f := frame.MustNew(
		frame.Ident(frame.ColParticipant, []int64{1}),
		frame.Ident(frame.ColTrial, []int64{1}),
		frame.Time(frame.ColTimestamp, []float64{0}),
		frame.Num("eda_raw", []float64{0.5}),
		frame.Num("stray", []float64{1}),
	)

	se := AsSchemaError(r.Validate(f, EDA, Raw))
	require.NotNil(t, se)
	assert.Equal(t, UnexpectedColumn, se.Kind)
	assert.Equal(t, "stray", se.Column)
}

func TestValidateTypeMismatch(t *testing.T) {
	r := MustLoad()
	f := frame.MustNew(
		frame.Ident(frame.ColParticipant, []int64{1}),
		frame.Ident(frame.ColTrial, []int64{1}),
		frame.Time(frame.ColTimestamp, []float64{0}),
		frame.Cat("eda_raw", []string{"0.5"}),
	)

	se := AsSchemaError(r.Validate(f, EDA, Raw))
	require.NotNil(t, se)
	assert.Equal(t, TypeMismatch, se.Kind)
	assert.Equal(t, "numeric", se.Want)
	assert.Equal(t, "categorical", se.Got)
}

func TestValidateNullInNonNullableColumn(t *testing.T) {
	r := MustLoad()
	f := validEDARaw()
	s, _ := f.Series("eda_raw")
	s.SetNull(1)

	se := AsSchemaError(r.Validate(f, EDA, Raw))
	require.NotNil(t, se)
	assert.Equal(t, TypeMismatch, se.Kind)
	assert.Equal(t, "null", se.Got)
}

func TestValidateNullableColumnAcceptsNulls(t *testing.T) {
	r := MustLoad()
	f := frame.MustNew(
		frame.Ident(frame.ColParticipant, []int64{1}),
		frame.Ident(frame.ColTrial, []int64{1}),
		frame.Time(frame.ColTimestamp, []float64{0}),
		frame.Num("ppg_raw", []float64{0.2}),
		frame.Num("heart_rate", []float64{0}),
		frame.Num("ibi", []float64{0}),
	)
	hr, _ := f.Series("heart_rate")
	hr.SetNull(0)
	ibi, _ := f.Series("ibi")
	ibi.SetNull(0)

	require.NoError(t, r.Validate(f, PPG, Raw))
}

func TestFaceRawColumnsNullable(t *testing.T) {
	r := MustLoad()
	spec, _ := r.Spec(Face, Raw)
	col, ok := spec.Column("brow_furrow")
	require.True(t, ok)
	assert.True(t, col.Nullable)

	spec, _ = r.Spec(Face, Preprocess)
	col, _ = spec.Column("brow_furrow")
	assert.False(t, col.Nullable, "preprocess fills nulls")
}

func TestParseModalityAndStage(t *testing.T) {
	m, err := ParseModality("eeg")
	require.NoError(t, err)
	assert.Equal(t, EEG, m)

	_, err = ParseModality("ecg")
	assert.Error(t, err)

	s, err := ParseStage("feature")
	require.NoError(t, err)
	assert.Equal(t, Feature, s)

	_, err = ParseStage("final")
	assert.Error(t, err)
}

func TestStagePredecessor(t *testing.T) {
	p, ok := Preprocess.Predecessor()
	require.True(t, ok)
	assert.Equal(t, Raw, p)

	p, ok = Feature.Predecessor()
	require.True(t, ok)
	assert.Equal(t, Preprocess, p)

	_, ok = Raw.Predecessor()
	assert.False(t, ok, "raw is populated by ingestion, not the pipeline")
}
