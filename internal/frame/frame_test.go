package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame() *Frame {
	return MustNew(
		Ident(ColParticipant, []int64{1, 1, 1, 2, 2}),
		Ident(ColTrial, []int64{1, 1, 2, 1, 1}),
		Time(ColTimestamp, []float64{0, 10, 0, 0, 10}),
		Num("eda_raw", []float64{0.5, 0.6, 0.7, 1.1, 1.2}),
	)
}

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New(
		Ident(ColParticipant, []int64{1, 2}),
		Num("eda_raw", []float64{0.5}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New(
		Num("eda_raw", []float64{0.5}),
		Num("eda_raw", []float64{0.6}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestColumnsPreserveOrder(t *testing.T) {
	f := sampleFrame()
	assert.Equal(t, []string{ColParticipant, ColTrial, ColTimestamp, "eda_raw"}, f.Columns())
	assert.Equal(t, 5, f.NumRows())
	assert.Equal(t, 4, f.NumCols())
}

func TestFilterKeepsRowOrder(t *testing.T) {
	f := sampleFrame()
	got := f.Filter(func(row int) bool {
		k, _ := f.KeyAt(row)
		return k.Participant == 1
	})

	require.Equal(t, 3, got.NumRows())
	eda, ok := got.Series("eda_raw")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 0.6, 0.7}, eda.Floats)
}

func TestFilterEmptyFrameKeepsColumns(t *testing.T) {
	f := sampleFrame().Filter(func(int) bool { return false })
	assert.Equal(t, 0, f.NumRows())
	assert.Equal(t, 4, f.NumCols())
}

func TestTrialKeysDistinctFirstAppearance(t *testing.T) {
	keys := sampleFrame().TrialKeys()
	assert.Equal(t, []TrialKey{
		{Participant: 1, Trial: 1},
		{Participant: 1, Trial: 2},
		{Participant: 2, Trial: 1},
	}, keys)
}

func TestTrialRowsGroupsByKey(t *testing.T) {
	keys, rows := sampleFrame().TrialRows()
	require.Len(t, keys, 3)
	assert.Equal(t, []int{0, 1}, rows[TrialKey{Participant: 1, Trial: 1}])
	assert.Equal(t, []int{2}, rows[TrialKey{Participant: 1, Trial: 2}])
	assert.Equal(t, []int{3, 4}, rows[TrialKey{Participant: 2, Trial: 1}])
}

func TestCloneIsDeep(t *testing.T) {
	f := sampleFrame()
	c := f.Clone()
	require.True(t, f.Equal(c))

	s, _ := c.Series("eda_raw")
	s.Floats[0] = 99

	assert.False(t, f.Equal(c), "mutating the clone must not affect the original")
}

func TestEqualDetectsNullMaskDifference(t *testing.T) {
	a := MustNew(Num("x", []float64{1, 2}))
	b := MustNew(Num("x", []float64{1, 2}))
	require.True(t, a.Equal(b))

	sb, _ := b.Series("x")
	sb.SetNull(1)
	assert.False(t, a.Equal(b))
}

func TestSelectUnknownColumn(t *testing.T) {
	_, err := sampleFrame().Select("nope")
	require.Error(t, err)
}

func TestValueReturnsNilForNull(t *testing.T) {
	s := Num("x", []float64{1, 2})
	s.SetNull(0)
	assert.Nil(t, s.Value(0))
	assert.Equal(t, 2.0, s.Value(1))
}
