package transform

import (
	"errors"
	"fmt"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// Func maps one stage's table to the next for a single modality. It must
// be pure and deterministic: same input frame, same output frame.
type Func func(*frame.Frame) (*frame.Frame, error)

// TransformError reports a trial the transform could not process and
// chose to treat as fatal for the whole modality batch.
type TransformError struct {
	Modality schema.Modality
	Key      frame.TrialKey
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %s: %s", e.Modality, e.Key, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TransformError) Unwrap() error { return e.Cause }

// IsTransformError reports whether err is (or wraps) a TransformError.
func IsTransformError(err error) bool {
	var te *TransformError
	return errors.As(err, &te)
}

// AsTransformError unwraps a TransformError from err, or returns nil.
func AsTransformError(err error) *TransformError {
	var te *TransformError
	if errors.As(err, &te) {
		return te
	}
	return nil
}

type key struct {
	modality schema.Modality
	target   schema.Stage
}

// Set is the registry of transforms, one per (modality, target stage).
// Immutable after construction; safe for concurrent lookup.
type Set struct {
	funcs map[key]Func
}

// NewSet creates an empty transform set. Tests use this to register
// failing stand-ins; production code uses Default.
func NewSet() *Set {
	return &Set{funcs: make(map[key]Func)}
}

// Register adds a transform for (modality, target). Registering the same
// pair twice is an error.
func (s *Set) Register(m schema.Modality, target schema.Stage, fn Func) error {
	if fn == nil {
		return fmt.Errorf("transform: nil func for %s", schema.TableName(m, target))
	}
	if _, ok := target.Predecessor(); !ok {
		return fmt.Errorf("transform: %s is not a transform target", target)
	}
	k := key{modality: m, target: target}
	if _, dup := s.funcs[k]; dup {
		return fmt.Errorf("transform: %s already registered", schema.TableName(m, target))
	}
	s.funcs[k] = fn
	return nil
}

// Lookup returns the transform for (modality, target).
func (s *Set) Lookup(m schema.Modality, target schema.Stage) (Func, bool) {
	fn, ok := s.funcs[key{modality: m, target: target}]
	return fn, ok
}

// Default returns the full transform set: every modality, both stage
// boundaries.
func Default() *Set {
	s := NewSet()
	register := func(m schema.Modality, target schema.Stage, fn Func) {
		if err := s.Register(m, target, fn); err != nil {
			panic(err) // registration table below is static
		}
	}

	register(schema.Stimulus, schema.Preprocess, StimulusPreprocess)
	register(schema.Stimulus, schema.Feature, StimulusFeature)
	register(schema.EDA, schema.Preprocess, EDAPreprocess)
	register(schema.EDA, schema.Feature, EDAFeature)
	register(schema.EEG, schema.Preprocess, EEGPreprocess)
	register(schema.EEG, schema.Feature, EEGFeature)
	register(schema.PPG, schema.Preprocess, PPGPreprocess)
	register(schema.PPG, schema.Feature, PPGFeature)
	register(schema.Pupil, schema.Preprocess, PupilPreprocess)
	register(schema.Pupil, schema.Feature, PupilFeature)
	register(schema.Face, schema.Preprocess, FacePreprocess)
	register(schema.Face, schema.Feature, FaceFeature)
	return s
}

// mapTrials applies fn to each trial of f in first-appearance order and
// concatenates the results. fn returning (nil, nil) drops the trial.
// empty must be a zero-row frame with the output columns; it is returned
// when f has no rows or every trial is dropped, so the output schema is
// stable regardless of content.
func mapTrials(f *frame.Frame, empty *frame.Frame, fn func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error)) (*frame.Frame, error) {
	keys, rows := f.TrialRows()
	outs := []*frame.Frame{empty}
	for _, k := range keys {
		trial := f.Take(rows[k])
		out, err := fn(k, trial)
		if err != nil {
			return nil, err
		}
		if out == nil {
			continue
		}
		outs = append(outs, out)
	}
	return frame.Concat(outs...)
}

// checkMonotonic verifies strictly increasing timestamps within a trial.
// Out-of-order samples mean the recording is corrupt; that is fatal for
// the modality, not a droppable artifact.
func checkMonotonic(m schema.Modality, k frame.TrialKey, trial *frame.Frame) error {
	ts, ok := trial.Series(frame.ColTimestamp)
	if !ok {
		return &TransformError{Modality: m, Key: k, Message: "missing timestamp column"}
	}
	for i := 1; i < len(ts.Floats); i++ {
		if ts.Floats[i] <= ts.Floats[i-1] {
			return &TransformError{
				Modality: m,
				Key:      k,
				Message:  fmt.Sprintf("non-monotonic timestamp at sample %d", i),
			}
		}
	}
	return nil
}

// needSeries fetches a column the predecessor table contract guarantees.
// Its absence means the caller bypassed schema validation; treated as
// fatal rather than silently skipped.
func needSeries(m schema.Modality, k frame.TrialKey, trial *frame.Frame, name string) (*frame.Series, error) {
	s, ok := trial.Series(name)
	if !ok {
		return nil, &TransformError{Modality: m, Key: k, Message: fmt.Sprintf("missing column %q", name)}
	}
	return s, nil
}

// constIdent returns an identifier series of n copies of v.
func constIdent(name string, v int64, n int) *frame.Series {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = v
	}
	return frame.Ident(name, vals)
}
