package transform

import (
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// faceAUs are the tracked facial action units, in table column order.
// The set follows the pain-expression literature: brow lowering, orbit
// tightening, levator contraction, mouth opening.
var faceAUs = []string{
	"brow_furrow",
	"brow_raise",
	"cheek_raise",
	"nose_wrinkle",
	"upper_lip_raise",
	"mouth_open",
}

// FacePreprocess fills the gaps in the event-driven expression stream.
// The vendor engine only emits a row when an estimate changes, so raw
// cells may be null; preprocessing interpolates them onto the recorded
// timestamps so downstream sees a dense trace.
//
// Drops: trials where an action unit has no estimate at all. Fatal:
// non-monotonic timestamps.
func FacePreprocess(f *frame.Frame) (*frame.Frame, error) {
	emptyCols := []*frame.Series{
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
	}
	for _, au := range faceAUs {
		emptyCols = append(emptyCols, frame.Num(au, nil))
	}
	empty := frame.MustNew(emptyCols...)

	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.Face, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.Face, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}

		n := trial.NumRows()
		cols := []*frame.Series{
			constIdent(frame.ColParticipant, k.Participant, n),
			constIdent(frame.ColTrial, k.Trial, n),
			frame.Time(frame.ColTimestamp, append([]float64(nil), ts.Floats...)),
		}
		for _, au := range faceAUs {
			raw, err := needSeries(schema.Face, k, trial, au)
			if err != nil {
				return nil, err
			}
			filled, ok := fillLinear(raw.Floats, raw.Null)
			if !ok {
				return nil, nil // the tracker never saw this face; drop the trial
			}
			cols = append(cols, frame.Num(au, filled))
		}
		return frame.New(cols...)
	})
}

// FaceFeature reduces each trial to the mean evidence per action unit.
func FaceFeature(f *frame.Frame) (*frame.Frame, error) {
	emptyCols := []*frame.Series{
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
	}
	for _, au := range faceAUs {
		emptyCols = append(emptyCols, frame.Num(au+"_mean", nil))
	}
	empty := frame.MustNew(emptyCols...)

	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		cols := []*frame.Series{
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
		}
		for _, au := range faceAUs {
			sig, err := needSeries(schema.Face, k, trial, au)
			if err != nil {
				return nil, err
			}
			cols = append(cols, frame.Num(au+"_mean", []float64{mean(sig.Floats)}))
		}
		return frame.New(cols...)
	})
}
