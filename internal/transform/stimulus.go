package transform

import (
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// stimulusGridMs is the resampling grid for the stimulus stream. The
// thermode logs at an uneven rate around 10 Hz; preprocessing puts every
// trial on the same 100 ms grid.
const stimulusGridMs = 100.0

func emptyStimulusSeries() *frame.Frame {
	return frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
		frame.Num("temperature", nil),
		frame.Num("rating", nil),
	)
}

// StimulusPreprocess resamples temperature and rating onto the common
// 100 ms grid per trial. Drops: nothing. Fatal: non-monotonic timestamps.
func StimulusPreprocess(f *frame.Frame) (*frame.Frame, error) {
	return mapTrials(f, emptyStimulusSeries(), func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.Stimulus, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.Stimulus, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}
		temp, err := needSeries(schema.Stimulus, k, trial, "temperature")
		if err != nil {
			return nil, err
		}
		rating, err := needSeries(schema.Stimulus, k, trial, "rating")
		if err != nil {
			return nil, err
		}

		grid := sampleGrid(ts.Floats[0], ts.Floats[len(ts.Floats)-1], stimulusGridMs)
		return frame.New(
			constIdent(frame.ColParticipant, k.Participant, len(grid)),
			constIdent(frame.ColTrial, k.Trial, len(grid)),
			frame.Time(frame.ColTimestamp, grid),
			frame.Num("temperature", resampleLinear(ts.Floats, temp.Floats, grid)),
			frame.Num("rating", resampleLinear(ts.Floats, rating.Floats, grid)),
		)
	})
}

// StimulusFeature collapses each trial to temperature and rating
// summaries. The rating AUC is the time integral of the continuous
// rating, the standard summary for tonic pain paradigms.
func StimulusFeature(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Num("mean_temperature", nil),
		frame.Num("max_temperature", nil),
		frame.Num("mean_rating", nil),
		frame.Num("max_rating", nil),
		frame.Num("rating_auc", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		ts, err := needSeries(schema.Stimulus, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}
		temp, err := needSeries(schema.Stimulus, k, trial, "temperature")
		if err != nil {
			return nil, err
		}
		rating, err := needSeries(schema.Stimulus, k, trial, "rating")
		if err != nil {
			return nil, err
		}

		return frame.New(
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
			frame.Num("mean_temperature", []float64{mean(temp.Floats)}),
			frame.Num("max_temperature", []float64{maxOf(temp.Floats)}),
			frame.Num("mean_rating", []float64{mean(rating.Floats)}),
			frame.Num("max_rating", []float64{maxOf(rating.Floats)}),
			frame.Num("rating_auc", []float64{trapezoidAUC(ts.Floats, rating.Floats)}),
		)
	})
}
