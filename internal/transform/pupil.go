package transform

import (
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

const (
	// blinkThresholdMm: eye-tracker diameters below this are blink
	// artifacts, not pupils.
	blinkThresholdMm = 1.5

	// blinkPadSamples widens each blink by this many samples on both
	// sides; the partial occlusion around a blink is as unusable as the
	// blink itself (2 samples ~ 33 ms at 60 Hz).
	blinkPadSamples = 2

	// pupilSmoothHalfWidth low-passes the deblinked trace (~0.25 s at
	// 60 Hz).
	pupilSmoothHalfWidth = 15

	// maxBlinkFraction is the giving-up point: a trial with more blink
	// samples than this has no recoverable pupil signal.
	maxBlinkFraction = 0.5
)

// deblink returns xs with blink samples interpolated away, plus the
// fraction of samples that were blink. ok is false when nothing valid
// remains.
func deblink(xs []float64) (filled []float64, blinkFrac float64, ok bool) {
	null := make([]bool, len(xs))
	blinks := 0
	for i, x := range xs {
		if x < blinkThresholdMm {
			null[i] = true
		}
	}
	// Widen each blink run.
	padded := make([]bool, len(null))
	copy(padded, null)
	for i, isBlink := range null {
		if !isBlink {
			continue
		}
		for d := -blinkPadSamples; d <= blinkPadSamples; d++ {
			if j := i + d; j >= 0 && j < len(padded) {
				padded[j] = true
			}
		}
	}
	for _, b := range padded {
		if b {
			blinks++
		}
	}
	filled, ok = fillLinear(xs, padded)
	if len(xs) == 0 {
		return nil, 0, false
	}
	return filled, float64(blinks) / float64(len(xs)), ok
}

// PupilPreprocess removes blinks from both eyes, interpolates across
// them, low-passes, and adds the binocular mean trace.
//
// Drops: trials where either eye is blink for more than half the trial
// or has no valid sample at all. Fatal: non-monotonic timestamps.
func PupilPreprocess(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
		frame.Num("pupil_l", nil),
		frame.Num("pupil_r", nil),
		frame.Num("pupil_mean", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.Pupil, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.Pupil, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}
		left, err := needSeries(schema.Pupil, k, trial, "pupil_l")
		if err != nil {
			return nil, err
		}
		right, err := needSeries(schema.Pupil, k, trial, "pupil_r")
		if err != nil {
			return nil, err
		}

		l, lFrac, lOK := deblink(left.Floats)
		r, rFrac, rOK := deblink(right.Floats)
		if !lOK || !rOK || lFrac > maxBlinkFraction || rFrac > maxBlinkFraction {
			return nil, nil // no recoverable signal; drop the trial
		}

		l = movingAverage(l, pupilSmoothHalfWidth)
		r = movingAverage(r, pupilSmoothHalfWidth)
		both := make([]float64, len(l))
		for i := range both {
			both[i] = (l[i] + r[i]) / 2
		}

		return frame.New(
			constIdent(frame.ColParticipant, k.Participant, len(l)),
			constIdent(frame.ColTrial, k.Trial, len(l)),
			frame.Time(frame.ColTimestamp, append([]float64(nil), ts.Floats...)),
			frame.Num("pupil_l", l),
			frame.Num("pupil_r", r),
			frame.Num("pupil_mean", both),
		)
	})
}

// PupilFeature reduces each trial to summaries of the binocular mean
// diameter.
func PupilFeature(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Num("mean_pupil", nil),
		frame.Num("min_pupil", nil),
		frame.Num("max_pupil", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		both, err := needSeries(schema.Pupil, k, trial, "pupil_mean")
		if err != nil {
			return nil, err
		}
		return frame.New(
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
			frame.Num("mean_pupil", []float64{mean(both.Floats)}),
			frame.Num("min_pupil", []float64{minOf(both.Floats)}),
			frame.Num("max_pupil", []float64{maxOf(both.Floats)}),
		)
	})
}
