package transform

import (
	"math"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// ppgSmoothHalfWidth smooths the raw optical signal (about 0.1 s at the
// 128 Hz sampling rate).
const ppgSmoothHalfWidth = 13

// PPGPreprocess smooths the optical signal and densifies the vendor's
// sparse heart-rate estimates into a continuous trace by linear
// interpolation. The raw ibi column is a derivative of heart rate and is
// not carried forward.
//
// Drops: a trial whose heart_rate column is entirely null (the sensor
// never locked on). Fatal: non-monotonic timestamps.
func PPGPreprocess(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
		frame.Num("ppg_raw", nil),
		frame.Num("heart_rate", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.PPG, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.PPG, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}
		raw, err := needSeries(schema.PPG, k, trial, "ppg_raw")
		if err != nil {
			return nil, err
		}
		hr, err := needSeries(schema.PPG, k, trial, "heart_rate")
		if err != nil {
			return nil, err
		}

		filled, ok := fillLinear(hr.Floats, hr.Null)
		if !ok {
			return nil, nil // never locked on; drop the trial
		}

		n := trial.NumRows()
		return frame.New(
			constIdent(frame.ColParticipant, k.Participant, n),
			constIdent(frame.ColTrial, k.Trial, n),
			frame.Time(frame.ColTimestamp, append([]float64(nil), ts.Floats...)),
			frame.Num("ppg_raw", movingAverage(raw.Floats, ppgSmoothHalfWidth)),
			frame.Num("heart_rate", filled),
		)
	})
}

// PPGFeature summarizes cardiac activity per trial: heart-rate mean and
// range, plus the SDNN and RMSSD variability measures computed from the
// interbeat intervals implied by the heart-rate trace. Variability cells
// are null for trials too short to yield two intervals.
func PPGFeature(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Num("hr_mean", nil),
		frame.Num("hr_min", nil),
		frame.Num("hr_max", nil),
		frame.Num("ibi_sdnn", nil),
		frame.Num("ibi_rmssd", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		hr, err := needSeries(schema.PPG, k, trial, "heart_rate")
		if err != nil {
			return nil, err
		}

		ibis := make([]float64, 0, len(hr.Floats))
		for _, bpm := range hr.Floats {
			if bpm > 0 {
				ibis = append(ibis, 60000/bpm)
			}
		}

		sdnn := frame.Num("ibi_sdnn", []float64{0})
		rmssd := frame.Num("ibi_rmssd", []float64{0})
		if v := sampleStd(ibis); !math.IsNaN(v) {
			sdnn.Floats[0] = v
		} else {
			sdnn.SetNull(0)
		}
		if len(ibis) >= 2 {
			diffs := make([]float64, len(ibis)-1)
			for i := 1; i < len(ibis); i++ {
				diffs[i-1] = ibis[i] - ibis[i-1]
			}
			rmssd.Floats[0] = rms(diffs)
		} else {
			rmssd.SetNull(0)
		}

		return frame.New(
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
			frame.Num("hr_mean", []float64{mean(hr.Floats)}),
			frame.Num("hr_min", []float64{minOf(hr.Floats)}),
			frame.Num("hr_max", []float64{maxOf(hr.Floats)}),
			sdnn,
			rmssd,
		)
	})
}
