package transform

import (
	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

const (
	// edaSmoothHalfWidth smooths sensor noise before decomposition
	// (about 0.5 s at the 32 Hz sampling rate).
	edaSmoothHalfWidth = 8

	// edaTonicHalfWidth is the wide window whose moving average is taken
	// as the tonic (slow) skin conductance level, about 4 s each side.
	edaTonicHalfWidth = 128

	// scrMinAmplitude is the phasic threshold in microsiemens for
	// counting a skin conductance response.
	scrMinAmplitude = 0.05

	// scrMinDistance keeps two counted responses at least ~1 s apart.
	scrMinDistance = 32
)

// EDAPreprocess decomposes the raw conductance into tonic and phasic
// components: tonic is a wide moving average, phasic the residual after
// smoothing. Drops: nothing. Fatal: non-monotonic timestamps.
func EDAPreprocess(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
		frame.Num("eda_tonic", nil),
		frame.Num("eda_phasic", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.EDA, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.EDA, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}
		raw, err := needSeries(schema.EDA, k, trial, "eda_raw")
		if err != nil {
			return nil, err
		}

		smoothed := movingAverage(raw.Floats, edaSmoothHalfWidth)
		tonic := movingAverage(smoothed, edaTonicHalfWidth)
		phasic := make([]float64, len(smoothed))
		for i := range smoothed {
			phasic[i] = smoothed[i] - tonic[i]
		}

		return frame.New(
			constIdent(frame.ColParticipant, k.Participant, len(tonic)),
			constIdent(frame.ColTrial, k.Trial, len(tonic)),
			frame.Time(frame.ColTimestamp, append([]float64(nil), ts.Floats...)),
			frame.Num("eda_tonic", tonic),
			frame.Num("eda_phasic", phasic),
		)
	})
}

// EDAFeature summarizes each trial: mean tonic level, mean phasic
// activity, count of skin conductance responses, and their mean
// amplitude. A trial without any counted response gets a null amplitude,
// not a zero — zero would be a real (and impossible) measurement.
func EDAFeature(f *frame.Frame) (*frame.Frame, error) {
	empty := frame.MustNew(
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Num("mean_tonic", nil),
		frame.Num("mean_phasic", nil),
		frame.Num("scr_count", nil),
		frame.Num("scr_amplitude_mean", nil),
	)
	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		tonic, err := needSeries(schema.EDA, k, trial, "eda_tonic")
		if err != nil {
			return nil, err
		}
		phasic, err := needSeries(schema.EDA, k, trial, "eda_phasic")
		if err != nil {
			return nil, err
		}

		peaks := findPeaks(phasic.Floats, scrMinAmplitude, scrMinDistance)
		amplitude := frame.Num("scr_amplitude_mean", []float64{0})
		if len(peaks) > 0 {
			sum := 0.0
			for _, p := range peaks {
				sum += phasic.Floats[p]
			}
			amplitude.Floats[0] = sum / float64(len(peaks))
		} else {
			amplitude.SetNull(0)
		}

		return frame.New(
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
			frame.Num("mean_tonic", []float64{mean(tonic.Floats)}),
			frame.Num("mean_phasic", []float64{mean(phasic.Floats)}),
			frame.Num("scr_count", []float64{float64(len(peaks))}),
			amplitude,
		)
	})
}
