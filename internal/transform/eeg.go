package transform

import (
	"fmt"

	"github.com/physiolab/physiopipe/internal/frame"
	"github.com/physiolab/physiopipe/internal/schema"
)

// eegChannels is the montage size of the acquisition cap.
const eegChannels = 8

// eegDetrendHalfWidth is the window for the moving-average baseline
// removed from each channel (about 0.5 s at 256 Hz). Subtracting it acts
// as a crude high-pass that strips electrode drift.
const eegDetrendHalfWidth = 128

func eegChannelName(ch int) string { return fmt.Sprintf("eeg_ch%d", ch) }

// EEGPreprocess removes the slow drift from each channel by subtracting
// a wide moving average. Drops: nothing. Fatal: non-monotonic timestamps.
func EEGPreprocess(f *frame.Frame) (*frame.Frame, error) {
	emptyCols := []*frame.Series{
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
		frame.Time(frame.ColTimestamp, nil),
	}
	for ch := 1; ch <= eegChannels; ch++ {
		emptyCols = append(emptyCols, frame.Num(eegChannelName(ch), nil))
	}
	empty := frame.MustNew(emptyCols...)

	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		if err := checkMonotonic(schema.EEG, k, trial); err != nil {
			return nil, err
		}
		ts, err := needSeries(schema.EEG, k, trial, frame.ColTimestamp)
		if err != nil {
			return nil, err
		}

		n := trial.NumRows()
		cols := []*frame.Series{
			constIdent(frame.ColParticipant, k.Participant, n),
			constIdent(frame.ColTrial, k.Trial, n),
			frame.Time(frame.ColTimestamp, append([]float64(nil), ts.Floats...)),
		}
		for ch := 1; ch <= eegChannels; ch++ {
			raw, err := needSeries(schema.EEG, k, trial, eegChannelName(ch))
			if err != nil {
				return nil, err
			}
			baseline := movingAverage(raw.Floats, eegDetrendHalfWidth)
			detrended := make([]float64, n)
			for i := range detrended {
				detrended[i] = raw.Floats[i] - baseline[i]
			}
			cols = append(cols, frame.Num(eegChannelName(ch), detrended))
		}
		return frame.New(cols...)
	})
}

// EEGFeature reduces each trial to the per-channel RMS amplitude of the
// detrended signal.
func EEGFeature(f *frame.Frame) (*frame.Frame, error) {
	emptyCols := []*frame.Series{
		frame.Ident(frame.ColParticipant, nil),
		frame.Ident(frame.ColTrial, nil),
	}
	for ch := 1; ch <= eegChannels; ch++ {
		emptyCols = append(emptyCols, frame.Num(fmt.Sprintf("rms_ch%d", ch), nil))
	}
	empty := frame.MustNew(emptyCols...)

	return mapTrials(f, empty, func(k frame.TrialKey, trial *frame.Frame) (*frame.Frame, error) {
		cols := []*frame.Series{
			frame.Ident(frame.ColParticipant, []int64{k.Participant}),
			frame.Ident(frame.ColTrial, []int64{k.Trial}),
		}
		for ch := 1; ch <= eegChannels; ch++ {
			sig, err := needSeries(schema.EEG, k, trial, eegChannelName(ch))
			if err != nil {
				return nil, err
			}
			cols = append(cols, frame.Num(fmt.Sprintf("rms_ch%d", ch), []float64{rms(sig.Floats)}))
		}
		return frame.New(cols...)
	})
}
