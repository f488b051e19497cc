package transform

import "math"

// Shared numeric primitives for the per-modality transforms. All of them
// are deterministic; none allocate surprises into their inputs.

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

// sampleStd is the n-1 standard deviation. Returns NaN for fewer than
// two samples; callers map that to a null feature cell.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	mu := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func rms(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// movingAverage smooths with a centered window of the given half-width,
// clamped at the edges. halfWidth 0 returns a copy.
func movingAverage(xs []float64, halfWidth int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i - halfWidth
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWidth
		if hi > len(xs)-1 {
			hi = len(xs) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += xs[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// fillLinear replaces null cells by linear interpolation between the
// nearest valid neighbors; leading and trailing null runs take the
// nearest valid value. Returns the filled copy and false when no cell is
// valid at all.
func fillLinear(xs []float64, null []bool) ([]float64, bool) {
	out := append([]float64(nil), xs...)
	if null == nil {
		return out, true
	}

	firstValid := -1
	for i := range out {
		if !null[i] {
			firstValid = i
			break
		}
	}
	if firstValid == -1 {
		return nil, false
	}

	lastValid := firstValid
	for i := range out {
		if null[i] {
			continue
		}
		if i-lastValid > 1 {
			// Interpolate the (lastValid, i) gap.
			step := (out[i] - out[lastValid]) / float64(i-lastValid)
			for j := lastValid + 1; j < i; j++ {
				out[j] = out[lastValid] + step*float64(j-lastValid)
			}
		}
		lastValid = i
	}
	for i := 0; i < firstValid; i++ {
		out[i] = out[firstValid]
	}
	for i := lastValid + 1; i < len(out); i++ {
		out[i] = out[lastValid]
	}
	return out, true
}

// sampleGrid returns timestamps from t0 to at most t1 in fixed steps,
// always including t0.
func sampleGrid(t0, t1, step float64) []float64 {
	var grid []float64
	for t := t0; t <= t1; t += step {
		grid = append(grid, t)
	}
	return grid
}

// resampleLinear evaluates the piecewise-linear signal (ts, xs) at the
// grid points. Grid points outside [ts[0], ts[last]] clamp to the edge
// values. ts must be strictly increasing (checked by the caller).
func resampleLinear(ts, xs, grid []float64) []float64 {
	out := make([]float64, len(grid))
	j := 0
	for i, t := range grid {
		switch {
		case t <= ts[0]:
			out[i] = xs[0]
		case t >= ts[len(ts)-1]:
			out[i] = xs[len(xs)-1]
		default:
			for ts[j+1] < t {
				j++
			}
			frac := (t - ts[j]) / (ts[j+1] - ts[j])
			out[i] = xs[j] + frac*(xs[j+1]-xs[j])
		}
	}
	return out
}

// trapezoidAUC integrates the signal over time with the trapezoid rule.
// Timestamps are milliseconds; the result is in value-seconds.
func trapezoidAUC(ts, xs []float64) float64 {
	auc := 0.0
	for i := 1; i < len(ts); i++ {
		auc += (xs[i] + xs[i-1]) / 2 * (ts[i] - ts[i-1]) / 1000
	}
	return auc
}

// findPeaks returns indexes of local maxima at least minHeight high and
// at least minDistance samples apart. When two peaks are too close, the
// earlier (already accepted) one wins.
func findPeaks(xs []float64, minHeight float64, minDistance int) []int {
	var peaks []int
	for i := 1; i < len(xs)-1; i++ {
		if xs[i] < minHeight {
			continue
		}
		if xs[i] <= xs[i-1] || xs[i] < xs[i+1] {
			continue
		}
		if len(peaks) > 0 && i-peaks[len(peaks)-1] < minDistance {
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}
