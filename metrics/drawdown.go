package metrics

// Drawdown describes the worst peak-to-trough decline of an equity curve.
// Max and Current are fractions and are always <= 0.
type Drawdown struct {
	Max         float64
	PeakIndex   int
	TroughIndex int
	Duration    int // TroughIndex - PeakIndex
	Current     float64
}

// MaxDrawdown scans equity once, tracking the running maximum.
func MaxDrawdown(equity []float64) (Drawdown, error) {
	if len(equity) < 2 {
		return Drawdown{}, ErrInsufficientData
	}

	var (
		dd      Drawdown
		peak    = equity[0]
		peakIdx = 0
		cur     float64
	)
	for i, v := range equity {
		if v > peak {
			peak = v
			peakIdx = i
		}
		cur = 0
		if peak > 0 {
			cur = (v - peak) / peak
		}
		if cur < dd.Max {
			dd.Max = cur
			dd.PeakIndex = peakIdx
			dd.TroughIndex = i
		}
	}
	dd.Duration = dd.TroughIndex - dd.PeakIndex
	dd.Current = cur
	return dd, nil
}

// DrawdownSeries returns the drawdown at every point of equity.
func DrawdownSeries(equity []float64) []float64 {
	out := make([]float64, len(equity))
	peak := 0.0
	for i, v := range equity {
		if i == 0 || v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak
		}
	}
	return out
}
