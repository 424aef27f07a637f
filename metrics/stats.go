// Package metrics computes risk and performance statistics over return
// series and equity curves. Every function is pure. Functions that need more
// data than they were given return ErrInsufficientData together with a
// neutral result, so callers assembling many metrics can keep going.
package metrics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is the number of periods per year used to annualize daily data.
const TradingDays = 252

var (
	ErrInsufficientData  = errors.New("insufficient data")
	ErrLengthMismatch    = errors.New("series length mismatch")
	ErrInvalidConfidence = errors.New("confidence must be in (0,1)")
)

// Flags attached to sentinel results. These describe well-defined outcomes,
// not failures.
const (
	FlagZeroVolatility    = "zero volatility"
	FlagNoDownside        = "no downside"
	FlagNoDrawdown        = "no drawdown"
	FlagZeroBenchmarkVar  = "zero benchmark variance"
	FlagZeroTrackingError = "zero tracking error"
)

var sqrtYear = math.Sqrt(TradingDays)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample (n-1) standard deviation, or 0 when fewer than
// two values are given.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Percentile returns the p-th percentile (0..100) of xs with linear
// interpolation between closest ranks. xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return sortedPercentile(s, p)
}

func sortedPercentile(s []float64, p float64) float64 {
	if p <= 0 {
		return s[0]
	}
	if p >= 100 {
		return s[len(s)-1]
	}
	pos := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	frac := pos - float64(lo)
	return s[lo] + (s[hi]-s[lo])*frac
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
