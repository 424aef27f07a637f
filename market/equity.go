package market

import "time"

// EquityCurve is the portfolio value at each input timestamp.
type EquityCurve struct {
	Times  []time.Time
	Values []float64
}

func (c EquityCurve) Len() int { return len(c.Values) }

// Initial returns the first value, or 0 for an empty curve.
func (c EquityCurve) Initial() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return c.Values[0]
}

// Final returns the last value, or 0 for an empty curve.
func (c EquityCurve) Final() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return c.Values[len(c.Values)-1]
}

// Returns is the first-difference percentage series of the curve;
// its length is Len()-1 (0 for curves shorter than two points).
func (c EquityCurve) Returns() ReturnSeries {
	return returnsOf(c.Values)
}

// ReturnSeries holds fractional period returns (0.01 == +1%).
type ReturnSeries []float64

func returnsOf(values []float64) ReturnSeries {
	if len(values) < 2 {
		return ReturnSeries{}
	}
	out := make(ReturnSeries, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out[i-1] = (values[i] - prev) / prev
	}
	return out
}

// Compound grows initial through rs: out[0] = initial, out[i+1] = out[i]*(1+rs[i]).
func Compound(initial float64, rs []float64) []float64 {
	out := make([]float64, len(rs)+1)
	out[0] = initial
	for i, r := range rs {
		out[i+1] = out[i] * (1 + r)
	}
	return out
}
