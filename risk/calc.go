package risk

import "math"

// change is the fractional move from ref to cur; 0 when ref is not positive.
func change(ref, cur float64) float64 {
	if ref <= 0 {
		return 0
	}
	return (cur - ref) / ref
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
