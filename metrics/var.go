package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// VaRMethod selects how the loss threshold is estimated.
type VaRMethod int

const (
	Historical VaRMethod = iota
	Parametric
)

func (m VaRMethod) String() string {
	switch m {
	case Historical:
		return "historical"
	case Parametric:
		return "parametric"
	default:
		return fmt.Sprintf("VaRMethod(%d)", int(m))
	}
}

// VaR holds a one-period value-at-risk estimate. Both VaR and CVaR are
// expressed as returns, so losses are negative and CVaR <= VaR.
type VaR struct {
	Confidence float64
	Method     VaRMethod
	VaR        float64
	CVaR       float64
}

// ValueAtRisk estimates VaR and CVaR of returns at confidence (e.g. 0.95).
//
// Historical VaR is the (1-confidence) percentile of returns. Parametric VaR
// is mean + std * z(1-confidence) under a Normal assumption. CVaR is the mean
// of the returns at or below VaR; if no observation is that low, CVaR = VaR.
func ValueAtRisk(returns []float64, confidence float64, method VaRMethod) (VaR, error) {
	out := VaR{Confidence: confidence, Method: method}
	if !(confidence > 0 && confidence < 1) {
		return out, fmt.Errorf("%w: %v", ErrInvalidConfidence, confidence)
	}
	if len(returns) < 2 {
		return out, ErrInsufficientData
	}

	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	switch method {
	case Parametric:
		z := distuv.UnitNormal.Quantile(1 - confidence)
		out.VaR = Mean(returns) + StdDev(returns)*z
	default:
		out.VaR = sortedPercentile(sorted, (1-confidence)*100)
	}

	var (
		sum float64
		n   int
	)
	for _, r := range sorted {
		if r > out.VaR {
			break
		}
		sum += r
		n++
	}
	out.CVaR = out.VaR
	if n > 0 {
		out.CVaR = math.Min(sum/float64(n), out.VaR)
	}
	return out, nil
}
