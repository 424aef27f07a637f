package metrics

import "math"

// Ratio is a risk-adjusted return. When Defined is false, Value holds the
// documented sentinel and Flag says why.
type Ratio struct {
	Value   float64
	Defined bool
	Flag    string
}

func defined(v float64) Ratio { return Ratio{Value: v, Defined: true} }

// Volatility is the sample standard deviation of returns, optionally
// annualized by sqrt(252).
func Volatility(returns []float64, annualize bool) (float64, error) {
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}
	v := StdDev(returns)
	if annualize {
		v *= sqrtYear
	}
	return v, nil
}

// DownsideVolatility is Volatility restricted to negative returns. With
// fewer than two negative returns it is 0.
func DownsideVolatility(returns []float64, annualize bool) (float64, error) {
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}
	var neg []float64
	for _, r := range returns {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	v := StdDev(neg)
	if annualize {
		v *= sqrtYear
	}
	return v, nil
}

// Sharpe is (annualized mean - riskFree) / annualized volatility. riskFree
// is an annual rate. Zero volatility yields 0.
func Sharpe(returns []float64, riskFree float64) (Ratio, error) {
	if len(returns) < 2 {
		return Ratio{Flag: ErrInsufficientData.Error()}, ErrInsufficientData
	}
	vol := StdDev(returns) * sqrtYear
	if vol == 0 {
		return Ratio{Flag: FlagZeroVolatility}, nil
	}
	return defined((Mean(returns)*TradingDays - riskFree) / vol), nil
}

// Sortino uses the annualized downside deviation of returns below target
// (a per-period return, usually 0) as the denominator. With no return below
// target the ratio is +Inf when the excess return is positive and 0
// otherwise, flagged as FlagNoDownside.
func Sortino(returns []float64, riskFree, target float64) (Ratio, error) {
	if len(returns) < 2 {
		return Ratio{Flag: ErrInsufficientData.Error()}, ErrInsufficientData
	}
	excess := Mean(returns)*TradingDays - riskFree

	var (
		sumSq float64
		n     int
	)
	for _, r := range returns {
		if r < target {
			d := r - target
			sumSq += d * d
			n++
		}
	}
	if n == 0 {
		v := 0.0
		if excess > 0 {
			v = math.Inf(1)
		}
		return Ratio{Value: v, Flag: FlagNoDownside}, nil
	}
	dd := math.Sqrt(sumSq/float64(n)) * sqrtYear
	if dd == 0 {
		return Ratio{Flag: FlagZeroVolatility}, nil
	}
	return defined(excess / dd), nil
}

// AnnualizedReturn compounds the total return of equity to a yearly rate,
// treating each step as one trading day.
func AnnualizedReturn(equity []float64) (float64, error) {
	if len(equity) < 2 {
		return 0, ErrInsufficientData
	}
	first, last := equity[0], equity[len(equity)-1]
	if first <= 0 {
		return 0, ErrInsufficientData
	}
	total := last / first
	if total <= 0 {
		return -1, nil
	}
	periods := float64(len(equity) - 1)
	return math.Pow(total, TradingDays/periods) - 1, nil
}

// Calmar is AnnualizedReturn / |max drawdown|. It is undefined (0, flagged
// FlagNoDrawdown) iff the curve never declines from a peak.
func Calmar(equity []float64) (Ratio, error) {
	ar, err := AnnualizedReturn(equity)
	if err != nil {
		return Ratio{Flag: err.Error()}, err
	}
	dd, err := MaxDrawdown(equity)
	if err != nil {
		return Ratio{Flag: err.Error()}, err
	}
	if dd.Max == 0 {
		return Ratio{Flag: FlagNoDrawdown}, nil
	}
	return defined(ar / math.Abs(dd.Max)), nil
}
