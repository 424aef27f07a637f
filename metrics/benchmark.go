package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Regression is the OLS fit of portfolio returns on benchmark returns.
type Regression struct {
	Beta            float64
	Alpha           float64 // per-period intercept
	AnnualizedAlpha float64
	Correlation     float64
	RSquared        float64
	Flag            string
}

func checkPair(portfolio, benchmark []float64) error {
	if len(portfolio) != len(benchmark) {
		return fmt.Errorf("%w: portfolio %d, benchmark %d", ErrLengthMismatch, len(portfolio), len(benchmark))
	}
	if len(portfolio) < 2 {
		return fmt.Errorf("%w: need at least 2 observations, got %d", ErrLengthMismatch, len(portfolio))
	}
	return nil
}

// BetaAlpha regresses portfolio on benchmark. The two series must be the
// same length with at least two observations, else ErrLengthMismatch.
func BetaAlpha(portfolio, benchmark []float64) (Regression, error) {
	if err := checkPair(portfolio, benchmark); err != nil {
		return Regression{}, err
	}

	if StdDev(benchmark) == 0 {
		a := Mean(portfolio)
		return Regression{Alpha: a, AnnualizedAlpha: a * TradingDays, Flag: FlagZeroBenchmarkVar}, nil
	}

	alpha, beta := stat.LinearRegression(benchmark, portfolio, nil, false)
	r := Regression{
		Beta:            beta,
		Alpha:           alpha,
		AnnualizedAlpha: alpha * TradingDays,
	}
	if StdDev(portfolio) != 0 {
		r.Correlation = stat.Correlation(portfolio, benchmark, nil)
		r.RSquared = r.Correlation * r.Correlation
	}
	return r, nil
}

// InformationRatio is the annualized mean of portfolio-benchmark excess
// returns over their annualized standard deviation (tracking error).
func InformationRatio(portfolio, benchmark []float64) (Ratio, error) {
	if err := checkPair(portfolio, benchmark); err != nil {
		return Ratio{Flag: err.Error()}, err
	}
	excess := make([]float64, len(portfolio))
	for i := range portfolio {
		excess[i] = portfolio[i] - benchmark[i]
	}
	te := StdDev(excess) * sqrtYear
	if te == 0 {
		return Ratio{Flag: FlagZeroTrackingError}, nil
	}
	return defined(Mean(excess) * TradingDays / te), nil
}

// TrackingError is the annualized standard deviation of excess returns.
func TrackingError(portfolio, benchmark []float64) (float64, error) {
	if err := checkPair(portfolio, benchmark); err != nil {
		return 0, err
	}
	excess := make([]float64, len(portfolio))
	for i := range portfolio {
		excess[i] = portfolio[i] - benchmark[i]
	}
	return StdDev(excess) * sqrtYear, nil
}
