package stress

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/internal/telemetry"
	"github.com/rustyeddy/quantlab/internal/workers"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/metrics"
)

// SurvivalThreshold is the fraction of initial capital a path must stay
// above to count as surviving.
const SurvivalThreshold = 0.5

// Result is the impact of one scenario.
type Result struct {
	Scenario            Scenario
	FinalValue          float64
	TotalReturn         float64
	MaxDrawdown         float64 // <= 0
	WorstDay            float64
	Volatility          float64 // annualized
	VaR95               float64
	SurvivalProbability float64

	// Degraded lists metrics that fell back to neutral values because the
	// shocked series was too short.
	Degraded []string
}

type Summary struct {
	Scenarios      int
	WorstScenario  string
	WorstReturn    float64
	MeanReturn     float64
	PositiveCount  int
	SurvivingCount int // scenarios whose every point stayed above the threshold
}

type Report struct {
	InitialCapital float64
	Results        []Result // same order as the scenarios given
	Summary        Summary
}

// Result looks up a scenario's result by name.
func (r *Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Scenario.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

type Options struct {
	Parallelism int
	Metrics     *telemetry.Metrics
}

// Run evaluates every scenario against baseline. A nil scenarios slice
// means DefaultScenarios. Scenario names must be unique.
func Run(ctx context.Context, baseline []float64, initialCapital float64, scenarios []Scenario, opts Options) (*Report, error) {
	if len(baseline) == 0 {
		return nil, ErrEmptyBaseline
	}
	if !(initialCapital > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapital, initialCapital)
	}
	if scenarios == nil {
		scenarios = DefaultScenarios()
	}
	names := make(map[string]struct{}, len(scenarios))
	for _, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		if _, dup := names[sc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidScenario, sc.Name)
		}
		names[sc.Name] = struct{}{}
	}

	results := make([]Result, len(scenarios))
	pool := workers.Pool{Limit: opts.Parallelism, Kind: "stress", Metrics: opts.Metrics}
	err := pool.Run(ctx, len(scenarios), func(_ context.Context, i int) error {
		results[i] = Evaluate(baseline, initialCapital, scenarios[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Report{
		InitialCapital: initialCapital,
		Results:        results,
		Summary:        summarize(results),
	}, nil
}

// Evaluate scores a single scenario. It does not modify baseline.
func Evaluate(baseline []float64, initialCapital float64, sc Scenario) Result {
	shocked := ScaleVolatility(ApplyShock(baseline, sc), sc.VolatilityMultiplier)
	equity := market.Compound(initialCapital, shocked)

	final := equity[len(equity)-1]
	res := Result{
		Scenario:    sc,
		FinalValue:  final,
		TotalReturn: (final - initialCapital) / initialCapital,
		WorstDay:    metrics.Min(shocked),
	}

	degrade := func(name string, err error) bool {
		if errors.Is(err, metrics.ErrInsufficientData) {
			res.Degraded = append(res.Degraded, name)
			return true
		}
		return false
	}

	if dd, err := metrics.MaxDrawdown(equity); !degrade("max_drawdown", err) {
		res.MaxDrawdown = dd.Max
	}
	if vol, err := metrics.Volatility(shocked, true); !degrade("volatility", err) {
		res.Volatility = vol
	}
	if v, err := metrics.ValueAtRisk(shocked, 0.95, metrics.Historical); !degrade("var_95", err) {
		res.VaR95 = v.VaR
	}

	floor := SurvivalThreshold * initialCapital
	above := 0
	for _, v := range equity {
		if v > floor {
			above++
		}
	}
	res.SurvivalProbability = float64(above) / float64(len(equity))

	log.Debug().
		Str("scenario", sc.Name).
		Float64("total_return", res.TotalReturn).
		Float64("max_drawdown", res.MaxDrawdown).
		Msg("stress scenario evaluated")
	return res
}

// ApplyShock returns a copy of baseline with PriceShock/DurationDays added
// to each of the first DurationDays entries (clipped to the series length).
func ApplyShock(baseline []float64, sc Scenario) []float64 {
	out := append([]float64(nil), baseline...)
	if sc.DurationDays < 1 {
		return out
	}
	perDay := sc.PriceShock / float64(sc.DurationDays)
	n := sc.DurationDays
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] += perDay
	}
	return out
}

// ScaleVolatility stretches deviations from the series' own mean by mult:
// r' = mean + (r - mean) * mult. The mean is taken after any shock has been
// applied, so the shock feeds into the scaled deviations.
func ScaleVolatility(rs []float64, mult float64) []float64 {
	out := make([]float64, len(rs))
	mean := metrics.Mean(rs)
	for i, r := range rs {
		out[i] = mean + (r-mean)*mult
	}
	return out
}

func summarize(results []Result) Summary {
	s := Summary{Scenarios: len(results)}
	if len(results) == 0 {
		return s
	}
	var sum float64
	for i, r := range results {
		sum += r.TotalReturn
		if i == 0 || r.TotalReturn < s.WorstReturn {
			s.WorstReturn = r.TotalReturn
			s.WorstScenario = r.Scenario.Name
		}
		if r.TotalReturn > 0 {
			s.PositiveCount++
		}
		if r.SurvivalProbability == 1 {
			s.SurvivingCount++
		}
	}
	s.MeanReturn = sum / float64(len(results))
	return s
}
