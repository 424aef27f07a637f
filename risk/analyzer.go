package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/quantlab/internal/telemetry"
	"github.com/rustyeddy/quantlab/montecarlo"
	"github.com/rustyeddy/quantlab/stress"
)

// Names of metrics added by Analyzer when stress or Monte Carlo runs are
// attached.
const (
	MetricStressWorstReturn = "stress_worst_return"
	MetricStressMeanReturn  = "stress_mean_return"
	MetricMCExpectedReturn  = "mc_expected_return"
	MetricMCProbProfit      = "mc_probability_profit"
	MetricMCProbLoss50      = "mc_probability_loss_50pct"
)

type Input struct {
	Equity    []float64
	Returns   []float64 // derived from Equity when nil
	Positions []Position
	Benchmark []float64
}

// Analyzer builds a RiskReport and optionally attaches a stress report and
// a Monte Carlo report run on the same returns.
type Analyzer struct {
	Policy Policy

	// Capital seeds the stress and Monte Carlo paths. 0 uses the first
	// equity point.
	Capital float64

	Stress     bool
	Scenarios  []stress.Scenario // nil means stress.DefaultScenarios
	MonteCarlo *montecarlo.Params

	Parallelism int
	Metrics     *telemetry.Metrics
}

// Analyze never fails because an attached analysis lacks data; that
// analysis is recorded as a degraded metric instead. Invalid scenarios,
// invalid Monte Carlo parameters, and cancellation are returned.
func (a Analyzer) Analyze(ctx context.Context, in Input) (*Report, error) {
	rep, err := GenerateReport(in.Equity, in.Returns, in.Positions, in.Benchmark, a.Policy)
	if err != nil {
		return nil, err
	}
	returns := in.Returns
	if returns == nil {
		returns = equityReturns(in.Equity)
	}

	capital := a.Capital
	if capital == 0 && len(in.Equity) > 0 {
		capital = in.Equity[0]
	}

	c := collector{out: rep.Metrics}

	if a.Stress {
		sr, err := stress.Run(ctx, returns, capital, a.Scenarios, stress.Options{
			Parallelism: a.Parallelism,
			Metrics:     a.Metrics,
		})
		switch {
		case err == nil:
			rep.Stress = sr
			c.add(MetricStressWorstReturn, sr.Summary.WorstReturn, sr.Summary.WorstScenario, nil, "")
			c.add(MetricStressMeanReturn, sr.Summary.MeanReturn, labelReturn(sr.Summary.MeanReturn), nil, "")
		case errors.Is(err, stress.ErrEmptyBaseline), errors.Is(err, stress.ErrInvalidCapital):
			c.add(MetricStressWorstReturn, 0, "", err, "")
			c.add(MetricStressMeanReturn, 0, "", err, "")
		default:
			return nil, fmt.Errorf("stress test: %w", err)
		}
	}

	if a.MonteCarlo != nil {
		p := *a.MonteCarlo
		if p.InitialCapital == 0 {
			p.InitialCapital = capital
		}
		mc, err := montecarlo.Run(ctx, returns, p, montecarlo.Options{
			Parallelism: a.Parallelism,
			Metrics:     a.Metrics,
		})
		switch {
		case err == nil:
			rep.MonteCarlo = mc
			st := mc.Stats
			c.add(MetricMCExpectedReturn, st.ExpectedReturn, labelReturn(st.ExpectedReturn), nil, "")
			c.add(MetricMCProbProfit, st.ProbabilityProfit, fmt.Sprintf("%.0f%%", 100*st.ProbabilityProfit), nil, "")
			c.add(MetricMCProbLoss50, st.ProbabilityLoss50, fmt.Sprintf("%.0f%%", 100*st.ProbabilityLoss50), nil, "")
		case errors.Is(err, montecarlo.ErrInsufficientHistory):
			c.add(MetricMCExpectedReturn, 0, "", err, "")
			c.add(MetricMCProbProfit, 0, "", err, "")
			c.add(MetricMCProbLoss50, 0, "", err, "")
		default:
			return nil, fmt.Errorf("monte carlo: %w", err)
		}
	}

	rep.Metrics = c.out
	return rep, nil
}
