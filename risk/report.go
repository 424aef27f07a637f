package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/metrics"
	"github.com/rustyeddy/quantlab/montecarlo"
	"github.com/rustyeddy/quantlab/stress"
)

// Metric names used in Report.Metrics.
const (
	MetricTotalReturn        = "total_return"
	MetricAnnualizedReturn   = "annualized_return"
	MetricMaxDrawdown        = "max_drawdown"
	MetricCurrentDrawdown    = "current_drawdown"
	MetricDrawdownDuration   = "drawdown_duration"
	MetricVolatility         = "volatility"
	MetricDownsideVolatility = "downside_volatility"
	MetricSharpe             = "sharpe"
	MetricSortino            = "sortino"
	MetricCalmar             = "calmar"
	MetricVaR                = "var"
	MetricCVaR               = "cvar"
	MetricParametricVaR      = "var_parametric"
	MetricBeta               = "beta"
	MetricAlpha              = "alpha"
	MetricRSquared           = "r_squared"
	MetricInformationRatio   = "information_ratio"
	MetricTrackingError      = "tracking_error"
)

const labelNA = "n/a"

// MetricResult is one named entry of a report. Degraded means the metric
// could not be computed from the input and Value is a neutral default.
type MetricResult struct {
	Name     string
	Value    float64
	Label    string
	Degraded bool
	Note     string
}

type Report struct {
	Policy     Policy
	Metrics    []MetricResult
	Score      Score
	Level      Level
	Suggestion string
	Alerts     []Alert

	Stress     *stress.Report
	MonteCarlo *montecarlo.Report
}

// Metric looks up a metric by name.
func (r *Report) Metric(name string) (MetricResult, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricResult{}, false
}

// Degraded lists the names of degraded metrics.
func (r *Report) Degraded() []string {
	var out []string
	for _, m := range r.Metrics {
		if m.Degraded {
			out = append(out, m.Name)
		}
	}
	return out
}

type collector struct {
	out []MetricResult
}

// add records a metric. A non-nil err degrades it; a non-empty flag marks a
// well-defined sentinel and becomes the label.
func (c *collector) add(name string, value float64, label string, err error, flag string) {
	m := MetricResult{Name: name, Value: value, Label: label}
	switch {
	case err != nil:
		m.Degraded = true
		m.Label = labelNA
		m.Note = err.Error()
	case flag != "":
		m.Label = flag
		m.Note = flag
	}
	c.out = append(c.out, m)
}

func (c *collector) ratio(name string, r metrics.Ratio, err error) {
	c.add(name, r.Value, labelRatio(r.Value), err, r.Flag)
}

// GenerateReport computes every metric it can from equity and returns,
// scores the result, and scans positions. A nil returns slice is derived
// from equity. benchmark may be nil. Metrics that lack data are degraded,
// never fatal; only an invalid policy is an error.
func GenerateReport(equity, returns []float64, positions []Position, benchmark []float64, p Policy) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if returns == nil {
		returns = equityReturns(equity)
	}

	var c collector

	if len(equity) >= 2 && equity[0] > 0 {
		tr := equity[len(equity)-1]/equity[0] - 1
		c.add(MetricTotalReturn, tr, labelReturn(tr), nil, "")
	} else {
		c.add(MetricTotalReturn, 0, "", metrics.ErrInsufficientData, "")
	}

	ar, err := metrics.AnnualizedReturn(equity)
	c.add(MetricAnnualizedReturn, ar, labelReturn(ar), err, "")

	dd, ddErr := metrics.MaxDrawdown(equity)
	ddFlag := ""
	if ddErr == nil && dd.Max == 0 {
		ddFlag = metrics.FlagNoDrawdown
	}
	c.add(MetricMaxDrawdown, dd.Max, labelDrawdown(dd.Max), ddErr, ddFlag)
	c.add(MetricCurrentDrawdown, dd.Current, labelDrawdown(dd.Current), ddErr, "")
	c.add(MetricDrawdownDuration, float64(dd.Duration), fmt.Sprintf("%d periods", dd.Duration), ddErr, "")

	vol, volErr := metrics.Volatility(returns, true)
	volFlag := ""
	if volErr == nil && vol == 0 {
		volFlag = metrics.FlagZeroVolatility
	}
	c.add(MetricVolatility, vol, labelVolatility(vol), volErr, volFlag)

	dvol, err := metrics.DownsideVolatility(returns, true)
	c.add(MetricDownsideVolatility, dvol, labelVolatility(dvol), err, "")

	sharpe, sharpeErr := metrics.Sharpe(returns, p.RiskFreeRate)
	c.ratio(MetricSharpe, sharpe, sharpeErr)

	sortino, err := metrics.Sortino(returns, p.RiskFreeRate, p.SortinoTarget)
	c.ratio(MetricSortino, sortino, err)

	calmar, err := metrics.Calmar(equity)
	c.ratio(MetricCalmar, calmar, err)

	v, err := metrics.ValueAtRisk(returns, p.Confidence, metrics.Historical)
	c.add(MetricVaR, v.VaR, labelVaR(v.VaR), err, "")
	c.add(MetricCVaR, v.CVaR, labelVaR(v.CVaR), err, "")

	pv, err := metrics.ValueAtRisk(returns, p.Confidence, metrics.Parametric)
	c.add(MetricParametricVaR, pv.VaR, labelVaR(pv.VaR), err, "")

	if benchmark != nil {
		reg, err := metrics.BetaAlpha(returns, benchmark)
		c.add(MetricBeta, reg.Beta, labelBeta(reg.Beta), err, reg.Flag)
		c.add(MetricAlpha, reg.AnnualizedAlpha, labelReturn(reg.AnnualizedAlpha), err, "")
		c.add(MetricRSquared, reg.RSquared, fmt.Sprintf("%.0f%% explained", 100*reg.RSquared), err, reg.Flag)

		ir, err := metrics.InformationRatio(returns, benchmark)
		c.ratio(MetricInformationRatio, ir, err)

		te, err := metrics.TrackingError(returns, benchmark)
		c.add(MetricTrackingError, te, labelVolatility(te), err, "")
	}

	score := ScoreRisk(dd.Max, vol, sharpe.Value, sharpeErr == nil)
	rep := &Report{
		Policy:     p,
		Metrics:    c.out,
		Score:      score,
		Level:      score.Level,
		Suggestion: score.Level.Suggestion(),
		Alerts:     ScanPositions(positions, p),
	}

	log.Debug().
		Float64("score", score.Value).
		Str("level", string(score.Level)).
		Int("degraded", len(rep.Degraded())).
		Int("alerts", len(rep.Alerts)).
		Msg("risk report generated")
	return rep, nil
}

func equityReturns(equity []float64) []float64 {
	return market.EquityCurve{Values: equity}.Returns()
}

func labelReturn(r float64) string {
	switch {
	case r > 0:
		return "positive"
	case r < 0:
		return "negative"
	default:
		return "flat"
	}
}

func labelDrawdown(dd float64) string {
	switch a := math.Abs(dd); {
	case a <= 0.05:
		return "minimal"
	case a <= 0.10:
		return "low"
	case a <= 0.20:
		return "moderate"
	case a <= 0.30:
		return "high"
	default:
		return "severe"
	}
}

func labelVolatility(v float64) string {
	switch {
	case v < 0.10:
		return "low"
	case v < 0.20:
		return "moderate"
	case v < 0.30:
		return "high"
	default:
		return "very high"
	}
}

func labelRatio(r float64) string {
	switch {
	case r >= 2:
		return "excellent"
	case r >= 1:
		return "good"
	case r >= 0.5:
		return "acceptable"
	case r >= 0:
		return "poor"
	default:
		return "negative"
	}
}

// labelVaR grades a one-day VaR (a negative return).
func labelVaR(v float64) string {
	switch {
	case v > -0.01:
		return "low"
	case v > -0.02:
		return "moderate"
	case v > -0.04:
		return "high"
	default:
		return "severe"
	}
}

func labelBeta(b float64) string {
	switch {
	case b < 0:
		return "inverse"
	case b < 0.8:
		return "defensive"
	case b <= 1.2:
		return "market"
	default:
		return "aggressive"
	}
}
