package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisyReturns(seed uint64, n int, mu, sigma float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sigma*rng.NormFloat64()
	}
	return out
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	t.Parallel()

	xs := []float64{4, 1, 3, 2, 5}
	assert.InDelta(t, 1.0, Percentile(xs, 0), 1e-12)
	assert.InDelta(t, 3.0, Percentile(xs, 50), 1e-12)
	assert.InDelta(t, 5.0, Percentile(xs, 100), 1e-12)
	assert.InDelta(t, 1.2, Percentile(xs, 5), 1e-12)
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, xs, "input must not be reordered")
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	equity := []float64{100, 120, 90, 95, 130, 117}
	dd, err := MaxDrawdown(equity)
	require.NoError(t, err)

	assert.InDelta(t, -0.25, dd.Max, 1e-12)
	assert.Equal(t, 1, dd.PeakIndex)
	assert.Equal(t, 2, dd.TroughIndex)
	assert.Equal(t, 1, dd.Duration)
	assert.InDelta(t, -0.10, dd.Current, 1e-12)
}

func TestMaxDrawdown_NeverPositive(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 20; seed++ {
		eq := make([]float64, 1, 101)
		eq[0] = 1000
		for _, r := range noisyReturns(seed, 100, 0.001, 0.02) {
			eq = append(eq, eq[len(eq)-1]*(1+r))
		}
		dd, err := MaxDrawdown(eq)
		require.NoError(t, err)
		assert.LessOrEqual(t, dd.Max, 0.0)
		assert.LessOrEqual(t, dd.Current, 0.0)
		assert.LessOrEqual(t, dd.Max, dd.Current)
		assert.GreaterOrEqual(t, dd.Duration, 0)
	}
}

func TestMaxDrawdown_Insufficient(t *testing.T) {
	t.Parallel()

	dd, err := MaxDrawdown([]float64{100})
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, Drawdown{}, dd)
}

func TestDrawdownSeries(t *testing.T) {
	t.Parallel()

	got := DrawdownSeries([]float64{100, 50, 200, 150})
	assert.InDeltaSlice(t, []float64{0, -0.5, 0, -0.25}, got, 1e-12)
}

func TestVolatility(t *testing.T) {
	t.Parallel()

	rs := []float64{0.01, -0.01, 0.01, -0.01}
	v, err := Volatility(rs, false)
	require.NoError(t, err)
	want := math.Sqrt(4 * 0.0001 / 3)
	assert.InDelta(t, want, v, 1e-12)

	va, err := Volatility(rs, true)
	require.NoError(t, err)
	assert.InDelta(t, want*math.Sqrt(252), va, 1e-12)

	_, err = Volatility([]float64{0.1}, true)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDownsideVolatility(t *testing.T) {
	t.Parallel()

	v, err := DownsideVolatility([]float64{0.05, -0.01, 0.02, -0.03}, false)
	require.NoError(t, err)
	assert.InDelta(t, StdDev([]float64{-0.01, -0.03}), v, 1e-12)

	v, err = DownsideVolatility([]float64{0.05, 0.01}, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestSharpe(t *testing.T) {
	t.Parallel()

	rs := []float64{0.01, 0.02, -0.005, 0.015}
	got, err := Sharpe(rs, 0.02)
	require.NoError(t, err)
	want := (Mean(rs)*252 - 0.02) / (StdDev(rs) * math.Sqrt(252))
	assert.True(t, got.Defined)
	assert.InDelta(t, want, got.Value, 1e-9)

	flat, err := Sharpe([]float64{0, 0, 0}, 0)
	require.NoError(t, err)
	assert.False(t, flat.Defined)
	assert.Equal(t, 0.0, flat.Value)
	assert.Equal(t, FlagZeroVolatility, flat.Flag)

	_, err = Sharpe(nil, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSortino(t *testing.T) {
	t.Parallel()

	rs := []float64{0.02, -0.01, 0.03, -0.02}
	got, err := Sortino(rs, 0, 0)
	require.NoError(t, err)
	dd := math.Sqrt((0.0001+0.0004)/2) * math.Sqrt(252)
	assert.InDelta(t, Mean(rs)*252/dd, got.Value, 1e-9)

	up, err := Sortino([]float64{0.01, 0.02}, 0, 0)
	require.NoError(t, err)
	assert.False(t, up.Defined)
	assert.True(t, math.IsInf(up.Value, 1))
	assert.Equal(t, FlagNoDownside, up.Flag)
}

func TestCalmar(t *testing.T) {
	t.Parallel()

	up := []float64{100, 101, 102, 103}
	c, err := Calmar(up)
	require.NoError(t, err)
	assert.False(t, c.Defined)
	assert.Equal(t, FlagNoDrawdown, c.Flag)
	assert.Equal(t, 0.0, c.Value)

	eq := []float64{100, 110, 99, 120}
	c, err = Calmar(eq)
	require.NoError(t, err)
	ar, err := AnnualizedReturn(eq)
	require.NoError(t, err)
	assert.True(t, c.Defined)
	assert.InDelta(t, ar/0.1, c.Value, 1e-9)

	_, err = Calmar([]float64{100})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestValueAtRisk_Historical(t *testing.T) {
	t.Parallel()

	rs := []float64{-0.05, -0.04, -0.03, -0.02, -0.01, 0, 0.01, 0.02, 0.03, 0.04, 0.05}
	v, err := ValueAtRisk(rs, 0.95, Historical)
	require.NoError(t, err)
	assert.InDelta(t, -0.045, v.VaR, 1e-12)
	assert.InDelta(t, -0.05, v.CVaR, 1e-12)
}

func TestValueAtRisk_CVaRNotAboveVaR(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 10; seed++ {
		rs := noisyReturns(seed, 250, 0.0005, 0.015)
		for _, c := range []float64{0.5, 0.9, 0.95, 0.99} {
			for _, m := range []VaRMethod{Historical, Parametric} {
				v, err := ValueAtRisk(rs, c, m)
				require.NoError(t, err)
				assert.LessOrEqual(t, v.CVaR, v.VaR, "seed=%d c=%v m=%s", seed, c, m)
			}
		}
	}
}

func TestValueAtRisk_Parametric(t *testing.T) {
	t.Parallel()

	rs := []float64{0.01, -0.01, 0.02, -0.02}
	v, err := ValueAtRisk(rs, 0.95, Parametric)
	require.NoError(t, err)
	assert.InDelta(t, Mean(rs)-1.6448536269514729*StdDev(rs), v.VaR, 1e-9)
}

func TestValueAtRisk_BadInput(t *testing.T) {
	t.Parallel()

	_, err := ValueAtRisk([]float64{0.1, 0.2}, 1, Historical)
	assert.ErrorIs(t, err, ErrInvalidConfidence)
	_, err = ValueAtRisk([]float64{0.1}, 0.95, Historical)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBetaAlpha(t *testing.T) {
	t.Parallel()

	bench := []float64{0.01, -0.02, 0.015, 0.005, -0.01}
	port := make([]float64, len(bench))
	for i, b := range bench {
		port[i] = 0.001 + 1.5*b
	}

	r, err := BetaAlpha(port, bench)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, r.Beta, 1e-9)
	assert.InDelta(t, 0.001, r.Alpha, 1e-9)
	assert.InDelta(t, 0.252, r.AnnualizedAlpha, 1e-9)
	assert.InDelta(t, 1.0, r.RSquared, 1e-9)
}

func TestBetaAlpha_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := BetaAlpha([]float64{0.1, 0.2}, []float64{0.1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = BetaAlpha([]float64{0.1}, []float64{0.1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	r, err := BetaAlpha([]float64{0.1, 0.2}, []float64{0.01, 0.01})
	require.NoError(t, err)
	assert.Equal(t, FlagZeroBenchmarkVar, r.Flag)
}

func TestInformationRatio(t *testing.T) {
	t.Parallel()

	port := []float64{0.02, 0.01, 0.03, 0.00}
	bench := []float64{0.01, 0.01, 0.01, 0.01}
	ir, err := InformationRatio(port, bench)
	require.NoError(t, err)

	excess := []float64{0.01, 0, 0.02, -0.01}
	te, err := TrackingError(port, bench)
	require.NoError(t, err)
	assert.InDelta(t, StdDev(excess)*math.Sqrt(252), te, 1e-12)
	assert.InDelta(t, Mean(excess)*252/te, ir.Value, 1e-9)

	same, err := InformationRatio(bench, bench)
	require.NoError(t, err)
	assert.Equal(t, FlagZeroTrackingError, same.Flag)
}

func TestCorrelations(t *testing.T) {
	t.Parallel()

	a := noisyReturns(1, 120, 0, 0.01)
	b := make([]float64, len(a))
	for i := range a {
		b[i] = 2 * a[i]
	}
	c := noisyReturns(2, 100, 0, 0.01)

	m, err := Correlations([]NamedSeries{
		{Name: "A", Returns: a},
		{Name: "B", Returns: b},
		{Name: "C", Returns: c},
		{Name: "short", Returns: []float64{0.1}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, m.Names)

	for i := range m.Values {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Values {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
		}
	}

	ab, ok := m.Get("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-9)

	require.Len(t, m.Warnings, 1)
	assert.Equal(t, "A", m.Warnings[0].A)
	assert.Equal(t, "B", m.Warnings[0].B)

	avg := (m.Values[0][1] + m.Values[0][2] + m.Values[1][2]) / 3
	assert.InDelta(t, avg, m.AverageCorrelation, 1e-12)
	assert.InDelta(t, (1-avg)*100, m.DiversificationScore, 1e-9)
}

func TestCorrelations_Insufficient(t *testing.T) {
	t.Parallel()

	m, err := Correlations([]NamedSeries{{Name: "A", Returns: []float64{0.1, 0.2}}})
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, []string{"A"}, m.Names)
	assert.Zero(t, m.DiversificationScore)
}

func TestCorrelations_ConstantSeries(t *testing.T) {
	t.Parallel()

	m, err := Correlations([]NamedSeries{
		{Name: "flat", Returns: []float64{0, 0, 0}},
		{Name: "move", Returns: []float64{0.1, -0.1, 0.2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Values[0][0])
	assert.Equal(t, 0.0, m.Values[0][1])
}
