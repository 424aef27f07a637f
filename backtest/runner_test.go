package backtest

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/rustyeddy/quantlab/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	t.Parallel()

	var jobs []Job
	for i := 0; i < 12; i++ {
		ps, ss := series(t, []float64{100, 100 + float64(i), 100 + 2*float64(i)}, market.Buy, market.Hold, market.Sell)
		jobs = append(jobs, Job{ID: fmt.Sprintf("asset-%02d", i), Prices: ps, Signals: ss})
	}
	badPrices, _ := series(t, []float64{1, 2, 3})
	_, badSignals := series(t, []float64{1, 2})
	jobs = append(jobs, Job{ID: "misaligned", Prices: badPrices, Signals: badSignals})

	out, err := RunBatch(context.Background(), jobs, frictionless(1000), RunnerOptions{Parallelism: 4})
	require.NoError(t, err)
	require.Len(t, out, len(jobs))

	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("asset-%02d", i)
		r := out[id]
		require.NoError(t, r.Err, id)

		solo, err := Run(jobs[i].Prices, jobs[i].Signals, frictionless(1000))
		require.NoError(t, err)
		assert.Equal(t, solo.Equity.Values, r.Result.Equity.Values, id)
	}

	assert.ErrorIs(t, out["misaligned"].Err, ErrMisalignedSeries)
}

func TestRunBatch_Validation(t *testing.T) {
	t.Parallel()

	_, err := RunBatch(context.Background(), nil, Config{}, RunnerOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	ps, ss := series(t, []float64{1, 2})
	_, err = RunBatch(context.Background(), []Job{{ID: "a", Prices: ps, Signals: ss}, {ID: "a", Prices: ps, Signals: ss}}, frictionless(10), RunnerOptions{})
	assert.ErrorContains(t, err, "duplicate job id")
}

func TestRunBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ps, ss := series(t, []float64{1, 2})
	_, err := RunBatch(ctx, []Job{{ID: "a", Prices: ps, Signals: ss}}, frictionless(10), RunnerOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	ps, ss := series(t,
		[]float64{100, 110, 110, 105, 100, 100},
		market.Buy, market.Sell, market.Buy, market.Hold, market.Sell, market.Hold,
	)
	res, err := Run(ps, ss, frictionless(1000))
	require.NoError(t, err)

	s := Summarize(res)
	assert.Equal(t, 2, s.Trades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.InDelta(t, 1000, s.StartBalance, 1e-9)
	assert.InDelta(t, 1000, s.EndBalance, 1e-9)
	assert.InDelta(t, 1.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 100.0/1100*100, s.MaxDDPct, 1e-9)
	assert.False(t, s.OpenPosition)
	assert.Equal(t, ps.Time(0), s.Start)
	assert.Equal(t, ps.Time(5), s.End)

	var buf bytes.Buffer
	PrintSummary(&buf, "RUN1", s)
	assert.Contains(t, buf.String(), "Run ID:        RUN1")
	assert.Contains(t, buf.String(), "Trades:        2")
	assert.Contains(t, buf.String(), "Profit Factor: 1.00")
}
