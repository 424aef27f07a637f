package strategies

import (
	"testing"
	"time"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vShape falls for n days then rises for n days.
func vShape(t *testing.T, n int) market.PriceSeries {
	t.Helper()
	var px []float64
	for i := 0; i < n; i++ {
		px = append(px, 100-float64(i))
	}
	for i := 0; i < n; i++ {
		px = append(px, 100-float64(n)+2*float64(i))
	}
	ps, err := market.DailyPrices(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), px...)
	require.NoError(t, err)
	return ps
}

func TestByName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"noop", "noop", false},
		{" None ", "noop", false},
		{"open-once", "open-once", false},
		{"buy-hold", "open-once", false},
		{"ema-cross", "ema-cross(3,8)", false},
		{"EMACross", "ema-cross(3,8)", false},
		{"sma-cross", "sma-cross(3,8)", false},
		{"trend", "trend(SMA(8))", false},
		{"rsi", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.name, 3, 8)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown strategy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}

func TestCrossRejectsBadPeriods(t *testing.T) {
	t.Parallel()

	for _, cfg := range []CrossConfig{{0, 5}, {5, 5}, {10, 3}} {
		_, err := NewEMACross(cfg)
		assert.ErrorContains(t, err, "ema-cross", "%+v", cfg)
		_, err = NewSMACross(cfg)
		assert.ErrorContains(t, err, "sma-cross", "%+v", cfg)
	}
	_, err := ByName("trend", 3, 0)
	assert.Error(t, err)
}

func TestEMACrossSignalsOnCross(t *testing.T) {
	t.Parallel()

	prices := vShape(t, 20)
	s, err := NewEMACross(CrossConfig{FastPeriod: 3, SlowPeriod: 8})
	require.NoError(t, err)

	sigs, err := Generate(prices, s)
	require.NoError(t, err)
	require.Equal(t, prices.Len(), sigs.Len())

	var buys, sells []int
	for i := 0; i < sigs.Len(); i++ {
		switch sigs.Signal(i) {
		case market.Buy:
			buys = append(buys, i)
		case market.Sell:
			sells = append(sells, i)
		}
		assert.True(t, sigs.At(i).Time.Equal(prices.Time(i)))
	}
	// fast stays below slow on the way down, then crosses up once
	require.Len(t, buys, 1)
	assert.Empty(t, sells)
	assert.Greater(t, buys[0], 20)

	again, err := Generate(prices, s)
	require.NoError(t, err)
	assert.Equal(t, sigs, again, "Generate resets state")
}

func TestSMACrossSignalsOnCross(t *testing.T) {
	t.Parallel()

	prices := vShape(t, 20)
	s, err := NewSMACross(CrossConfig{FastPeriod: 3, SlowPeriod: 8})
	require.NoError(t, err)

	sigs, err := Generate(prices, s)
	require.NoError(t, err)

	var buys []int
	for i := 0; i < sigs.Len(); i++ {
		assert.NotEqual(t, market.Sell, sigs.Signal(i), "index %d", i)
		if sigs.Signal(i) == market.Buy {
			buys = append(buys, i)
		}
	}
	// SMA(3) of the rising leg passes SMA(8) on day 23
	assert.Equal(t, []int{23}, buys)
}

func TestGenerateFeedsBacktest(t *testing.T) {
	t.Parallel()

	prices := vShape(t, 15)
	sigs, err := Generate(prices, &OpenOnce{})
	require.NoError(t, err)

	res, err := backtest.Run(prices, sigs, backtest.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, backtest.Long, res.Final.State)
}
