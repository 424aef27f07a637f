// Package strategies turns price series into signal series for the
// backtest simulator.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
)

// Strategy emits one signal per closing price. It is called in time order
// and must be deterministic.
type Strategy interface {
	Name() string
	Reset()
	Next(price float64) market.Signal
}

// Names lists the strategies ByName accepts.
var Names = []string{"noop", "open-once", "ema-cross", "sma-cross", "trend"}

// ByName builds a strategy. The crosses use fast and slow periods; trend
// compares price with the SMA of the slow period.
func ByName(name string, fast, slow int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none", "hold":
		return Noop{}, nil

	case "open-once", "buy-hold":
		return &OpenOnce{}, nil

	case "ema-cross", "emacross":
		return NewEMACross(CrossConfig{FastPeriod: fast, SlowPeriod: slow})

	case "sma-cross", "smacross":
		return NewSMACross(CrossConfig{FastPeriod: fast, SlowPeriod: slow})

	case "trend", "sma-trend":
		if slow <= 0 {
			return nil, fmt.Errorf("trend: period must be positive, got %d", slow)
		}
		return NewTrend(indicators.NewSMA(slow))

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names, ", "))
	}
}

// Generate resets s and runs it over prices, stamping each signal with the
// price timestamp.
func Generate(prices market.PriceSeries, s Strategy) (market.SignalSeries, error) {
	s.Reset()
	sigs := make([]market.Signal, prices.Len())
	for i := range sigs {
		sigs[i] = s.Next(prices.Price(i))
	}
	return market.SignalsFor(prices, sigs...)
}
