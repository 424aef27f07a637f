package strategies

import (
	"fmt"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
)

type CrossConfig struct {
	FastPeriod int `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int `json:"slow_period" yaml:"slow_period"`
}

func CrossConfigDefaults() CrossConfig {
	return CrossConfig{FastPeriod: 10, SlowPeriod: 30}
}

// Cross signals when a fast moving average crosses a slow one.
//   - Bull cross (diff goes from <= 0 to > 0): BUY
//   - Bear cross (diff goes from >= 0 to < 0): SELL
//
// Nothing is emitted until both averages are warm and one diff has been seen.
type Cross struct {
	CrossConfig

	kind string
	fast indicators.Indicator
	slow indicators.Indicator

	lastDiff     float64
	haveLastDiff bool
}

// NewEMACross crosses exponential moving averages.
func NewEMACross(cfg CrossConfig) (*Cross, error) {
	return newCross("ema-cross", cfg, func(n int) indicators.Indicator { return indicators.NewEMA(n) })
}

// NewSMACross crosses simple moving averages.
func NewSMACross(cfg CrossConfig) (*Cross, error) {
	return newCross("sma-cross", cfg, func(n int) indicators.Indicator { return indicators.NewSMA(n) })
}

func newCross(kind string, cfg CrossConfig, ma func(int) indicators.Indicator) (*Cross, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 {
		return nil, fmt.Errorf("%s: periods must be positive, got %d/%d", kind, cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("%s: fast period %d must be below slow period %d", kind, cfg.FastPeriod, cfg.SlowPeriod)
	}
	return &Cross{
		CrossConfig: cfg,
		kind:        kind,
		fast:        ma(cfg.FastPeriod),
		slow:        ma(cfg.SlowPeriod),
	}, nil
}

func (s *Cross) Name() string {
	return fmt.Sprintf("%s(%d,%d)", s.kind, s.FastPeriod, s.SlowPeriod)
}

func (s *Cross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
	s.lastDiff, s.haveLastDiff = 0, false
}

func (s *Cross) Next(price float64) market.Signal {
	s.fast.Update(price)
	s.slow.Update(price)
	if !s.fast.Ready() || !s.slow.Ready() {
		return market.Hold
	}

	diff := s.fast.Value() - s.slow.Value()
	if !s.haveLastDiff {
		s.lastDiff, s.haveLastDiff = diff, true
		return market.Hold
	}

	bullCross := diff > 0 && s.lastDiff <= 0
	bearCross := diff < 0 && s.lastDiff >= 0
	s.lastDiff = diff

	switch {
	case bullCross:
		return market.Buy
	case bearCross:
		return market.Sell
	default:
		return market.Hold
	}
}
