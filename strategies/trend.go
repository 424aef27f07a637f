package strategies

import (
	"fmt"

	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/market"
)

// Trend follows price against any indicator: BUY when the close moves above
// it, SELL when the close drops below. The first ready bar buys if price is
// already above.
type Trend struct {
	ind indicators.Indicator

	above bool
	have  bool
}

func NewTrend(ind indicators.Indicator) (*Trend, error) {
	if ind == nil || ind.Warmup() <= 0 {
		return nil, fmt.Errorf("trend: indicator needs a positive warmup")
	}
	return &Trend{ind: ind}, nil
}

func (s *Trend) Name() string { return "trend(" + s.ind.Name() + ")" }

func (s *Trend) Reset() {
	s.ind.Reset()
	s.above, s.have = false, false
}

func (s *Trend) Next(price float64) market.Signal {
	s.ind.Update(price)
	if !s.ind.Ready() {
		return market.Hold
	}

	above := price > s.ind.Value()
	prev, had := s.above, s.have
	s.above, s.have = above, true

	switch {
	case above && (!had || !prev):
		return market.Buy
	case !above && had && prev:
		return market.Sell
	default:
		return market.Hold
	}
}
