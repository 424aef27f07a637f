package strategies

import "github.com/rustyeddy/quantlab/market"

// Noop holds forever; a flat baseline.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Reset() {}

func (Noop) Next(float64) market.Signal { return market.Hold }

// OpenOnce buys on the first price and holds: buy and hold.
type OpenOnce struct {
	opened bool
}

func (s *OpenOnce) Name() string { return "open-once" }

func (s *OpenOnce) Reset() { s.opened = false }

func (s *OpenOnce) Next(float64) market.Signal {
	if s.opened {
		return market.Hold
	}
	s.opened = true
	return market.Buy
}
