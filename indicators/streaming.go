package indicators

import (
	"fmt"
)

// SMA is the arithmetic mean of the last period closes. Each Update is O(1):
// the oldest close leaves the running sum as the newest one enters.
type SMA struct {
	period int
	ring   []float64
	pos    int
	seen   int
	total  float64
}

func NewSMA(period int) *SMA {
	return &SMA{period: period, ring: make([]float64, period)}
}

func (s *SMA) Name() string { return fmt.Sprintf("SMA(%d)", s.period) }

func (s *SMA) Warmup() int { return s.period }

func (s *SMA) Reset() {
	clear(s.ring)
	s.pos, s.seen, s.total = 0, 0, 0
}

func (s *SMA) Update(price float64) {
	s.total += price - s.ring[s.pos]
	s.ring[s.pos] = price
	s.pos++
	if s.pos == s.period {
		s.pos = 0
	}
	s.seen = min(s.seen+1, s.period)
}

func (s *SMA) Ready() bool { return s.period > 0 && s.seen == s.period }

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.total / float64(s.period)
}

// EMA is an exponential moving average seeded with the SMA of its first
// period closes, smoothing factor 2/(period+1).
type EMA struct {
	period int
	alpha  float64
	value  float64
	seen   int
	seed   float64
}

func NewEMA(period int) *EMA {
	return &EMA{period: period, alpha: 2.0 / float64(period+1)}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *EMA) Warmup() int { return e.period }

func (e *EMA) Reset() {
	e.value, e.seen, e.seed = 0, 0, 0
}

func (e *EMA) Update(price float64) {
	if e.seen < e.period {
		e.seed += price
		e.seen++
		if e.seen == e.period {
			e.value = e.seed / float64(e.period)
		}
		return
	}
	e.value += e.alpha * (price - e.value)
}

func (e *EMA) Ready() bool { return e.period > 0 && e.seen >= e.period }

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.value
}
