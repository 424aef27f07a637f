package market

import (
	"fmt"
	"strings"
	"time"
)

// Signal is a discrete trading instruction for one timestamp.
type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
	StrongBuy
	StrongSell
)

var signalNames = [...]string{"HOLD", "BUY", "SELL", "STRONG_BUY", "STRONG_SELL"}

func (s Signal) String() string {
	if int(s) < 0 || int(s) >= len(signalNames) {
		return fmt.Sprintf("Signal(%d)", int8(s))
	}
	return signalNames[s]
}

// IsBuy reports whether the signal opens a long position.
func (s Signal) IsBuy() bool { return s == Buy || s == StrongBuy }

// IsSell reports whether the signal closes a long position.
func (s Signal) IsSell() bool { return s == Sell || s == StrongSell }

// ParseSignal accepts the canonical names case-insensitively, plus
// "STRONG-BUY" / "strong buy" spellings. An empty string is HOLD.
func ParseSignal(s string) (Signal, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "" {
		return Hold, nil
	}
	for i, name := range signalNames {
		if name == norm {
			return Signal(i), nil
		}
	}
	return Hold, fmt.Errorf("%w: %q", ErrUnknownSignal, s)
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signal) UnmarshalText(b []byte) error {
	v, err := ParseSignal(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SignalPoint is one (timestamp, signal) observation.
type SignalPoint struct {
	Time   time.Time
	Signal Signal
}

// SignalSeries is an immutable time-ordered sequence of signals. It is
// aligned with a PriceSeries by index; the backtest checks the lengths.
type SignalSeries struct {
	points []SignalPoint
}

func NewSignalSeries(points []SignalPoint) (SignalSeries, error) {
	if len(points) == 0 {
		return SignalSeries{}, ErrEmptySeries
	}
	cp := make([]SignalPoint, len(points))
	for i, p := range points {
		if p.Signal < Hold || p.Signal > StrongSell {
			return SignalSeries{}, fmt.Errorf("%w: index %d value %d", ErrUnknownSignal, i, int8(p.Signal))
		}
		if i > 0 && !p.Time.After(points[i-1].Time) {
			return SignalSeries{}, fmt.Errorf("%w: index %d", ErrNonIncreasingTime, i)
		}
		cp[i] = p
	}
	return SignalSeries{points: cp}, nil
}

// SignalsFor stamps signals with the timestamps of prices, index by index.
func SignalsFor(prices PriceSeries, signals ...Signal) (SignalSeries, error) {
	if len(signals) != prices.Len() {
		return SignalSeries{}, fmt.Errorf("%w: %d prices, %d signals", ErrSeriesLenMismatch, prices.Len(), len(signals))
	}
	pts := make([]SignalPoint, len(signals))
	for i, sig := range signals {
		pts[i] = SignalPoint{Time: prices.Time(i), Signal: sig}
	}
	return NewSignalSeries(pts)
}

func (s SignalSeries) Len() int { return len(s.points) }

func (s SignalSeries) At(i int) SignalPoint { return s.points[i] }

func (s SignalSeries) Signal(i int) Signal { return s.points[i].Signal }
