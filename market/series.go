package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptySeries       = errors.New("series is empty")
	ErrNonIncreasingTime = errors.New("timestamps must be strictly increasing")
	ErrNonPositivePrice  = errors.New("prices must be positive")
	ErrSeriesLenMismatch = errors.New("times and values differ in length")
	ErrUnknownSignal     = errors.New("unknown signal")
)

// Point is a single (timestamp, price) observation.
type Point struct {
	Time  time.Time
	Price float64
}

// PriceSeries is an immutable, time-ordered sequence of positive prices.
// Use NewPriceSeries so the ordering and positivity invariants hold.
type PriceSeries struct {
	points []Point
}

// NewPriceSeries copies points into a validated series.
func NewPriceSeries(points []Point) (PriceSeries, error) {
	if len(points) == 0 {
		return PriceSeries{}, ErrEmptySeries
	}
	cp := make([]Point, len(points))
	for i, p := range points {
		if !(p.Price > 0) {
			return PriceSeries{}, fmt.Errorf("%w: index %d price %v", ErrNonPositivePrice, i, p.Price)
		}
		if i > 0 && !p.Time.After(points[i-1].Time) {
			return PriceSeries{}, fmt.Errorf("%w: index %d (%s <= %s)",
				ErrNonIncreasingTime, i, p.Time.Format(time.RFC3339), points[i-1].Time.Format(time.RFC3339))
		}
		cp[i] = p
	}
	return PriceSeries{points: cp}, nil
}

// PriceSeriesFrom builds a series from parallel time and price slices.
func PriceSeriesFrom(times []time.Time, prices []float64) (PriceSeries, error) {
	if len(times) != len(prices) {
		return PriceSeries{}, fmt.Errorf("%w: %d times, %d prices", ErrSeriesLenMismatch, len(times), len(prices))
	}
	pts := make([]Point, len(prices))
	for i := range prices {
		pts[i] = Point{Time: times[i], Price: prices[i]}
	}
	return NewPriceSeries(pts)
}

// DailyPrices is a convenience for fixtures: one price per calendar day from start.
func DailyPrices(start time.Time, prices ...float64) (PriceSeries, error) {
	times := make([]time.Time, len(prices))
	for i := range prices {
		times[i] = start.AddDate(0, 0, i)
	}
	return PriceSeriesFrom(times, prices)
}

func (s PriceSeries) Len() int { return len(s.points) }

func (s PriceSeries) At(i int) Point { return s.points[i] }

func (s PriceSeries) Price(i int) float64 { return s.points[i].Price }

func (s PriceSeries) Time(i int) time.Time { return s.points[i].Time }

// Prices returns a copy of the price values.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Price
	}
	return out
}

// Times returns a copy of the timestamps.
func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Time
	}
	return out
}

// Returns computes simple period returns of the prices themselves.
func (s PriceSeries) Returns() ReturnSeries {
	return returnsOf(s.Prices())
}
