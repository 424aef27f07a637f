// Package stress applies hypothetical shocks to a baseline return series
// and scores the resulting synthetic equity paths.
package stress

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScenario = errors.New("invalid stress scenario")
	ErrEmptyBaseline   = errors.New("baseline return series is empty")
	ErrInvalidCapital  = errors.New("initial capital must be > 0")
)

// Scenario is a named shock. PriceShock is a signed total fraction spread
// evenly over the first DurationDays of the baseline.
type Scenario struct {
	Name                 string  `json:"name" yaml:"name"`
	Description          string  `json:"description,omitempty" yaml:"description,omitempty"`
	PriceShock           float64 `json:"price_shock" yaml:"price_shock"`
	VolatilityMultiplier float64 `json:"volatility_multiplier" yaml:"volatility_multiplier"`
	DurationDays         int     `json:"duration_days" yaml:"duration_days"`
}

func (s Scenario) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	case !(s.VolatilityMultiplier > 0):
		return fmt.Errorf("%w: %s: volatility multiplier %v must be > 0", ErrInvalidScenario, s.Name, s.VolatilityMultiplier)
	case s.DurationDays < 1:
		return fmt.Errorf("%w: %s: duration %d must be >= 1 day", ErrInvalidScenario, s.Name, s.DurationDays)
	}
	return nil
}

// DefaultScenarios returns a fresh copy of the built-in catalog.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:                 "market_crash",
			Description:          "Sharp broad-market crash over one trading month",
			PriceShock:           -0.30,
			VolatilityMultiplier: 2.5,
			DurationDays:         20,
		},
		{
			Name:                 "severe_bear",
			Description:          "Prolonged bear market over roughly six months",
			PriceShock:           -0.40,
			VolatilityMultiplier: 1.5,
			DurationDays:         120,
		},
		{
			Name:                 "high_volatility",
			Description:          "No drift, volatility tripled for a quarter",
			PriceShock:           0,
			VolatilityMultiplier: 3.0,
			DurationDays:         60,
		},
		{
			Name:                 "flash_crash",
			Description:          "Single-day 10% gap down in a very volatile tape",
			PriceShock:           -0.10,
			VolatilityMultiplier: 5.0,
			DurationDays:         1,
		},
		{
			Name:                 "slow_bleed",
			Description:          "Steady grind lower over a full trading year",
			PriceShock:           -0.25,
			VolatilityMultiplier: 1.2,
			DurationDays:         250,
		},
	}
}
