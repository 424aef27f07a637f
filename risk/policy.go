// Package risk combines backtest output and the metrics library into one
// RiskReport, classifies overall risk, and scans open positions for stop
// and take-profit triggers.
package risk

import (
	"errors"
	"fmt"
)

var ErrInvalidPolicy = errors.New("invalid risk policy")

// Policy holds the thresholds a report is generated against.
type Policy struct {
	// Stop scan
	StopLossFraction   float64 // 0.08; 0 disables the stop scan
	TakeProfitFraction float64 // 0 disables take-profit alerts
	Trailing           bool    // measure loss from HighWater instead of entry
	ApproachFraction   float64 // 0.8: warn once loss reaches this share of the stop

	// Metrics
	Confidence    float64 // VaR/CVaR confidence, 0.95
	RiskFreeRate  float64 // annual
	SortinoTarget float64 // per-period target return
}

func DefaultPolicy() Policy {
	return Policy{
		StopLossFraction: 0.08,
		ApproachFraction: 0.8,
		Confidence:       0.95,
		RiskFreeRate:     0.0,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.StopLossFraction < 0 || p.StopLossFraction >= 1:
		return fmt.Errorf("%w: stop_loss_fraction %v must be in [0,1)", ErrInvalidPolicy, p.StopLossFraction)
	case p.TakeProfitFraction < 0:
		return fmt.Errorf("%w: take_profit_fraction %v must be >= 0", ErrInvalidPolicy, p.TakeProfitFraction)
	case p.ApproachFraction <= 0 || p.ApproachFraction > 1:
		return fmt.Errorf("%w: approach_fraction %v must be in (0,1]", ErrInvalidPolicy, p.ApproachFraction)
	case p.Confidence <= 0 || p.Confidence >= 1:
		return fmt.Errorf("%w: confidence %v must be in (0,1)", ErrInvalidPolicy, p.Confidence)
	}
	return nil
}
