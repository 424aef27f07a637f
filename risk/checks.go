package risk

import "fmt"

// Alert codes raised by ScanPositions.
const (
	CodeStopTriggered   = "STOP_TRIGGERED"
	CodeStopApproaching = "APPROACHING_STOP"
	CodeTakeProfit      = "TAKE_PROFIT"
	CodeBadPosition     = "BAD_POSITION"
)

type Alert struct {
	Symbol    string
	Code      string
	Loss      float64 // fractional decline from Reference
	Reference float64
	Msg       string
}

type alerts []Alert

func (a *alerts) add(pos Position, code string, loss, ref float64, format string, args ...any) {
	*a = append(*a, Alert{
		Symbol:    pos.Symbol,
		Code:      code,
		Loss:      loss,
		Reference: ref,
		Msg:       fmt.Sprintf(format, args...),
	})
}

// ScanPositions checks every position against the policy's stop and
// take-profit thresholds. A loss at or beyond StopLossFraction triggers;
// a loss within [ApproachFraction, 1) of it is a warning. Positions with
// non-positive prices are reported as BAD_POSITION and otherwise skipped.
func ScanPositions(positions []Position, p Policy) []Alert {
	var out alerts
	for _, pos := range positions {
		if pos.EntryPrice <= 0 || pos.CurrentPrice <= 0 {
			out.add(pos, CodeBadPosition, 0, pos.EntryPrice,
				"entry %.4f / current %.4f must be > 0", pos.EntryPrice, pos.CurrentPrice)
			continue
		}

		if p.StopLossFraction > 0 {
			ref := pos.Reference(p.Trailing)
			loss := pos.Loss(p.Trailing)
			basis := "entry"
			if ref != pos.EntryPrice {
				basis = "high"
			}
			switch {
			case loss >= p.StopLossFraction:
				out.add(pos, CodeStopTriggered, loss, ref,
					"down %.2f%% from %s %.4f, stop is %.2f%%",
					100*loss, basis, ref, 100*p.StopLossFraction)
			case loss >= p.ApproachFraction*p.StopLossFraction:
				out.add(pos, CodeStopApproaching, loss, ref,
					"down %.2f%% from %s %.4f, within %.0f%% of %.2f%% stop",
					100*loss, basis, ref, 100*p.ApproachFraction, 100*p.StopLossFraction)
			}
		}

		if p.TakeProfitFraction > 0 {
			if gain := pos.Return(); gain >= p.TakeProfitFraction {
				out.add(pos, CodeTakeProfit, 0, pos.EntryPrice,
					"up %.2f%% from entry %.4f, target is %.2f%%",
					100*gain, pos.EntryPrice, 100*p.TakeProfitFraction)
			}
		}
	}
	return out
}
