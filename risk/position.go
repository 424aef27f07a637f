package risk

// Position is an open long holding supplied to the stop scan.
type Position struct {
	Symbol       string
	Shares       float64
	EntryPrice   float64
	CurrentPrice float64
	HighWater    float64 // highest price since entry; 0 if unknown
}

// Return is the fractional move from entry to the current price.
func (p Position) Return() float64 {
	return change(p.EntryPrice, p.CurrentPrice)
}

// Reference is the price losses are measured from: HighWater when trailing
// and known, otherwise EntryPrice.
func (p Position) Reference(trailing bool) float64 {
	if trailing && p.HighWater > 0 {
		return max(p.HighWater, p.EntryPrice)
	}
	return p.EntryPrice
}

// Loss is the fractional decline from Reference, 0 when the position is at
// or above it.
func (p Position) Loss(trailing bool) float64 {
	l := -change(p.Reference(trailing), p.CurrentPrice)
	if l < 0 {
		return 0
	}
	return l
}

func (p Position) MarketValue() float64   { return p.Shares * p.CurrentPrice }
func (p Position) UnrealizedPnL() float64 { return p.Shares * (p.CurrentPrice - p.EntryPrice) }
