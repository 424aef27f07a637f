package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/market"
)

var (
	ErrInvalidConfiguration = errors.New("invalid backtest configuration")
	ErrMisalignedSeries     = errors.New("price and signal series are misaligned")
)

// State of the single position the simulator holds.
type State int8

const (
	Flat State = iota
	Long
)

func (s State) String() string {
	if s == Long {
		return "LONG"
	}
	return "FLAT"
}

// CloseReason records why a round trip ended.
type CloseReason string

const (
	CloseSignal     CloseReason = "SIGNAL"
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
)

type Config struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"` // fraction of notional, per leg
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`

	// Fractions of entry price; 0 means none.
	StopLossFraction   float64 `json:"stop_loss_fraction,omitempty" yaml:"stop_loss_fraction,omitempty"`
	TakeProfitFraction float64 `json:"take_profit_fraction,omitempty" yaml:"take_profit_fraction,omitempty"`

	MaxPositionFraction float64 `json:"max_position_fraction" yaml:"max_position_fraction"` // (0,1]
	RiskFreeRate        float64 `json:"risk_free_rate" yaml:"risk_free_rate"`               // annualized
}

// DefaultConfig is a frictionless, all-in configuration with 100k capital.
func DefaultConfig() Config {
	return Config{
		InitialCapital:      100_000,
		MaxPositionFraction: 1.0,
	}
}

// Validate reports the first bad field wrapped in ErrInvalidConfiguration.
func (c Config) Validate() error {
	switch {
	case !(c.InitialCapital > 0):
		return fmt.Errorf("%w: initial capital %v must be > 0", ErrInvalidConfiguration, c.InitialCapital)
	case !(c.MaxPositionFraction > 0 && c.MaxPositionFraction <= 1):
		return fmt.Errorf("%w: max position fraction %v must be in (0,1]", ErrInvalidConfiguration, c.MaxPositionFraction)
	case !(c.CommissionRate >= 0):
		return fmt.Errorf("%w: commission rate %v must be >= 0", ErrInvalidConfiguration, c.CommissionRate)
	case !(c.SlippageRate >= 0):
		return fmt.Errorf("%w: slippage rate %v must be >= 0", ErrInvalidConfiguration, c.SlippageRate)
	case !(c.StopLossFraction >= 0):
		return fmt.Errorf("%w: stop loss fraction %v must be >= 0", ErrInvalidConfiguration, c.StopLossFraction)
	case !(c.TakeProfitFraction >= 0):
		return fmt.Errorf("%w: take profit fraction %v must be >= 0", ErrInvalidConfiguration, c.TakeProfitFraction)
	}
	return nil
}

// Trade is a closed round trip.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryIdx   int
	ExitIdx    int
	EntryPrice float64 // includes slippage
	ExitPrice  float64 // includes slippage
	Shares     int64
	Commission float64 // both legs
	PnL        float64
	Return     float64 // PnL over cost basis including entry commission
	Reason     CloseReason
}

// Position is the simulator's runtime state.
type Position struct {
	State           State
	Shares          int64
	EntryPrice      float64
	EntryTime       time.Time
	EntryIdx        int
	EntryCommission float64
}

// Result is everything one run produces. An open position at the last
// timestamp is left open and marked to market in Equity.
type Result struct {
	Config Config
	Equity market.EquityCurve
	Trades []Trade
	Final  Position
	Cash   float64
}

// Returns is the return series of the equity curve.
func (r *Result) Returns() market.ReturnSeries { return r.Equity.Returns() }

// Engine runs the FLAT/LONG state machine. An Engine is not safe for
// concurrent use; build one per goroutine or call Run.
type Engine struct {
	cfg Config

	cash   float64
	pos    Position
	trades []Trade
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Run converts prices and signals into an equity curve and trade ledger.
func Run(prices market.PriceSeries, signals market.SignalSeries, cfg Config) (*Result, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.Run(prices, signals)
}

// Run executes one backtest. Each call starts from a fresh FLAT state.
func (e *Engine) Run(prices market.PriceSeries, signals market.SignalSeries) (*Result, error) {
	if prices.Len() != signals.Len() {
		return nil, fmt.Errorf("%w: %d prices, %d signals", ErrMisalignedSeries, prices.Len(), signals.Len())
	}

	e.cash = e.cfg.InitialCapital
	e.pos = Position{}
	e.trades = nil

	n := prices.Len()
	curve := market.EquityCurve{
		Times:  prices.Times(),
		Values: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		px := prices.Price(i)
		t := prices.Time(i)
		sig := signals.Signal(i)

		// 1) Stop/take on the open position overrides the signal.
		reason, forced := e.checkExit(px)

		switch {
		case e.pos.State == Flat && sig.IsBuy():
			e.openPosition(i, t, px)
		case e.pos.State == Long && (forced || sig.IsSell()):
			if !forced {
				reason = CloseSignal
			}
			e.closePosition(i, t, px, reason)
		}

		curve.Values[i] = e.equity(px)
	}

	log.Debug().
		Int("bars", n).
		Int("trades", len(e.trades)).
		Str("final_state", e.pos.State.String()).
		Float64("final_equity", curve.Final()).
		Msg("backtest finished")

	return &Result{
		Config: e.cfg,
		Equity: curve,
		Trades: e.trades,
		Final:  e.pos,
		Cash:   e.cash,
	}, nil
}

func (e *Engine) equity(px float64) float64 {
	if e.pos.State == Long {
		return e.cash + float64(e.pos.Shares)*px
	}
	return e.cash
}

// checkExit reports a forced close when the return since entry breaches the
// configured stop-loss or take-profit. Stop-loss wins if both are hit.
func (e *Engine) checkExit(px float64) (CloseReason, bool) {
	if e.pos.State != Long || e.pos.EntryPrice <= 0 {
		return "", false
	}
	sl, tp := e.cfg.StopLossFraction, e.cfg.TakeProfitFraction
	if sl == 0 && tp == 0 {
		return "", false
	}

	ret := (px - e.pos.EntryPrice) / e.pos.EntryPrice
	if sl > 0 && ret <= -sl {
		return CloseStopLoss, true
	}
	if tp > 0 && ret >= tp {
		return CloseTakeProfit, true
	}
	return "", false
}

func (e *Engine) openPosition(idx int, t time.Time, px float64) {
	buy := px * (1 + e.cfg.SlippageRate)
	if buy <= 0 {
		return
	}
	shares := int64(math.Floor(e.cash * e.cfg.MaxPositionFraction / buy))
	if shares <= 0 {
		return
	}

	notional := float64(shares) * buy
	commission := notional * e.cfg.CommissionRate
	e.cash -= notional + commission

	e.pos = Position{
		State:           Long,
		Shares:          shares,
		EntryPrice:      buy,
		EntryTime:       t,
		EntryIdx:        idx,
		EntryCommission: commission,
	}
}

func (e *Engine) closePosition(idx int, t time.Time, px float64, reason CloseReason) {
	p := e.pos

	sell := px * (1 - e.cfg.SlippageRate)
	proceeds := float64(p.Shares) * sell
	commission := proceeds * e.cfg.CommissionRate
	e.cash += proceeds - commission

	pnl := float64(p.Shares)*(sell-p.EntryPrice) - p.EntryCommission - commission
	basis := float64(p.Shares)*p.EntryPrice + p.EntryCommission
	ret := 0.0
	if basis > 0 {
		ret = pnl / basis
	}

	e.trades = append(e.trades, Trade{
		EntryTime:  p.EntryTime,
		ExitTime:   t,
		EntryIdx:   p.EntryIdx,
		ExitIdx:    idx,
		EntryPrice: p.EntryPrice,
		ExitPrice:  sell,
		Shares:     p.Shares,
		Commission: p.EntryCommission + commission,
		PnL:        pnl,
		Return:     ret,
		Reason:     reason,
	})

	e.pos = Position{}
}
