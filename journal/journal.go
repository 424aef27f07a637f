// Package journal persists backtest runs, their trades and equity points,
// and the append-only analysis session log.
package journal

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// TradeRecord is one closed round trip.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Symbol     string
	Shares     float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	Commission float64
	RealizedPL float64
	Return     float64
	Reason     string
}

// EquitySnapshot is one point of a run's equity curve.
type EquitySnapshot struct {
	RunID    string
	Time     time.Time
	Equity   float64
	Drawdown float64 // <= 0, from the running peak
}

// SessionEntry is one day's analysis outcome. Entries are only ever
// appended; callers read history back with ListSessions.
type SessionEntry struct {
	ID          int64
	Date        time.Time // truncated to the day
	RunID       string
	Symbol      string
	Level       string
	Score       float64
	MaxDrawdown float64
	Volatility  float64
	Sharpe      float64
	VaR         float64
	Alerts      int
	Notes       string
	Created     time.Time
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const dayLayout = "2006-01-02"
