package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const selectTrades = `
	SELECT trade_id, run_id, symbol, shares, entry_price, exit_price, open_time, close_time,
	       commission, realized_pl, trade_return, reason
	FROM trades `

func scanTrade(s interface{ Scan(...any) error }) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.RunID,
		&rec.Symbol,
		&rec.Shares,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Commission,
		&rec.RealizedPL,
		&rec.Return,
		&rec.Reason,
	)
	return rec, err
}

func (j *SQLiteJournal) queryTrades(ctx context.Context, where string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, selectTrades+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	rec, err := scanTrade(j.db.QueryRow(selectTrades+`WHERE trade_id = ?`, tradeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLiteJournal) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.queryTrades(context.Background(),
		`WHERE close_time >= ? AND close_time < ? ORDER BY close_time ASC`, start.UTC(), end.UTC())
}

// ListEquityBetween returns equity points within [start, end) across runs.
func (j *SQLiteJournal) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, drawdown
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity, &e.Drawdown); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendSession adds one entry to the session log and returns its ID.
// Date is stored as its UTC calendar day.
func (j *SQLiteJournal) AppendSession(ctx context.Context, s SessionEntry) (int64, error) {
	if s.Date.IsZero() {
		s.Date = time.Now()
	}
	if s.Created.IsZero() {
		s.Created = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions
		(day, run_id, symbol, level, score, max_drawdown, volatility, sharpe, value_at_risk, alerts, notes, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Day(s.Date).Format(dayLayout), s.RunID, s.Symbol, s.Level, s.Score,
		s.MaxDrawdown, s.Volatility, s.Sharpe, s.VaR, s.Alerts, s.Notes, s.Created.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("append session: %w", err)
	}
	return res.LastInsertId()
}

// ListSessions returns entries whose day is within [from, to], both
// inclusive, oldest first.
func (j *SQLiteJournal) ListSessions(ctx context.Context, from, to time.Time) ([]SessionEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, day, run_id, symbol, level, score, max_drawdown, volatility, sharpe, value_at_risk, alerts, notes, created
		FROM sessions
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC, id ASC`,
		Day(from).Format(dayLayout), Day(to).Format(dayLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionEntry
	for rows.Next() {
		var (
			s   SessionEntry
			day string
		)
		if err := rows.Scan(&s.ID, &day, &s.RunID, &s.Symbol, &s.Level, &s.Score,
			&s.MaxDrawdown, &s.Volatility, &s.Sharpe, &s.VaR, &s.Alerts, &s.Notes, &s.Created); err != nil {
			return nil, err
		}
		if s.Date, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("session %d: bad day %q: %w", s.ID, day, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
