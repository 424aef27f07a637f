package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertTrade = `
	INSERT INTO trades
	(trade_id, run_id, symbol, shares, entry_price, exit_price, open_time, close_time, commission, realized_pl, trade_return, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertEquity = `
	INSERT INTO equity (run_id, time, equity, drawdown)
	VALUES (?, ?, ?, ?)`

func recordTrade(ctx context.Context, x execer, t TradeRecord) error {
	_, err := x.ExecContext(ctx, insertTrade,
		t.TradeID, t.RunID, t.Symbol, t.Shares, t.EntryPrice, t.ExitPrice,
		t.OpenTime.UTC(), t.CloseTime.UTC(), t.Commission, t.RealizedPL, t.Return, t.Reason,
	)
	return err
}

func recordEquity(ctx context.Context, x execer, e EquitySnapshot) error {
	_, err := x.ExecContext(ctx, insertEquity, e.RunID, e.Time.UTC(), e.Equity, e.Drawdown)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	return recordTrade(context.Background(), j.db, t)
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	return recordEquity(context.Background(), j.db, e)
}

// RecordBacktest inserts the run row only.
func (j *SQLiteJournal) RecordBacktest(ctx context.Context, btr BacktestRun) error {
	return recordRun(ctx, j.db, btr)
}

func recordRun(ctx context.Context, x execer, btr BacktestRun) error {
	notes, err := json.Marshal(btr.Notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if btr.Created.IsZero() {
		btr.Created = time.Now()
	}
	_, err = x.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_id, created, symbol, dataset, config, start_time, end_time, trades, wins, losses,
		 start_balance, end_balance, net_pl, return_pct, win_rate, profit_factor, max_dd_pct, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		btr.RunID, btr.Created.UTC(), btr.Symbol, btr.Dataset, string(btr.Config),
		btr.Start.UTC(), btr.End.UTC(), btr.Trades, btr.Wins, btr.Losses,
		btr.StartBalance, btr.EndBalance, btr.NetPL, btr.ReturnPct, btr.WinRate,
		btr.ProfitFactor, btr.MaxDDPct, string(notes),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", btr.RunID, err)
	}
	return nil
}

// SaveBacktest stores a run with its trades and equity in one transaction.
func (j *SQLiteJournal) SaveBacktest(ctx context.Context, btr BacktestRun, trades []TradeRecord, equity []EquitySnapshot) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := recordRun(ctx, tx, btr); err != nil {
		return err
	}
	for _, t := range trades {
		if err := recordTrade(ctx, tx, t); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}
	for _, e := range equity {
		if err := recordEquity(ctx, tx, e); err != nil {
			return fmt.Errorf("insert equity %s: %w", e.Time, err)
		}
	}
	return tx.Commit()
}

func (j *SQLiteJournal) GetBacktestRun(ctx context.Context, runID string) (btr BacktestRun, err error) {
	var cfg, notes string
	row := j.db.QueryRowContext(ctx, `
		SELECT run_id, created, symbol, dataset, config, start_time, end_time, trades, wins, losses,
		       start_balance, end_balance, net_pl, return_pct, win_rate, profit_factor, max_dd_pct, notes
		FROM backtest_runs
		WHERE run_id = ?`, runID)
	err = row.Scan(
		&btr.RunID, &btr.Created, &btr.Symbol, &btr.Dataset, &cfg,
		&btr.Start, &btr.End, &btr.Trades, &btr.Wins, &btr.Losses,
		&btr.StartBalance, &btr.EndBalance, &btr.NetPL, &btr.ReturnPct, &btr.WinRate,
		&btr.ProfitFactor, &btr.MaxDDPct, &notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return BacktestRun{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	if err != nil {
		return BacktestRun{}, err
	}
	btr.Config = []byte(cfg)
	if err := json.Unmarshal([]byte(notes), &btr.Notes); err != nil {
		return BacktestRun{}, fmt.Errorf("decode notes for run %q: %w", runID, err)
	}
	return btr, nil
}

// ListBacktestRuns returns every run, newest first.
func (j *SQLiteJournal) ListBacktestRuns(ctx context.Context) ([]BacktestRun, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT run_id FROM backtest_runs ORDER BY created DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]BacktestRun, 0, len(ids))
	for _, id := range ids {
		r, err := j.GetBacktestRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (j *SQLiteJournal) ListTradesByRunID(ctx context.Context, runID string) (tr []TradeRecord, err error) {
	return j.queryTrades(ctx, `WHERE run_id = ? ORDER BY close_time ASC, trade_id ASC`, runID)
}

func (j *SQLiteJournal) ListEquityByRunID(ctx context.Context, runID string) (eq []EquitySnapshot, err error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, time, equity, drawdown
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity, &e.Drawdown); err != nil {
			return nil, err
		}
		eq = append(eq, e)
	}
	return eq, rows.Err()
}

// ExportBacktestOrg loads a run and its trades and returns the Org block.
func (j *SQLiteJournal) ExportBacktestOrg(ctx context.Context, runID string) (ostr string, err error) {
	run, err := j.GetBacktestRun(ctx, runID)
	if err != nil {
		return "", err
	}
	trades, err := j.ListTradesByRunID(ctx, runID)
	if err != nil {
		return "", err
	}
	ostr, err = run.Org()
	if err != nil {
		return "", err
	}
	if len(trades) > 0 {
		ostr += "\n" + FormatTradesOrg(trades)
	}
	return ostr, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
