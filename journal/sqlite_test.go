package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('backtest_runs','trades','equity','sessions')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	for _, name := range []string{"backtest_runs", "trades", "equity", "sessions"} {
		assert.True(t, found[name], name)
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(TradeRecord{TradeID: "T1", Symbol: "SPY", Reason: "SIGNAL"}))
	require.NoError(t, j.Close())

	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, "SPY", got.Symbol)
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Time: ts, Equity: 999.9, Drawdown: -0.01}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R2", Time: ts, Equity: 5}))

	got, err := j.ListEquityByRunID(context.Background(), "R1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Time.Equal(ts))
	assert.InDelta(t, 999.9, got[0].Equity, 1e-9)
	assert.InDelta(t, -0.01, got[0].Drawdown, 1e-12)

	all, err := j.ListEquityBetween(ts, ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func sampleResult(t *testing.T) *backtest.Result {
	t.Helper()

	prices, err := market.DailyPrices(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, 110, 110, 105, 100, 104)
	require.NoError(t, err)
	signals, err := market.SignalsFor(prices,
		market.Buy, market.Sell, market.Buy, market.Hold, market.Sell, market.Buy)
	require.NoError(t, err)

	cfg := backtest.DefaultConfig()
	cfg.InitialCapital = 1000
	res, err := backtest.Run(prices, signals, cfg)
	require.NoError(t, err)
	return res
}

func TestSaveBacktestRoundTrip(t *testing.T) {
	t.Parallel()

	res := sampleResult(t)
	run, trades, equity, err := FromResult("", "SPY", "spy.csv", res)
	require.NoError(t, err)
	require.NotEmpty(t, run.RunID)
	require.Len(t, trades, 2)
	require.Len(t, equity, 6)
	assert.Contains(t, run.Notes, "position still open at end of data")

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	require.NoError(t, j.SaveBacktest(ctx, run, trades, equity))

	got, err := j.GetBacktestRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Symbol, got.Symbol)
	assert.Equal(t, run.Dataset, got.Dataset)
	assert.JSONEq(t, string(run.Config), string(got.Config))
	assert.Equal(t, 2, got.Trades)
	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.InDelta(t, run.EndBalance, got.EndBalance, 1e-9)
	assert.True(t, got.Start.Equal(run.Start))
	assert.Equal(t, run.Notes, got.Notes)

	gotTrades, err := j.ListTradesByRunID(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, gotTrades, 2)
	for i := range trades {
		assert.Equal(t, trades[i].TradeID, gotTrades[i].TradeID)
		assert.Equal(t, trades[i].Reason, gotTrades[i].Reason)
		assert.InDelta(t, trades[i].RealizedPL, gotTrades[i].RealizedPL, 1e-9)
		assert.True(t, gotTrades[i].CloseTime.Equal(trades[i].CloseTime))
	}

	gotEquity, err := j.ListEquityByRunID(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, gotEquity, len(equity))
	for i := range equity {
		assert.InDelta(t, equity[i].Equity, gotEquity[i].Equity, 1e-9)
	}

	runs, err := j.ListBacktestRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)

	org, err := j.ExportBacktestOrg(ctx, run.RunID)
	require.NoError(t, err)
	assert.Contains(t, org, "* BACKTEST: SPY")
	assert.Contains(t, org, ":RUN_ID:      "+run.RunID)
	assert.Contains(t, org, "** Trade: SPY")
	assert.Contains(t, org, "- position still open at end of data")
}

func TestSaveBacktestIsAtomic(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	run := BacktestRun{RunID: "R1", Symbol: "SPY"}
	dup := []TradeRecord{{TradeID: "T1", RunID: "R1"}, {TradeID: "T1", RunID: "R1"}}
	assert.Error(t, j.SaveBacktest(ctx, run, dup, nil))

	_, err := j.GetBacktestRun(ctx, "R1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = j.GetTrade("T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordBacktestDuplicate(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()

	run := BacktestRun{RunID: "R1", Symbol: "SPY"}
	require.NoError(t, j.RecordBacktest(ctx, run))
	assert.Error(t, j.RecordBacktest(ctx, run))
}

func TestWriteBacktestOrg(t *testing.T) {
	t.Parallel()

	run, _, _, err := FromResult("RUN42", "TLT", "", sampleResult(t))
	require.NoError(t, err)
	run.OrgPath = filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, run.WriteBacktestOrg())

	org, err := run.Org()
	require.NoError(t, err)
	assert.Contains(t, org, ":RUN_ID:      RUN42")
	assert.Contains(t, org, ":DATASET:     (dataset?)")
	assert.Contains(t, org, ":TRADES:      2")
	assert.Contains(t, org, `"initial_capital":1000`)
}
