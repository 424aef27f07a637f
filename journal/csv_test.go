package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	assert.Equal(t, [][]string{tradesHeader}, readCSV(t, tradesPath))
	assert.Equal(t, [][]string{equityHeader}, readCSV(t, equityPath))
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	open := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	closeT := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	err = j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		RunID:      "R1",
		Symbol:     "SPY",
		Shares:     12,
		EntryPrice: 101.2345678,
		ExitPrice:  96.5,
		OpenTime:   open,
		CloseTime:  closeT,
		Commission: 1.25,
		RealizedPL: -58.06,
		Return:     -0.0478,
		Reason:     "STOP_LOSS",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 2)
	want := []string{
		"T1",
		"R1",
		"SPY",
		"12.000000",
		"101.234568",
		"96.500000",
		open.Format(time.RFC3339),
		closeT.Format(time.RFC3339),
		"1.250000",
		"-58.060000",
		"-0.047800",
		"STOP_LOSS",
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	ts := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteAll(j, nil, []EquitySnapshot{
		{RunID: "R1", Time: ts, Equity: 1000.1, Drawdown: 0},
		{RunID: "R1", Time: ts.AddDate(0, 0, 1), Equity: 950.095, Drawdown: -0.05},
	}))
	assert.NoError(t, j.Close())

	rows := readCSV(t, equityPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"R1", ts.Format(time.RFC3339), "1000.100000", "0.000000"}, rows[1])
	assert.Equal(t, "-0.050000", rows[2][3])
}
