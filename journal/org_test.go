package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	open := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	close := time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)

	trade := TradeRecord{
		TradeID:    "01HX3K9Z8Q-abcd",
		RunID:      "RUN1",
		Symbol:     "QQQ",
		Shares:     40,
		EntryPrice: 250.5,
		ExitPrice:  262.75,
		OpenTime:   open,
		CloseTime:  close,
		Commission: 2.5,
		RealizedPL: 487.5,
		Return:     0.0486,
		Reason:     "SIGNAL",
	}

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Trade: QQQ (01HX3K9Z)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HX3K9Z8Q-abcd")
	assert.Contains(t, result, ":ID: 01HX3K9Z8Q-abcd")
	assert.Contains(t, result, ":RUN_ID: RUN1")
	assert.Contains(t, result, ":SYMBOL: QQQ")
	assert.Contains(t, result, ":SHARES: 40")
	assert.Contains(t, result, ":ENTRY_PRICE: 250.5000")
	assert.Contains(t, result, ":EXIT_PRICE: 262.7500")
	assert.Contains(t, result, ":OPEN_TIME: 2024-03-15T00:00:00Z")
	assert.Contains(t, result, ":CLOSE_TIME: 2024-03-22T00:00:00Z")
	assert.Contains(t, result, ":COMMISSION: 2.50")
	assert.Contains(t, result, ":REALIZED_PL: 487.50")
	assert.Contains(t, result, ":RETURN_PCT: 4.86")
	assert.Contains(t, result, ":REASON: SIGNAL")
	assert.Contains(t, result, ":END:")

	assert.Contains(t, result, "*** Thesis")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgNoRunID(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(TradeRecord{TradeID: "short", Symbol: "IWM", RealizedPL: -500})
	assert.Contains(t, result, "** Trade: IWM (short)")
	assert.Contains(t, result, ":REALIZED_PL: -500.00")
	assert.NotContains(t, result, ":RUN_ID:")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	trades := []TradeRecord{
		{TradeID: "trade-001", Symbol: "SPY", RealizedPL: 200},
		{TradeID: "trade-002", Symbol: "TLT", RealizedPL: -100},
	}

	result := FormatTradesOrg(trades)
	assert.Contains(t, result, "SPY")
	assert.Contains(t, result, "TLT")

	parts := strings.Split(result, "\n\n\n")
	assert.Len(t, parts, 2, "two trades separated by blank lines")

	assert.Empty(t, FormatTradesOrg(nil))
	assert.NotContains(t, FormatTradesOrg(trades[:1]), "\n\n\n")
}

func TestShortID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"long ID gets truncated", "trade-12345678-abcdef", "trade-12"},
		{"exactly 8 characters", "12345678", "12345678"},
		{"less than 8 characters", "short", "short"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortID(tt.input))
		})
	}
}

func TestFormatTradeOrgStructure(t *testing.T) {
	t.Parallel()

	lines := strings.Split(FormatTradeOrg(TradeRecord{TradeID: "structure-test", Symbol: "GLD"}), "\n")
	require.Greater(t, len(lines), 10)
	assert.True(t, strings.HasPrefix(lines[0], "** Trade:"))

	idx := func(s string) int {
		for i, l := range lines {
			if strings.Contains(l, s) {
				return i
			}
		}
		return -1
	}
	assert.Greater(t, idx(":PROPERTIES:"), 0)
	assert.Greater(t, idx(":END:"), idx(":PROPERTIES:"))
	assert.Greater(t, idx("*** Thesis"), idx(":END:"))
	assert.Greater(t, idx("*** Execution"), idx("*** Thesis"))
	assert.Greater(t, idx("*** Review"), idx("*** Execution"))
}
