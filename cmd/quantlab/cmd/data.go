package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/risk"
)

// series is the equity path and returns the analysis commands work on.
type series struct {
	Symbol  string
	Equity  []float64
	Returns []float64
	Result  *backtest.Result // set when the signals were backtested
}

// symbolFor derives a symbol from a data file name: data/spy.csv -> SPY.
func symbolFor(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// loadSeries reads a time,price[,signal] file. With useSignals the signals
// are backtested and the strategy equity is returned; otherwise the prices
// themselves are the equity path.
func loadSeries(path string, useSignals bool) (series, error) {
	prices, signals, err := market.LoadCSV(path)
	if err != nil {
		return series{}, fmt.Errorf("load %s: %w", path, err)
	}
	s := series{Symbol: symbolFor(path)}
	if !useSignals {
		s.Equity = prices.Prices()
		s.Returns = prices.Returns()
		return s, nil
	}

	res, err := backtest.Run(prices, signals, cfg.ToBacktestConfig())
	if err != nil {
		return series{}, fmt.Errorf("backtest %s: %w", path, err)
	}
	s.Result = res
	s.Equity = res.Equity.Values
	s.Returns = res.Returns()
	return s, nil
}

// parsePosition reads SYMBOL:SHARES:ENTRY:CURRENT[:HIGH].
func parsePosition(s string) (risk.Position, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return risk.Position{}, fmt.Errorf("position %q: want SYMBOL:SHARES:ENTRY:CURRENT[:HIGH]", s)
	}
	nums := make([]float64, len(parts)-1)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return risk.Position{}, fmt.Errorf("position %q: %w", s, err)
		}
		nums[i] = v
	}
	pos := risk.Position{
		Symbol:       strings.TrimSpace(parts[0]),
		Shares:       nums[0],
		EntryPrice:   nums[1],
		CurrentPrice: nums[2],
	}
	if len(nums) == 4 {
		pos.HighWater = nums[3]
	}
	return pos, nil
}

func pct(x float64) string {
	return fmt.Sprintf("%.2f%%", 100*x)
}
