package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/strategies"
	"github.com/spf13/cobra"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Generate a signal column for a price file",
	Long: `Signals runs a strategy over the prices of a CSV and writes
time,price,signal rows ready for 'quantlab backtest'.

Strategies:
  noop       - hold throughout (flat baseline)
  open-once  - buy on the first bar and hold
  ema-cross  - buy on fast/slow EMA bull cross, sell on bear cross
  sma-cross  - the same with simple moving averages
  trend      - buy when price closes above the --slow SMA, sell below it

Example:
  quantlab signals --data spy.csv --strategy ema-cross --fast 10 --slow 30 -o spy-signals.csv`,
	RunE: runSignals,
}

var (
	sgData     string
	sgStrategy string
	sgFast     int
	sgSlow     int
	sgOutput   string
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().StringVarP(&sgData, "data", "f", "", "path to price CSV (required)")
	signalsCmd.Flags().StringVarP(&sgStrategy, "strategy", "s", "ema-cross", "strategy name ("+strings.Join(strategies.Names, ", ")+")")
	signalsCmd.Flags().IntVar(&sgFast, "fast", 10, "crosses: fast average period")
	signalsCmd.Flags().IntVar(&sgSlow, "slow", 30, "crosses: slow average period; trend: SMA period")
	signalsCmd.Flags().StringVarP(&sgOutput, "output", "o", "", "output CSV (default: stdout)")

	signalsCmd.MarkFlagRequired("data")
}

func runSignals(cmd *cobra.Command, args []string) error {
	prices, _, err := market.LoadCSV(sgData)
	if err != nil {
		return fmt.Errorf("load %s: %w", sgData, err)
	}
	strat, err := strategies.ByName(sgStrategy, sgFast, sgSlow)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	signals, err := strategies.Generate(prices, strat)
	if err != nil {
		return fmt.Errorf("%s: %w", strat.Name(), err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if sgOutput != "" {
		f, err := os.Create(sgOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := market.WriteCSV(w, prices, signals); err != nil {
		return fmt.Errorf("write signals: %w", err)
	}

	var buys, sells int
	for i := 0; i < signals.Len(); i++ {
		switch s := signals.Signal(i); {
		case s.IsBuy():
			buys++
		case s.IsSell():
			sells++
		}
	}
	log.Info().Str("strategy", strat.Name()).Int("bars", prices.Len()).Int("buys", buys).Int("sells", sells).Msg("signals generated")
	return nil
}
