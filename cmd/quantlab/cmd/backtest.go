package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/journal"
	"github.com/rustyeddy/quantlab/market"
	"github.com/rustyeddy/quantlab/strategies"
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest signal series against historical prices",
	Long: `Backtest replays a time,price,signal CSV through the long-only simulator.

BUY / STRONG_BUY open a position sized by max_position_fraction, SELL /
STRONG_SELL close it. Commission, slippage, stop loss and take profit come
from the backtest section of the config file.

--strategy replaces the file's signal column with generated signals
(noop, open-once, ema-cross).

Several --data files run concurrently; each is journaled as its own run.

Example:
  quantlab backtest --data data/spy.csv --db ./quantlab.db
  quantlab backtest --data spy.csv --data qqq.csv --parallel 4
  quantlab backtest --data spy.csv --strategy ema-cross --fast 10 --slow 30`,
	RunE: runBacktest,
}

var (
	btData     []string
	btSymbol   string
	btDBPath   string
	btNoJourn  bool
	btOrgDir   string
	btParallel int
	btStrategy string
	btFast     int
	btSlow     int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringSliceVarP(&btData, "data", "f", nil, "path to price CSV (time,price[,signal]); repeatable (required)")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "", "symbol for a single data file (default: file name)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "SQLite journal path (overrides config)")
	backtestCmd.Flags().BoolVar(&btNoJourn, "no-journal", false, "do not journal the run")
	backtestCmd.Flags().StringVar(&btOrgDir, "org", "", "write an org-mode summary per run into this directory")
	backtestCmd.Flags().IntVarP(&btParallel, "parallel", "p", 0, "concurrent backtests (0: number of CPUs)")

	backtestCmd.Flags().StringVar(&btStrategy, "strategy", "", "generate signals with a strategy instead of the signal column")
	backtestCmd.Flags().IntVar(&btFast, "fast", 10, "crosses: fast average period")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 30, "crosses: slow average period; trend: SMA period")

	backtestCmd.MarkFlagRequired("data")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bcfg := cfg.ToBacktestConfig()

	jobs := make([]backtest.Job, len(btData))
	for i, path := range btData {
		prices, signals, err := market.LoadCSV(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if btStrategy != "" {
			strat, err := strategies.ByName(btStrategy, btFast, btSlow)
			if err != nil {
				return fmt.Errorf("strategy: %w", err)
			}
			if signals, err = strategies.Generate(prices, strat); err != nil {
				return fmt.Errorf("%s: %w", strat.Name(), err)
			}
		}
		sym := symbolFor(path)
		if btSymbol != "" && len(btData) == 1 {
			sym = btSymbol
		}
		jobs[i] = backtest.Job{ID: sym, Prices: prices, Signals: signals}
	}

	results, err := backtest.RunBatch(ctx, jobs, bcfg, backtest.RunnerOptions{
		Parallelism: btParallel,
		Metrics:     sink,
	})
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	jcfg := cfg.Journal
	switch {
	case btNoJourn:
		jcfg.Type = "none"
	case btDBPath != "":
		jcfg.Type, jcfg.DBPath = "sqlite", btDBPath
	}
	j, err := openJournal(jcfg.Type, jcfg.DBPath, jcfg.TradesFile, jcfg.EquityFile)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	out := cmd.OutOrStdout()
	var failed int
	for i, job := range jobs {
		jr := results[job.ID]
		if jr.Err != nil {
			failed++
			log.Error().Err(jr.Err).Str("symbol", job.ID).Msg("backtest failed")
			continue
		}

		run, trades, equity, err := journal.FromResult("", job.ID, btData[i], jr.Result)
		if err != nil {
			return err
		}
		backtest.PrintSummary(out, run.RunID, backtest.Summarize(jr.Result))
		fmt.Fprintln(out)

		if err := saveBacktest(ctx, j, run, trades, equity); err != nil {
			return fmt.Errorf("journal %s: %w", job.ID, err)
		}
		if btOrgDir != "" {
			run.OrgPath = filepath.Join(btOrgDir, run.RunID+".org")
			if err := run.WriteBacktestOrg(); err != nil {
				return err
			}
		}
		log.Info().Str("run", run.RunID).Str("symbol", job.ID).Int("trades", len(trades)).Msg("backtest complete")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backtests failed", failed, len(jobs))
	}
	return nil
}

// openJournal returns nil for the "none" type.
func openJournal(kind, dbPath, tradesFile, equityFile string) (journal.Journal, error) {
	switch kind {
	case "sqlite":
		return journal.NewSQLite(dbPath)
	case "csv":
		return journal.NewCSV(tradesFile, equityFile)
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", kind)
}

func saveBacktest(ctx context.Context, j journal.Journal, run journal.BacktestRun, trades []journal.TradeRecord, equity []journal.EquitySnapshot) error {
	switch j := j.(type) {
	case nil:
		return nil
	case *journal.SQLiteJournal:
		return j.SaveBacktest(ctx, run, trades, equity)
	default:
		return journal.WriteAll(j, trades, equity)
	}
}
