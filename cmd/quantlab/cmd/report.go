package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/journal"
	"github.com/rustyeddy/quantlab/risk"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a risk report for an equity or price series",
	Long: `Report computes returns, drawdown, volatility, Sharpe, Sortino, Calmar,
VaR/CVaR and, with a benchmark, beta, alpha and tracking error. It scores the
series 0-100, assigns a risk level and scans open positions for stop-loss
and take-profit alerts.

--session appends the outcome to the SQLite session log so daily risk can
be reviewed with 'quantlab journal sessions'.

Example:
  quantlab report --data spy.csv --benchmark spx.csv
  quantlab report --data strat.csv --signals --stress --mc --session
  quantlab report --data spy.csv --position SPY:100:420:395:440`,
	RunE: runReport,
}

var (
	rpData      string
	rpSignals   bool
	rpBenchmark string
	rpPositions []string
	rpStress    bool
	rpMC        bool
	rpSession   bool
	rpDBPath    string
	rpNotes     string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&rpData, "data", "f", "", "path to price CSV (required)")
	reportCmd.Flags().BoolVar(&rpSignals, "signals", false, "report on the backtested strategy equity instead of the raw prices")
	reportCmd.Flags().StringVarP(&rpBenchmark, "benchmark", "b", "", "benchmark price CSV")
	reportCmd.Flags().StringArrayVar(&rpPositions, "position", nil, "open position SYMBOL:SHARES:ENTRY:CURRENT[:HIGH]; repeatable")
	reportCmd.Flags().BoolVar(&rpStress, "stress", false, "attach a stress test over the configured scenarios")
	reportCmd.Flags().BoolVar(&rpMC, "mc", false, "attach a Monte Carlo projection")
	reportCmd.Flags().BoolVar(&rpSession, "session", false, "append the outcome to the session log")
	reportCmd.Flags().StringVarP(&rpDBPath, "db", "d", "", "SQLite journal path for --session (default from config)")
	reportCmd.Flags().StringVar(&rpNotes, "notes", "", "notes stored with the session entry")

	reportCmd.MarkFlagRequired("data")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSeries(rpData, rpSignals)
	if err != nil {
		return err
	}
	in := risk.Input{Equity: s.Equity, Returns: s.Returns}
	if rpBenchmark != "" {
		b, err := loadSeries(rpBenchmark, false)
		if err != nil {
			return err
		}
		in.Benchmark = b.Returns
	}
	for _, ps := range rpPositions {
		pos, err := parsePosition(ps)
		if err != nil {
			return err
		}
		in.Positions = append(in.Positions, pos)
	}

	a := risk.Analyzer{
		Policy:      cfg.ToPolicy(),
		Capital:     cfg.StressCapital(),
		Stress:      rpStress,
		Scenarios:   cfg.Scenarios(),
		Parallelism: cfg.Stress.Parallelism,
		Metrics:     sink,
	}
	if rpMC {
		p, err := cfg.ToMonteCarloParams()
		if err != nil {
			return fmt.Errorf("montecarlo: %w", err)
		}
		a.MonteCarlo = &p
	}

	rep, err := a.Analyze(ctx, in)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	out := cmd.OutOrStdout()
	printReport(out, s.Symbol, rep)
	if rep.Stress != nil {
		fmt.Fprintln(out)
		printStress(out, s.Symbol, rep.Stress)
	}
	if rep.MonteCarlo != nil {
		fmt.Fprintln(out)
		printMonteCarlo(out, s.Symbol, rep.MonteCarlo)
	}

	if !rpSession {
		return nil
	}
	dbPath := rpDBPath
	if dbPath == "" {
		if cfg.Journal.Type != "sqlite" {
			return fmt.Errorf("--session needs a SQLite journal: pass --db or set journal.type to sqlite")
		}
		dbPath = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	entry := sessionEntry(s.Symbol, rep, time.Now())
	entry.Notes = rpNotes
	sid, err := j.AppendSession(ctx, entry)
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	log.Info().Int64("session", sid).Str("level", entry.Level).Msg("session recorded")
	return nil
}

func sessionEntry(symbol string, rep *risk.Report, now time.Time) journal.SessionEntry {
	value := func(name string) float64 {
		m, _ := rep.Metric(name)
		return m.Value
	}
	return journal.SessionEntry{
		Date:        now,
		Symbol:      symbol,
		Level:       string(rep.Level),
		Score:       rep.Score.Value,
		MaxDrawdown: value(risk.MetricMaxDrawdown),
		Volatility:  value(risk.MetricVolatility),
		Sharpe:      value(risk.MetricSharpe),
		VaR:         value(risk.MetricVaR),
		Alerts:      len(rep.Alerts),
	}
}

func printReport(w io.Writer, symbol string, rep *risk.Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " Risk Report: %s\n", symbol)
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Risk Score:    %.1f / 100\n", rep.Score.Value)
	fmt.Fprintf(w, "Risk Level:    %s\n", rep.Level)
	fmt.Fprintf(w, "Suggestion:    %s\n", rep.Suggestion)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Metrics")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, m := range rep.Metrics {
		line := fmt.Sprintf("%-26s %12.4f  %s", m.Name, m.Value, m.Label)
		if m.Degraded {
			line += "  [degraded"
			if m.Note != "" {
				line += ": " + m.Note
			}
			line += "]"
		}
		fmt.Fprintln(w, line)
	}

	if len(rep.Alerts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Alerts")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, a := range rep.Alerts {
			fmt.Fprintf(w, "%-8s %-16s %s\n", a.Symbol, a.Code, a.Msg)
		}
	}
}
