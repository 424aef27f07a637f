package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantlab/journal"
	"github.com/rustyeddy/quantlab/pkg/id"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the backtest and session journal",
	Long: `Query and display journal records from the SQLite database.

Subcommands:
  runs      - List backtest runs
  run       - Show a backtest run as org-mode
  trades    - List the trades of a run
  trade     - Get details of a specific trade by ID
  today     - List trades closed and equity marked today
  day       - List trades closed and equity marked on a specific day
  sessions  - List risk report sessions
  csv       - Export a run's trades and equity to CSV files

Examples:
  quantlab journal runs
  quantlab journal run <run-id>
  quantlab journal day 2024-01-15
  quantlab journal sessions --from 2024-01-01 --to 2024-01-31`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List backtest runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a backtest run with its trades as org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a backtest run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed and equity marked today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed and equity marked on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List risk report sessions between two days (inclusive)",
	Args:  cobra.NoArgs,
	RunE:  runJournalSessions,
}

var journalCSVCmd = &cobra.Command{
	Use:   "csv <run-id>",
	Short: "Export a run's trades and equity curve to CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalCSV,
}

var (
	journalDBPath string
	sessionsFrom  string
	sessionsTo    string
	csvTrades     string
	csvEquity     string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalSessionsCmd)
	journalCmd.AddCommand(journalCSVCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")

	journalSessionsCmd.Flags().StringVar(&sessionsFrom, "from", "", "first day YYYY-MM-DD (default: 30 days ago)")
	journalSessionsCmd.Flags().StringVar(&sessionsTo, "to", "", "last day YYYY-MM-DD (default: today)")

	journalCSVCmd.Flags().StringVar(&csvTrades, "trades", "trades.csv", "trades output file")
	journalCSVCmd.Flags().StringVar(&csvEquity, "equity", "equity.csv", "equity output file")
}

func openSQLite() (*journal.SQLiteJournal, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no SQLite journal: pass --db or set journal.db_path")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListBacktestRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-26s %-8s %-16s %7s %10s %8s\n", "RUN", "SYMBOL", "CREATED", "TRADES", "RETURN", "MAX DD")
	for _, r := range runs {
		created := r.Created
		if created.IsZero() {
			if t, err := id.Time(r.RunID); err == nil {
				created = t
			}
		}
		fmt.Fprintf(out, "%-26s %-8s %-16s %7d %9.2f%% %7.2f%%\n",
			r.RunID, r.Symbol, created.Local().Format("2006-01-02 15:04"), r.Trades, r.ReturnPct, r.MaxDDPct)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	org, err := j.ExportBacktestOrg(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("export run: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), org)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesByRunID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listTradesOn(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listTradesOn(cmd, args[0])
}

func listTradesOn(cmd *cobra.Command, day string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	snaps, err := j.ListEquityBetween(start, end)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, journal.FormatTradesOrg(recs))
	if len(snaps) == 0 {
		return nil
	}
	fmt.Fprintf(w, "Equity on %s:\n", day)
	for _, e := range snaps {
		fmt.Fprintf(w, "  %-26s  %s  %12.2f  %s\n", e.RunID, e.Time.UTC().Format(time.RFC3339), e.Equity, pct(e.Drawdown))
	}
	return nil
}

func runJournalSessions(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	to := time.Now()
	if sessionsTo != "" {
		if to, _, err = dayBounds(time.UTC, sessionsTo); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}
	from := to.AddDate(0, 0, -30)
	if sessionsFrom != "" {
		if from, _, err = dayBounds(time.UTC, sessionsFrom); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}

	entries, err := j.ListSessions(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-8s %-9s %6s %9s %9s %7s %9s %6s  %s\n",
		"DAY", "SYMBOL", "LEVEL", "SCORE", "MAX DD", "VOL", "SHARPE", "VAR", "ALERTS", "NOTES")
	for _, e := range entries {
		fmt.Fprintf(out, "%-10s %-8s %-9s %6.1f %9s %9s %7.2f %9s %6d  %s\n",
			e.Date.Format("2006-01-02"), e.Symbol, e.Level, e.Score,
			pct(e.MaxDrawdown), pct(e.Volatility), e.Sharpe, pct(e.VaR), e.Alerts, e.Notes)
	}
	return nil
}

func runJournalCSV(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	trades, err := j.ListTradesByRunID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	equity, err := j.ListEquityByRunID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	if len(trades) == 0 && len(equity) == 0 {
		return fmt.Errorf("run %s: %w", args[0], journal.ErrNotFound)
	}

	cj, err := journal.NewCSV(csvTrades, csvEquity)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	if err := journal.WriteAll(cj, trades, equity); err != nil {
		cj.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := cj.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d trades to %s and %d equity points to %s\n",
		len(trades), csvTrades, len(equity), csvEquity)
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
