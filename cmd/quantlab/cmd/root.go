package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/config"
	"github.com/rustyeddy/quantlab/internal/telemetry"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantlab",
	Short: "Backtesting and portfolio risk analysis",
	Long: `Quantlab is a research toolkit for long-only trading strategies.

It provides tools for:
  - Backtesting signal series against historical prices
  - Stress testing return series under crash and volatility scenarios
  - Monte Carlo projections of future equity
  - Risk reports with drawdown, volatility, VaR and risk-adjusted ratios
  - Journaling runs, trades and daily analysis sessions to SQLite or CSV`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	cfgFile     string
	logLevel    string
	showMetrics bool

	cfg      *config.Config
	registry *prometheus.Registry
	sink     *telemetry.Metrics
)

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command context so batch work stops between units.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print unit-of-work metrics when the command finishes")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := setupLogging(logLevel); err != nil {
		return err
	}

	if cfgFile == "" {
		cfg = config.Default()
	} else {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		log.Debug().Str("path", cfgFile).Msg("config loaded")
	}

	registry = prometheus.NewRegistry()
	sink = telemetry.New(registry)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if !showMetrics {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return telemetry.Dump(cmd.OutOrStdout(), registry)
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}
