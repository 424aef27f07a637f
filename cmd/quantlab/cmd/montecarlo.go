package cmd

import (
	"fmt"
	"io"

	"github.com/rustyeddy/quantlab/montecarlo"
	"github.com/spf13/cobra"
)

var montecarloCmd = &cobra.Command{
	Use:     "montecarlo",
	Aliases: []string{"mc"},
	Short:   "Project future equity by resampling historical returns",
	Long: `Montecarlo simulates many equity paths from the returns of a price file
and reports the distribution of final values.

Modes:
  bootstrap   - draw daily returns with replacement from history
  parametric  - draw from a normal fitted to the history

The same seed gives the same report regardless of --parallel.

Example:
  quantlab montecarlo --data data/spy.csv --sims 20000 --days 126
  quantlab mc --data spy.csv --mode parametric --seed 7`,
	RunE: runMonteCarlo,
}

var (
	mcData     string
	mcSignals  bool
	mcSims     int
	mcDays     int
	mcMode     string
	mcSeed     uint64
	mcParallel int
)

func init() {
	rootCmd.AddCommand(montecarloCmd)

	montecarloCmd.Flags().StringVarP(&mcData, "data", "f", "", "path to price CSV (required)")
	montecarloCmd.Flags().BoolVar(&mcSignals, "signals", false, "simulate the backtested strategy returns instead of the raw prices")
	montecarloCmd.Flags().IntVarP(&mcSims, "sims", "n", 0, "number of simulations (default from config)")
	montecarloCmd.Flags().IntVar(&mcDays, "days", 0, "days per path (default from config)")
	montecarloCmd.Flags().StringVarP(&mcMode, "mode", "m", "", "bootstrap or parametric (default from config)")
	montecarloCmd.Flags().Uint64Var(&mcSeed, "seed", 0, "random seed (default from config)")
	montecarloCmd.Flags().IntVarP(&mcParallel, "parallel", "p", 0, "concurrent workers (default from config)")

	montecarloCmd.MarkFlagRequired("data")
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(mcData, mcSignals)
	if err != nil {
		return err
	}

	mc := cfg.MonteCarlo
	if mcSims > 0 {
		mc.Simulations = mcSims
	}
	if mcDays > 0 {
		mc.Days = mcDays
	}
	if mcMode != "" {
		mc.Mode = mcMode
	}
	if cmd.Flags().Changed("seed") {
		mc.Seed = mcSeed
	}
	if mcParallel > 0 {
		mc.Parallelism = mcParallel
	}
	cfg.MonteCarlo = mc

	p, err := cfg.ToMonteCarloParams()
	if err != nil {
		return fmt.Errorf("montecarlo: %w", err)
	}
	rep, err := montecarlo.Run(cmd.Context(), s.Returns, p, montecarlo.Options{
		Parallelism: mc.Parallelism,
		Metrics:     sink,
	})
	if err != nil {
		return fmt.Errorf("montecarlo: %w", err)
	}
	printMonteCarlo(cmd.OutOrStdout(), s.Symbol, rep)
	return nil
}

func printMonteCarlo(w io.Writer, symbol string, rep *montecarlo.Report) {
	p, st := rep.Params, rep.Stats
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " Monte Carlo: %s\n", symbol)
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Mode:          %s\n", p.Mode)
	fmt.Fprintf(w, "Simulations:   %d\n", p.Simulations)
	fmt.Fprintf(w, "Days:          %d\n", p.Days)
	fmt.Fprintf(w, "Seed:          %d\n", p.Seed)
	fmt.Fprintf(w, "Initial:       %.2f\n", p.InitialCapital)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Final Value Distribution")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Mean:          %.2f\n", st.Mean)
	fmt.Fprintf(w, "Median:        %.2f\n", st.Median)
	fmt.Fprintf(w, "Std Dev:       %.2f\n", st.StdDev)
	fmt.Fprintf(w, "P5 / P25:      %.2f / %.2f\n", st.P5, st.P25)
	fmt.Fprintf(w, "P75 / P95:     %.2f / %.2f\n", st.P75, st.P95)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Outlook")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Expected Return:   %s\n", pct(st.ExpectedReturn))
	fmt.Fprintf(w, "P(profit):         %s\n", pct(st.ProbabilityProfit))
	fmt.Fprintf(w, "P(loss > 50%%):     %s\n", pct(st.ProbabilityLoss50))
	fmt.Fprintf(w, "Expected Shortfall: %.2f\n", st.ExpectedShortfall5)
}
