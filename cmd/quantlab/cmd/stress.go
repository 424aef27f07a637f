package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/quantlab/stress"
	"github.com/spf13/cobra"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Replay a return series under crash and volatility scenarios",
	Long: `Stress applies each scenario's price shock and volatility multiplier to
the returns of a price file and reports final value, drawdown, worst day,
volatility, VaR and survival per scenario.

Without configured scenarios the built-in catalog runs:
  market_crash, severe_bear, high_volatility, flash_crash, slow_bleed

Example:
  quantlab stress --data data/spy.csv
  quantlab stress --data spy.csv --signals --scenario flash_crash`,
	RunE: runStress,
}

var (
	stData      string
	stSignals   bool
	stScenarios []string
	stCapital   float64
)

func init() {
	rootCmd.AddCommand(stressCmd)

	stressCmd.Flags().StringVarP(&stData, "data", "f", "", "path to price CSV (required)")
	stressCmd.Flags().BoolVar(&stSignals, "signals", false, "stress the backtested strategy returns instead of the raw prices")
	stressCmd.Flags().StringSliceVar(&stScenarios, "scenario", nil, "run only the named scenarios")
	stressCmd.Flags().Float64Var(&stCapital, "capital", 0, "initial capital (default from config)")

	stressCmd.MarkFlagRequired("data")
}

func runStress(cmd *cobra.Command, args []string) error {
	s, err := loadSeries(stData, stSignals)
	if err != nil {
		return err
	}

	scenarios, err := selectScenarios(cfg.Scenarios(), stScenarios)
	if err != nil {
		return err
	}
	capital := cfg.StressCapital()
	if stCapital > 0 {
		capital = stCapital
	}

	rep, err := stress.Run(cmd.Context(), s.Returns, capital, scenarios, stress.Options{
		Parallelism: cfg.Stress.Parallelism,
		Metrics:     sink,
	})
	if err != nil {
		return fmt.Errorf("stress: %w", err)
	}
	printStress(cmd.OutOrStdout(), s.Symbol, rep)
	return nil
}

// selectScenarios filters by name; nil scenarios means the built-in catalog.
func selectScenarios(scenarios []stress.Scenario, names []string) ([]stress.Scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}
	if scenarios == nil {
		scenarios = stress.DefaultScenarios()
	}
	var out []stress.Scenario
	for _, name := range names {
		found := false
		for _, sc := range scenarios {
			if sc.Name == name {
				out = append(out, sc)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
	}
	return out, nil
}

func printStress(w io.Writer, symbol string, rep *stress.Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " Stress Test: %s\n", symbol)
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Initial Capital: %.2f\n\n", rep.InitialCapital)

	fmt.Fprintf(w, "%-16s %12s %9s %9s %9s %9s %9s %8s\n",
		"SCENARIO", "FINAL", "RETURN", "MAX DD", "WORST", "VOL", "VAR95", "SURVIVE")
	for _, r := range rep.Results {
		fmt.Fprintf(w, "%-16s %12.2f %9s %9s %9s %9s %9s %8s",
			r.Scenario.Name, r.FinalValue, pct(r.TotalReturn), pct(r.MaxDrawdown),
			pct(r.WorstDay), pct(r.Volatility), pct(r.VaR95), pct(r.SurvivalProbability))
		if len(r.Degraded) > 0 {
			fmt.Fprintf(w, "  (degraded: %s)", strings.Join(r.Degraded, ", "))
		}
		fmt.Fprintln(w)
	}

	sum := rep.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Worst Scenario: %s (%s)\n", sum.WorstScenario, pct(sum.WorstReturn))
	fmt.Fprintf(w, "Mean Return:    %s\n", pct(sum.MeanReturn))
	fmt.Fprintf(w, "Positive:       %d of %d\n", sum.PositiveCount, sum.Scenarios)
	fmt.Fprintf(w, "Surviving:      %d of %d\n", sum.SurvivingCount, sum.Scenarios)
}
