package cmd

import (
	"fmt"
	"io"

	"github.com/rustyeddy/quantlab/metrics"
	"github.com/spf13/cobra"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlation matrix and diversification score across assets",
	Long: `Correlate computes pairwise Pearson correlations of the returns of
several price files, aligned on their most recent common window, and flags
pairs above 0.8 as pseudo-diversification.

Example:
  quantlab correlate --data spy.csv --data qqq.csv --data tlt.csv`,
	RunE: runCorrelate,
}

var crData []string

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringSliceVarP(&crData, "data", "f", nil, "path to price CSV; repeatable (required)")
	correlateCmd.MarkFlagRequired("data")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	named := make([]metrics.NamedSeries, 0, len(crData))
	for _, path := range crData {
		s, err := loadSeries(path, false)
		if err != nil {
			return err
		}
		named = append(named, metrics.NamedSeries{Name: s.Symbol, Returns: s.Returns})
	}

	m, err := metrics.Correlations(named)
	if err != nil {
		return fmt.Errorf("correlate: %w", err)
	}
	printCorrelations(cmd.OutOrStdout(), m)
	return nil
}

func printCorrelations(w io.Writer, m metrics.CorrelationMatrix) {
	fmt.Fprintf(w, "%-8s", "")
	for _, n := range m.Names {
		fmt.Fprintf(w, " %8s", n)
	}
	fmt.Fprintln(w)
	for i, n := range m.Names {
		fmt.Fprintf(w, "%-8s", n)
		for _, v := range m.Values[i] {
			fmt.Fprintf(w, " %8.3f", v)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average Correlation:   %.3f\n", m.AverageCorrelation)
	fmt.Fprintf(w, "Diversification Score: %.1f / 100\n", m.DiversificationScore)
	for _, pw := range m.Warnings {
		fmt.Fprintf(w, "WARNING: %s / %s correlate at %.2f (pseudo-diversification)\n", pw.A, pw.B, pw.Correlation)
	}
}
