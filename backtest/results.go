package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/quantlab/metrics"
)

// Summary is a lightweight summary of a backtest run.
type Summary struct {
	Start time.Time
	End   time.Time

	StartBalance float64
	EndBalance   float64
	NetPL        float64
	ReturnPct    float64

	Trades int
	Wins   int
	Losses int

	WinRate      float64 // percent
	ProfitFactor float64 // 0 when there are no losing trades
	MaxDDPct     float64 // positive percent

	OpenPosition bool
}

// Summarize derives trade and account statistics from a run.
func Summarize(r *Result) Summary {
	s := Summary{
		StartBalance: r.Config.InitialCapital,
		EndBalance:   r.Equity.Final(),
		Trades:       len(r.Trades),
		OpenPosition: r.Final.State == Long,
	}
	if n := len(r.Equity.Times); n > 0 {
		s.Start = r.Equity.Times[0]
		s.End = r.Equity.Times[n-1]
	}
	s.NetPL = s.EndBalance - s.StartBalance
	if s.StartBalance > 0 {
		s.ReturnPct = s.NetPL / s.StartBalance * 100
	}

	var grossProfit, grossLoss float64
	for _, t := range r.Trades {
		switch {
		case t.PnL > 0:
			s.Wins++
			grossProfit += t.PnL
		case t.PnL < 0:
			s.Losses++
			grossLoss += -t.PnL
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	}
	if dd, err := metrics.MaxDrawdown(r.Equity.Values); err == nil {
		s.MaxDDPct = math.Abs(dd.Max) * 100
	}
	return s
}

func PrintSummary(w io.Writer, id string, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	if id != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", id)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", s.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", s.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	if s.OpenPosition {
		fmt.Fprintln(w, "Open Position: yes (marked to market)")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", s.StartBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", s.EndBalance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", s.NetPL)
	fmt.Fprintf(w, "Return:        %.2f%%\n", s.ReturnPct)
	if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	if s.MaxDDPct > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDDPct)
	}
	fmt.Fprintln(w)
}
