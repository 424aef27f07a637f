package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/internal/telemetry"
	"github.com/rustyeddy/quantlab/internal/workers"
	"github.com/rustyeddy/quantlab/market"
)

// Job is one asset's inputs in a batch.
type Job struct {
	ID      string
	Prices  market.PriceSeries
	Signals market.SignalSeries
}

// JobResult is keyed by Job.ID. Err holds a structural failure for this
// asset alone (e.g. ErrMisalignedSeries); other assets are unaffected.
type JobResult struct {
	ID     string
	Result *Result
	Err    error
}

// RunnerOptions controls batch dispatch.
type RunnerOptions struct {
	Parallelism int
	Metrics     *telemetry.Metrics
}

// RunBatch backtests every job with the same configuration across a worker
// pool. An invalid configuration or duplicate job ID fails the whole batch
// before any work starts.
func RunBatch(ctx context.Context, jobs []Job, cfg Config, opts RunnerOptions) (map[string]JobResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if _, dup := seen[j.ID]; dup {
			return nil, fmt.Errorf("backtest: duplicate job id %q", j.ID)
		}
		seen[j.ID] = struct{}{}
	}

	slots := make([]JobResult, len(jobs))
	pool := workers.Pool{Limit: opts.Parallelism, Kind: "backtest", Metrics: opts.Metrics}
	err := pool.Run(ctx, len(jobs), func(_ context.Context, i int) error {
		j := jobs[i]
		res, err := Run(j.Prices, j.Signals, cfg)
		slots[i] = JobResult{ID: j.ID, Result: res, Err: err}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]JobResult, len(slots))
	failed := 0
	for _, s := range slots {
		if s.Err != nil {
			failed++
		}
		out[s.ID] = s
	}
	log.Debug().Int("jobs", len(jobs)).Int("failed", failed).Msg("backtest batch finished")
	return out, nil
}
