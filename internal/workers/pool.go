// Package workers fans independent units of work across a bounded set of
// goroutines. Each unit writes only to its own output slot, so the pool
// needs no locking beyond the final join.
package workers

import (
	"context"
	"runtime"
	"time"

	"github.com/rustyeddy/quantlab/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Pool describes how a batch is dispatched. The zero value runs with
// GOMAXPROCS workers and no metrics.
type Pool struct {
	Limit   int
	Kind    string
	Metrics *telemetry.Metrics
}

func (p Pool) limit(n int) int {
	l := p.Limit
	if l <= 0 {
		l = runtime.GOMAXPROCS(0)
	}
	if l > n {
		l = n
	}
	if l < 1 {
		l = 1
	}
	return l
}

// Run calls fn(ctx, i) for every i in [0,n). Cancellation is cooperative:
// ctx is checked before each unit starts, never during one. The first error
// from fn stops dispatch of further units and is returned. If ctx is
// cancelled, Run returns ctx.Err().
func (p Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit(n))

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			err := fn(gctx, i)
			p.Metrics.Observe(p.Kind, start, err)
			return err
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
