// Package montecarlo generates synthetic equity paths by resampling a
// baseline return series, either by historical bootstrap or from a fitted
// Normal distribution.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/quantlab/internal/telemetry"
	"github.com/rustyeddy/quantlab/internal/workers"
	"github.com/rustyeddy/quantlab/metrics"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInsufficientHistory = errors.New("baseline return series is empty")
	ErrInvalidParameters   = errors.New("invalid monte carlo parameters")
)

// Mode selects how daily returns are drawn.
type Mode int

const (
	Bootstrap Mode = iota
	Parametric
)

func (m Mode) String() string {
	switch m {
	case Bootstrap:
		return "bootstrap"
	case Parametric:
		return "parametric"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bootstrap", "historical":
		return Bootstrap, nil
	case "parametric", "normal":
		return Parametric, nil
	default:
		return Bootstrap, fmt.Errorf("%w: unknown mode %q (bootstrap, parametric)", ErrInvalidParameters, s)
	}
}

// chunk is how many paths one worker unit simulates.
const chunk = 256

// SurvivalFloor is the fraction of initial capital below which a path
// counts toward ProbabilityLoss50.
const SurvivalFloor = 0.5

type Params struct {
	InitialCapital float64
	Simulations    int
	Days           int
	Mode           Mode
	Seed           uint64
	KeepPaths      bool
}

func (p Params) Validate() error {
	switch {
	case !(p.InitialCapital > 0):
		return fmt.Errorf("%w: initial capital %v must be > 0", ErrInvalidParameters, p.InitialCapital)
	case p.Simulations < 1:
		return fmt.Errorf("%w: simulations %d must be >= 1", ErrInvalidParameters, p.Simulations)
	case p.Days < 1:
		return fmt.Errorf("%w: days %d must be >= 1", ErrInvalidParameters, p.Days)
	case p.Mode != Bootstrap && p.Mode != Parametric:
		return fmt.Errorf("%w: mode %s", ErrInvalidParameters, p.Mode)
	}
	return nil
}

// Stats summarizes the distribution of final values.
type Stats struct {
	Mean   float64
	Median float64
	StdDev float64
	P5     float64
	P25    float64
	P75    float64
	P95    float64

	ProbabilityProfit  float64 // finals > initial
	ProbabilityLoss50  float64 // finals < 0.5 * initial
	ExpectedReturn     float64 // (Mean - initial) / initial
	ExpectedShortfall5 float64 // mean of finals <= P5
}

type Report struct {
	Params Params
	Finals []float64   // one per simulation, in simulation order
	Paths  [][]float64 // when KeepPaths: Days values, the equity after each day
	Stats  Stats
}

type Options struct {
	Parallelism int
	Metrics     *telemetry.Metrics
}

// Run simulates p.Simulations independent paths. Simulation i draws from its
// own generator seeded with (p.Seed, i), so results do not depend on
// Parallelism or scheduling.
func Run(ctx context.Context, baseline []float64, p Params, opts Options) (*Report, error) {
	if len(baseline) == 0 {
		return nil, ErrInsufficientHistory
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	draw := drawer(baseline, p.Mode)
	rep := &Report{
		Params: p,
		Finals: make([]float64, p.Simulations),
	}
	if p.KeepPaths {
		rep.Paths = make([][]float64, p.Simulations)
	}

	units := (p.Simulations + chunk - 1) / chunk
	pool := workers.Pool{Limit: opts.Parallelism, Kind: "montecarlo", Metrics: opts.Metrics}
	err := pool.Run(ctx, units, func(_ context.Context, u int) error {
		lo := u * chunk
		hi := min(lo+chunk, p.Simulations)
		for i := lo; i < hi; i++ {
			var path []float64
			if p.KeepPaths {
				path = make([]float64, p.Days)
			}
			rep.Finals[i] = simulate(p, uint64(i), draw, path)
			if p.KeepPaths {
				rep.Paths[i] = path
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.Stats = Summarize(rep.Finals, p.InitialCapital)
	log.Debug().
		Int("simulations", p.Simulations).
		Int("days", p.Days).
		Str("mode", p.Mode.String()).
		Float64("expected_return", rep.Stats.ExpectedReturn).
		Msg("monte carlo finished")
	return rep, nil
}

// sampler binds a return distribution to one simulation's random source.
type sampler func(src rand.Source) func() float64

func drawer(baseline []float64, mode Mode) sampler {
	if mode == Parametric {
		mu := metrics.Mean(baseline)
		sigma := metrics.StdDev(baseline)
		return func(src rand.Source) func() float64 {
			return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand
		}
	}
	n := len(baseline)
	return func(src rand.Source) func() float64 {
		rng := rand.New(src)
		return func() float64 { return baseline[rng.IntN(n)] }
	}
}

// simulate compounds initial capital through p.Days drawn returns. If path
// is non-nil it receives the value after each day.
func simulate(p Params, idx uint64, draw sampler, path []float64) float64 {
	next := draw(rand.NewPCG(p.Seed, idx))
	v := p.InitialCapital
	for d := 0; d < p.Days; d++ {
		v *= 1 + next()
		if path != nil {
			path[d] = v
		}
	}
	return v
}

// Summarize computes distribution statistics of finals.
func Summarize(finals []float64, initial float64) Stats {
	if len(finals) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), finals...)
	sort.Float64s(sorted)

	s := Stats{
		Mean:   metrics.Mean(finals),
		StdDev: metrics.StdDev(finals),
		Median: metrics.Percentile(sorted, 50),
		P5:     metrics.Percentile(sorted, 5),
		P25:    metrics.Percentile(sorted, 25),
		P75:    metrics.Percentile(sorted, 75),
		P95:    metrics.Percentile(sorted, 95),
	}

	var profit, ruin, tailN int
	var tailSum float64
	for _, v := range sorted {
		if v > initial {
			profit++
		}
		if v < SurvivalFloor*initial {
			ruin++
		}
		if v <= s.P5 {
			tailSum += v
			tailN++
		}
	}
	n := float64(len(finals))
	s.ProbabilityProfit = float64(profit) / n
	s.ProbabilityLoss50 = float64(ruin) / n
	if initial > 0 {
		s.ExpectedReturn = (s.Mean - initial) / initial
	}
	s.ExpectedShortfall5 = s.P5
	if tailN > 0 {
		s.ExpectedShortfall5 = tailSum / float64(tailN)
	}
	return s
}
