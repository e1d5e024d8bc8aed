package sde

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/mapksim/internal/ode"
)

// Ensemble simulates independent cells that share a network.
type Ensemble struct {
	Net    Network
	Volume float64
	Dt     float64
	Seed   uint64
	// Workers caps concurrent cells; zero means GOMAXPROCS.
	Workers int
	// CV is the coefficient of variation of the log-normal spread applied to
	// each non-zero initial amount.
	CV     float64
	Events []Event
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// perturb scales every non-zero entry of x0 by a mean-one log-normal factor.
func perturb(x0 ode.State, cv float64, rng *rand.Rand) ode.State {
	x := x0.Clone()
	if cv <= 0 {
		return x
	}
	sigma := math.Sqrt(math.Log1p(cv * cv))
	dist := distuv.LogNormal{Mu: -sigma * sigma / 2, Sigma: sigma, Src: rng}
	for i, v := range x {
		if v > 0 {
			x[i] = v * dist.Rand()
		}
	}
	return x
}

// Run returns trajectories indexed [cell][time][species]. Cell i draws from
// seed Seed+i so results do not depend on Workers.
func (e *Ensemble) Run(ctx context.Context, cells int, x0 ode.State, tspan []float64) ([][][]float64, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("sde: need at least one cell, got %d", cells)
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([][][]float64, cells)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cells; i++ {
		g.Go(func() error {
			rng := newRand(e.Seed + uint64(i))
			lv, err := NewLangevin(e.Net, e.Volume, e.Dt)
			if err != nil {
				return err
			}
			for _, ev := range e.Events {
				lv.AddEvent(ev)
			}
			res, err := lv.Solve(ctx, perturb(x0, e.CV, rng), tspan, rng)
			if err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
			traj := make([][]float64, len(res.States))
			for k, s := range res.States {
				traj[k] = s
			}
			out[i] = traj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
