// Package sde integrates the chemical Langevin equation for populations of
// single cells.
package sde

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/mapksim/internal/ode"
)

var ErrBadStep = errors.New("sde: step size must be positive")

// Network is a reaction network seen as propensities and state changes.
type Network interface {
	Dim() int
	NumReactions() int
	Propensities(x ode.State, dst []float64)
	Stoichiometry(j int) (species []int, coef []float64)
}

// Event modifies the state when integration reaches Time, before that time
// is sampled.
type Event struct {
	Time  float64
	Apply func(x ode.State)
}

type change struct {
	species []int
	coef    []float64
}

// Langevin is an Euler-Maruyama integrator for
//
//	dx = S a(x) dt + S diag(sqrt(a(x)/V)) dW
//
// where V scales concentrations to copy numbers.
type Langevin struct {
	net     Network
	volume  float64
	dt      float64
	events  []Event
	changes []change
}

func NewLangevin(net Network, volume, dt float64) (*Langevin, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrBadStep, dt)
	}
	if volume <= 0 {
		return nil, fmt.Errorf("sde: volume must be positive, got %g", volume)
	}
	l := &Langevin{net: net, volume: volume, dt: dt, changes: make([]change, net.NumReactions())}
	for j := range l.changes {
		s, c := net.Stoichiometry(j)
		l.changes[j] = change{species: s, coef: c}
	}
	return l, nil
}

func (l *Langevin) AddEvent(e Event) {
	l.events = append(l.events, e)
}

func (l *Langevin) step(x ode.State, h float64, a []float64, rng *rand.Rand) {
	l.net.Propensities(x, a)
	sqrtH := math.Sqrt(h)
	for j, ch := range l.changes {
		aj := a[j]
		if aj < 0 {
			aj = 0
		}
		inc := aj*h + math.Sqrt(aj/l.volume)*sqrtH*rng.NormFloat64()
		for k, s := range ch.species {
			x[s] += ch.coef[k] * inc
		}
	}
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// Solve samples one trajectory at every tspan point, drawing noise from rng.
func (l *Langevin) Solve(ctx context.Context, x0 ode.State, tspan []float64, rng *rand.Rand) (*ode.Result, error) {
	if len(tspan) == 0 {
		return nil, ode.ErrBadTimeSpan
	}
	for i := 1; i < len(tspan); i++ {
		if !(tspan[i] > tspan[i-1]) {
			return nil, ode.ErrBadTimeSpan
		}
	}
	if len(x0) != l.net.Dim() {
		return nil, ode.ErrDimensionMismatch
	}

	res := &ode.Result{
		Times:  make([]float64, 0, len(tspan)),
		States: make([]ode.State, 0, len(tspan)),
	}
	x := x0.Clone()
	a := make([]float64, l.net.NumReactions())
	t := tspan[0]

	sample := func(at float64) {
		for _, e := range l.events {
			if e.Time == at {
				e.Apply(x)
			}
		}
		res.Times = append(res.Times, at)
		res.States = append(res.States, x.Clone())
	}
	sample(t)

	for _, tout := range tspan[1:] {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for t < tout {
			h := l.dt
			last := h >= tout-t
			if last {
				h = tout - t
			}
			l.step(x, h, a, rng)
			res.Steps++
			if last {
				t = tout
			} else {
				t += h
			}
		}
		if !x.IsValid() {
			return res, &ode.SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: ode.ErrInvalidState}
		}
		sample(tout)
	}
	return res, nil
}
