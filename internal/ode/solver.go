package ode

import (
	"context"
	"fmt"
	"math"
)

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 5.0
)

// Solver integrates a System over an output time span, landing exactly on
// every requested output time.
type Solver struct {
	stepper   Stepper
	opts      Options
	observers []Observer
}

func NewSolver(stepper Stepper, opts Options) *Solver {
	return &Solver{stepper: stepper, opts: opts}
}

func (s *Solver) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Solver) Options() Options { return s.opts }

func validateSpan(tspan []float64) error {
	if len(tspan) == 0 {
		return ErrBadTimeSpan
	}
	for i := 1; i < len(tspan); i++ {
		if !(tspan[i] > tspan[i-1]) {
			return fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrBadTimeSpan, i, tspan[i], i-1, tspan[i-1])
		}
	}
	return nil
}

func (s *Solver) record(res *Result, x State, t float64) {
	res.Times = append(res.Times, t)
	res.States = append(res.States, x.Clone())
	for _, o := range s.observers {
		o.OnSample(x, t)
	}
}

// Solve returns one state per entry of tspan; the first is x0 itself.
func (s *Solver) Solve(ctx context.Context, sys System, x0 State, tspan []float64) (*Result, error) {
	if err := validateSpan(tspan); err != nil {
		return nil, err
	}
	if len(x0) != sys.Dim() {
		return nil, fmt.Errorf("%w: state has %d entries, system has %d", ErrDimensionMismatch, len(x0), sys.Dim())
	}

	res := &Result{
		Times:  make([]float64, 0, len(tspan)),
		States: make([]State, 0, len(tspan)),
	}
	x := x0.Clone()
	t := tspan[0]
	s.record(res, x, t)

	adaptive, isAdaptive := s.stepper.(AdaptiveStepper)
	tol := Tolerance{Rel: s.opts.RelTol, Abs: s.opts.AbsTol}
	h := s.opts.InitialStep
	if h <= 0 {
		h = 1e-2
	}
	maxSteps := s.opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultOptions().MaxSteps
	}

	for _, tout := range tspan[1:] {
		steps := 0
		for t < tout {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}

			if steps >= maxSteps {
				return res, &SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: ErrMaxSteps}
			}

			hStep := h
			if s.opts.MaxStep > 0 && hStep > s.opts.MaxStep {
				hStep = s.opts.MaxStep
			}
			clipped := false
			if hStep >= tout-t {
				hStep = tout - t
				clipped = true
			}

			var xNew State
			if isAdaptive {
				var errNorm float64
				var err error
				xNew, errNorm, err = adaptive.StepAdaptive(sys, x, t, hStep, tol)
				if err != nil {
					return res, &SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: err}
				}

				factor := maxScale
				if errNorm > 0 {
					factor = safety * math.Pow(errNorm, -1.0/float64(adaptive.Order()+1))
				}
				factor = math.Min(maxScale, math.Max(minScale, factor))

				if errNorm > 1 || math.IsNaN(errNorm) || !xNew.IsValid() {
					res.Rejected++
					steps++
					if math.IsNaN(errNorm) || !xNew.IsValid() {
						factor = minScale
					}
					h = hStep * factor
					if h < s.opts.MinStep {
						return res, &SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
					}
					continue
				}

				next := hStep * factor
				if clipped && factor >= 1 && next < h {
					next = h
				}
				h = next
			} else {
				xNew = s.stepper.Step(sys, x, t, hStep)
			}

			if clipped {
				t = tout
			} else {
				t += hStep
			}
			x = xNew
			if s.opts.NonNegative {
				for i, v := range x {
					if v < 0 {
						x[i] = 0
					}
				}
			}
			if s.opts.ValidateState && !x.IsValid() {
				return res, &SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			}
			steps++
			res.Steps++
		}
		s.record(res, x, tout)
	}

	return res, nil
}
