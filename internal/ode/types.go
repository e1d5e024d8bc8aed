package ode

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is the right-hand side of dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Jacobian is implemented by systems that can provide df/dX analytically.
// dst is Dim x Dim and must be fully overwritten.
type Jacobian interface {
	Jacobian(x State, t float64, dst *mat.Dense)
}

// Autonomous marks systems whose right-hand side does not depend on t.
type Autonomous interface {
	Autonomous() bool
}

type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveStepper returns the proposed state together with a weighted error
// norm; a step is acceptable when the norm is <= 1. Order is the order p of
// the lower solution of the embedded pair, so the error norm scales as h^(p+1).
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(sys System, x State, t, dt float64, tol Tolerance) (State, float64, error)
	Order() int
}

type Tolerance struct {
	Rel float64
	Abs float64
}

// Observer is notified at every output sample.
type Observer interface {
	OnSample(x State, t float64)
}

type Options struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	// MaxSteps bounds the internal steps taken between two output times.
	MaxSteps      int
	NonNegative   bool
	ValidateState bool
}

func DefaultOptions() Options {
	return Options{
		RelTol:        1e-6,
		AbsTol:        1e-8,
		InitialStep:   1e-2,
		MinStep:       1e-12,
		MaxSteps:      10000,
		NonNegative:   true,
		ValidateState: true,
	}
}

type Result struct {
	Times    []float64
	States   []State
	Steps    int
	Rejected int
}

// Last returns the final sampled state.
func (r *Result) Last() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// errorNorm is the max-norm of err weighted by abs + rel*max(|x|,|xNew|).
func errorNorm(errEst, x, xNew State, tol Tolerance) float64 {
	norm := 0.0
	for i := range errEst {
		scale := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		if scale == 0 {
			scale = math.SmallestNonzeroFloat64
		}
		norm = math.Max(norm, math.Abs(errEst[i])/scale)
	}
	return norm
}
