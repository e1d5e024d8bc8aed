package ode

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// robertson is the classic stiff chemical kinetics benchmark.
type robertson struct{}

func (r *robertson) Dim() int         { return 3 }
func (r *robertson) Autonomous() bool { return true }

func (r *robertson) Derive(x State, t float64) State {
	return State{
		-0.04*x[0] + 1e4*x[1]*x[2],
		0.04*x[0] - 1e4*x[1]*x[2] - 3e7*x[1]*x[1],
		3e7 * x[1] * x[1],
	}
}

func (r *robertson) Jacobian(x State, t float64, dst *mat.Dense) {
	dst.Set(0, 0, -0.04)
	dst.Set(0, 1, 1e4*x[2])
	dst.Set(0, 2, 1e4*x[1])
	dst.Set(1, 0, 0.04)
	dst.Set(1, 1, -1e4*x[2]-6e7*x[1])
	dst.Set(1, 2, -1e4*x[1])
	dst.Set(2, 0, 0)
	dst.Set(2, 1, 6e7*x[1])
	dst.Set(2, 2, 0)
}

// forcedDecay is y' = -k (y - cos t), stiff for large k and not autonomous.
type forcedDecay struct{ k float64 }

func (f *forcedDecay) Dim() int { return 1 }

func (f *forcedDecay) Derive(x State, t float64) State {
	return State{-f.k * (x[0] - math.Cos(t))}
}

func TestRosenbrock23_Robertson(t *testing.T) {
	solver := NewSolver(NewRosenbrock23(), Options{
		RelTol: 1e-4, AbsTol: 1e-8, InitialStep: 1e-6, MinStep: 1e-14, MaxSteps: 5000,
	})
	res, err := solver.Solve(context.Background(), &robertson{}, State{1, 0, 0}, []float64{0, 40})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	x := res.Last()
	sum := x[0] + x[1] + x[2]
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("mass not conserved: sum = %.10f", sum)
	}
	// Reference value from stiff solvers: y1(40) ~ 0.7158.
	if math.Abs(x[0]-0.7158) > 5e-3 {
		t.Errorf("y1(40) = %.5f, want ~0.7158", x[0])
	}
	if res.Steps > 2000 {
		t.Errorf("stiff solve took %d steps, expected far fewer", res.Steps)
	}
}

func TestRosenbrock23_NonAutonomous(t *testing.T) {
	sys := &forcedDecay{k: 1e4}
	solver := NewSolver(NewRosenbrock23(), DefaultOptions())
	res, err := solver.Solve(context.Background(), sys, State{1}, []float64{0, 1, 2})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Quasi-steady state tracks cos(t) closely once transients decay.
	for i, tt := range res.Times[1:] {
		got := res.States[i+1][0]
		if math.Abs(got-math.Cos(tt)) > 1e-3 {
			t.Errorf("y(%g) = %f, want ~%f", tt, got, math.Cos(tt))
		}
	}
}

func TestRosenbrock23_SingleStepAccuracy(t *testing.T) {
	sys := &exponentialDecay{k: 2}
	x := NewRosenbrock23().Step(sys, State{1}, 0, 1e-3)

	want := math.Exp(-2e-3)
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("x = %.12f, want %.12f", x[0], want)
	}
}

func TestNumericJacobian(t *testing.T) {
	sys := &robertson{}
	x := State{0.9, 1e-5, 0.1}

	analytic := mat.NewDense(3, 3, nil)
	numeric := mat.NewDense(3, 3, nil)
	sys.Jacobian(x, 0, analytic)
	NumericJacobian(sys, x, 0, numeric)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a, n := analytic.At(i, j), numeric.At(i, j)
			if math.Abs(a-n) > 1e-3*math.Max(1, math.Abs(a)) {
				t.Errorf("J[%d][%d]: analytic %g, numeric %g", i, j, a, n)
			}
		}
	}
}
