package ode

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var sqrtEps = math.Sqrt(2.220446049250313e-16)

// NumericJacobian fills dst with a forward-difference approximation of df/dX.
func NumericJacobian(sys System, x State, t float64, dst *mat.Dense) {
	f0 := sys.Derive(x, t).Clone()
	xp := x.Clone()
	for j := range x {
		h := sqrtEps * math.Max(math.Abs(x[j]), 1)
		xp[j] = x[j] + h
		f1 := sys.Derive(xp, t)
		for i := range f0 {
			dst.Set(i, j, (f1[i]-f0[i])/h)
		}
		xp[j] = x[j]
	}
}

// jacobianOf uses the analytic Jacobian when sys provides one.
func jacobianOf(sys System, x State, t float64, dst *mat.Dense) {
	if j, ok := sys.(Jacobian); ok {
		j.Jacobian(x, t, dst)
		return
	}
	NumericJacobian(sys, x, t, dst)
}

func isAutonomous(sys System) bool {
	a, ok := sys.(Autonomous)
	return ok && a.Autonomous()
}
