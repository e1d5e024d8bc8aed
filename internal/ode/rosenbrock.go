package ode

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rosenbrock23 is the linearly implicit second order method with a third
// order error estimate used by MATLAB's ode23s. It solves with one LU
// factorisation of W = I - h*d*J per step and is L-stable.
type Rosenbrock23 struct {
	n   int
	jac *mat.Dense
	w   *mat.Dense
	lu  mat.LU
	dT  State
}

var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

func NewRosenbrock23() *Rosenbrock23 {
	return &Rosenbrock23{}
}

func (r *Rosenbrock23) Order() int { return 2 }

func (r *Rosenbrock23) ensure(n int) {
	if r.n == n {
		return
	}
	r.n = n
	r.jac = mat.NewDense(n, n, nil)
	r.w = mat.NewDense(n, n, nil)
	r.dT = make(State, n)
}

func (r *Rosenbrock23) Step(sys System, x State, t, dt float64) State {
	newX, _, err := r.StepAdaptive(sys, x, t, dt, Tolerance{Rel: 1e-6, Abs: 1e-8})
	if err != nil {
		return x.Clone()
	}
	return newX
}

func (r *Rosenbrock23) solve(b State) (State, error) {
	var v mat.VecDense
	if err := r.lu.SolveVecTo(&v, false, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, ErrSingular
		}
	}
	out := make(State, len(b))
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out, nil
}

func (r *Rosenbrock23) StepAdaptive(sys System, x State, t, dt float64, tol Tolerance) (State, float64, error) {
	n := len(x)
	r.ensure(n)

	f0 := sys.Derive(x, t).Clone()
	jacobianOf(sys, x, t, r.jac)

	// dT approximates df/dt; zero for autonomous systems.
	hd := dt * rosD
	if isAutonomous(sys) {
		for i := range r.dT {
			r.dT[i] = 0
		}
	} else {
		delta := sqrtEps * math.Max(math.Abs(t), 1)
		ft := sys.Derive(x, t+delta)
		for i := range r.dT {
			r.dT[i] = (ft[i] - f0[i]) / delta
		}
	}

	r.w.Scale(-hd, r.jac)
	for i := 0; i < n; i++ {
		r.w.Set(i, i, r.w.At(i, i)+1)
	}
	r.lu.Factorize(r.w)

	rhs := make(State, n)
	for i := range rhs {
		rhs[i] = f0[i] + hd*r.dT[i]
	}
	k1, err := r.solve(rhs)
	if err != nil {
		return nil, 0, err
	}

	mid := make(State, n)
	for i := range mid {
		mid[i] = x[i] + 0.5*dt*k1[i]
	}
	f1 := sys.Derive(mid, t+0.5*dt).Clone()

	for i := range rhs {
		rhs[i] = f1[i] - k1[i]
	}
	k2, err := r.solve(rhs)
	if err != nil {
		return nil, 0, err
	}
	for i := range k2 {
		k2[i] += k1[i]
	}

	xNew := make(State, n)
	for i := range xNew {
		xNew[i] = x[i] + dt*k2[i]
	}
	f2 := sys.Derive(xNew, t+dt)

	for i := range rhs {
		rhs[i] = f2[i] - rosE32*(k2[i]-f1[i]) - 2*(k1[i]-f0[i]) + hd*r.dT[i]
	}
	k3, err := r.solve(rhs)
	if err != nil {
		return nil, 0, err
	}

	errEst := make(State, n)
	for i := range errEst {
		errEst[i] = dt / 6.0 * (k1[i] - 2*k2[i] + k3[i])
	}

	return xNew, errorNorm(errEst, x, xNew, tol), nil
}
