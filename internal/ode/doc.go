// Package ode provides the numerical core for deterministic simulation of
// reaction networks.
//
// The package defines the fundamental types for integrating ordinary
// differential equations dX/dt = f(X, t):
//
//   - [State]: vector of species concentrations
//   - [System]: interface for ODE right-hand sides
//   - [Stepper]: single-step integrator ([Euler], [RK4], [RK45], [Rosenbrock23])
//   - [Solver]: drives a stepper across an output time span
//
// # Stiffness
//
// Signalling networks mix binding reactions on the order of seconds with
// transcriptional turnover on the order of hours. Use [Rosenbrock23] for those;
// the explicit steppers are kept for non-stiff models and comparisons.
//
// # Example
//
//	solver := ode.NewSolver(ode.NewRosenbrock23(), ode.DefaultOptions())
//	res, err := solver.Solve(ctx, sys, x0, tspan)
//
// # Thread Safety
//
// Steppers keep scratch buffers and are NOT safe for concurrent use. Create
// one stepper per goroutine.
package ode
