package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrInvalidState indicates a NaN or Inf appeared in the state vector.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive timestep below minimum")

	// ErrMaxSteps indicates too many internal steps between two output times.
	ErrMaxSteps = errors.New("ode: maximum number of steps exceeded")

	// ErrBadTimeSpan indicates an empty or non-increasing output time span.
	ErrBadTimeSpan = errors.New("ode: time span must be non-empty and strictly increasing")

	// ErrDimensionMismatch indicates an initial state of the wrong length.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and system")

	// ErrSingular indicates the Newton matrix of an implicit stepper is singular.
	ErrSingular = errors.New("ode: singular iteration matrix")
)

// SimulationError wraps an error with integration context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
