// Package timespan builds the sampling grids used for integration.
package timespan

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrBadSegment = errors.New("timespan: segment needs start < stop and at least two points")
	ErrOverlap    = errors.New("timespan: segments overlap")
)

// Segment is a linearly spaced stretch of output times; Stop is included.
type Segment struct {
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Points int     `yaml:"points"`
}

func (s Segment) Validate() error {
	if !(s.Start < s.Stop) || s.Points < 2 {
		return fmt.Errorf("%w: [%g, %g] with %d points", ErrBadSegment, s.Start, s.Stop, s.Points)
	}
	return nil
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// Unique merges the grids, sorts them and drops exact duplicates.
func Unique(grids ...[]float64) []float64 {
	var all []float64
	for _, g := range grids {
		all = append(all, g...)
	}
	sort.Float64s(all)
	out := all[:0]
	for i, v := range all {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Grid pairs a pre-equilibration segment with the stimulation segments.
type Grid struct {
	Equilibration Segment   `yaml:"equilibration"`
	Stimulation   []Segment `yaml:"stimulation"`
}

// Default is 10 minutes of pre-equilibration followed by two hours of
// stimulation sampled densely early on.
func Default() Grid {
	return Grid{
		Equilibration: Segment{Start: -600, Stop: 0, Points: 4},
		Stimulation: []Segment{
			{Start: 0, Stop: 600, Points: 30},
			{Start: 600, Stop: 3600, Points: 20},
			{Start: 3600, Stop: 7200, Points: 10},
		},
	}
}

func (g Grid) Validate() error {
	if err := g.Equilibration.Validate(); err != nil {
		return fmt.Errorf("equilibration: %w", err)
	}
	if len(g.Stimulation) == 0 {
		return fmt.Errorf("stimulation: %w", ErrBadSegment)
	}
	prev := g.Equilibration.Stop
	for i, s := range g.Stimulation {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stimulation[%d]: %w", i, err)
		}
		// segments may share an endpoint but not overlap
		if s.Start < prev {
			return fmt.Errorf("stimulation[%d]: %w: starts at %g before %g", i, ErrOverlap, s.Start, prev)
		}
		prev = s.Stop
	}
	return nil
}

func (g Grid) EquilibrationTimes() []float64 {
	return Linspace(g.Equilibration.Start, g.Equilibration.Stop, g.Equilibration.Points)
}

func (g Grid) StimulationTimes() []float64 {
	grids := make([][]float64, len(g.Stimulation))
	for i, s := range g.Stimulation {
		grids[i] = Linspace(s.Start, s.Stop, s.Points)
	}
	return Unique(grids...)
}

// All is the combined output grid.
func (g Grid) All() []float64 {
	return Unique(g.EquilibrationTimes(), g.StimulationTimes())
}
