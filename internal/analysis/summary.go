package analysis

import (
	"gonum.org/v1/gonum/floats"
)

type Summary struct {
	TimePoints int
	Species    int
	TimeMin    float64
	TimeMax    float64
	Min        []float64
	Max        []float64
}

// Summarize reports the shape of traj[time][species] and each species' range.
func Summarize(time []float64, traj [][]float64) (*Summary, error) {
	if len(time) == 0 || len(traj) == 0 {
		return nil, ErrEmpty
	}
	s := &Summary{
		TimePoints: len(time),
		Species:    len(traj[0]),
		TimeMin:    floats.Min(time),
		TimeMax:    floats.Max(time),
	}
	s.Min = make([]float64, s.Species)
	s.Max = make([]float64, s.Species)
	for k := 0; k < s.Species; k++ {
		col := Column(traj, k)
		s.Min[k] = floats.Min(col)
		s.Max[k] = floats.Max(col)
	}
	return s, nil
}
