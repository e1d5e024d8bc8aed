package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrEmpty = errors.New("analysis: empty trajectory set")

// Z95 is the two-sided 95% normal quantile.
const Z95 = 1.96

// Stats holds [time][column] matrices.
type Stats struct {
	Cells int
	Mean  [][]float64
	Std   [][]float64
	Lower [][]float64
	Upper [][]float64
}

// PopulationStats reduces traj[cell][time][column] over cells. The interval
// is mean +/- 1.96 std/sqrt(cells) with the population standard deviation.
func PopulationStats(traj [][][]float64) (*Stats, error) {
	if len(traj) == 0 || len(traj[0]) == 0 {
		return nil, ErrEmpty
	}
	cells, times, cols := len(traj), len(traj[0]), len(traj[0][0])
	s := &Stats{
		Cells: cells,
		Mean:  make([][]float64, times),
		Std:   make([][]float64, times),
		Lower: make([][]float64, times),
		Upper: make([][]float64, times),
	}
	half := Z95 / math.Sqrt(float64(cells))
	column := make([]float64, cells)
	for t := 0; t < times; t++ {
		s.Mean[t] = make([]float64, cols)
		s.Std[t] = make([]float64, cols)
		s.Lower[t] = make([]float64, cols)
		s.Upper[t] = make([]float64, cols)
		for k := 0; k < cols; k++ {
			for c := 0; c < cells; c++ {
				column[c] = traj[c][t][k]
			}
			mean, std := stat.PopMeanStdDev(column, nil)
			s.Mean[t][k] = mean
			s.Std[t][k] = std
			s.Lower[t][k] = mean - half*std
			s.Upper[t][k] = mean + half*std
		}
	}
	return s, nil
}

// Column extracts column k of a [time][column] matrix.
func Column(m [][]float64, k int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[k]
	}
	return out
}
