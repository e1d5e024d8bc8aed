package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestPopulationStats(t *testing.T) {
	// two cells, two time points, one column
	traj := [][][]float64{
		{{1}, {2}},
		{{3}, {2}},
	}
	s, err := PopulationStats(traj)
	if err != nil {
		t.Fatalf("PopulationStats: %v", err)
	}

	if s.Mean[0][0] != 2 || s.Std[0][0] != 1 {
		t.Errorf("t0: mean %f std %f, want 2 and 1", s.Mean[0][0], s.Std[0][0])
	}
	half := 1.96 / math.Sqrt(2)
	if math.Abs(s.Upper[0][0]-(2+half)) > 1e-12 || math.Abs(s.Lower[0][0]-(2-half)) > 1e-12 {
		t.Errorf("CI = [%f, %f]", s.Lower[0][0], s.Upper[0][0])
	}
	if s.Std[1][0] != 0 || s.Lower[1][0] != s.Upper[1][0] {
		t.Error("identical cells must have a zero-width interval")
	}

	if _, err := PopulationStats(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("got %v, want ErrEmpty", err)
	}
}

func TestSummarize(t *testing.T) {
	time := []float64{-600, 0, 600}
	traj := [][]float64{{1, 5}, {2, 4}, {0.5, 6}}
	s, err := Summarize(time, traj)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.TimePoints != 3 || s.Species != 2 {
		t.Errorf("shape = %d x %d", s.TimePoints, s.Species)
	}
	if s.TimeMin != -600 || s.TimeMax != 600 {
		t.Errorf("time range = [%f, %f]", s.TimeMin, s.TimeMax)
	}
	if s.Min[0] != 0.5 || s.Max[1] != 6 {
		t.Errorf("ranges min=%v max=%v", s.Min, s.Max)
	}
}

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period float64
	}{
		{"slow", 1800},
		{"fast", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 500
			time := make([]float64, n)
			series := make([]float64, n)
			for i := range time {
				time[i] = 7200 * float64(i) / float64(n-1)
				series[i] = 5 + math.Sin(2*math.Pi*time[i]/tt.period)
			}
			got := DominantPeriod(time, series)
			if math.Abs(got-tt.period)/tt.period > 0.1 {
				t.Errorf("period = %f, want ~%f", got, tt.period)
			}
		})
	}
}

func TestDominantPeriod_Flat(t *testing.T) {
	time := []float64{0, 1, 2, 3, 4}
	if got := DominantPeriod(time, []float64{2, 2, 2, 2, 2}); got != 0 {
		t.Errorf("flat series period = %f, want 0", got)
	}
	if got := DominantPeriod(time[:2], []float64{1, 2}); got != 0 {
		t.Errorf("short series period = %f, want 0", got)
	}
}

func TestPowerSpectrum(t *testing.T) {
	series := make([]float64, 64)
	for i := range series {
		series[i] = math.Cos(2 * math.Pi * 4 * float64(i) / 64)
	}
	ps := PowerSpectrum(series)
	if len(ps) != 33 {
		t.Fatalf("len = %d, want 33", len(ps))
	}
	for k, v := range ps {
		if k != 4 && v > ps[4] {
			t.Errorf("bin %d (%f) exceeds bin 4 (%f)", k, v, ps[4])
		}
	}
}
