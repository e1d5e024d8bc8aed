// Package resultfile reads and writes simulation results as HDF5.
package resultfile

import (
	"errors"
	"fmt"
)

const (
	KindDeterministic = "deterministic"
	KindPopulation    = "population"
)

// Dataset names.
const (
	DatasetTime         = "time"
	DatasetTrajectories = "trajectories"
	DatasetObservables  = "observables"
)

var ErrMissingDataset = errors.New("resultfile: missing dataset")

// File is the in-memory form of a result file. Deterministic runs fill
// Trajectories [time][species] and Observables [time][observable];
// population runs fill the Cell* fields, indexed by cell first.
type File struct {
	Kind        string
	CellLine    string
	MEKi        float64
	EGF         float64
	RAFi        float64
	Fingerprint string

	Time             []float64
	SpeciesNames     []string
	ObservableNames  []string
	Trajectories     [][]float64
	Observables      [][]float64
	CellTrajectories [][][]float64
	CellObservables  [][][]float64
}

type Shape struct {
	Cells       int
	Time        int
	Species     int
	Observables int
}

func (s Shape) Trajectories() []int {
	if s.Cells > 0 {
		return []int{s.Cells, s.Time, s.Species}
	}
	return []int{s.Time, s.Species}
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", s.Trajectories())
}

func (f *File) Shape() Shape {
	s := Shape{Time: len(f.Time)}
	switch {
	case f.Kind == KindPopulation && len(f.CellTrajectories) > 0:
		s.Cells = len(f.CellTrajectories)
		if len(f.CellTrajectories[0]) > 0 {
			s.Species = len(f.CellTrajectories[0][0])
		}
		if len(f.CellObservables) > 0 && len(f.CellObservables[0]) > 0 {
			s.Observables = len(f.CellObservables[0][0])
		}
	case len(f.Trajectories) > 0:
		s.Species = len(f.Trajectories[0])
		if len(f.Observables) > 0 {
			s.Observables = len(f.Observables[0])
		}
	}
	return s
}

func (f *File) IsPopulation() bool { return f.Kind == KindPopulation }

// ObservableIndex finds name among the stored observables.
func (f *File) ObservableIndex(name string) (int, bool) {
	for i, n := range f.ObservableNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// ObservableSeries returns one observable over time for a deterministic file,
// or for the given cell of a population file.
func (f *File) ObservableSeries(name string, cell int) ([]float64, error) {
	k, ok := f.ObservableIndex(name)
	if !ok {
		return nil, fmt.Errorf("resultfile: no observable %q", name)
	}
	rows := f.Observables
	if f.IsPopulation() {
		if cell < 0 || cell >= len(f.CellObservables) {
			return nil, fmt.Errorf("resultfile: cell %d out of range", cell)
		}
		rows = f.CellObservables[cell]
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[k]
	}
	return out, nil
}

// SpeciesSeries returns species k over time, as ObservableSeries does.
func (f *File) SpeciesSeries(k, cell int) ([]float64, error) {
	rows := f.Trajectories
	if f.IsPopulation() {
		if cell < 0 || cell >= len(f.CellTrajectories) {
			return nil, fmt.Errorf("resultfile: cell %d out of range", cell)
		}
		rows = f.CellTrajectories[cell]
	}
	if len(rows) == 0 || k < 0 || k >= len(rows[0]) {
		return nil, fmt.Errorf("resultfile: species %d out of range", k)
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[k]
	}
	return out, nil
}

func (f *File) validate() error {
	if len(f.Time) == 0 {
		return fmt.Errorf("resultfile: empty time axis")
	}
	check := func(name string, rows [][]float64) error {
		if len(rows) != len(f.Time) {
			return fmt.Errorf("resultfile: %s has %d rows, time has %d", name, len(rows), len(f.Time))
		}
		for i := 1; i < len(rows); i++ {
			if len(rows[i]) != len(rows[0]) {
				return fmt.Errorf("resultfile: %s row %d is ragged", name, i)
			}
		}
		return nil
	}
	if f.IsPopulation() {
		if len(f.CellTrajectories) == 0 {
			return fmt.Errorf("resultfile: population without cells")
		}
		if len(f.CellObservables) > 0 && len(f.CellObservables) != len(f.CellTrajectories) {
			return fmt.Errorf("resultfile: %d cells of observables for %d cells of trajectories",
				len(f.CellObservables), len(f.CellTrajectories))
		}
		for c := range f.CellTrajectories {
			if err := check(DatasetTrajectories, f.CellTrajectories[c]); err != nil {
				return err
			}
			if w, w0 := len(f.CellTrajectories[c][0]), len(f.CellTrajectories[0][0]); w != w0 {
				return fmt.Errorf("resultfile: cell %d has %d species, cell 0 has %d", c, w, w0)
			}
			if len(f.CellObservables) > 0 {
				if err := check(DatasetObservables, f.CellObservables[c]); err != nil {
					return err
				}
				if w, w0 := len(f.CellObservables[c][0]), len(f.CellObservables[0][0]); w != w0 {
					return fmt.Errorf("resultfile: cell %d has %d observables, cell 0 has %d", c, w, w0)
				}
			}
		}
		return nil
	}
	if err := check(DatasetTrajectories, f.Trajectories); err != nil {
		return err
	}
	if len(f.Observables) > 0 {
		return check(DatasetObservables, f.Observables)
	}
	return nil
}
