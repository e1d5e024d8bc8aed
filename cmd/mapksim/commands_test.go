package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mapksim/internal/config"
	"github.com/san-kum/mapksim/internal/experiment"
	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/resultfile"
)

// speciesOnlyFile has time and trajectories but no observables, like files
// written by older tooling.
func speciesOnlyFile() *resultfile.File {
	return &resultfile.File{
		Kind:         resultfile.KindDeterministic,
		CellLine:     "wildtype",
		EGF:          1,
		Time:         []float64{0, 10, 20, 30},
		SpeciesNames: []string{"EGF(r)", "EGFR(l,state~inactive,sos)"},
		Trajectories: [][]float64{{1, 100}, {0.8, 90}, {0.5, 95}, {0.4, 99}},
	}
}

func observableFile() *resultfile.File {
	f := speciesOnlyFile()
	f.ObservableNames = append([]string{}, models.TrajectoryObservables...)
	for _, t := range f.Time {
		row := make([]float64, len(f.ObservableNames))
		for k := range row {
			row[k] = float64(k+1) * math.Exp(-t/60)
		}
		f.Observables = append(f.Observables, row)
	}
	return f
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(append(args, "--quiet"))
	return root.Execute()
}

func TestPlotPath(t *testing.T) {
	assert.Equal(t, "results/run.png", plotPath("results/run.h5", ""))
	assert.Equal(t, "run.png", plotPath("run", ""))
	assert.Equal(t, "custom.png", plotPath("results/run.h5", "custom.png"))
}

func TestPlotWritesNextToFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, resultfile.Write("run.h5", observableFile()))

	require.NoError(t, execute(t, "plot", "run.h5"))
	assert.FileExists(t, "run.png")
	assert.NoFileExists(t, config.DefaultPlotOutput)

	require.NoError(t, execute(t, "plot", "run.h5", "-o", "other.png"))
	assert.FileExists(t, "other.png")
	assert.NoFileExists(t, config.DefaultPlotOutput)
}

func TestRangeTableFallsBackToSpecies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.h5")
	require.NoError(t, resultfile.Write(path, speciesOnlyFile()))
	f, err := resultfile.Read(path)
	require.NoError(t, err)
	require.Empty(t, f.ObservableNames)

	header, rows, err := rangeTable(f)
	require.NoError(t, err)
	assert.Equal(t, "SPECIES", header[0])
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"EGF(r)", "0.4", "1"}, rows[0][:3])
	assert.Equal(t, []string{"EGFR(l,state~inactive,sos)", "90", "100"}, rows[1][:3])

	require.NoError(t, execute(t, "inspect", path))
}

func TestRangeTablePopulationSpecies(t *testing.T) {
	f := &resultfile.File{
		Kind:     resultfile.KindPopulation,
		CellLine: "mutant",
		Time:     []float64{0, 10},
		CellTrajectories: [][][]float64{
			{{1, 2}, {3, 4}},
			{{3, 2}, {5, 4}},
		},
	}
	header, rows, err := rangeTable(f)
	require.NoError(t, err)
	assert.Equal(t, "SPECIES", header[0])
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"species 0", "2", "4"}, rows[0][:3])
}

func TestRangeTableObservables(t *testing.T) {
	f := observableFile()
	header, rows, err := rangeTable(f)
	require.NoError(t, err)
	assert.Equal(t, "OBSERVABLE", header[0])
	require.Len(t, rows, len(models.TrajectoryObservables))
	assert.Equal(t, models.TrajectoryObservables[0], rows[0][0])
}

func TestInspectMissingFile(t *testing.T) {
	err := execute(t, "inspect", filepath.Join(t.TempDir(), "none.h5"))
	assert.ErrorIs(t, err, experiment.ErrResultsNotFound)
}
