package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/resultfile"
)

// SpeciesGridSize is the number of species SpeciesGrid draws.
const SpeciesGridSize = 8

// CellTrajectories draws the trajectory observables in a 3x2 grid. For a
// population file the first cells cells are overlaid; cells <= 0 draws all.
func CellTrajectories(path string, f *resultfile.File, cells int) error {
	t := minutes(f.Time)
	lines := 1
	if f.IsPopulation() {
		lines = len(f.CellObservables)
		if cells > 0 && cells < lines {
			lines = cells
		}
	}

	panels := make([]*plot.Plot, 0, len(models.TrajectoryObservables))
	for _, name := range models.TrajectoryObservables {
		logY := models.LogScaleObservables[name]
		p := newPanel(name, logY)
		if _, ok := f.ObservableIndex(name); !ok {
			p.Title.Text = name + " (not recorded)"
			panels = append(panels, p)
			continue
		}
		for c := 0; c < lines; c++ {
			y, err := f.ObservableSeries(name, c)
			if err != nil {
				return err
			}
			col := plotutil.Color(0)
			width := vg.Points(1.5)
			if lines > 1 {
				col = plotutil.Color(c)
				width = vg.Points(0.75)
			}
			if _, err := addLine(p, xys(t, y, logY), col, width); err != nil {
				return fmt.Errorf("plotting: %s: %w", name, err)
			}
		}
		panels = append(panels, p)
	}
	return grid(path, Title(f), panels, 2)
}

// SpeciesGrid draws the first SpeciesGridSize species, each annotated with
// its minimum and maximum. Population files use the first cell.
func SpeciesGrid(path string, f *resultfile.File) error {
	traj := f.Trajectories
	if f.IsPopulation() {
		if len(f.CellTrajectories) == 0 {
			return analysis.ErrEmpty
		}
		traj = f.CellTrajectories[0]
	}
	sum, err := analysis.Summarize(f.Time, traj)
	if err != nil {
		return err
	}
	n := min(sum.Species, SpeciesGridSize)
	t := minutes(f.Time)

	panels := make([]*plot.Plot, 0, n)
	for k := 0; k < n; k++ {
		name := fmt.Sprintf("species %d", k)
		if k < len(f.SpeciesNames) {
			name = f.SpeciesNames[k]
		}
		p := newPanel(name, false)
		if _, err := addLine(p, xys(t, analysis.Column(traj, k), false), plotutil.Color(k), vg.Points(1.5)); err != nil {
			return fmt.Errorf("plotting: %s: %w", name, err)
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: t[0], Y: sum.Max[k]}},
			Labels: []string{fmt.Sprintf("Min: %.2e\nMax: %.2e", sum.Min[k], sum.Max[k])},
		})
		if err != nil {
			return err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = color.Gray{Y: 80}
		}
		p.Add(labels)
		panels = append(panels, p)
	}
	return grid(path, "Species trajectories", panels, 2)
}
