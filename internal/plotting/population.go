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

// PopulationStatistics draws the population mean of each population
// observable with its 95% confidence band.
func PopulationStatistics(path string, f *resultfile.File) error {
	if !f.IsPopulation() {
		return fmt.Errorf("plotting: %s is not a population result", f.Kind)
	}
	stats, err := analysis.PopulationStats(f.CellObservables)
	if err != nil {
		return err
	}
	t := minutes(f.Time)

	var panels []*plot.Plot
	for i, name := range models.PopulationObservables {
		k, ok := f.ObservableIndex(name)
		if !ok {
			continue
		}
		logY := models.LogScaleObservables[name]
		p := newPanel(name, logY)
		lower := xys(t, analysis.Column(stats.Lower, k), logY)
		upper := xys(t, analysis.Column(stats.Upper, k), logY)

		band := make(plotter.XYs, 0, 2*len(t))
		band = append(band, lower...)
		for j := len(upper) - 1; j >= 0; j-- {
			band = append(band, upper[j])
		}
		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return fmt.Errorf("plotting: %s band: %w", name, err)
		}
		r, g, b, _ := plotutil.Color(i).RGBA()
		poly.Color = color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 60}
		poly.LineStyle.Width = 0
		p.Add(poly)

		mean, err := addLine(p, xys(t, analysis.Column(stats.Mean, k), logY), plotutil.Color(i), vg.Points(1.5))
		if err != nil {
			return fmt.Errorf("plotting: %s mean: %w", name, err)
		}
		p.Legend.Add("mean", mean)
		p.Legend.Add("95% CI", poly)
		p.Legend.Top = true
		panels = append(panels, p)
	}
	if len(panels) == 0 {
		return fmt.Errorf("plotting: no population observables in file")
	}
	title := fmt.Sprintf("%s\nPopulation statistics (n=%d cells)", Title(f), stats.Cells)
	return grid(path, title, panels, 2)
}
