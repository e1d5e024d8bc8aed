package plotting

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/resultfile"
)

// Terminal renders one ASCII chart per observable name. Population files
// are charted as the mean over cells. Empty names chart every observable.
func Terminal(f *resultfile.File, names []string, width, height int) (string, error) {
	if len(names) == 0 {
		names = f.ObservableNames
	}
	var mean [][]float64
	if f.IsPopulation() {
		stats, err := analysis.PopulationStats(f.CellObservables)
		if err != nil {
			return "", err
		}
		mean = stats.Mean
	}

	var b strings.Builder
	for _, name := range names {
		k, ok := f.ObservableIndex(name)
		if !ok {
			return "", fmt.Errorf("plotting: no observable %q", name)
		}
		var series []float64
		caption := name
		if mean != nil {
			series = analysis.Column(mean, k)
			caption += " (population mean)"
		} else {
			series = analysis.Column(f.Observables, k)
		}
		b.WriteString(Series(caption, series, width, height))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// Series renders a single ASCII chart.
func Series(caption string, data []float64, width, height int) string {
	if len(data) == 0 {
		return caption + ": no data"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
