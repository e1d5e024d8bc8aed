package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/resultfile"
)

// PreviewValues is how many leading trajectory values the summary shows.
const PreviewValues = 10

// RenderSummary renders the content check of a result file: its datasets and
// their shapes, the first trajectory row, and the stored metadata.
func RenderSummary(path string, f *resultfile.File) string {
	s := f.Shape()

	datasets := []string{resultfile.DatasetTime, resultfile.DatasetTrajectories}
	if s.Observables > 0 {
		datasets = append(datasets, resultfile.DatasetObservables)
	}

	first := f.Trajectories
	if f.IsPopulation() && len(f.CellTrajectories) > 0 {
		first = f.CellTrajectories[0]
	}
	var preview []float64
	if len(first) > 0 {
		preview = first[0][:min(PreviewValues, len(first[0]))]
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("HDF5 file contents") + "\n")
	b.WriteString(Subtle.Render(path) + "\n\n")
	b.WriteString(row("Datasets", strings.Join(datasets, ", ")) + "\n")
	b.WriteString(row("Time points shape", fmt.Sprintf("(%d,)", s.Time)) + "\n")
	b.WriteString(row("Number of time points", fmt.Sprint(s.Time)) + "\n")
	b.WriteString(row("Trajectories shape", formatShape(s.Trajectories())) + "\n")
	if s.Observables > 0 {
		b.WriteString(row("Observables", fmt.Sprint(s.Observables)) + "\n")
	}
	if sum, err := analysis.Summarize(f.Time, first); err == nil {
		b.WriteString(row("Time range", fmt.Sprintf("%g to %g s", sum.TimeMin, sum.TimeMax)) + "\n")
	}
	b.WriteString(row("First values (row 0)", formatValues(preview)) + "\n\n")

	b.WriteString(Title.Render("Metadata") + "\n")
	b.WriteString(row("  "+resultfile.AttrKind, f.Kind) + "\n")
	b.WriteString(row("  "+resultfile.AttrCellLine, f.CellLine) + "\n")
	b.WriteString(row("  "+resultfile.AttrMEKi, fmt.Sprintf("%g", f.MEKi)) + "\n")
	b.WriteString(row("  "+resultfile.AttrEGF, fmt.Sprintf("%g", f.EGF)) + "\n")
	b.WriteString(row("  "+resultfile.AttrRAFi, fmt.Sprintf("%g", f.RAFi)) + "\n")
	if f.Fingerprint != "" {
		b.WriteString(row("  "+resultfile.AttrFingerprint, f.Fingerprint) + "\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderTable renders rows of cells as aligned columns under a header.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	line := func(cells []string) string {
		cells = cells[:min(len(cells), len(widths))]
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = lipgloss.NewStyle().Width(widths[i]).Render(c)
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(line(header)) + "\n")
	for _, r := range rows {
		b.WriteString(line(r) + "\n")
	}
	return b.String()
}

func formatShape(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValues(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.4g", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
