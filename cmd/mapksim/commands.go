package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/experiment"
	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/plotting"
	"github.com/san-kum/mapksim/internal/resultfile"
	"github.com/san-kum/mapksim/internal/storage"
	"github.com/san-kum/mapksim/internal/viz"
)

func printMetrics(values map[string]float64) {
	if len(values) == 0 {
		return
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, values[name])
	}
}

func inspectFile(cmd *cobra.Command, args []string) error {
	f, err := experiment.LoadResults(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderSummary(args[0], f))

	header, rows, err := rangeTable(f)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.RenderTable(header, rows))
	return nil
}

// rangeTable lists the min, max and dominant period of every observable.
// Files without observables fall back to the species trajectories. Population
// files are summarized through their mean over cells.
func rangeTable(f *resultfile.File) ([]string, [][]string, error) {
	label := "OBSERVABLE"
	names := f.ObservableNames
	data, cellData := f.Observables, f.CellObservables
	if !hasRows(f.Observables, f.CellObservables) {
		label = "SPECIES"
		names = f.SpeciesNames
		data, cellData = f.Trajectories, f.CellTrajectories
	}

	if f.IsPopulation() {
		stats, err := analysis.PopulationStats(cellData)
		if err != nil {
			return nil, nil, err
		}
		data = stats.Mean
	}
	sum, err := analysis.Summarize(f.Time, data)
	if err != nil {
		return nil, nil, err
	}

	rows := make([][]string, sum.Species)
	for k := range rows {
		name := fmt.Sprintf("%s %d", strings.ToLower(label), k)
		if k < len(names) {
			name = names[k]
		}
		period := analysis.DominantPeriod(f.Time, analysis.Column(data, k))
		p := "-"
		if period > 0 {
			p = fmt.Sprintf("%.0f s", period)
		}
		rows[k] = []string{name, fmt.Sprintf("%.4g", sum.Min[k]), fmt.Sprintf("%.4g", sum.Max[k]), p}
	}
	return []string{label, "MIN", "MAX", "PERIOD"}, rows, nil
}

func hasRows(single [][]float64, cells [][][]float64) bool {
	return (len(single) > 0 && len(single[0]) > 0) ||
		(len(cells) > 0 && len(cells[0]) > 0 && len(cells[0][0]) > 0)
}

func plotFile(cmd *cobra.Command, args []string) error {
	f, err := experiment.LoadResults(args[0])
	if err != nil {
		return err
	}
	path := plotPath(args[0], plotFileOutput)

	if err := plotting.CellTrajectories(path, f, plotCells); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", path)
	if f.IsPopulation() {
		stats := experiment.PopulationPlotPath(path)
		if err := plotting.PopulationStatistics(stats, f); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", stats)
	}
	if plotSpecies {
		grid := strings.TrimSuffix(path, filepath.Ext(path)) + "_species.png"
		if err := plotting.SpeciesGrid(grid, f); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", grid)
	}

	if terminal {
		out, err := plotting.Terminal(f, plotNames, plotWidth, plotHeight)
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

// plotPath is explicit when set, otherwise file with its extension replaced
// by .png.
func plotPath(file, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
}

func viewFile(cmd *cobra.Command, args []string) error {
	f, err := experiment.LoadResults(args[0])
	if err != nil {
		return err
	}
	return viz.Run(f)
}

func exportFile(cmd *cobra.Command, args []string) error {
	f, err := experiment.LoadResults(args[0])
	if err != nil {
		return err
	}
	if exportJSON {
		w := os.Stdout
		if exportOutput != "" {
			file, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		return resultfile.ExportJSON(w, f, nil)
	}
	if exportOutput != "" {
		if err := resultfile.ExportCSV(exportOutput, f); err != nil {
			return err
		}
		fmt.Printf("exported %s\n", exportOutput)
		return nil
	}
	return resultfile.WriteCSV(os.Stdout, f)
}

func listRuns(cmd *cobra.Command, args []string) error {
	catalog, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if len(args) == 1 {
		run, err := catalog.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	runs, err := catalog.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCELL LINE\tMEKI\tEGF\tRAFI\tKIND\tCELLS\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%s\t%d\t%s\n",
			r.ID[:min(8, len(r.ID))], r.CreatedAt.Local().Format("2006-01-02 15:04"), r.CellLine,
			r.MEKi, r.EGF, r.RAFi, r.Kind, r.Cells, r.Output)
	}
	return w.Flush()
}

func showNetwork(cmd *cobra.Command, args []string) error {
	catalog, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer catalog.Close()

	net, err := experiment.NewPipeline(log, catalog, nil).Network(cmd.Context(), cellLine)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s network: %d species, %d reactions", cellLine, len(net.Species), len(net.Reactions))))
	rows := make([][]string, len(net.Species))
	for i, s := range net.Species {
		rows[i] = []string{strconv.Itoa(i), s}
	}
	fmt.Println(viz.RenderTable([]string{"#", "SPECIES"}, rows))

	rows = make([][]string, len(net.Reactions))
	for i, r := range net.Reactions {
		rows[i] = []string{r.Rule, speciesList(net.Species, r.Reactants) + " -> " + speciesList(net.Species, r.Products), r.Rate}
	}
	fmt.Println()
	fmt.Println(viz.RenderTable([]string{"RULE", "REACTION", "RATE"}, rows))

	rows = rows[:0]
	for _, o := range net.Observables {
		n := 0
		for _, w := range o.Weights {
			if w != 0 {
				n++
			}
		}
		rows = append(rows, []string{o.Name, strconv.Itoa(n)})
	}
	fmt.Println()
	fmt.Println(viz.RenderTable([]string{"OBSERVABLE", "SPECIES"}, rows))
	return nil
}

func speciesList(species []string, idx []int) string {
	if len(idx) == 0 {
		return "0"
	}
	parts := make([]string, len(idx))
	for i, k := range idx {
		parts[i] = species[k]
	}
	return strings.Join(parts, " + ")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	doses, err := experiment.Doses(sweepMin, sweepMax, sweepPoints, sweepLog)
	if err != nil {
		return err
	}
	p, done := openPipeline(cfg)
	defer done()

	points, err := p.Sweep(cmd.Context(), experiment.RequestFromConfig(cfg), doses, workers)
	if err != nil {
		return err
	}

	erk := models.ObsERKP
	names := []string{erk + "_peak", erk + "_time_to_peak", erk + "_auc", erk + "_final"}
	rows := make([][]string, len(points))
	for i, pt := range points {
		row := []string{fmt.Sprintf("%g", pt.MEKi)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.4g", pt.Metrics[name]))
		}
		rows[i] = row
	}
	fmt.Println(viz.RenderTable(append([]string{"MEKI"}, names...), rows))

	column := experiment.Column(points, sweepMetric)
	fmt.Println()
	fmt.Println(plotting.Series(sweepMetric+" vs MEKi dose", column, 60, 10))
	return nil
}
