package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/mapksim/internal/config"
	"github.com/san-kum/mapksim/internal/experiment"
	"github.com/san-kum/mapksim/internal/logging"
	"github.com/san-kum/mapksim/internal/storage"
)

var (
	cellLine       string
	drugConc       []string
	rafiConc       float64
	output         string
	plotOutput     string
	skipSimulation bool
	configFile     string
	preset         string
	dataDir        string
	paramsDir      string
	integrator     string
	verbose        bool
	quiet          bool
	logFormat      string

	// population
	cells     int
	volume    float64
	sdeDt     float64
	seed      uint64
	workers   int
	cv        float64
	plotCells int

	// plot
	plotFileOutput string
	terminal       bool
	plotSpecies    bool
	plotNames      []string
	plotWidth      int
	plotHeight     int
	exportOutput   string
	exportJSON     bool

	// sweep
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	sweepLog    bool
	sweepMetric string

	runsLimit int

	log *zap.Logger
)

// main exits with status 1 when the command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers the commands and their flags. Flags bind package-level
// variables, so registration also resets them to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapksim",
		Short: "RTK/ERK signalling simulator",
		Long: "mapksim builds the RTK-RAS-RAF-MEK-ERK rule-based model, integrates it for a\n" +
			"cell line and drug doses, writes the trajectories to HDF5 and plots them.",
		Args:              cobra.MaximumNArgs(1),
		RunE:              runSimulation,
		PersistentPreRunE: setupLogger,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = log.Sync() },
		SilenceUsage:      true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use a named dose preset (see 'mapksim presets')")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for the run catalog")
	pf.StringVar(&paramsDir, "params-dir", config.DefaultParametersDir, "parameter file directory")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log warnings and errors only")
	pf.StringVar(&logFormat, "log-format", "json", "log format: json or console")

	addRunFlags(rootCmd)
	rootCmd.Flags().BoolVar(&skipSimulation, "skip-simulation", false, "reuse the output file when it exists")

	populationCmd := &cobra.Command{
		Use:   "population",
		Short: "simulate a population of stochastic cells",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPopulation,
	}
	addRunFlags(populationCmd)
	populationCmd.Flags().IntVar(&cells, "cells", config.DefaultCells, "number of cells")
	populationCmd.Flags().Float64Var(&volume, "volume", config.DefaultVolume, "system size (molecules per concentration unit)")
	populationCmd.Flags().Float64Var(&sdeDt, "dt", config.DefaultSDEDt, "Euler-Maruyama step (s)")
	populationCmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed of the first cell")
	populationCmd.Flags().IntVar(&workers, "workers", 0, "parallel cells (0 = GOMAXPROCS)")
	populationCmd.Flags().Float64Var(&cv, "cv", config.DefaultCV, "cell-to-cell variation of initial amounts")
	populationCmd.Flags().IntVar(&plotCells, "plot-cells", 20, "cells drawn in the trajectory figure (0 = all)")

	inspectCmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "summarize a result file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectFile,
	}

	plotCmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "plot a result file",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFile,
	}
	plotCmd.Flags().StringVarP(&plotFileOutput, "plot-output", "o", "", "PNG path (default: FILE with .png)")
	plotCmd.Flags().BoolVar(&terminal, "terminal", false, "also draw ASCII charts")
	plotCmd.Flags().BoolVar(&plotSpecies, "species", false, "also draw the species grid")
	plotCmd.Flags().StringSliceVar(&plotNames, "observable", nil, "observables for the terminal charts")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "terminal chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "terminal chart height")

	viewCmd := &cobra.Command{
		Use:   "view FILE",
		Short: "browse a result file interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewFile,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv FILE",
		Short: "export a result file to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportFile,
	}
	exportCSVCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "output path (default: stdout)")
	exportCSVCmd.Flags().BoolVar(&exportJSON, "json", false, "write observables as JSON instead")

	runsCmd := &cobra.Command{
		Use:   "runs [ID]",
		Short: "list recorded runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to list (0 = all)")

	networkCmd := &cobra.Command{
		Use:   "network",
		Short: "show the generated reaction network",
		Args:  cobra.NoArgs,
		RunE:  showNetwork,
	}
	networkCmd.Flags().StringVar(&cellLine, "cell-line", "wildtype", "wildtype or mutant")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "MEKi dose response",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "lowest MEKi dose")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10, "highest MEKi dose")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of doses")
	sweepCmd.Flags().BoolVar(&sweepLog, "log", false, "space doses logarithmically")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel doses (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "ERK_P_final", "metric to chart")

	batchCmd := &cobra.Command{
		Use:   "batch SCENARIO",
		Short: "run a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed for population steps")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list dose presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-16s %s (MEKi %g, EGF %g, RAFi %g)\n", name, p.Description, p.MEKi, p.EGF, p.RAFi)
			}
		},
	}

	rootCmd.AddCommand(populationCmd, inspectCmd, plotCmd, viewCmd, exportCSVCmd, runsCmd, networkCmd, sweepCmd, batchCmd, presetsCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cellLine, "cell-line", "wildtype", "wildtype or mutant")
	f.StringArrayVar(&drugConc, "drug-concentration", nil, "MEKi and EGF concentrations: 'A B', A,B or the flag twice")
	f.Float64Var(&rafiConc, "rafi-concentration", 0, "RAF inhibitor (vemurafenib) concentration")
	f.StringVar(&output, "output", config.DefaultOutput, "HDF5 result file")
	f.StringVar(&plotOutput, "plot-output", config.DefaultPlotOutput, "trajectory plot (PNG)")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "rosenbrock, rk45, rk4 or euler")
}

func setupLogger(cmd *cobra.Command, args []string) error {
	l, err := logging.New(logging.Options{Verbose: verbose, Quiet: quiet, Format: logFormat})
	if err != nil {
		return err
	}
	log = l
	return nil
}

// loadConfig layers defaults, the preset, the config file and finally the
// flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(cfg)
	}
	if configFile != "" {
		if err := cfg.Merge(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("cell-line") {
		cfg.CellLine = cellLine
	}
	if changed("drug-concentration") {
		meki, egf, rest, err := parseDrugConcentrations(drugConc, args)
		if err != nil {
			return nil, err
		}
		if len(rest) > 0 {
			return nil, fmt.Errorf("unexpected argument %q", rest[0])
		}
		cfg.MEKi, cfg.EGF = meki, egf
	} else if len(args) > 0 {
		return nil, fmt.Errorf("unexpected argument %q", args[0])
	}
	if changed("rafi-concentration") {
		cfg.RAFi = rafiConc
	}
	if changed("output") {
		cfg.Output = output
	}
	if changed("plot-output") {
		cfg.PlotOutput = plotOutput
	}
	if changed("integrator") {
		cfg.Solver.Method = integrator
	}
	if changed("data") {
		cfg.DataDir = dataDir
	}
	if changed("params-dir") {
		cfg.ParametersDir = paramsDir
	}
	if changed("cells") {
		cfg.Population.Cells = cells
	}
	if changed("volume") {
		cfg.Population.Volume = volume
	}
	if changed("dt") {
		cfg.Population.Dt = sdeDt
	}
	if changed("seed") {
		cfg.Population.Seed = seed
	}
	if changed("workers") {
		cfg.Population.Workers = workers
	}
	if changed("cv") {
		cfg.Population.CV = cv
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openPipeline opens the catalog in the data directory. A catalog that cannot
// be opened is logged and the pipeline runs without one.
func openPipeline(cfg *config.Config) (*experiment.Pipeline, func()) {
	catalog, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Warn("run catalog unavailable", zap.String("data_dir", cfg.DataDir), zap.Error(err))
		return experiment.NewPipeline(log, nil, os.Stdout), func() {}
	}
	return experiment.NewPipeline(log, catalog, os.Stdout), func() { catalog.Close() }
}

func populationOptions(cfg *config.Config) experiment.PopulationOptions {
	return experiment.PopulationOptions{
		Cells:     cfg.Population.Cells,
		Volume:    cfg.Population.Volume,
		Dt:        cfg.Population.Dt,
		Seed:      cfg.Population.Seed,
		Workers:   cfg.Population.Workers,
		CV:        cfg.Population.CV,
		PlotCells: plotCells,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, done := openPipeline(cfg)
	defer done()

	req := experiment.RequestFromConfig(cfg)
	req.SkipSimulation = skipSimulation
	res, err := p.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	if res.RunID != "" {
		fmt.Printf("run id: %s\n", res.RunID)
	}
	printMetrics(res.Metrics)
	return nil
}

func runPopulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, done := openPipeline(cfg)
	defer done()

	res, err := p.Population(cmd.Context(), experiment.RequestFromConfig(cfg), populationOptions(cfg))
	if err != nil {
		return err
	}
	if res.RunID != "" {
		fmt.Printf("run id: %s\n", res.RunID)
	}
	printMetrics(res.Metrics)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	scenario, err := experiment.LoadScenario(args[0])
	if err != nil {
		return err
	}
	p, done := openPipeline(cfg)
	defer done()

	fmt.Printf("scenario %s: %d runs\n", scenario.Name, len(scenario.Runs))
	results, err := p.RunScenario(cmd.Context(), experiment.RequestFromConfig(cfg), scenario, populationOptions(cfg))
	for i, res := range results {
		fmt.Printf("  step %d: %s %s, run id %s\n", i+1, res.File.CellLine, res.File.Kind, res.RunID)
	}
	return err
}
