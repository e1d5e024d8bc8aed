// Package experiment runs the simulation pipeline: model construction,
// parameterisation, network generation, integration, persistence and plots.
package experiment

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/san-kum/mapksim/internal/config"
	"github.com/san-kum/mapksim/internal/ode"
	"github.com/san-kum/mapksim/internal/params"
	"github.com/san-kum/mapksim/internal/timespan"
)

var ErrResultsNotFound = errors.New("experiment: results not found")

// Request describes one run.
type Request struct {
	CellLine string
	MEKi     float64
	EGF      float64
	RAFi     float64

	Output         string
	PlotOutput     string
	SkipSimulation bool
	NoPlot         bool
	NoSummary      bool

	ParametersDir    string
	AllowMissing     bool
	MinConcentration float64
	Integrator       string
	Solver           ode.Options
	TimeSpan         timespan.Grid
}

// RequestFromConfig copies the run settings out of cfg.
func RequestFromConfig(cfg *config.Config) Request {
	opts := ode.DefaultOptions()
	opts.RelTol = cfg.Solver.RelTol
	opts.AbsTol = cfg.Solver.AbsTol
	if cfg.Solver.MaxSteps > 0 {
		opts.MaxSteps = cfg.Solver.MaxSteps
	}
	if cfg.Solver.InitialStep > 0 {
		opts.InitialStep = cfg.Solver.InitialStep
	}
	return Request{
		CellLine:         cfg.CellLine,
		MEKi:             cfg.MEKi,
		EGF:              cfg.EGF,
		RAFi:             cfg.RAFi,
		Output:           cfg.Output,
		PlotOutput:       cfg.PlotOutput,
		ParametersDir:    cfg.ParametersDir,
		AllowMissing:     cfg.AllowMissing,
		MinConcentration: cfg.MinConcentration,
		Integrator:       cfg.Solver.Method,
		Solver:           opts,
		TimeSpan:         cfg.TimeSpan,
	}
}

func (r Request) Validate() error {
	if err := params.ValidateCellLine(r.CellLine); err != nil {
		return err
	}
	if r.Output == "" {
		return fmt.Errorf("experiment: no output path")
	}
	for name, v := range map[string]float64{"MEKi": r.MEKi, "EGF": r.EGF, "RAFi": r.RAFi} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("experiment: %s dose must be finite and non-negative, got %g", name, v)
		}
	}
	if !(r.MinConcentration > 0) {
		return fmt.Errorf("experiment: minimum concentration must be positive")
	}
	return r.TimeSpan.Validate()
}

func (r Request) minimum() float64 {
	if r.MinConcentration > 0 {
		return r.MinConcentration
	}
	return params.MinConcentration
}

// PopulationPlotPath is <plot base>_all_observables.png.
func PopulationPlotPath(plotOutput string) string {
	base := strings.TrimSuffix(plotOutput, filepath.Ext(plotOutput))
	return base + "_all_observables.png"
}
