package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/mapksim/internal/logging"
	"github.com/san-kum/mapksim/internal/metrics"
	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/ode"
	"github.com/san-kum/mapksim/internal/params"
	"github.com/san-kum/mapksim/internal/plotting"
	"github.com/san-kum/mapksim/internal/resultfile"
	"github.com/san-kum/mapksim/internal/rules"
	"github.com/san-kum/mapksim/internal/storage"
	"github.com/san-kum/mapksim/internal/viz"
)

// Pipeline runs requests against the RTKERK model. The catalog is optional.
type Pipeline struct {
	log      *zap.Logger
	catalog  *storage.Catalog
	registry *Registry
	out      io.Writer

	MaxSpecies int
}

func NewPipeline(log *zap.Logger, catalog *storage.Catalog, out io.Writer) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		log:        logging.OrNop(log),
		catalog:    catalog,
		registry:   NewRegistry(),
		out:        out,
		MaxSpecies: rules.DefaultMaxSpecies,
	}
}

func (p *Pipeline) Registry() *Registry { return p.registry }

// Result is what a run produced.
type Result struct {
	File    *resultfile.File
	Network *rules.Network
	Metrics map[string]float64
	RunID   string
	// Loaded is set when the file was read back instead of simulated.
	Loaded bool
}

// LoadResults reads a result file, wrapping ErrResultsNotFound when it is
// missing.
func LoadResults(path string) (*resultfile.File, error) {
	if !resultfile.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrResultsNotFound, path)
	}
	return resultfile.Read(path)
}

func (p *Pipeline) stage(name string, start time.Time) {
	p.log.Info("stage finished", zap.String("stage", name), zap.Duration("took", time.Since(start)))
}

// Run simulates one deterministic cell, writes the result file, records the
// run, plots it and prints the file summary.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.SkipSimulation {
		if resultfile.Exists(req.Output) {
			fmt.Fprintf(p.out, "Loading existing results from %s\n", req.Output)
			f, err := resultfile.Read(req.Output)
			if err != nil {
				return nil, err
			}
			if err := p.finish(req, f); err != nil {
				return nil, err
			}
			return &Result{File: f, Loaded: true}, nil
		}
		p.log.Info("no existing results, simulating", zap.String("output", req.Output))
	}

	if err := ensureDirs(req.Output, req.PlotOutput); err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "Simulating %s cells (MEKi %g, EGF %g, RAFi %g)\n", req.CellLine, req.MEKi, req.EGF, req.RAFi)
	model, set, err := p.setup(req)
	if err != nil {
		return nil, err
	}
	p.stage("setup", start)

	t := time.Now()
	net, err := p.network(ctx, model, req.CellLine)
	if err != nil {
		return nil, err
	}
	p.stage("network generation", t)
	fmt.Fprintf(p.out, "Network: %d species, %d reactions\n", len(net.Species), len(net.Reactions))

	t = time.Now()
	f, values, err := p.integrate(ctx, req, net, set)
	if err != nil {
		return nil, err
	}
	p.stage("integration", t)

	t = time.Now()
	if err := resultfile.Write(req.Output, f); err != nil {
		return nil, err
	}
	p.stage("saving", t)

	id := p.record(ctx, req, f, 0, values)
	if err := p.finish(req, f); err != nil {
		return nil, err
	}
	p.stage("total", start)
	return &Result{File: f, Network: net, Metrics: values, RunID: id}, nil
}

// finish plots f and prints its summary.
func (p *Pipeline) finish(req Request, f *resultfile.File) error {
	if !req.NoPlot && req.PlotOutput != "" {
		if err := plotting.CellTrajectories(req.PlotOutput, f, 0); err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Plot saved to %s\n", req.PlotOutput)
	}
	if !req.NoSummary {
		fmt.Fprintln(p.out, viz.RenderSummary(req.Output, f))
	}
	return nil
}

func ensureDirs(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

// setup builds the model and its parameter set for req.
func (p *Pipeline) setup(req Request) (*rules.Model, rules.ParameterSet, error) {
	model, err := models.RTKERK()
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateStates(model); err != nil {
		return nil, nil, err
	}
	set, err := p.parameters(req, model)
	return model, set, err
}

// parameters applies, in order: defaults floored at the minimum, the cell
// line's BRAF dose, the parameter file with its drug blocks, the requested
// doses, and a final floor.
func (p *Pipeline) parameters(req Request, model *rules.Model) (rules.ParameterSet, error) {
	minimum := req.minimum()
	set := model.Defaults()
	if floored := params.FloorNonPositive(set, minimum); len(floored) > 0 {
		p.log.Debug("raised zero parameters to the minimum concentration", zap.Strings("parameters", floored))
	}

	set[models.ParamBRAFMut] = minimum
	if req.CellLine == params.Mutant {
		set[models.ParamBRAFMut] = params.MutantBRAF
	}

	settings := params.SettingsFor(models.Name, req.CellLine)
	drugs := params.Drugs(req.RAFi, req.MEKi, models.DrugRAFi, models.DrugMEKi)
	rep, err := params.Load(req.ParametersDir, settings, set, drugs, req.AllowMissing)
	switch {
	case errors.Is(err, params.ErrNoParameterFile):
		p.log.Warn("parameter file not found, using model defaults", zap.String("path", rep.Path))
	case err != nil:
		return nil, err
	default:
		p.log.Debug("loaded parameters", zap.String("path", rep.Path), zap.Int("applied", len(rep.Applied)))
		if len(rep.Unknown) > 0 {
			p.log.Warn("parameter file names unknown parameters", zap.String("path", rep.Path), zap.Strings("unknown", rep.Unknown))
		}
	}

	set[models.ParamMEKi] = max(req.MEKi, minimum)
	set[models.ParamEGF] = max(req.EGF, minimum)
	set[models.ParamRAFi] = max(req.RAFi, minimum)
	if floored := params.FloorNonPositive(set, minimum); len(floored) > 0 {
		p.log.Warn("floored non-positive parameters", zap.Strings("parameters", floored))
	}
	return set, nil
}

// network returns the generated network for model, from the catalog cache
// when possible.
func (p *Pipeline) network(ctx context.Context, model *rules.Model, cellLine string) (*rules.Network, error) {
	fp := model.Fingerprint()
	if p.catalog != nil {
		net, err := p.catalog.LoadNetwork(ctx, fp, cellLine)
		if err != nil {
			p.log.Warn("network cache unreadable, regenerating", zap.Error(err))
		} else if net != nil && net.Fingerprint == fp {
			p.log.Debug("network cache hit", zap.String("fingerprint", fp), zap.String("cell_line", cellLine))
			return net, nil
		}
		p.log.Debug("network cache miss", zap.String("fingerprint", fp), zap.String("cell_line", cellLine))
	}

	net, err := rules.Generate(ctx, model, rules.GenerateOptions{MaxSpecies: p.MaxSpecies})
	if err != nil {
		return nil, err
	}
	if p.catalog != nil {
		if err := p.catalog.SaveNetwork(ctx, cellLine, net); err != nil {
			p.log.Warn("could not cache network", zap.Error(err))
		}
	}
	return net, nil
}

// Network generates (or loads from the cache) the reaction network for a
// cell line.
func (p *Pipeline) Network(ctx context.Context, cellLine string) (*rules.Network, error) {
	if err := params.ValidateCellLine(cellLine); err != nil {
		return nil, err
	}
	model, err := models.RTKERK()
	if err != nil {
		return nil, err
	}
	return p.network(ctx, model, cellLine)
}

// seedIndex finds the species seeded from param.
func seedIndex(net *rules.Network, param string) (int, error) {
	for _, s := range net.Seeds {
		if s.Param == param {
			return s.Species, nil
		}
	}
	return 0, fmt.Errorf("experiment: no species seeded from %s", param)
}

func readouts(net *rules.Network, names []string) []metrics.Readout {
	var out []metrics.Readout
	for _, name := range names {
		if w, ok := net.Observable(name); ok {
			out = append(out, metrics.Readout{Name: name, Weights: w})
		}
	}
	return out
}

// integrate pre-equilibrates with EGF at the minimum, adds the EGF dose at
// the start of stimulation and integrates the stimulation grid from the
// equilibrated state.
func (p *Pipeline) integrate(ctx context.Context, req Request, net *rules.Network, set rules.ParameterSet) (*resultfile.File, map[string]float64, error) {
	sys, err := net.System(set)
	if err != nil {
		return nil, nil, err
	}
	stepper, err := p.registry.Stepper(req.Integrator)
	if err != nil {
		return nil, nil, err
	}
	egf, err := seedIndex(net, models.ParamEGF)
	if err != nil {
		return nil, nil, err
	}

	quiet := set.Clone()
	quiet[models.ParamEGF] = req.minimum()
	x0, err := net.InitialState(quiet)
	if err != nil {
		return nil, nil, err
	}

	eq, err := ode.NewSolver(stepper, req.Solver).Solve(ctx, sys, x0, req.TimeSpan.EquilibrationTimes())
	if err != nil {
		return nil, nil, fmt.Errorf("pre-equilibration: %w", err)
	}
	p.log.Debug("pre-equilibrated", zap.Int("steps", eq.Steps), zap.Int("rejected", eq.Rejected))

	xs := eq.Last().Clone()
	xs[egf] += set[models.ParamEGF]

	stimTimes := req.TimeSpan.StimulationTimes()
	collector := metrics.NewCollector(stimTimes[0], metrics.Standard(readouts(net, models.TrajectoryObservables)...)...)
	solver := ode.NewSolver(stepper, req.Solver)
	solver.AddObserver(collector)
	stim, err := solver.Solve(ctx, sys, xs, stimTimes)
	if err != nil {
		return nil, nil, fmt.Errorf("stimulation: %w", err)
	}
	p.log.Debug("stimulated", zap.Int("steps", stim.Steps), zap.Int("rejected", stim.Rejected))

	f := &resultfile.File{
		Kind:            resultfile.KindDeterministic,
		CellLine:        req.CellLine,
		MEKi:            req.MEKi,
		EGF:             req.EGF,
		RAFi:            req.RAFi,
		Fingerprint:     net.Fingerprint,
		SpeciesNames:    net.Species,
		ObservableNames: net.ObservableNames(),
	}
	add := func(t float64, x ode.State) {
		f.Time = append(f.Time, t)
		f.Trajectories = append(f.Trajectories, []float64(x))
		f.Observables = append(f.Observables, net.ObservableValues(x))
	}
	for i, t := range eq.Times {
		if t < stimTimes[0] {
			add(t, eq.States[i])
		}
	}
	for i, t := range stim.Times {
		add(t, stim.States[i])
	}
	return f, collector.Values(), nil
}

// record stores the run in the catalog. Failures are logged, not returned.
func (p *Pipeline) record(ctx context.Context, req Request, f *resultfile.File, cells int, values map[string]float64) string {
	if p.catalog == nil {
		return ""
	}
	s := f.Shape()
	plot := req.PlotOutput
	if req.NoPlot {
		plot = ""
	}
	id, err := p.catalog.RecordRun(ctx, &storage.Run{
		CellLine:    req.CellLine,
		MEKi:        req.MEKi,
		EGF:         req.EGF,
		RAFi:        req.RAFi,
		Output:      req.Output,
		PlotOutput:  plot,
		Kind:        f.Kind,
		Integrator:  req.Integrator,
		Species:     s.Species,
		TimePoints:  s.Time,
		Cells:       cells,
		Fingerprint: f.Fingerprint,
		Metrics:     values,
	})
	if err != nil {
		p.log.Warn("could not record run", zap.Error(err))
		return ""
	}
	p.log.Debug("recorded run", zap.String("id", id))
	return id
}
