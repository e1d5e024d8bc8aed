package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/metrics"
	"github.com/san-kum/mapksim/internal/models"
	"github.com/san-kum/mapksim/internal/ode"
	"github.com/san-kum/mapksim/internal/plotting"
	"github.com/san-kum/mapksim/internal/resultfile"
	"github.com/san-kum/mapksim/internal/sde"
	"github.com/san-kum/mapksim/internal/viz"
)

// PopulationOptions configures the stochastic cell ensemble.
type PopulationOptions struct {
	Cells   int
	Volume  float64
	Dt      float64
	Seed    uint64
	Workers int
	CV      float64
	// PlotCells is how many individual cells the trajectory figure overlays.
	PlotCells int
}

// Population simulates independent stochastic cells over the whole grid. EGF
// is added to every cell at the start of stimulation.
func (p *Pipeline) Population(ctx context.Context, req Request, opts PopulationOptions) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.Cells <= 0 {
		return nil, fmt.Errorf("experiment: population needs at least one cell")
	}
	if err := ensureDirs(req.Output, req.PlotOutput); err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "Simulating %d %s cells (MEKi %g, EGF %g, RAFi %g)\n", opts.Cells, req.CellLine, req.MEKi, req.EGF, req.RAFi)
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

	sys, err := net.System(set)
	if err != nil {
		return nil, err
	}
	egf, err := seedIndex(net, models.ParamEGF)
	if err != nil {
		return nil, err
	}
	quiet := set.Clone()
	quiet[models.ParamEGF] = req.minimum()
	x0, err := net.InitialState(quiet)
	if err != nil {
		return nil, err
	}

	tspan := req.TimeSpan.All()
	dose := set[models.ParamEGF]
	ens := &sde.Ensemble{
		Net:     sys,
		Volume:  opts.Volume,
		Dt:      opts.Dt,
		Seed:    opts.Seed,
		Workers: opts.Workers,
		CV:      opts.CV,
		Events: []sde.Event{{
			Time:  req.TimeSpan.StimulationTimes()[0],
			Apply: func(x ode.State) { x[egf] += dose },
		}},
	}

	t = time.Now()
	traj, err := ens.Run(ctx, opts.Cells, x0, tspan)
	if err != nil {
		return nil, err
	}
	p.stage("integration", t)

	f := &resultfile.File{
		Kind:             resultfile.KindPopulation,
		CellLine:         req.CellLine,
		MEKi:             req.MEKi,
		EGF:              req.EGF,
		RAFi:             req.RAFi,
		Fingerprint:      net.Fingerprint,
		Time:             tspan,
		SpeciesNames:     net.Species,
		ObservableNames:  net.ObservableNames(),
		CellTrajectories: traj,
		CellObservables:  make([][][]float64, len(traj)),
	}
	for c, cell := range traj {
		f.CellObservables[c] = make([][]float64, len(cell))
		for i, x := range cell {
			f.CellObservables[c][i] = net.ObservableValues(x)
		}
	}

	stats, err := analysis.PopulationStats(traj)
	if err != nil {
		return nil, err
	}
	values := metrics.Replay(req.TimeSpan.StimulationTimes()[0], tspan, stats.Mean,
		metrics.Standard(readouts(net, models.TrajectoryObservables)...)...)

	t = time.Now()
	if err := resultfile.Write(req.Output, f); err != nil {
		return nil, err
	}
	p.stage("saving", t)

	id := p.record(ctx, req, f, opts.Cells, values)

	if !req.NoPlot && req.PlotOutput != "" {
		if err := plotting.CellTrajectories(req.PlotOutput, f, opts.PlotCells); err != nil {
			return nil, err
		}
		statsPath := PopulationPlotPath(req.PlotOutput)
		if err := plotting.PopulationStatistics(statsPath, f); err != nil {
			return nil, err
		}
		fmt.Fprintf(p.out, "Plots saved to %s and %s\n", req.PlotOutput, statsPath)
	}
	if !req.NoSummary {
		fmt.Fprintln(p.out, viz.RenderSummary(req.Output, f))
	}
	p.log.Info("population finished", zap.Int("cells", opts.Cells), zap.Duration("took", time.Since(start)))
	return &Result{File: f, Network: net, Metrics: values, RunID: id}, nil
}
