package experiment

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// SweepPoint holds the readouts of one dose.
type SweepPoint struct {
	MEKi    float64
	Metrics map[string]float64
}

// Doses spans [lo, hi] with n points, logarithmically when logScale is set.
func Doses(lo, hi float64, n int, logScale bool) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("experiment: need at least one dose")
	}
	if n == 1 {
		return []float64{lo}, nil
	}
	if !(lo < hi) {
		return nil, fmt.Errorf("experiment: dose range [%g, %g] is empty", lo, hi)
	}
	out := make([]float64, n)
	if logScale {
		if lo <= 0 {
			return nil, fmt.Errorf("experiment: log dose range needs a positive lower bound, got %g", lo)
		}
		return floats.LogSpan(out, lo, hi), nil
	}
	return floats.Span(out, lo, hi), nil
}

// Sweep runs base once per MEKi dose without writing files. The network is
// generated once and shared; doses run on up to workers goroutines.
func (p *Pipeline) Sweep(ctx context.Context, base Request, doses []float64, workers int) ([]SweepPoint, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if len(doses) == 0 {
		return nil, fmt.Errorf("experiment: no doses to sweep")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	model, _, err := p.setup(base)
	if err != nil {
		return nil, err
	}
	net, err := p.network(ctx, model, base.CellLine)
	if err != nil {
		return nil, err
	}

	out := make([]SweepPoint, len(doses))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, dose := range doses {
		g.Go(func() error {
			req := base
			req.MEKi = dose
			set, err := p.parameters(req, model)
			if err != nil {
				return err
			}
			_, values, err := p.integrate(ctx, req, net, set)
			if err != nil {
				return fmt.Errorf("MEKi %g: %w", dose, err)
			}
			out[i] = SweepPoint{MEKi: dose, Metrics: values}
			p.log.Debug("sweep point done", zap.Int("index", i), zap.Float64("meki", dose))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Column returns one metric across the sweep, in dose order.
func Column(points []SweepPoint, metric string) []float64 {
	out := make([]float64, len(points))
	for i, pt := range points {
		out[i] = pt.Metrics[metric]
	}
	return out
}
