// Package metrics reduces observable trajectories to scalar readouts.
package metrics

import (
	"github.com/san-kum/mapksim/internal/ode"
)

type Metric interface {
	Name() string
	Observe(x ode.State, t float64)
	Value() float64
	Reset()
}

// Readout is a weighted sum over species, usually an observable.
type Readout struct {
	Name    string
	Weights []float64
}

func (r Readout) Eval(x ode.State) float64 {
	sum := 0.0
	for i, w := range r.Weights {
		if w != 0 && i < len(x) {
			sum += w * x[i]
		}
	}
	return sum
}

// Collector feeds every solver sample to its metrics.
type Collector struct {
	metrics []Metric
	// From drops samples before this time, e.g. pre-equilibration.
	From float64
}

var _ ode.Observer = (*Collector)(nil)

func NewCollector(from float64, ms ...Metric) *Collector {
	return &Collector{metrics: ms, From: from}
}

func (c *Collector) Add(m Metric) {
	c.metrics = append(c.metrics, m)
}

func (c *Collector) OnSample(x ode.State, t float64) {
	if t < c.From {
		return
	}
	for _, m := range c.metrics {
		m.Observe(x, t)
	}
}

// Values maps metric names to their current values.
func (c *Collector) Values() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Reset() {
	for _, m := range c.metrics {
		m.Reset()
	}
}

// Standard returns peak, time-to-peak, AUC and final value for each readout.
func Standard(readouts ...Readout) []Metric {
	var out []Metric
	for _, r := range readouts {
		out = append(out, NewPeak(r), NewTimeToPeak(r), NewAUC(r), NewFinal(r))
	}
	return out
}

// Replay feeds a stored trajectory through the metrics, skipping samples
// before from.
func Replay(from float64, times []float64, states [][]float64, ms ...Metric) map[string]float64 {
	c := NewCollector(from, ms...)
	for i, t := range times {
		c.OnSample(states[i], t)
	}
	return c.Values()
}
