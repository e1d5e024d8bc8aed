package metrics

import (
	"math"

	"github.com/san-kum/mapksim/internal/ode"
)

type Peak struct {
	readout Readout
	max     float64
	samples int
}

func NewPeak(r Readout) *Peak {
	return &Peak{readout: r}
}

func (p *Peak) Name() string { return p.readout.Name + "_peak" }

func (p *Peak) Observe(x ode.State, t float64) {
	v := p.readout.Eval(x)
	if p.samples == 0 || v > p.max {
		p.max = v
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}

type TimeToPeak struct {
	readout Readout
	max     float64
	at      float64
	samples int
}

func NewTimeToPeak(r Readout) *TimeToPeak {
	return &TimeToPeak{readout: r}
}

func (p *TimeToPeak) Name() string { return p.readout.Name + "_time_to_peak" }

func (p *TimeToPeak) Observe(x ode.State, t float64) {
	v := p.readout.Eval(x)
	if p.samples == 0 || v > p.max {
		p.max = v
		p.at = t
	}
	p.samples++
}

func (p *TimeToPeak) Value() float64 { return p.at }

func (p *TimeToPeak) Reset() {
	p.max, p.at = 0, 0
	p.samples = 0
}

// AUC integrates the readout over time with the trapezoid rule.
type AUC struct {
	readout Readout
	sum     float64
	lastT   float64
	lastV   float64
	samples int
}

func NewAUC(r Readout) *AUC {
	return &AUC{readout: r}
}

func (a *AUC) Name() string { return a.readout.Name + "_auc" }

func (a *AUC) Observe(x ode.State, t float64) {
	v := a.readout.Eval(x)
	if a.samples > 0 {
		a.sum += 0.5 * (v + a.lastV) * (t - a.lastT)
	}
	a.lastT, a.lastV = t, v
	a.samples++
}

func (a *AUC) Value() float64 { return a.sum }

func (a *AUC) Reset() {
	a.sum, a.lastT, a.lastV = 0, 0, 0
	a.samples = 0
}

type Final struct {
	readout Readout
	last    float64
}

func NewFinal(r Readout) *Final {
	return &Final{readout: r, last: math.NaN()}
}

func (f *Final) Name() string { return f.readout.Name + "_final" }

func (f *Final) Observe(x ode.State, t float64) {
	f.last = f.readout.Eval(x)
}

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = math.NaN() }
