package rules

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mapksim/internal/ode"
)

type stoich struct {
	species int
	coef    float64
}

type massReaction struct {
	k         float64
	reactants []int
	net       []stoich
}

// MassAction is the ODE system of a network under mass-action kinetics: each
// reaction fires at k times the product of its reactant concentrations.
type MassAction struct {
	dim  int
	rxns []massReaction
}

var (
	_ ode.System     = (*MassAction)(nil)
	_ ode.Jacobian   = (*MassAction)(nil)
	_ ode.Autonomous = (*MassAction)(nil)
)

// System binds rate constants from params to the network reactions.
func (n *Network) System(params ParameterSet) (*MassAction, error) {
	ma := &MassAction{dim: len(n.Species), rxns: make([]massReaction, 0, len(n.Reactions))}
	for _, r := range n.Reactions {
		k, ok := params[r.Rate]
		if !ok {
			return nil, fmt.Errorf("reaction %s: %w: %s", r.Rule, ErrUnknownParameter, r.Rate)
		}
		change := make(map[int]float64)
		for _, i := range r.Reactants {
			change[i]--
		}
		for _, i := range r.Products {
			change[i]++
		}
		mr := massReaction{k: k, reactants: r.Reactants}
		for i, c := range change {
			if c != 0 {
				mr.net = append(mr.net, stoich{species: i, coef: c})
			}
		}
		sort.Slice(mr.net, func(a, b int) bool { return mr.net[a].species < mr.net[b].species })
		ma.rxns = append(ma.rxns, mr)
	}
	return ma, nil
}

func (m *MassAction) Dim() int         { return m.dim }
func (m *MassAction) Autonomous() bool { return true }
func (m *MassAction) NumReactions() int {
	return len(m.rxns)
}

func (m *MassAction) rate(r *massReaction, x ode.State) float64 {
	v := r.k
	for _, i := range r.reactants {
		v *= x[i]
	}
	return v
}

func (m *MassAction) Derive(x ode.State, t float64) ode.State {
	dx := make(ode.State, m.dim)
	for j := range m.rxns {
		r := &m.rxns[j]
		v := m.rate(r, x)
		for _, s := range r.net {
			dx[s.species] += s.coef * v
		}
	}
	return dx
}

func (m *MassAction) Jacobian(x ode.State, t float64, dst *mat.Dense) {
	dst.Zero()
	for j := range m.rxns {
		r := &m.rxns[j]
		for p, ip := range r.reactants {
			d := r.k
			for q, iq := range r.reactants {
				if q != p {
					d *= x[iq]
				}
			}
			for _, s := range r.net {
				dst.Set(s.species, ip, dst.At(s.species, ip)+s.coef*d)
			}
		}
	}
}

// Propensities writes the rate of every reaction at x into dst.
func (m *MassAction) Propensities(x ode.State, dst []float64) {
	for j := range m.rxns {
		dst[j] = m.rate(&m.rxns[j], x)
	}
}

// Stoichiometry returns the net change of reaction j as parallel slices.
func (m *MassAction) Stoichiometry(j int) (species []int, coef []float64) {
	for _, s := range m.rxns[j].net {
		species = append(species, s.species)
		coef = append(coef, s.coef)
	}
	return species, coef
}
