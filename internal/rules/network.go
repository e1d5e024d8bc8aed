package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxSpecies bounds network generation.
const DefaultMaxSpecies = 5000

type Reaction struct {
	Rule      string `json:"rule"`
	Rate      string `json:"rate"`
	Reactants []int  `json:"reactants"`
	Products  []int  `json:"products"`
}

type ObservableWeights struct {
	Name    string    `json:"name"`
	Weights []float64 `json:"weights"`
}

type SeedSpecies struct {
	Species int    `json:"species"`
	Param   string `json:"param"`
}

// Network is the concrete reaction network generated from a model.
type Network struct {
	Fingerprint string              `json:"fingerprint"`
	Species     []string            `json:"species"`
	Reactions   []Reaction          `json:"reactions"`
	Observables []ObservableWeights `json:"observables"`
	Seeds       []SeedSpecies       `json:"seeds"`
}

type GenerateOptions struct {
	MaxSpecies int
}

type generator struct {
	model   *Model
	rules   []Rule
	species []*Species
	index   map[string]int
	rxns    []Reaction
	seen    map[string]bool
	max     int
}

func (g *generator) intern(s *Species) (int, error) {
	key := s.String()
	if i, ok := g.index[key]; ok {
		return i, nil
	}
	if len(g.species) >= g.max {
		return 0, fmt.Errorf("%w: more than %d species", ErrNetworkTooLarge, g.max)
	}
	g.index[key] = len(g.species)
	g.species = append(g.species, s)
	return len(g.species) - 1, nil
}

func (g *generator) fire(r Rule, reactants []int) error {
	in := make([]*Species, len(reactants))
	for i, idx := range reactants {
		in[i] = g.species[idx]
	}
	out, ok := g.model.apply(r, in)
	if !ok {
		return nil
	}

	products := make([]int, 0, len(out))
	for _, s := range out {
		i, err := g.intern(s)
		if err != nil {
			return err
		}
		products = append(products, i)
	}

	lhs := append([]int(nil), reactants...)
	sort.Ints(lhs)
	rhs := append([]int(nil), products...)
	sort.Ints(rhs)
	if slices.Equal(lhs, rhs) {
		return nil
	}
	key := r.Name + "|" + joinInts(reactants) + "|" + joinInts(rhs)
	if g.seen[key] {
		return nil
	}
	g.seen[key] = true
	g.rxns = append(g.rxns, Reaction{Rule: r.Name, Rate: r.Rate, Reactants: reactants, Products: rhs})
	return nil
}

// Generate expands the model rules from its seed species until no new species
// appear.
func Generate(ctx context.Context, m *Model, opts GenerateOptions) (*Network, error) {
	if opts.MaxSpecies <= 0 {
		opts.MaxSpecies = DefaultMaxSpecies
	}
	g := &generator{
		model: m,
		rules: m.expandedRules(),
		index: make(map[string]int),
		seen:  make(map[string]bool),
		max:   opts.MaxSpecies,
	}

	net := &Network{Fingerprint: m.Fingerprint()}
	for _, in := range m.Initials {
		s, err := m.speciesFromPattern(in.Species)
		if err != nil {
			return nil, err
		}
		i, err := g.intern(s)
		if err != nil {
			return nil, err
		}
		net.Seeds = append(net.Seeds, SeedSpecies{Species: i, Param: in.Param})
	}

	for _, r := range g.rules {
		if len(r.Reactants) == 0 {
			if err := g.fire(r, nil); err != nil {
				return nil, err
			}
		}
	}

	for next := 0; next < len(g.species); next++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := g.species[next]
		for _, r := range g.rules {
			switch len(r.Reactants) {
			case 1:
				if Matches(r.Reactants[0], s) {
					if err := g.fire(r, []int{next}); err != nil {
						return nil, err
					}
				}
			case 2:
				// pair the new species with every processed one, both ways round
				for other := 0; other <= next; other++ {
					if Matches(r.Reactants[0], s) && Matches(r.Reactants[1], g.species[other]) {
						if err := g.fire(r, []int{next, other}); err != nil {
							return nil, err
						}
					}
					if other != next && Matches(r.Reactants[0], g.species[other]) && Matches(r.Reactants[1], s) {
						if err := g.fire(r, []int{other, next}); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}

	net.Species = make([]string, len(g.species))
	for i, s := range g.species {
		net.Species[i] = s.String()
	}
	net.Reactions = g.rxns
	for _, obs := range m.Observables {
		w := ObservableWeights{Name: obs.Name, Weights: make([]float64, len(g.species))}
		for i, s := range g.species {
			w.Weights[i] = float64(CountMatches(obs, s))
		}
		net.Observables = append(net.Observables, w)
	}
	return net, nil
}

func (n *Network) ObservableNames() []string {
	names := make([]string, len(n.Observables))
	for i, o := range n.Observables {
		names[i] = o.Name
	}
	return names
}

// Observable returns the weights for name.
func (n *Network) Observable(name string) ([]float64, bool) {
	for _, o := range n.Observables {
		if o.Name == name {
			return o.Weights, true
		}
	}
	return nil, false
}

// ObservableValues evaluates every observable on state x.
func (n *Network) ObservableValues(x []float64) []float64 {
	out := make([]float64, len(n.Observables))
	for i, o := range n.Observables {
		sum := 0.0
		for j, w := range o.Weights {
			if w != 0 && j < len(x) {
				sum += w * x[j]
			}
		}
		out[i] = sum
	}
	return out
}

// InitialState places each seed parameter on its species.
func (n *Network) InitialState(params ParameterSet) ([]float64, error) {
	x := make([]float64, len(n.Species))
	for _, s := range n.Seeds {
		v, ok := params[s.Param]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, s.Param)
		}
		x[s.Species] += v
	}
	return x, nil
}

// SpeciesIndex finds a species by its canonical string.
func (n *Network) SpeciesIndex(canonical string) (int, bool) {
	for i, s := range n.Species {
		if s == canonical {
			return i, true
		}
	}
	return 0, false
}

func (n *Network) MarshalBinary() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Network) UnmarshalBinary(data []byte) error {
	type plain Network
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode network: %w", err)
	}
	for _, r := range p.Reactions {
		for _, i := range append(append([]int(nil), r.Reactants...), r.Products...) {
			if i < 0 || i >= len(p.Species) {
				return fmt.Errorf("decode network: reaction %s references species %d of %d", r.Rule, i, len(p.Species))
			}
		}
	}
	*n = Network(p)
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
