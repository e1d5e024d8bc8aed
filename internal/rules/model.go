// Package rules is a small rule-based modelling kernel.
//
// Models are declared with monomers, parameters, reaction rules written in a
// BNGL-style pattern language, observables and seed species. [Generate]
// expands the rules into a concrete reaction [Network], which yields a
// mass-action ODE system.
//
// Every complex holds at most one molecule per monomer type. That keeps
// pattern matching unambiguous and species canonicalisation trivial; models
// with homo-oligomers are out of scope.
package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type Monomer struct {
	Name  string
	Sites []string
	// States lists the allowed states for sites that carry one; the first
	// entry is the default.
	States map[string][]string
}

func (m *Monomer) hasSite(site string) bool {
	return slices.Contains(m.Sites, site)
}

type Parameter struct {
	Name  string
	Value float64
}

// ParameterSet maps parameter names to values.
type ParameterSet map[string]float64

func (p ParameterSet) Clone() ParameterSet {
	c := make(ParameterSet, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

type Rule struct {
	Name      string
	Text      string
	Reactants []ComplexPattern
	Products  []ComplexPattern
	Rate      string
	// ReverseRate is set for reversible rules.
	ReverseRate string
}

func (r Rule) Reversible() bool { return r.ReverseRate != "" }

type Observable struct {
	Name     string
	Patterns []ComplexPattern
}

type Initial struct {
	Species ComplexPattern
	Param   string
}

type Model struct {
	Name        string
	Monomers    []*Monomer
	Parameters  []Parameter
	Rules       []Rule
	Observables []Observable
	Initials    []Initial

	monomers map[string]*Monomer
	params   map[string]int
}

func NewModel(name string) *Model {
	return &Model{
		Name:     name,
		monomers: make(map[string]*Monomer),
		params:   make(map[string]int),
	}
}

func (m *Model) Monomer(name string) (*Monomer, bool) {
	mon, ok := m.monomers[name]
	return mon, ok
}

func (m *Model) AddMonomer(name string, sites []string, states map[string][]string) error {
	if name == "" {
		return fmt.Errorf("%w: empty monomer name", ErrParse)
	}
	if _, ok := m.monomers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMonomer, name)
	}
	seen := make(map[string]bool, len(sites))
	for _, s := range sites {
		if seen[s] {
			return fmt.Errorf("%w: site %s repeated on %s", ErrDuplicateName, s, name)
		}
		seen[s] = true
	}
	for site, values := range states {
		if !seen[site] {
			return fmt.Errorf("%w: %s(%s)", ErrUnknownSite, name, site)
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: %s(%s) has no states", ErrUnknownState, name, site)
		}
	}
	mon := &Monomer{Name: name, Sites: slices.Clone(sites), States: states}
	m.Monomers = append(m.Monomers, mon)
	m.monomers[name] = mon
	return nil
}

func (m *Model) AddParameter(name string, value float64) error {
	if _, ok := m.params[name]; ok {
		return fmt.Errorf("%w: parameter %s", ErrDuplicateName, name)
	}
	m.params[name] = len(m.Parameters)
	m.Parameters = append(m.Parameters, Parameter{Name: name, Value: value})
	return nil
}

func (m *Model) HasParameter(name string) bool {
	_, ok := m.params[name]
	return ok
}

// SetParameter changes the default value of a declared parameter.
func (m *Model) SetParameter(name string, value float64) error {
	i, ok := m.params[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	m.Parameters[i].Value = value
	return nil
}

// Defaults returns the declared parameter values.
func (m *Model) Defaults() ParameterSet {
	ps := make(ParameterSet, len(m.Parameters))
	for _, p := range m.Parameters {
		ps[p.Name] = p.Value
	}
	return ps
}

// AddRule parses expr ("A(x~u) + B() -> A(x~p) + B()") and validates it. A
// reversible rule ("<->") needs reverseRate.
func (m *Model) AddRule(name, expr, rate, reverseRate string) error {
	for _, r := range m.Rules {
		if r.Name == name {
			return fmt.Errorf("%w: rule %s", ErrDuplicateName, name)
		}
	}
	reactants, products, reversible, err := ParseRule(expr)
	if err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	if reversible && reverseRate == "" {
		return fmt.Errorf("rule %s: %w: reversible rule needs a reverse rate", name, ErrParse)
	}
	if !reversible && reverseRate != "" {
		return fmt.Errorf("rule %s: %w: reverse rate on irreversible rule", name, ErrParse)
	}
	for _, p := range []string{rate, reverseRate} {
		if p != "" && !m.HasParameter(p) {
			return fmt.Errorf("rule %s: %w: %s", name, ErrUnknownParameter, p)
		}
	}
	if err := m.validateSide(reactants, false, nil); err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	if err := m.validateSide(products, true, reactants); err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	if reversible {
		if err := m.validateSide(reactants, true, products); err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}
	}

	m.Rules = append(m.Rules, Rule{
		Name:        name,
		Text:        expr,
		Reactants:   reactants,
		Products:    products,
		Rate:        rate,
		ReverseRate: reverseRate,
	})
	return nil
}

func (m *Model) AddObservable(name string, patterns ...string) error {
	for _, o := range m.Observables {
		if o.Name == name {
			return fmt.Errorf("%w: observable %s", ErrDuplicateName, name)
		}
	}
	obs := Observable{Name: name}
	for _, text := range patterns {
		cp, err := ParseComplex(text)
		if err != nil {
			return fmt.Errorf("observable %s: %w", name, err)
		}
		if err := m.validatePattern(cp); err != nil {
			return fmt.Errorf("observable %s: %w", name, err)
		}
		obs.Patterns = append(obs.Patterns, cp)
	}
	m.Observables = append(m.Observables, obs)
	return nil
}

// AddInitial seeds a fully specified species whose starting amount is the
// value of param.
func (m *Model) AddInitial(species, param string) error {
	if !m.HasParameter(param) {
		return fmt.Errorf("initial %s: %w: %s", species, ErrUnknownParameter, param)
	}
	cp, err := ParseComplex(species)
	if err != nil {
		return fmt.Errorf("initial %s: %w", species, err)
	}
	if err := m.validatePattern(cp); err != nil {
		return fmt.Errorf("initial %s: %w", species, err)
	}
	if _, err := m.speciesFromPattern(cp); err != nil {
		return fmt.Errorf("initial %s: %w", species, err)
	}
	m.Initials = append(m.Initials, Initial{Species: cp, Param: param})
	return nil
}

func (m *Model) validatePattern(cp ComplexPattern) error {
	seen := make(map[string]bool)
	labels := make(map[int]int)
	for _, mp := range cp.Monomers {
		mon, ok := m.monomers[mp.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMonomer, mp.Name)
		}
		if seen[mp.Name] {
			return fmt.Errorf("%w: %s appears twice in %s", ErrDuplicateMonomer, mp.Name, cp)
		}
		seen[mp.Name] = true
		sites := make(map[string]bool)
		for _, sp := range mp.Sites {
			if !mon.hasSite(sp.Site) {
				return fmt.Errorf("%w: %s(%s)", ErrUnknownSite, mp.Name, sp.Site)
			}
			if sites[sp.Site] {
				return fmt.Errorf("%w: site %s repeated in %s", ErrDuplicateName, sp.Site, mp)
			}
			sites[sp.Site] = true
			if sp.State != "" {
				allowed, ok := mon.States[sp.Site]
				if !ok || !slices.Contains(allowed, sp.State) {
					return fmt.Errorf("%w: %s(%s~%s)", ErrUnknownState, mp.Name, sp.Site, sp.State)
				}
			}
			if sp.Bond == BondLabel {
				labels[sp.Label]++
			}
		}
	}
	for label, n := range labels {
		if n != 2 {
			return fmt.Errorf("%w: bond !%d must join exactly two sites in %s", ErrParse, label, cp)
		}
	}
	return nil
}

// validateSide checks one side of a rule. For a product side, other is the
// reactant side and new molecules must not carry wildcard bonds.
func (m *Model) validateSide(side []ComplexPattern, product bool, other []ComplexPattern) error {
	seen := make(map[string]bool)
	for _, cp := range side {
		if err := m.validatePattern(cp); err != nil {
			return err
		}
		for _, mp := range cp.Monomers {
			if seen[mp.Name] {
				return fmt.Errorf("%w: %s appears twice on one side", ErrDuplicateMonomer, mp.Name)
			}
			seen[mp.Name] = true
		}
	}
	if !product {
		return nil
	}
	before := make(map[string]bool)
	for _, cp := range other {
		for _, mp := range cp.Monomers {
			before[mp.Name] = true
		}
	}
	for _, cp := range side {
		for _, mp := range cp.Monomers {
			if before[mp.Name] {
				continue
			}
			for _, sp := range mp.Sites {
				if sp.Bond == BondWild || sp.Bond == BondAny {
					return fmt.Errorf("%w: created molecule %s cannot use wildcard bonds", ErrParse, mp.Name)
				}
			}
		}
	}
	return nil
}

// expandedRules splits reversible rules into a forward and a "_rev" rule.
func (m *Model) expandedRules() []Rule {
	out := make([]Rule, 0, len(m.Rules)*2)
	for _, r := range m.Rules {
		out = append(out, Rule{Name: r.Name, Text: r.Text, Reactants: r.Reactants, Products: r.Products, Rate: r.Rate})
		if r.Reversible() {
			out = append(out, Rule{Name: r.Name + "_rev", Text: r.Text, Reactants: r.Products, Products: r.Reactants, Rate: r.ReverseRate})
		}
	}
	return out
}

// String renders the model structure. Parameter values are left out so that
// parameterisations share a fingerprint.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model %s\n", m.Name)

	mons := slices.Clone(m.Monomers)
	sort.Slice(mons, func(i, j int) bool { return mons[i].Name < mons[j].Name })
	for _, mon := range mons {
		parts := make([]string, 0, len(mon.Sites))
		for _, s := range mon.Sites {
			if st, ok := mon.States[s]; ok {
				parts = append(parts, s+"~"+strings.Join(st, "~"))
			} else {
				parts = append(parts, s)
			}
		}
		fmt.Fprintf(&b, "monomer %s(%s)\n", mon.Name, strings.Join(parts, ","))
	}
	for _, p := range m.Parameters {
		fmt.Fprintf(&b, "parameter %s\n", p.Name)
	}
	for _, r := range m.Rules {
		fmt.Fprintf(&b, "rule %s: %s %s %s\n", r.Name, r.Text, r.Rate, r.ReverseRate)
	}
	for _, o := range m.Observables {
		pats := make([]string, len(o.Patterns))
		for i, p := range o.Patterns {
			pats[i] = p.String()
		}
		fmt.Fprintf(&b, "observable %s: %s\n", o.Name, strings.Join(pats, " "))
	}
	for _, in := range m.Initials {
		fmt.Fprintf(&b, "initial %s %s\n", in.Species, in.Param)
	}
	return b.String()
}

// Fingerprint identifies the model structure.
func (m *Model) Fingerprint() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(m.String()))
}
