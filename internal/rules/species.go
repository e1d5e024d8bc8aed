package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Site struct {
	Name  string
	State string
	// Bond is 0 when free; the two ends of a bond share the same id.
	Bond int
}

type Molecule struct {
	Name  string
	Sites []Site
}

func (m *Molecule) site(name string) *Site {
	for i := range m.Sites {
		if m.Sites[i].Name == name {
			return &m.Sites[i]
		}
	}
	return nil
}

// Species is a concrete complex. Molecules are sorted by name and each name
// occurs at most once.
type Species struct {
	Molecules []Molecule
	key       string
}

func (s *Species) Molecule(name string) (*Molecule, bool) {
	i := sort.Search(len(s.Molecules), func(i int) bool { return s.Molecules[i].Name >= name })
	if i < len(s.Molecules) && s.Molecules[i].Name == name {
		return &s.Molecules[i], true
	}
	return nil, false
}

func (s *Species) String() string {
	if s.key == "" {
		s.key = s.render()
	}
	return s.key
}

func (s *Species) render() string {
	var b strings.Builder
	for i, m := range s.Molecules {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(m.Name)
		b.WriteByte('(')
		for j, site := range m.Sites {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(site.Name)
			if site.State != "" {
				b.WriteString("~" + site.State)
			}
			if site.Bond != 0 {
				b.WriteString("!" + strconv.Itoa(site.Bond))
			}
		}
		b.WriteByte(')')
	}
	return b.String()
}

// canonicalize sorts molecules and sites by name and renumbers bonds in order
// of first appearance.
func (s *Species) canonicalize() {
	sort.Slice(s.Molecules, func(i, j int) bool { return s.Molecules[i].Name < s.Molecules[j].Name })
	renum := make(map[int]int)
	next := 1
	for i := range s.Molecules {
		sites := s.Molecules[i].Sites
		sort.Slice(sites, func(a, b int) bool { return sites[a].Name < sites[b].Name })
		for j := range sites {
			if sites[j].Bond == 0 {
				continue
			}
			id, ok := renum[sites[j].Bond]
			if !ok {
				id = next
				renum[sites[j].Bond] = id
				next++
			}
			sites[j].Bond = id
		}
	}
	s.key = ""
}

// newMolecule creates a molecule with every declared site, taking states from
// mp where given and the first declared state otherwise.
func newMolecule(mon *Monomer, mp MonomerPattern) Molecule {
	mol := Molecule{Name: mon.Name, Sites: make([]Site, len(mon.Sites))}
	for i, name := range mon.Sites {
		site := Site{Name: name}
		if states, ok := mon.States[name]; ok {
			site.State = states[0]
		}
		if sp, ok := mp.Site(name); ok && sp.State != "" {
			site.State = sp.State
		}
		mol.Sites[i] = site
	}
	return mol
}

// speciesFromPattern builds a species from a fully bonded pattern. Omitted
// sites are free and take their default state.
func (m *Model) speciesFromPattern(cp ComplexPattern) (*Species, error) {
	sp := &Species{}
	for _, mp := range cp.Monomers {
		mon, ok := m.monomers[mp.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMonomer, mp.Name)
		}
		mol := newMolecule(mon, mp)
		for _, p := range mp.Sites {
			switch p.Bond {
			case BondWild, BondAny:
				return nil, fmt.Errorf("%w: species %s must not use wildcard bonds", ErrParse, cp)
			case BondLabel:
				mol.site(p.Site).Bond = p.Label
			}
		}
		sp.Molecules = append(sp.Molecules, mol)
	}
	if comps := components(sp.Molecules); len(comps) != 1 {
		return nil, fmt.Errorf("%w: species %s is not connected", ErrParse, cp)
	}
	sp.canonicalize()
	return sp, nil
}

// Species parses a fully specified complex into its canonical species.
func (m *Model) Species(text string) (*Species, error) {
	cp, err := ParseComplex(text)
	if err != nil {
		return nil, err
	}
	if err := m.validatePattern(cp); err != nil {
		return nil, err
	}
	return m.speciesFromPattern(cp)
}
