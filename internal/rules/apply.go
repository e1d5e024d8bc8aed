package rules

import (
	"sort"
)

type siteRef struct {
	mol  string
	site string
}

type bondKey struct {
	a, b siteRef
}

func newBondKey(a, b siteRef) bondKey {
	if b.mol < a.mol || (b.mol == a.mol && b.site < a.site) {
		a, b = b, a
	}
	return bondKey{a: a, b: b}
}

// labelPairs collects the bonds named by labels on one rule side.
func labelPairs(side []ComplexPattern) map[bondKey]bool {
	out := make(map[bondKey]bool)
	for _, cp := range side {
		ends := make(map[int][]siteRef)
		for _, mp := range cp.Monomers {
			for _, sp := range mp.Sites {
				if sp.Bond == BondLabel {
					ends[sp.Label] = append(ends[sp.Label], siteRef{mol: mp.Name, site: sp.Site})
				}
			}
		}
		for _, e := range ends {
			if len(e) == 2 {
				out[newBondKey(e[0], e[1])] = true
			}
		}
	}
	return out
}

func sideMonomers(side []ComplexPattern) map[string]MonomerPattern {
	out := make(map[string]MonomerPattern)
	for _, cp := range side {
		for _, mp := range cp.Monomers {
			out[mp.Name] = mp
		}
	}
	return out
}

// mixture is the molecule graph of all reactant species of one reaction.
type mixture struct {
	mols     []Molecule
	alive    []bool
	origin   []int
	nextBond int
}

func newMixture(reactants []*Species) *mixture {
	x := &mixture{}
	for ri, s := range reactants {
		offset := x.nextBond
		maxID := 0
		for _, m := range s.Molecules {
			c := Molecule{Name: m.Name, Sites: make([]Site, len(m.Sites))}
			copy(c.Sites, m.Sites)
			for j := range c.Sites {
				if c.Sites[j].Bond != 0 {
					if c.Sites[j].Bond > maxID {
						maxID = c.Sites[j].Bond
					}
					c.Sites[j].Bond += offset
				}
			}
			x.mols = append(x.mols, c)
			x.alive = append(x.alive, true)
			x.origin = append(x.origin, ri)
		}
		x.nextBond = offset + maxID
	}
	return x
}

func (x *mixture) lookup(origin int, name string) int {
	for i, m := range x.mols {
		if x.origin[i] == origin && m.Name == name {
			return i
		}
	}
	return -1
}

func (x *mixture) add(m Molecule) int {
	x.mols = append(x.mols, m)
	x.alive = append(x.alive, true)
	x.origin = append(x.origin, -1)
	return len(x.mols) - 1
}

func (x *mixture) unbind(mol int, site string) {
	s := x.mols[mol].site(site)
	if s == nil || s.Bond == 0 {
		return
	}
	id := s.Bond
	for i := range x.mols {
		for j := range x.mols[i].Sites {
			if x.mols[i].Sites[j].Bond == id {
				x.mols[i].Sites[j].Bond = 0
			}
		}
	}
}

func (x *mixture) remove(mol int) {
	for _, s := range x.mols[mol].Sites {
		if s.Bond != 0 {
			x.unbind(mol, s.Name)
		}
	}
	x.alive[mol] = false
}

func (x *mixture) bind(a, b int, siteA, siteB string) bool {
	sa, sb := x.mols[a].site(siteA), x.mols[b].site(siteB)
	if sa == nil || sb == nil || sa.Bond != 0 || sb.Bond != 0 {
		return false
	}
	x.nextBond++
	sa.Bond = x.nextBond
	sb.Bond = x.nextBond
	return true
}

// components groups molecules connected by bonds.
func components(mols []Molecule) [][]int {
	parent := make([]int, len(mols))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	first := make(map[int]int)
	for i, m := range mols {
		for _, s := range m.Sites {
			if s.Bond == 0 {
				continue
			}
			if j, ok := first[s.Bond]; ok {
				parent[find(i)] = find(j)
			} else {
				first[s.Bond] = i
			}
		}
	}
	groups := make(map[int][]int)
	var roots []int
	for i := range mols {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		out = append(out, groups[r])
	}
	return out
}

// apply fires rule r on reactants, which must match r.Reactants in order. It
// reports false when the products would hold two molecules of one type or a
// new bond lands on an occupied site.
func (m *Model) apply(r Rule, reactants []*Species) ([]*Species, bool) {
	x := newMixture(reactants)
	idx := make(map[string]int)
	for ri, cp := range r.Reactants {
		for _, mp := range cp.Monomers {
			i := x.lookup(ri, mp.Name)
			if i < 0 {
				return nil, false
			}
			idx[mp.Name] = i
		}
	}

	before := sideMonomers(r.Reactants)
	after := sideMonomers(r.Products)
	rb := labelPairs(r.Reactants)
	pb := labelPairs(r.Products)

	// explicitly changed in the products: site present and not keeping this bond
	changed := func(ref siteRef) bool {
		mp, ok := after[ref.mol]
		if !ok {
			return false
		}
		sp, ok := mp.Site(ref.site)
		return ok && sp.Bond != BondAny
	}
	for k := range rb {
		if !pb[k] && (changed(k.a) || changed(k.b)) {
			x.unbind(idx[k.a.mol], k.a.site)
		}
	}
	for name, mp := range before {
		out, ok := after[name]
		if !ok {
			continue
		}
		for _, sp := range mp.Sites {
			if sp.Bond != BondWild {
				continue
			}
			if op, ok := out.Site(sp.Site); ok && op.Bond == BondFree {
				x.unbind(idx[name], sp.Site)
			}
		}
	}

	for name, mp := range after {
		i, ok := idx[name]
		if !ok {
			continue
		}
		for _, sp := range mp.Sites {
			if sp.State == "" {
				continue
			}
			if s := x.mols[i].site(sp.Site); s != nil {
				s.State = sp.State
			}
		}
	}

	for ri, cp := range r.Reactants {
		gone := true
		for _, mp := range cp.Monomers {
			if _, ok := after[mp.Name]; ok {
				gone = false
				break
			}
		}
		if gone {
			for i := range x.mols {
				if x.origin[i] == ri {
					x.alive[i] = false
				}
			}
			continue
		}
		for _, mp := range cp.Monomers {
			if _, ok := after[mp.Name]; !ok {
				x.remove(idx[mp.Name])
			}
		}
	}

	names := make([]string, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := idx[name]; ok {
			continue
		}
		mon := m.monomers[name]
		idx[name] = x.add(newMolecule(mon, after[name]))
	}

	for k := range pb {
		if rb[k] {
			continue
		}
		if !x.bind(idx[k.a.mol], idx[k.b.mol], k.a.site, k.b.site) {
			return nil, false
		}
	}

	var live []Molecule
	for i, mol := range x.mols {
		if x.alive[i] {
			live = append(live, mol)
		}
	}
	var products []*Species
	for _, comp := range components(live) {
		sp := &Species{Molecules: make([]Molecule, 0, len(comp))}
		seen := make(map[string]bool, len(comp))
		for _, i := range comp {
			if seen[live[i].Name] {
				return nil, false
			}
			seen[live[i].Name] = true
			sp.Molecules = append(sp.Molecules, live[i])
		}
		sp.canonicalize()
		products = append(products, sp)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].String() < products[j].String() })
	return products, true
}
