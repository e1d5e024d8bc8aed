package rules

// Matches reports whether pattern cp embeds in species s. Pattern monomers map
// to the molecule of the same name.
func Matches(cp ComplexPattern, s *Species) bool {
	var labels map[int][]int
	for _, mp := range cp.Monomers {
		mol, ok := s.Molecule(mp.Name)
		if !ok {
			return false
		}
		for _, p := range mp.Sites {
			site := mol.site(p.Site)
			if site == nil {
				return false
			}
			if p.State != "" && site.State != p.State {
				return false
			}
			switch p.Bond {
			case BondFree:
				if site.Bond != 0 {
					return false
				}
			case BondWild:
				if site.Bond == 0 {
					return false
				}
			case BondLabel:
				if site.Bond == 0 {
					return false
				}
				if labels == nil {
					labels = make(map[int][]int)
				}
				labels[p.Label] = append(labels[p.Label], site.Bond)
			}
		}
	}
	// Both ends of a pattern bond must carry the same species bond id.
	for _, ids := range labels {
		if len(ids) != 2 || ids[0] != ids[1] {
			return false
		}
	}
	return true
}

// CountMatches is the number of patterns in obs that match s.
func CountMatches(obs Observable, s *Species) int {
	n := 0
	for _, cp := range obs.Patterns {
		if Matches(cp, s) {
			n++
		}
	}
	return n
}
