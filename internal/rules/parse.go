package rules

import (
	"fmt"
	"strconv"
	"strings"
)

type BondKind int

const (
	// BondFree is a bare site: it must be unbound.
	BondFree BondKind = iota
	// BondAny is "!?": bound or not.
	BondAny
	// BondWild is "!+": bound to something.
	BondWild
	// BondLabel is "!n": bound to the other site carrying label n.
	BondLabel
)

type SitePattern struct {
	Site  string
	State string
	Bond  BondKind
	Label int
}

func (s SitePattern) String() string {
	var b strings.Builder
	b.WriteString(s.Site)
	if s.State != "" {
		b.WriteString("~" + s.State)
	}
	switch s.Bond {
	case BondAny:
		b.WriteString("!?")
	case BondWild:
		b.WriteString("!+")
	case BondLabel:
		b.WriteString("!" + strconv.Itoa(s.Label))
	}
	return b.String()
}

type MonomerPattern struct {
	Name  string
	Sites []SitePattern
}

func (m MonomerPattern) Site(name string) (SitePattern, bool) {
	for _, s := range m.Sites {
		if s.Site == name {
			return s, true
		}
	}
	return SitePattern{}, false
}

func (m MonomerPattern) String() string {
	parts := make([]string, len(m.Sites))
	for i, s := range m.Sites {
		parts[i] = s.String()
	}
	return m.Name + "(" + strings.Join(parts, ",") + ")"
}

type ComplexPattern struct {
	Monomers []MonomerPattern
}

func (c ComplexPattern) Monomer(name string) (MonomerPattern, bool) {
	for _, m := range c.Monomers {
		if m.Name == name {
			return m, true
		}
	}
	return MonomerPattern{}, false
}

func (c ComplexPattern) String() string {
	parts := make([]string, len(c.Monomers))
	for i, m := range c.Monomers {
		parts[i] = m.String()
	}
	return strings.Join(parts, ".")
}

// ParseRule splits a rule expression into reactant and product patterns.
func ParseRule(expr string) (reactants, products []ComplexPattern, reversible bool, err error) {
	var lhs, rhs string
	if i := strings.Index(expr, "<->"); i >= 0 {
		lhs, rhs, reversible = expr[:i], expr[i+3:], true
	} else if i := strings.Index(expr, "->"); i >= 0 {
		lhs, rhs = expr[:i], expr[i+2:]
	} else {
		return nil, nil, false, fmt.Errorf("%w: no arrow in %q", ErrParse, expr)
	}
	if strings.Contains(rhs, "->") {
		return nil, nil, false, fmt.Errorf("%w: more than one arrow in %q", ErrParse, expr)
	}

	if reactants, err = parseSide(lhs); err != nil {
		return nil, nil, false, err
	}
	if products, err = parseSide(rhs); err != nil {
		return nil, nil, false, err
	}
	if len(reactants) == 0 && len(products) == 0 {
		return nil, nil, false, fmt.Errorf("%w: empty rule %q", ErrParse, expr)
	}
	if len(reactants) > 2 || (reversible && len(products) > 2) {
		return nil, nil, false, fmt.Errorf("%w: at most two reactants supported in %q", ErrParse, expr)
	}
	return reactants, products, reversible, nil
}

func parseSide(side string) ([]ComplexPattern, error) {
	side = strings.TrimSpace(side)
	if side == "0" {
		return nil, nil
	}
	if side == "" {
		return nil, fmt.Errorf("%w: empty rule side", ErrParse)
	}
	terms, err := splitTop(side, '+')
	if err != nil {
		return nil, err
	}
	out := make([]ComplexPattern, 0, len(terms))
	for _, term := range terms {
		cp, err := ParseComplex(term)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// ParseComplex parses "A(x~u,b!1).B(a!1)".
func ParseComplex(text string) (ComplexPattern, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ComplexPattern{}, fmt.Errorf("%w: empty pattern", ErrParse)
	}
	parts, err := splitTop(text, '.')
	if err != nil {
		return ComplexPattern{}, err
	}
	cp := ComplexPattern{Monomers: make([]MonomerPattern, 0, len(parts))}
	for _, p := range parts {
		mp, err := parseMonomer(p)
		if err != nil {
			return ComplexPattern{}, err
		}
		cp.Monomers = append(cp.Monomers, mp)
	}
	return cp, nil
}

func splitTop(s string, sep byte) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced ')' in %q", ErrParse, s)
			}
		case sep:
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced '(' in %q", ErrParse, s)
	}
	out = append(out, strings.TrimSpace(s[start:]))
	for _, part := range out {
		if part == "" {
			return nil, fmt.Errorf("%w: empty term in %q", ErrParse, s)
		}
	}
	return out, nil
}

func parseMonomer(text string) (MonomerPattern, error) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		if !validName(text) {
			return MonomerPattern{}, fmt.Errorf("%w: bad monomer name %q", ErrParse, text)
		}
		return MonomerPattern{Name: text}, nil
	}
	if !strings.HasSuffix(text, ")") {
		return MonomerPattern{}, fmt.Errorf("%w: missing ')' in %q", ErrParse, text)
	}
	name := strings.TrimSpace(text[:open])
	if !validName(name) {
		return MonomerPattern{}, fmt.Errorf("%w: bad monomer name %q", ErrParse, name)
	}
	mp := MonomerPattern{Name: name}
	body := strings.TrimSpace(text[open+1 : len(text)-1])
	if body == "" {
		return mp, nil
	}
	for _, raw := range strings.Split(body, ",") {
		sp, err := parseSite(strings.TrimSpace(raw))
		if err != nil {
			return MonomerPattern{}, fmt.Errorf("%w in %s", err, text)
		}
		mp.Sites = append(mp.Sites, sp)
	}
	return mp, nil
}

func parseSite(text string) (SitePattern, error) {
	var sp SitePattern
	rest := text
	if i := strings.IndexByte(rest, '!'); i >= 0 {
		bond := rest[i+1:]
		rest = rest[:i]
		switch bond {
		case "+":
			sp.Bond = BondWild
		case "?":
			sp.Bond = BondAny
		default:
			n, err := strconv.Atoi(bond)
			if err != nil || n <= 0 {
				return sp, fmt.Errorf("%w: bad bond %q", ErrParse, "!"+bond)
			}
			sp.Bond = BondLabel
			sp.Label = n
		}
	}
	if i := strings.IndexByte(rest, '~'); i >= 0 {
		sp.State = rest[i+1:]
		rest = rest[:i]
		if !validName(sp.State) {
			return sp, fmt.Errorf("%w: bad state %q", ErrParse, sp.State)
		}
	}
	if !validName(rest) {
		return sp, fmt.Errorf("%w: bad site %q", ErrParse, rest)
	}
	sp.Site = rest
	return sp, nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
