package config

import (
	"sort"

	"github.com/san-kum/mapksim/internal/params"
)

// Preset is a named scenario: a cell line and drug doses.
type Preset struct {
	Description string
	CellLine    string
	MEKi        float64
	EGF         float64
	RAFi        float64
}

var Presets = map[string]*Preset{
	"wt-control": {
		Description: "wildtype, no stimulation",
		CellLine:    params.Wildtype,
	},
	"wt-egf": {
		Description: "wildtype, EGF stimulation",
		CellLine:    params.Wildtype, EGF: 1,
	},
	"mut-egf": {
		Description: "BRAF V600E, EGF stimulation",
		CellLine:    params.Mutant, EGF: 1,
	},
	"mut-meki": {
		Description: "BRAF V600E, EGF with cobimetinib",
		CellLine:    params.Mutant, EGF: 1, MEKi: 1,
	},
	"mut-vemurafenib": {
		Description: "BRAF V600E, EGF with vemurafenib",
		CellLine:    params.Mutant, EGF: 1, RAFi: 1,
	},
	"mut-combo": {
		Description: "BRAF V600E, EGF with vemurafenib and cobimetinib",
		CellLine:    params.Mutant, EGF: 1, RAFi: 1, MEKi: 1,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's cell line and doses into c.
func (p *Preset) Apply(c *Config) {
	c.CellLine = p.CellLine
	c.MEKi = p.MEKi
	c.EGF = p.EGF
	c.RAFi = p.RAFi
}
