// Package models declares the rule-based signalling models shipped with
// mapksim.
package models

import (
	"fmt"

	"github.com/san-kum/mapksim/internal/rules"
)

const Name = "RTKERK"

// Site states.
const (
	Unphosphorylated     = "u"
	Phosphorylated       = "p"
	DoublyPhosphorylated = "pp"
	Inactive             = "inactive"
	Active               = "active"
	Wildtype             = "wt"
	Mutant               = "v600e"
	Undifferentiated     = "undiff"
	Differentiated       = "diff"
)

// Parameters the pipeline sets from the command line.
const (
	ParamEGF     = "EGF_0"
	ParamMEKi    = "MEKi_0"
	ParamRAFi    = "RAFi_0"
	ParamBRAFMut = "BRAF_mut_0"
)

// Drug names used in parameter files.
const (
	DrugRAFi = "Vemurafenib"
	DrugMEKi = "Cobimetinib"
)

// builder keeps the first declaration error.
type builder struct {
	m   *rules.Model
	err error
}

func (b *builder) monomer(name string, sites []string, states map[string][]string) {
	if b.err == nil {
		b.err = b.m.AddMonomer(name, sites, states)
	}
}

func (b *builder) param(name string, value float64) {
	if b.err == nil {
		b.err = b.m.AddParameter(name, value)
	}
}

func (b *builder) rule(name, expr, rate string) {
	if b.err == nil {
		b.err = b.m.AddRule(name, expr, rate, "")
	}
}

func (b *builder) reversible(name, expr, kf, kr string) {
	if b.err == nil {
		b.err = b.m.AddRule(name, expr, kf, kr)
	}
}

func (b *builder) observable(name string, patterns ...string) {
	if b.err == nil {
		b.err = b.m.AddObservable(name, patterns...)
	}
}

func (b *builder) initial(species, param string) {
	if b.err == nil {
		b.err = b.m.AddInitial(species, param)
	}
}

// RTKERK builds the EGF/EGFR -> RAS -> RAF -> MEK -> ERK model with AP-1
// transcription factors, a two-state cell fate readout, and the RAF and MEK
// inhibitors.
func RTKERK() (*rules.Model, error) {
	b := &builder{m: rules.NewModel(Name)}

	declareMonomers(b)
	declareParameters(b)
	declareInitials(b)
	declareMAPKRules(b)
	declareFeedbackRules(b)
	declareAP1Rules(b)
	declareCellStateRules(b)
	declareObservables(b)

	if b.err != nil {
		return nil, fmt.Errorf("build %s: %w", Name, b.err)
	}
	if err := ValidateStates(b.m); err != nil {
		return nil, err
	}
	return b.m, nil
}

func declareMonomers(b *builder) {
	phos := []string{Unphosphorylated, Phosphorylated, DoublyPhosphorylated}
	onOff := []string{Inactive, Active}

	b.monomer("EGF", []string{"r"}, nil)
	b.monomer("EGFR", []string{"l", "state", "sos"}, map[string][]string{"state": onOff})
	b.monomer("SOS", []string{"rtk", "state"}, map[string][]string{"state": {Unphosphorylated, Phosphorylated}})
	b.monomer("RAS", []string{"raf", "state"}, map[string][]string{"state": {"gdp", "gtp"}})
	b.monomer("BRAF", []string{"ras", "state", "drug", "mut"}, map[string][]string{
		"state": onOff,
		"mut":   {Wildtype, Mutant},
	})
	b.monomer("CRAF", []string{"ras", "state", "drug"}, map[string][]string{"state": onOff})
	b.monomer("RAFi", []string{"t"}, nil)
	b.monomer("MEKi", []string{"t"}, nil)
	b.monomer("MEK", []string{"state", "drug", "erk"}, map[string][]string{"state": phos})
	b.monomer("ERK", []string{"state", "mek"}, map[string][]string{"state": phos})
	b.monomer("DUSP", nil, nil)
	b.monomer("cJUN", []string{"state"}, map[string][]string{"state": onOff})
	b.monomer("JUND", []string{"state"}, map[string][]string{"state": onOff})
	b.monomer("FRA1", []string{"state"}, map[string][]string{"state": onOff})
	b.monomer("CellState", []string{"diff_state"}, map[string][]string{"diff_state": {Undifferentiated, Differentiated}})
}

// DefaultParameters lists every parameter with its default value. Amounts are
// in arbitrary concentration units and rates are per second.
var DefaultParameters = []rules.Parameter{
	{Name: "EGF_0", Value: 1},
	{Name: "EGFR_0", Value: 100},
	{Name: "SOS_0", Value: 50},
	{Name: "RAS_0", Value: 100},
	{Name: "BRAF_0", Value: 50},
	{Name: "BRAF_mut_0", Value: 0},
	{Name: "CRAF_0", Value: 50},
	{Name: "RAFi_0", Value: 0},
	{Name: "MEKi_0", Value: 0},
	{Name: "MEK_0", Value: 200},
	{Name: "ERK_0", Value: 300},
	{Name: "DUSP_0", Value: 1},
	{Name: "cJUN_0", Value: 50},
	{Name: "JUND_0", Value: 50},
	{Name: "FRA1_0", Value: 1},
	{Name: "CellState_0", Value: 1},

	{Name: "kf_egf", Value: 0.01},
	{Name: "kr_egf", Value: 0.001},
	{Name: "k_egfr_act", Value: 0.1},
	{Name: "k_egfr_deact", Value: 0.01},
	{Name: "kf_sos", Value: 0.01},
	{Name: "kr_sos", Value: 0.01},
	{Name: "k_ras_act", Value: 0.001},
	{Name: "k_ras_gap", Value: 0.01},
	{Name: "kf_ras_raf", Value: 0.001},
	{Name: "kr_ras_raf", Value: 0.01},
	{Name: "k_raf_act", Value: 0.05},
	{Name: "k_raf_deact", Value: 0.01},
	{Name: "kf_rafi", Value: 0.01},
	{Name: "kr_rafi", Value: 0.001},
	{Name: "kf_meki", Value: 0.01},
	{Name: "kr_meki", Value: 0.001},
	{Name: "k_mek_phos_braf", Value: 5e-4},
	{Name: "k_mek_phos_craf", Value: 2e-4},
	{Name: "k_mek_dephos", Value: 0.01},
	{Name: "kf_mek_erk", Value: 1e-3},
	{Name: "kr_mek_erk", Value: 0.01},
	{Name: "kcat_erk", Value: 0.1},
	{Name: "k_erk_dephos", Value: 0.005},

	{Name: "k_dusp_basal", Value: 1e-4},
	{Name: "k_dusp_syn", Value: 1e-4},
	{Name: "k_dusp_deg", Value: 1e-3},
	{Name: "kcat_dusp", Value: 1e-3},
	{Name: "k_sos_fb", Value: 1e-4},
	{Name: "k_sos_dephos", Value: 0.005},
	{Name: "k_sos_release", Value: 0.05},
	{Name: "k_rtk_fb", Value: 1e-4},

	{Name: "k_fra1_syn", Value: 1e-4},
	{Name: "k_fra1_act", Value: 1e-4},
	{Name: "k_fra1_deact", Value: 1e-3},
	{Name: "k_fra1_deg", Value: 5e-4},
	{Name: "k_cjun_basal", Value: 1e-5},
	{Name: "k_cjun_act", Value: 1e-4},
	{Name: "k_cjun_deact", Value: 1e-3},
	{Name: "k_jund_act", Value: 1e-3},
	{Name: "k_jund_deact", Value: 1e-3},

	{Name: "k_diff", Value: 1e-4},
	{Name: "k_dediff", Value: 1e-3},
}

func declareParameters(b *builder) {
	for _, p := range DefaultParameters {
		b.param(p.Name, p.Value)
	}
}

func declareInitials(b *builder) {
	b.initial("EGF(r)", "EGF_0")
	b.initial("EGFR(l,state~inactive,sos)", "EGFR_0")
	b.initial("SOS(rtk,state~u)", "SOS_0")
	b.initial("RAS(raf,state~gdp)", "RAS_0")
	b.initial("BRAF(ras,state~inactive,drug,mut~wt)", "BRAF_0")
	b.initial("BRAF(ras,state~active,drug,mut~v600e)", "BRAF_mut_0")
	b.initial("CRAF(ras,state~inactive,drug)", "CRAF_0")
	b.initial("RAFi(t)", "RAFi_0")
	b.initial("MEKi(t)", "MEKi_0")
	b.initial("MEK(state~u,drug,erk)", "MEK_0")
	b.initial("ERK(state~u,mek)", "ERK_0")
	b.initial("DUSP()", "DUSP_0")
	b.initial("cJUN(state~inactive)", "cJUN_0")
	b.initial("JUND(state~inactive)", "JUND_0")
	b.initial("FRA1(state~inactive)", "FRA1_0")
	b.initial("CellState(diff_state~undiff)", "CellState_0")
}
