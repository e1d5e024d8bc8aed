package models

// declareMAPKRules covers receptor activation down to ERK phosphorylation.
func declareMAPKRules(b *builder) {
	b.reversible("EGF_binds_EGFR", "EGF(r) + EGFR(l) <-> EGF(r!1).EGFR(l!1)", "kf_egf", "kr_egf")
	b.rule("EGFR_activation", "EGF(r!1).EGFR(l!1,state~inactive) -> EGF(r!1).EGFR(l!1,state~active)", "k_egfr_act")
	b.rule("EGFR_deactivation", "EGFR(state~active) -> EGFR(state~inactive)", "k_egfr_deact")

	b.rule("SOS_recruitment", "EGFR(state~active,sos) + SOS(rtk,state~u) -> EGFR(state~active,sos!1).SOS(rtk!1,state~u)", "kf_sos")
	b.rule("SOS_dissociation", "EGFR(sos!1).SOS(rtk!1) -> EGFR(sos) + SOS(rtk)", "kr_sos")

	b.rule("RAS_activation", "SOS(rtk!+,state~u) + RAS(state~gdp) -> SOS(rtk!+,state~u) + RAS(state~gtp)", "k_ras_act")
	b.rule("RAS_hydrolysis", "RAS(raf,state~gtp) -> RAS(raf,state~gdp)", "k_ras_gap")

	b.reversible("RAS_binds_BRAF", "RAS(state~gtp,raf) + BRAF(ras) <-> RAS(state~gtp,raf!1).BRAF(ras!1)", "kf_ras_raf", "kr_ras_raf")
	b.reversible("RAS_binds_CRAF", "RAS(state~gtp,raf) + CRAF(ras) <-> RAS(state~gtp,raf!1).CRAF(ras!1)", "kf_ras_raf", "kr_ras_raf")
	b.rule("BRAF_activation", "RAS(raf!1).BRAF(ras!1,state~inactive) -> RAS(raf!1).BRAF(ras!1,state~active)", "k_raf_act")
	b.rule("CRAF_activation", "RAS(raf!1).CRAF(ras!1,state~inactive) -> RAS(raf!1).CRAF(ras!1,state~active)", "k_raf_act")
	// V600E BRAF stays active.
	b.rule("BRAF_deactivation", "BRAF(mut~wt,state~active) -> BRAF(mut~wt,state~inactive)", "k_raf_deact")
	b.rule("CRAF_deactivation", "CRAF(state~active) -> CRAF(state~inactive)", "k_raf_deact")

	b.reversible("RAFi_binds_BRAF", "RAFi(t) + BRAF(drug) <-> RAFi(t!1).BRAF(drug!1)", "kf_rafi", "kr_rafi")
	b.reversible("RAFi_binds_CRAF", "RAFi(t) + CRAF(drug) <-> RAFi(t!1).CRAF(drug!1)", "kf_rafi", "kr_rafi")
	b.reversible("MEKi_binds_MEK", "MEKi(t) + MEK(drug) <-> MEKi(t!1).MEK(drug!1)", "kf_meki", "kr_meki")

	b.rule("BRAF_phosphorylates_MEK", "BRAF(state~active,drug) + MEK(state~u) -> BRAF(state~active,drug) + MEK(state~p)", "k_mek_phos_braf")
	b.rule("BRAF_phosphorylates_pMEK", "BRAF(state~active,drug) + MEK(state~p) -> BRAF(state~active,drug) + MEK(state~pp)", "k_mek_phos_braf")
	b.rule("CRAF_phosphorylates_MEK", "CRAF(state~active,drug) + MEK(state~u) -> CRAF(state~active,drug) + MEK(state~p)", "k_mek_phos_craf")
	b.rule("CRAF_phosphorylates_pMEK", "CRAF(state~active,drug) + MEK(state~p) -> CRAF(state~active,drug) + MEK(state~pp)", "k_mek_phos_craf")
	b.rule("MEK_dephosphorylation_pp", "MEK(state~pp) -> MEK(state~p)", "k_mek_dephos")
	b.rule("MEK_dephosphorylation_p", "MEK(state~p) -> MEK(state~u)", "k_mek_dephos")

	// ERK is phosphorylated one site at a time through an explicit
	// enzyme-substrate complex with drug-free ppMEK.
	b.rule("MEK_binds_ERK", "MEK(state~pp,drug,erk) + ERK(mek,state~u) -> MEK(state~pp,drug,erk!1).ERK(mek!1,state~u)", "kf_mek_erk")
	b.rule("MEK_binds_pERK", "MEK(state~pp,drug,erk) + ERK(mek,state~p) -> MEK(state~pp,drug,erk!1).ERK(mek!1,state~p)", "kf_mek_erk")
	b.rule("MEK_ERK_dissociation", "MEK(erk!1).ERK(mek!1) -> MEK(erk) + ERK(mek)", "kr_mek_erk")
	b.rule("ERK_phosphorylation", "MEK(state~pp,drug,erk!1).ERK(mek!1,state~u) -> MEK(state~pp,drug,erk) + ERK(mek,state~p)", "kcat_erk")
	b.rule("pERK_phosphorylation", "MEK(state~pp,drug,erk!1).ERK(mek!1,state~p) -> MEK(state~pp,drug,erk) + ERK(mek,state~pp)", "kcat_erk")

	b.rule("ERK_dephosphorylation_pp", "ERK(mek,state~pp) -> ERK(mek,state~p)", "k_erk_dephos")
	b.rule("ERK_dephosphorylation_p", "ERK(mek,state~p) -> ERK(mek,state~u)", "k_erk_dephos")
}

// declareFeedbackRules adds the negative feedback loops that make ERK
// activity pulse: DUSP induction, SOS phosphorylation and receptor
// desensitisation.
func declareFeedbackRules(b *builder) {
	b.rule("DUSP_basal_synthesis", "0 -> DUSP()", "k_dusp_basal")
	b.rule("DUSP_synthesis", "ERK(state~pp) -> ERK(state~pp) + DUSP()", "k_dusp_syn")
	b.rule("DUSP_degradation", "DUSP() -> 0", "k_dusp_deg")
	b.rule("DUSP_dephosphorylates_ppERK", "DUSP() + ERK(mek,state~pp) -> DUSP() + ERK(mek,state~p)", "kcat_dusp")
	b.rule("DUSP_dephosphorylates_pERK", "DUSP() + ERK(mek,state~p) -> DUSP() + ERK(mek,state~u)", "kcat_dusp")

	b.rule("ERK_phosphorylates_SOS", "ERK(state~pp) + SOS(state~u) -> ERK(state~pp) + SOS(state~p)", "k_sos_fb")
	b.rule("SOS_dephosphorylation", "SOS(state~p) -> SOS(state~u)", "k_sos_dephos")
	b.rule("pSOS_release", "EGFR(sos!1).SOS(rtk!1,state~p) -> EGFR(sos) + SOS(rtk,state~p)", "k_sos_release")

	b.rule("ERK_desensitises_EGFR", "ERK(state~pp) + EGFR(state~active) -> ERK(state~pp) + EGFR(state~inactive)", "k_rtk_fb")
}

func declareAP1Rules(b *builder) {
	b.rule("FRA1_synthesis", "ERK(state~pp) -> ERK(state~pp) + FRA1(state~inactive)", "k_fra1_syn")
	b.rule("FRA1_activation", "ERK(state~pp) + FRA1(state~inactive) -> ERK(state~pp) + FRA1(state~active)", "k_fra1_act")
	b.rule("FRA1_deactivation", "FRA1(state~active) -> FRA1(state~inactive)", "k_fra1_deact")
	b.rule("FRA1_degradation", "FRA1() -> 0", "k_fra1_deg")

	b.rule("cJUN_basal_activation", "cJUN(state~inactive) -> cJUN(state~active)", "k_cjun_basal")
	b.rule("cJUN_activation", "ERK(state~pp) + cJUN(state~inactive) -> ERK(state~pp) + cJUN(state~active)", "k_cjun_act")
	b.rule("cJUN_deactivation", "cJUN(state~active) -> cJUN(state~inactive)", "k_cjun_deact")

	b.rule("JUND_activation", "FRA1(state~active) + JUND(state~inactive) -> FRA1(state~active) + JUND(state~active)", "k_jund_act")
	b.rule("JUND_deactivation", "JUND(state~active) -> JUND(state~inactive)", "k_jund_deact")
}

func declareCellStateRules(b *builder) {
	b.rule("differentiation", "cJUN(state~active) + CellState(diff_state~undiff) -> cJUN(state~active) + CellState(diff_state~diff)", "k_diff")
	b.rule("dedifferentiation", "FRA1(state~active) + CellState(diff_state~diff) -> FRA1(state~active) + CellState(diff_state~undiff)", "k_dediff")
}
