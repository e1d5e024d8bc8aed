package models

// Observable names.
const (
	ObsDiffCells        = "Diff_Cells"
	ObsAP1Active        = "AP1_Active"
	ObsDrugEffect       = "Drug_Effect"
	ObsERKP             = "ERK_P"
	ObsBRAFActive       = "BRAF_active"
	ObsCellDiff         = "Cell_diff"
	ObsMEKERKOscillator = "MEK_ERK_Oscillation"
	ObsRTKFeedback      = "RTK_Feedback"
	ObsERKActivityCycle = "ERK_Activity_Cycle"
	ObsMEKPP            = "MEK_PP"
	ObsRASGTP           = "RAS_GTP"
	ObsSOSP             = "SOS_P"
)

// TrajectoryObservables are the six readouts drawn for single cells.
var TrajectoryObservables = []string{
	ObsERKP, ObsBRAFActive, ObsAP1Active, ObsDiffCells, ObsDrugEffect, ObsERKActivityCycle,
}

// PopulationObservables are the readouts summarised across a population.
var PopulationObservables = []string{
	ObsERKP, ObsBRAFActive, ObsCellDiff, ObsDiffCells, ObsAP1Active, ObsDrugEffect,
}

// LogScaleObservables span several decades and are drawn on a log axis.
var LogScaleObservables = map[string]bool{
	ObsAP1Active:        true,
	ObsERKActivityCycle: true,
}

func declareObservables(b *builder) {
	b.observable(ObsDiffCells, "CellState(diff_state~diff)")
	b.observable(ObsAP1Active, "cJUN(state~active)", "JUND(state~active)", "FRA1(state~active)")
	b.observable(ObsDrugEffect, "RAFi(t!+)", "MEKi(t!+)")
	b.observable(ObsERKP, "ERK(state~p)")
	b.observable(ObsBRAFActive, "BRAF(state~active)")
	b.observable(ObsCellDiff, "CellState(diff_state~diff)")
	b.observable(ObsMEKERKOscillator, "MEK(state~pp,erk!1).ERK(mek!1)")
	b.observable(ObsRTKFeedback, "EGFR(state~active)")
	b.observable(ObsERKActivityCycle, "ERK(state~pp)")
	b.observable(ObsMEKPP, "MEK(state~pp)")
	b.observable(ObsRASGTP, "RAS(state~gtp)")
	b.observable(ObsSOSP, "SOS(state~p)")
}
