package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mapksim/internal/resultfile"
)

func testFile() *resultfile.File {
	f := &resultfile.File{
		Kind:            resultfile.KindDeterministic,
		CellLine:        "wildtype",
		MEKi:            0.5,
		EGF:             1,
		Fingerprint:     "cafef00d",
		Time:            []float64{0, 60, 120, 180},
		SpeciesNames:    []string{"A()", "B()"},
		ObservableNames: []string{"ERK_P", "AP1_Active"},
	}
	for i, t := range f.Time {
		f.Trajectories = append(f.Trajectories, []float64{t, 10 - float64(i)})
		f.Observables = append(f.Observables, []float64{float64(i), 2 * float64(i)})
	}
	return f
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary("results/sim.h5", testFile())
	for _, want := range []string{
		"results/sim.h5",
		"time, trajectories, observables",
		"(4,)",
		"(4, 2)",
		"[0 10]",
		"wildtype",
		"meki_concentration",
		"cafef00d",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryPopulation(t *testing.T) {
	f := testFile()
	f.Kind = resultfile.KindPopulation
	f.CellTrajectories = [][][]float64{f.Trajectories, f.Trajectories, f.Trajectories}
	f.Trajectories, f.Observables = nil, nil
	out := RenderSummary("pop.h5", f)
	if !strings.Contains(out, "(3, 4, 2)") {
		t.Errorf("summary missing population shape:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"id", "cell line"}, [][]string{{"abc", "mutant"}, {"d", "wildtype", "extra"}})
	if !strings.Contains(out, "mutant") || strings.Contains(out, "extra") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserNavigation(t *testing.T) {
	b, err := NewBrowser(testFile())
	if err != nil {
		t.Fatal(err)
	}

	if name, _ := b.Current(); name != "ERK_P" {
		t.Fatalf("initial series = %q", name)
	}
	b.Update(key("right"))
	if name, series := b.Current(); name != "AP1_Active" || series[3] != 6 {
		t.Errorf("after right: %q %v", name, series)
	}
	b.Update(key("l"))
	if name, _ := b.Current(); name != "ERK_P" {
		t.Errorf("cursor did not wrap: %q", name)
	}
	b.Update(key("h"))
	if name, _ := b.Current(); name != "AP1_Active" {
		t.Errorf("cursor did not wrap backwards: %q", name)
	}

	b.Update(key("tab"))
	if name, series := b.Current(); name != "A()" || series[1] != 60 {
		t.Errorf("species mode: %q %v", name, series)
	}
	b.Update(key("tab"))
	if name, _ := b.Current(); name != "AP1_Active" {
		t.Errorf("observable cursor not kept: %q", name)
	}

	if _, cmd := b.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
	if !strings.Contains(b.View(), "AP1_Active") {
		t.Error("view missing current series")
	}
}

func TestBrowserPopulationMean(t *testing.T) {
	f := testFile()
	f.Kind = resultfile.KindPopulation
	f.CellTrajectories = [][][]float64{
		{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
		{{2, 2}, {2, 2}, {2, 2}, {2, 2}},
	}
	f.CellObservables = [][][]float64{
		{{1, 1}, {1, 1}, {1, 1}, {1, 1}},
		{{3, 3}, {3, 3}, {3, 3}, {3, 3}},
	}
	b, err := NewBrowser(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, series := b.Current(); series[0] != 2 {
		t.Errorf("population mean = %v", series)
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if out := SparklineChart([]float64{1, 2, 3, 4}, 4); !strings.Contains(out, "█") {
		t.Errorf("sparkline missing peak: %q", out)
	}
}
