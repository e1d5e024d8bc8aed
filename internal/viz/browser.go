package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mapksim/internal/analysis"
	"github.com/san-kum/mapksim/internal/plotting"
	"github.com/san-kum/mapksim/internal/resultfile"
)

type mode int

const (
	modeObservables mode = iota
	modeSpecies
)

func (m mode) String() string {
	if m == modeSpecies {
		return "species"
	}
	return "observables"
}

// Browser steps through the series of one result file. Population files are
// shown as the mean over cells.
type Browser struct {
	file          *resultfile.File
	obs, species  [][]float64 // [time][column]
	obsNames      []string
	speciesNames  []string
	mode          mode
	cursor        [2]int
	width, height int
}

func NewBrowser(f *resultfile.File) (*Browser, error) {
	b := &Browser{file: f, width: 80, height: 24}

	b.obs, b.species = f.Observables, f.Trajectories
	if f.IsPopulation() {
		stats, err := analysis.PopulationStats(f.CellTrajectories)
		if err != nil {
			return nil, err
		}
		b.species = stats.Mean
		if len(f.CellObservables) > 0 {
			obs, err := analysis.PopulationStats(f.CellObservables)
			if err != nil {
				return nil, err
			}
			b.obs = obs.Mean
		}
	}

	b.obsNames = f.ObservableNames
	b.speciesNames = make([]string, f.Shape().Species)
	for i := range b.speciesNames {
		if i < len(f.SpeciesNames) {
			b.speciesNames[i] = f.SpeciesNames[i]
		} else {
			b.speciesNames[i] = fmt.Sprintf("x%d", i)
		}
	}
	if len(b.obsNames) == 0 || len(b.obs) == 0 {
		b.mode = modeSpecies
	}
	return b, nil
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		case "right", "l":
			b.move(1)
		case "left", "h":
			b.move(-1)
		case "tab":
			if b.mode == modeObservables {
				b.mode = modeSpecies
			} else if len(b.obsNames) > 0 && len(b.obs) > 0 {
				b.mode = modeObservables
			}
		}
	}
	return b, nil
}

func (b *Browser) names() []string {
	if b.mode == modeSpecies {
		return b.speciesNames
	}
	return b.obsNames
}

func (b *Browser) move(d int) {
	n := len(b.names())
	if n == 0 {
		return
	}
	b.cursor[b.mode] = (b.cursor[b.mode] + d + n) % n
}

// Current returns the selected series name and values.
func (b *Browser) Current() (string, []float64) {
	names := b.names()
	if len(names) == 0 {
		return "", nil
	}
	k := b.cursor[b.mode]
	rows := b.obs
	if b.mode == modeSpecies {
		rows = b.species
	}
	return names[k], analysis.Column(rows, k)
}

func (b *Browser) View() string {
	name, series := b.Current()
	names := b.names()

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(b.file.CellLine)+" cells") + "  ")
	s.WriteString(Subtle.Render(fmt.Sprintf("MEKi %g  EGF %g  RAFi %g  (%s)",
		b.file.MEKi, b.file.EGF, b.file.RAFi, b.file.Kind)) + "\n")
	s.WriteString(Separator(min(b.width, 80)) + "\n")
	s.WriteString(fmt.Sprintf("%s %s\n\n",
		Selected.Render(name),
		Subtle.Render(fmt.Sprintf("[%s %d/%d]", b.mode, b.cursor[b.mode]+1, len(names)))))

	if len(series) > 0 {
		w := max(b.width-12, 20)
		h := max(min(b.height-14, 15), 5)
		s.WriteString(Chart.Render(plotting.Series("", series, w, h)) + "\n\n")
		s.WriteString(SparklineChart(series, min(w, len(series))) + "\n\n")

		peak, at := series[0], b.file.Time[0]
		for i, v := range series {
			if v > peak {
				peak, at = v, b.file.Time[i]
			}
		}
		s.WriteString(row("Peak", fmt.Sprintf("%.4g at %.0f min", peak, at/60)) + "\n")
		s.WriteString(row("Final", fmt.Sprintf("%.4g", series[len(series)-1])) + "\n")
		if period := analysis.DominantPeriod(b.file.Time, series); period > 0 {
			s.WriteString(row("Dominant period", fmt.Sprintf("%.1f min", period/60)) + "\n")
		}
	}
	s.WriteString("\n" + KeyHint.Render("←/→ series  tab observables/species  q quit"))
	return s.String()
}

// Run starts the browser full screen.
func Run(f *resultfile.File) error {
	b, err := NewBrowser(f)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}
