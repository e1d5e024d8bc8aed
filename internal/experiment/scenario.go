package experiment

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapksim/internal/config"
)

// Scenario is a scripted list of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun overrides the base request. Doses given explicitly win over
// the preset's.
type ScenarioRun struct {
	Name       string   `yaml:"name"`
	Preset     string   `yaml:"preset"`
	CellLine   string   `yaml:"cell_line"`
	MEKi       *float64 `yaml:"meki_concentration"`
	EGF        *float64 `yaml:"egf_concentration"`
	RAFi       *float64 `yaml:"rafi_concentration"`
	Integrator string   `yaml:"integrator"`
	Output     string   `yaml:"output"`
	PlotOutput string   `yaml:"plot_output"`
	// Cells > 0 runs a stochastic population instead of one deterministic cell.
	Cells int `yaml:"cells"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}
	return &scenario, nil
}

// Request applies run on top of base.
func (run ScenarioRun) Request(base Request) (Request, error) {
	req := base
	if run.Preset != "" {
		preset := config.GetPreset(run.Preset)
		if preset == nil {
			return req, fmt.Errorf("unknown preset: %s", run.Preset)
		}
		req.CellLine, req.MEKi, req.EGF, req.RAFi = preset.CellLine, preset.MEKi, preset.EGF, preset.RAFi
	}
	if run.CellLine != "" {
		req.CellLine = run.CellLine
	}
	if run.MEKi != nil {
		req.MEKi = *run.MEKi
	}
	if run.EGF != nil {
		req.EGF = *run.EGF
	}
	if run.RAFi != nil {
		req.RAFi = *run.RAFi
	}
	if run.Integrator != "" {
		req.Integrator = run.Integrator
	}
	if run.Output != "" {
		req.Output = run.Output
	}
	if run.PlotOutput != "" {
		req.PlotOutput = run.PlotOutput
	}
	return req, nil
}

// RunScenario executes the runs in order and stops at the first failure.
func (p *Pipeline) RunScenario(ctx context.Context, base Request, scenario *Scenario, pop PopulationOptions) ([]*Result, error) {
	results := make([]*Result, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		fmt.Fprintf(p.out, "Running step %d/%d: %s\n", i+1, len(scenario.Runs), name)

		req, err := run.Request(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		var res *Result
		if run.Cells > 0 {
			opts := pop
			opts.Cells = run.Cells
			res, err = p.Population(ctx, req, opts)
		} else {
			res, err = p.Run(ctx, req)
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, res)
	}

	return results, nil
}
