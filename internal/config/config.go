// Package config holds run settings loaded from YAML.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapksim/internal/params"
	"github.com/san-kum/mapksim/internal/timespan"
)

const (
	DefaultOutput        = "results/simulation_results.h5"
	DefaultPlotOutput    = "results/trajectories.png"
	DefaultParametersDir = "parameters"
	DefaultDataDir       = "data"
	DefaultIntegrator    = "rosenbrock"

	DefaultCells    = 100
	DefaultVolume   = 1000.0
	DefaultSDEDt    = 0.5
	DefaultSeed     = 42
	DefaultCV       = 0.1
	DefaultMaxSteps = 10000
)

type Config struct {
	CellLine         string           `yaml:"cell_line"`
	MEKi             float64          `yaml:"meki_concentration"`
	EGF              float64          `yaml:"egf_concentration"`
	RAFi             float64          `yaml:"rafi_concentration"`
	Output           string           `yaml:"output"`
	PlotOutput       string           `yaml:"plot_output"`
	ParametersDir    string           `yaml:"parameters_dir"`
	DataDir          string           `yaml:"data_dir"`
	MinConcentration float64          `yaml:"min_concentration"`
	AllowMissing     bool             `yaml:"allow_missing_parameters"`
	Solver           SolverConfig     `yaml:"solver"`
	TimeSpan         timespan.Grid    `yaml:"timespan"`
	Population       PopulationConfig `yaml:"population"`
}

type SolverConfig struct {
	Method      string  `yaml:"method"`
	RelTol      float64 `yaml:"rtol"`
	AbsTol      float64 `yaml:"atol"`
	MaxSteps    int     `yaml:"max_steps"`
	InitialStep float64 `yaml:"initial_step"`
}

type PopulationConfig struct {
	Cells   int     `yaml:"cells"`
	Volume  float64 `yaml:"volume"`
	Dt      float64 `yaml:"dt"`
	Seed    uint64  `yaml:"seed"`
	Workers int     `yaml:"workers"`
	CV      float64 `yaml:"cv"`
}

func DefaultConfig() *Config {
	return &Config{
		CellLine:         params.Wildtype,
		MEKi:             0,
		EGF:              1,
		Output:           DefaultOutput,
		PlotOutput:       DefaultPlotOutput,
		ParametersDir:    DefaultParametersDir,
		DataDir:          DefaultDataDir,
		MinConcentration: params.MinConcentration,
		AllowMissing:     true,
		Solver: SolverConfig{
			Method:      DefaultIntegrator,
			RelTol:      1e-6,
			AbsTol:      1e-8,
			MaxSteps:    DefaultMaxSteps,
			InitialStep: 1e-2,
		},
		TimeSpan: timespan.Default(),
		Population: PopulationConfig{
			Cells:  DefaultCells,
			Volume: DefaultVolume,
			Dt:     DefaultSDEDt,
			Seed:   DefaultSeed,
			CV:     DefaultCV,
		},
	}
}

// Load reads path over the defaults. A YAML list replaces the default
// stimulation segments rather than merging with them.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge reads path over the current values of c.
func (c *Config) Merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := params.ValidateCellLine(c.CellLine); err != nil {
		return err
	}
	for name, v := range map[string]float64{"meki_concentration": c.MEKi, "egf_concentration": c.EGF, "rafi_concentration": c.RAFi} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("config: %s must be finite and non-negative, got %g", name, v)
		}
	}
	if !(c.MinConcentration > 0) {
		return fmt.Errorf("config: min_concentration must be positive, got %g", c.MinConcentration)
	}
	if c.Solver.RelTol <= 0 || c.Solver.AbsTol <= 0 {
		return fmt.Errorf("config: solver tolerances must be positive")
	}
	if err := c.TimeSpan.Validate(); err != nil {
		return fmt.Errorf("config: timespan %w", err)
	}
	return nil
}
