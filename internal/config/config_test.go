package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mapksim/internal/params"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CellLine != params.Wildtype {
		t.Errorf("expected wildtype, got %s", cfg.CellLine)
	}
	if cfg.MinConcentration != params.MinConcentration {
		t.Errorf("expected min concentration %g, got %g", params.MinConcentration, cfg.MinConcentration)
	}
	if cfg.Solver.Method != "rosenbrock" {
		t.Errorf("expected rosenbrock, got %s", cfg.Solver.Method)
	}
	if n := len(cfg.TimeSpan.All()); n != 61 {
		t.Errorf("expected 61 time points, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte(`
cell_line: mutant
meki_concentration: 0.25
solver:
  method: rk45
timespan:
  stimulation:
    - {start: 0, stop: 100, points: 11}
population:
  cells: 8
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CellLine != params.Mutant || cfg.MEKi != 0.25 {
		t.Errorf("unexpected doses: %+v", cfg)
	}
	if cfg.EGF != 1 {
		t.Errorf("EGF default lost: %g", cfg.EGF)
	}
	if cfg.Solver.Method != "rk45" || cfg.Solver.RelTol != 1e-6 {
		t.Errorf("unexpected solver: %+v", cfg.Solver)
	}
	if len(cfg.TimeSpan.Stimulation) != 1 || cfg.TimeSpan.Equilibration.Points != 4 {
		t.Errorf("unexpected timespan: %+v", cfg.TimeSpan)
	}
	if cfg.Population.Cells != 8 || cfg.Population.Seed != DefaultSeed {
		t.Errorf("unexpected population: %+v", cfg.Population)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.RAFi = 2
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.RAFi != 2 || got.Output != DefaultOutput {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cell line", func(c *Config) { c.CellLine = "hela" }},
		{"negative dose", func(c *Config) { c.EGF = -1 }},
		{"NaN dose", func(c *Config) { c.MEKi = math.NaN() }},
		{"infinite dose", func(c *Config) { c.RAFi = math.Inf(1) }},
		{"min concentration", func(c *Config) { c.MinConcentration = 0 }},
		{"tolerance", func(c *Config) { c.Solver.RelTol = 0 }},
		{"timespan", func(c *Config) { c.TimeSpan.Stimulation = nil }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("mut-combo")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	if cfg.CellLine != params.Mutant || cfg.MEKi != 1 || cfg.RAFi != 1 || cfg.EGF != 1 {
		t.Errorf("preset not applied: %+v", cfg)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"mut-combo", "mut-egf", "mut-meki", "mut-vemurafenib", "wt-control", "wt-egf"}
	if len(presets) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("preset %d: expected %s, got %s", i, want[i], presets[i])
		}
	}
}
