// Package params locates and applies parameter files for a model variant.
package params

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapksim/internal/rules"
)

// MinConcentration replaces zero amounts so that log-scaled readouts stay finite.
const MinConcentration = 1e-6

// MutantBRAF is the V600E BRAF pool of the mutant cell line.
const MutantBRAF = 100.0

const (
	Wildtype = "wildtype"
	Mutant   = "mutant"
)

const DefaultDataset = "EGF_EGFR_MEKi_PRAFi_RAFi"

var (
	ErrNoParameterFile = errors.New("params: parameter file not found")
	ErrUnknownCellLine = errors.New("params: unknown cell line")
)

type Settings struct {
	ModelName string
	Variant   string
	Dataset   string
}

func ValidateCellLine(cellLine string) error {
	switch cellLine {
	case Wildtype, Mutant:
		return nil
	}
	return fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownCellLine, cellLine, Wildtype, Mutant)
}

// SettingsFor picks the model variant for a cell line: the mutant line uses
// the paradoxical-RAF-activation variant.
func SettingsFor(model, cellLine string) Settings {
	variant := "base"
	if cellLine == Mutant {
		variant = "pRAF"
	}
	return Settings{ModelName: model, Variant: variant, Dataset: DefaultDataset}
}

// File is <dir>/<model>/<variant>/<dataset>.yaml.
func File(dir string, s Settings) string {
	return filepath.Join(dir, s.ModelName, s.Variant, s.Dataset+".yaml")
}

type fileFormat struct {
	Parameters map[string]float64            `yaml:"parameters"`
	Drugs      map[string]map[string]float64 `yaml:"drugs"`
}

type Report struct {
	Path    string
	Applied []string
	Unknown []string
}

// Load applies the parameter file for s onto set, then the override block of
// every drug in drugs. Names not in set are an error unless allowMissing.
func Load(dir string, s Settings, set rules.ParameterSet, drugs []string, allowMissing bool) (Report, error) {
	rep := Report{Path: File(dir, s)}
	data, err := os.ReadFile(rep.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rep, fmt.Errorf("%w: %s", ErrNoParameterFile, rep.Path)
		}
		return rep, fmt.Errorf("read parameters: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return rep, fmt.Errorf("parse %s: %w", rep.Path, err)
	}

	blocks := []map[string]float64{f.Parameters}
	for _, d := range drugs {
		if d == "" {
			continue
		}
		block, ok := f.Drugs[d]
		if !ok {
			if allowMissing {
				continue
			}
			return rep, fmt.Errorf("%s: no parameters for drug %s", rep.Path, d)
		}
		blocks = append(blocks, block)
	}

	updates := make(map[string]float64)
	for _, block := range blocks {
		for name, v := range block {
			updates[name] = v
		}
	}
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := set[name]; !ok {
			if !allowMissing {
				return rep, fmt.Errorf("%s: %w: %s", rep.Path, rules.ErrUnknownParameter, name)
			}
			rep.Unknown = append(rep.Unknown, name)
			continue
		}
		set[name] = updates[name]
		rep.Applied = append(rep.Applied, name)
	}
	return rep, nil
}

// Save writes set as a parameter file for s.
func Save(dir string, s Settings, set rules.ParameterSet) (string, error) {
	path := File(dir, s)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(fileFormat{Parameters: set})
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0644)
}

// FloorNonPositive raises every value <= 0 to min and returns the changed
// names in order.
func FloorNonPositive(set rules.ParameterSet, min float64) []string {
	var changed []string
	for name, v := range set {
		if v <= 0 {
			set[name] = min
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// Drugs lists the drug parameter blocks to apply for the given doses.
func Drugs(rafi, meki float64, rafiName, mekiName string) []string {
	var out []string
	if rafi > MinConcentration {
		out = append(out, rafiName)
	}
	if meki > MinConcentration {
		out = append(out, mekiName)
	}
	return out
}
