package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mapksim/internal/rules"
)

const sampleFile = `
parameters:
  kf: 2.5
  EGFR_0: 80
drugs:
  Vemurafenib:
    kf_rafi: 0.5
  Cobimetinib:
    kf_meki: 0.7
    kf: 3.0
`

func writeFile(t *testing.T, dir string, s Settings, body string) {
	t.Helper()
	path := File(dir, s)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestSettingsFor(t *testing.T) {
	assert.Equal(t, Settings{ModelName: "RTKERK", Variant: "pRAF", Dataset: DefaultDataset}, SettingsFor("RTKERK", Mutant))
	assert.Equal(t, "base", SettingsFor("RTKERK", Wildtype).Variant)
}

func TestFile(t *testing.T) {
	s := SettingsFor("RTKERK", Mutant)
	assert.Equal(t, filepath.Join("params", "RTKERK", "pRAF", "EGF_EGFR_MEKi_PRAFi_RAFi.yaml"), File("params", s))
}

func TestValidateCellLine(t *testing.T) {
	assert.NoError(t, ValidateCellLine(Wildtype))
	assert.NoError(t, ValidateCellLine(Mutant))
	assert.ErrorIs(t, ValidateCellLine("tumour"), ErrUnknownCellLine)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	s := SettingsFor("RTKERK", Mutant)
	writeFile(t, dir, s, sampleFile)

	set := rules.ParameterSet{"kf": 1, "EGFR_0": 100, "kf_rafi": 0.1, "kf_meki": 0.1}
	rep, err := Load(dir, s, set, []string{"Cobimetinib"}, false)
	require.NoError(t, err)

	assert.Equal(t, 3.0, set["kf"], "drug block overrides the base block")
	assert.Equal(t, 80.0, set["EGFR_0"])
	assert.Equal(t, 0.7, set["kf_meki"])
	assert.Equal(t, 0.1, set["kf_rafi"], "unselected drug block is ignored")
	assert.Equal(t, []string{"EGFR_0", "kf", "kf_meki"}, rep.Applied)
	assert.Empty(t, rep.Unknown)
}

func TestLoad_UnknownNames(t *testing.T) {
	dir := t.TempDir()
	s := SettingsFor("RTKERK", Wildtype)
	writeFile(t, dir, s, sampleFile)

	set := rules.ParameterSet{"kf": 1}
	_, err := Load(dir, s, set, nil, false)
	assert.ErrorIs(t, err, rules.ErrUnknownParameter)

	set = rules.ParameterSet{"kf": 1}
	rep, err := Load(dir, s, set, []string{"Vemurafenib", "Unlisted"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"EGFR_0", "kf_rafi"}, rep.Unknown)
	assert.Equal(t, 2.5, set["kf"])
}

func TestLoad_MissingFile(t *testing.T) {
	set := rules.ParameterSet{"kf": 1}
	rep, err := Load(t.TempDir(), SettingsFor("RTKERK", Mutant), set, nil, true)
	assert.ErrorIs(t, err, ErrNoParameterFile)
	assert.NotEmpty(t, rep.Path)
	assert.Equal(t, 1.0, set["kf"])
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	s := SettingsFor("RTKERK", Mutant)
	writeFile(t, dir, s, "parameters: [1, 2")

	_, err := Load(dir, s, rules.ParameterSet{}, nil, true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoParameterFile)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	s := SettingsFor("RTKERK", Wildtype)
	path, err := Save(dir, s, rules.ParameterSet{"kf": 4})
	require.NoError(t, err)
	assert.FileExists(t, path)

	set := rules.ParameterSet{"kf": 1}
	_, err = Load(dir, s, set, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 4.0, set["kf"])
}

func TestFloorNonPositive(t *testing.T) {
	set := rules.ParameterSet{"a": 0, "b": -2, "c": 3}
	changed := FloorNonPositive(set, MinConcentration)

	assert.Equal(t, []string{"a", "b"}, changed)
	assert.Equal(t, MinConcentration, set["a"])
	assert.Equal(t, MinConcentration, set["b"])
	assert.Equal(t, 3.0, set["c"])
}

func TestDrugs(t *testing.T) {
	tests := []struct {
		name       string
		rafi, meki float64
		want       []string
	}{
		{"none", 0, MinConcentration, nil},
		{"rafi only", 1, 0, []string{"V"}},
		{"meki only", 0, 0.5, []string{"C"}},
		{"both", 2, 2, []string{"V", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Drugs(tt.rafi, tt.meki, "V", "C"))
		})
	}
}
