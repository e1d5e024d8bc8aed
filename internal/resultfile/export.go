package resultfile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteCSV writes one row per time point: time, then every species, then
// every observable. Population files get a leading cell column.
func WriteCSV(w io.Writer, f *File) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	if f.IsPopulation() {
		header = append([]string{"cell"}, header...)
	}
	s := f.Shape()
	for i := 0; i < s.Species; i++ {
		header = append(header, columnName(f.SpeciesNames, i, "x"))
	}
	for i := 0; i < s.Observables; i++ {
		header = append(header, columnName(f.ObservableNames, i, "obs"))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	writeRows := func(prefix []string, traj, obs [][]float64) error {
		for i, t := range f.Time {
			row := append(append([]string{}, prefix...), formatFloat(t))
			for _, v := range traj[i] {
				row = append(row, formatFloat(v))
			}
			if i < len(obs) {
				for _, v := range obs[i] {
					row = append(row, formatFloat(v))
				}
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	if f.IsPopulation() {
		for c, traj := range f.CellTrajectories {
			var obs [][]float64
			if c < len(f.CellObservables) {
				obs = f.CellObservables[c]
			}
			if err := writeRows([]string{strconv.Itoa(c)}, traj, obs); err != nil {
				return err
			}
		}
	} else if err := writeRows(nil, f.Trajectories, f.Observables); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes f as CSV to path.
func ExportCSV(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := WriteCSV(out, f); err != nil {
		return fmt.Errorf("resultfile: csv: %w", err)
	}
	return out.Close()
}

type exportData struct {
	Kind            string             `json:"kind"`
	CellLine        string             `json:"cell_line"`
	MEKi            float64            `json:"meki_concentration"`
	EGF             float64            `json:"egf_concentration"`
	RAFi            float64            `json:"rafi_concentration"`
	Fingerprint     string             `json:"model_fingerprint,omitempty"`
	Steps           int                `json:"steps"`
	Times           []float64          `json:"times"`
	ObservableNames []string           `json:"observable_names"`
	Observables     [][]float64        `json:"observables,omitempty"`
	CellObservables [][][]float64      `json:"cell_observables,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes the observables of f, with optional metrics, as indented
// JSON. Species trajectories are left out.
func ExportJSON(w io.Writer, f *File, metrics map[string]float64) error {
	data := exportData{
		Kind:            f.Kind,
		CellLine:        f.CellLine,
		MEKi:            f.MEKi,
		EGF:             f.EGF,
		RAFi:            f.RAFi,
		Fingerprint:     f.Fingerprint,
		Steps:           len(f.Time),
		Times:           f.Time,
		ObservableNames: f.ObservableNames,
		Observables:     f.Observables,
		CellObservables: f.CellObservables,
		Metrics:         metrics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func columnName(names []string, i int, prefix string) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("%s%d", prefix, i)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
