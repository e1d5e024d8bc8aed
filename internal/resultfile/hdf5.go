package resultfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/hdf5"
)

// Attribute names on the root group.
const (
	AttrCellLine        = "cell_line"
	AttrMEKi            = "meki_concentration"
	AttrEGF             = "egf_concentration"
	AttrRAFi            = "rafi_concentration"
	AttrSpeciesNames    = "species_names"
	AttrObservableNames = "observable_names"
	AttrFingerprint     = "model_fingerprint"
	AttrKind            = "kind"
)

// Write stores f at path, replacing any existing file.
func Write(path string, f *File) error {
	if f.Kind == "" {
		f.Kind = KindDeterministic
	}
	if err := f.validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("resultfile: create directory: %w", err)
		}
	}

	h, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("resultfile: create %s: %w", path, err)
	}
	defer h.Close()

	if err := writeDataset(h, DatasetTime, []uint{uint(len(f.Time))}, f.Time); err != nil {
		return err
	}

	s := f.Shape()
	if f.IsPopulation() {
		if err := writeDataset(h, DatasetTrajectories,
			[]uint{uint(s.Cells), uint(s.Time), uint(s.Species)}, flatten3(f.CellTrajectories)); err != nil {
			return err
		}
		if s.Observables > 0 {
			if err := writeDataset(h, DatasetObservables,
				[]uint{uint(s.Cells), uint(s.Time), uint(s.Observables)}, flatten3(f.CellObservables)); err != nil {
				return err
			}
		}
	} else {
		if err := writeDataset(h, DatasetTrajectories,
			[]uint{uint(s.Time), uint(s.Species)}, flatten2(f.Trajectories)); err != nil {
			return err
		}
		if s.Observables > 0 {
			if err := writeDataset(h, DatasetObservables,
				[]uint{uint(s.Time), uint(s.Observables)}, flatten2(f.Observables)); err != nil {
				return err
			}
		}
	}

	root, err := h.OpenGroup("/")
	if err != nil {
		return fmt.Errorf("resultfile: open root group: %w", err)
	}
	defer root.Close()

	for _, a := range []struct {
		name string
		val  string
	}{
		{AttrCellLine, f.CellLine},
		{AttrSpeciesNames, strings.Join(f.SpeciesNames, "\n")},
		{AttrObservableNames, strings.Join(f.ObservableNames, "\n")},
		{AttrFingerprint, f.Fingerprint},
		{AttrKind, f.Kind},
	} {
		if err := writeStringAttr(root, a.name, a.val); err != nil {
			return err
		}
	}
	for _, a := range []struct {
		name string
		val  float64
	}{
		{AttrMEKi, f.MEKi},
		{AttrEGF, f.EGF},
		{AttrRAFi, f.RAFi},
	} {
		if err := writeFloatAttr(root, a.name, a.val); err != nil {
			return err
		}
	}
	return nil
}

// Read loads a file written by Write. The observables dataset is optional.
func Read(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("resultfile: %w", err)
	}
	h, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("resultfile: open %s: %w", path, err)
	}
	defer h.Close()

	f := &File{}
	timeData, dims, err := readDataset(h, DatasetTime)
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("resultfile: time has rank %d", len(dims))
	}
	f.Time = timeData

	traj, dims, err := readDataset(h, DatasetTrajectories)
	if err != nil {
		return nil, err
	}
	switch len(dims) {
	case 2:
		f.Kind = KindDeterministic
		f.Trajectories = unflatten2(traj, int(dims[0]), int(dims[1]))
	case 3:
		f.Kind = KindPopulation
		f.CellTrajectories = unflatten3(traj, int(dims[0]), int(dims[1]), int(dims[2]))
	default:
		return nil, fmt.Errorf("resultfile: trajectories has rank %d", len(dims))
	}

	if h.LinkExists(DatasetObservables) {
		obs, dims, err := readDataset(h, DatasetObservables)
		if err != nil {
			return nil, err
		}
		switch len(dims) {
		case 2:
			f.Observables = unflatten2(obs, int(dims[0]), int(dims[1]))
		case 3:
			f.CellObservables = unflatten3(obs, int(dims[0]), int(dims[1]), int(dims[2]))
		}
	}

	root, err := h.OpenGroup("/")
	if err != nil {
		return nil, fmt.Errorf("resultfile: open root group: %w", err)
	}
	defer root.Close()

	if f.CellLine, err = readStringAttr(root, AttrCellLine); err != nil {
		return nil, err
	}
	if f.MEKi, err = readFloatAttr(root, AttrMEKi); err != nil {
		return nil, err
	}
	if f.EGF, err = readFloatAttr(root, AttrEGF); err != nil {
		return nil, err
	}
	// Attributes below are absent from files written before they existed.
	if v, ok := optionalFloatAttr(root, AttrRAFi); ok {
		f.RAFi = v
	}
	if v, ok := optionalStringAttr(root, AttrKind); ok && v != "" {
		f.Kind = v
	}
	if v, ok := optionalStringAttr(root, AttrFingerprint); ok {
		f.Fingerprint = v
	}
	if v, ok := optionalStringAttr(root, AttrSpeciesNames); ok {
		f.SpeciesNames = splitNames(v)
	}
	if v, ok := optionalStringAttr(root, AttrObservableNames); ok {
		f.ObservableNames = splitNames(v)
	}
	return f, nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func IsNotExist(err error) bool { return errors.Is(err, os.ErrNotExist) }

func writeDataset(h *hdf5.File, name string, dims []uint, data []float64) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("resultfile: dataspace %s: %w", name, err)
	}
	defer space.Close()

	ds, err := h.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("resultfile: create dataset %s: %w", name, err)
	}
	defer ds.Close()

	if len(data) == 0 {
		return nil
	}
	if err := ds.Write(&data); err != nil {
		return fmt.Errorf("resultfile: write dataset %s: %w", name, err)
	}
	return nil
}

func readDataset(h *hdf5.File, name string) ([]float64, []uint, error) {
	if !h.LinkExists(name) {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingDataset, name)
	}
	ds, err := h.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("resultfile: open dataset %s: %w", name, err)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, nil, fmt.Errorf("resultfile: dims of %s: %w", name, err)
	}
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	data := make([]float64, n)
	if n == 0 {
		return data, dims, nil
	}
	if err := ds.Read(&data); err != nil {
		return nil, nil, fmt.Errorf("resultfile: read dataset %s: %w", name, err)
	}
	return data, dims, nil
}

func writeStringAttr(g *hdf5.Group, name, val string) error {
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return fmt.Errorf("resultfile: attribute %s: %w", name, err)
	}
	defer space.Close()
	attr, err := g.CreateAttribute(name, hdf5.T_GO_STRING, space)
	if err != nil {
		return fmt.Errorf("resultfile: create attribute %s: %w", name, err)
	}
	defer attr.Close()
	if err := attr.Write(&val, hdf5.T_GO_STRING); err != nil {
		return fmt.Errorf("resultfile: write attribute %s: %w", name, err)
	}
	return nil
}

func writeFloatAttr(g *hdf5.Group, name string, val float64) error {
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return fmt.Errorf("resultfile: attribute %s: %w", name, err)
	}
	defer space.Close()
	attr, err := g.CreateAttribute(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("resultfile: create attribute %s: %w", name, err)
	}
	defer attr.Close()
	if err := attr.Write(&val, hdf5.T_NATIVE_DOUBLE); err != nil {
		return fmt.Errorf("resultfile: write attribute %s: %w", name, err)
	}
	return nil
}

func readStringAttr(g *hdf5.Group, name string) (string, error) {
	attr, err := g.OpenAttribute(name)
	if err != nil {
		return "", fmt.Errorf("resultfile: open attribute %s: %w", name, err)
	}
	defer attr.Close()
	var val string
	if err := attr.Read(&val, hdf5.T_GO_STRING); err != nil {
		return "", fmt.Errorf("resultfile: read attribute %s: %w", name, err)
	}
	return val, nil
}

func readFloatAttr(g *hdf5.Group, name string) (float64, error) {
	attr, err := g.OpenAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("resultfile: open attribute %s: %w", name, err)
	}
	defer attr.Close()
	var val float64
	if err := attr.Read(&val, hdf5.T_NATIVE_DOUBLE); err != nil {
		return 0, fmt.Errorf("resultfile: read attribute %s: %w", name, err)
	}
	return val, nil
}

func optionalStringAttr(g *hdf5.Group, name string) (string, bool) {
	v, err := readStringAttr(g, name)
	return v, err == nil
}

func optionalFloatAttr(g *hdf5.Group, name string) (float64, bool) {
	v, err := readFloatAttr(g, name)
	return v, err == nil
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func flatten2(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func flatten3(cells [][][]float64) []float64 {
	var out []float64
	for _, c := range cells {
		out = append(out, flatten2(c)...)
	}
	return out
}

func unflatten2(data []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out
}

func unflatten3(data []float64, cells, rows, cols int) [][][]float64 {
	out := make([][][]float64, cells)
	stride := rows * cols
	for c := range out {
		out[c] = unflatten2(data[c*stride:(c+1)*stride], rows, cols)
	}
	return out
}
