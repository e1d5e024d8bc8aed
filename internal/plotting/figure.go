// Package plotting draws result files as PNG figures and terminal charts.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/mapksim/internal/params"
	"github.com/san-kum/mapksim/internal/resultfile"
)

const (
	panelWidth  = 6 * vg.Inch
	panelHeight = 4 * vg.Inch
	titleHeight = 0.6 * vg.Inch
)

// logFloor replaces non-positive values on log axes.
const logFloor = params.MinConcentration

// Title is the figure heading for f, e.g. "WILDTYPE cells\nMEKi: 0, EGF: 1".
func Title(f *resultfile.File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s cells\nMEKi: %g, EGF: %g", strings.ToUpper(f.CellLine), f.MEKi, f.EGF)
	if f.RAFi > params.MinConcentration {
		fmt.Fprintf(&b, ", RAFi: %g", f.RAFi)
	}
	return b.String()
}

func minutes(t []float64) []float64 {
	out := make([]float64, len(t))
	for i, v := range t {
		out[i] = v / 60
	}
	return out
}

func xys(x, y []float64, logY bool) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		v := y[i]
		if logY && !(v > logFloor) {
			v = logFloor
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		pts[i].X = x[i]
		pts[i].Y = v
	}
	return pts
}

func newPanel(title string, logY bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (min)"
	p.Y.Label.Text = "Concentration"
	p.Add(plotter.NewGrid())
	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	return p
}

func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, width vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = width
	p.Add(l)
	return l, nil
}

// grid lays panels out row-major in cols columns under a figure title and
// writes the PNG to path.
func grid(path, title string, panels []*plot.Plot, cols int) error {
	rows := (len(panels) + cols - 1) / cols
	tiles := make([][]*plot.Plot, rows)
	for r := range tiles {
		tiles[r] = make([]*plot.Plot, cols)
		for c := range tiles[r] {
			if i := r*cols + c; i < len(panels) {
				tiles[r][c] = panels[i]
			} else {
				tiles[r][c] = plot.New()
				tiles[r][c].HideAxes()
			}
		}
	}

	w := vg.Length(cols) * panelWidth
	h := vg.Length(rows)*panelHeight + titleHeight
	img := vgimg.New(w, h)
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	if title != "" {
		sty := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, 14),
			XAlign:  text.XCenter,
			YAlign:  text.YTop,
			Handler: plot.DefaultTextHandler,
		}
		dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - 4}, title)
	}
	body := draw.Crop(dc, 0, 0, 0, -titleHeight)

	t := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(tiles, t, body)
	for r := range tiles {
		for c := range tiles[r] {
			tiles[r][c].Draw(canvases[r][c])
		}
	}
	return writePNG(path, img)
}

func writePNG(path string, img *vgimg.Canvas) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("plotting: create directory: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	defer out.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(out); err != nil {
		return fmt.Errorf("plotting: write %s: %w", path, err)
	}
	return out.Close()
}
