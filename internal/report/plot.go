package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/fsutil"
)

// PlotSize is the rendered size of PNG plots.
var PlotSize = 8 * vg.Inch

func newGridPlot(title string, rows, cols int) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row (negated)"
	p.X.Min, p.X.Max = -0.5, float64(cols)-0.5
	p.Y.Min, p.Y.Max = -float64(rows)+0.5, 0.5
	return p
}

func savePNG(fsys fsutil.FileSystem, path string, p *plot.Plot) error {
	wt, err := p.WriterTo(PlotSize, PlotSize, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveHeatMapPNG draws f as a heat map. NaN cells are left transparent.
func SaveHeatMapPNG(fsys fsutil.FileSystem, path string, f *array.Array2[float32], title string) error {
	lo, hi, ok := finiteRange(f.Data())
	if !ok {
		return ErrNoData
	}
	if hi == lo {
		hi = lo + 1
	}

	p := newGridPlot(title, f.Rows(), f.Cols())
	hm := plotter.NewHeatMap(scalarGrid{f}, palette.Heat(32, 1))
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent
	p.Add(hm)
	return savePNG(fsys, path, p)
}

// SaveQuiverPNG draws every stride-th vector of (u, v) as an arrow.
// A non-positive stride draws every vector.
func SaveQuiverPNG(fsys fsutil.FileSystem, path string, u, v *array.Array2[float32], stride int, title string) error {
	if err := arrayutil.CheckSameShape("quiver", u, v); err != nil {
		return err
	}
	if _, _, ok := finiteRange(u.Data()); !ok {
		return ErrNoData
	}
	if stride < 1 {
		stride = 1
	}

	p := newGridPlot(title, u.Rows(), u.Cols())
	grid := vectorGrid{u: u, v: v, stride: stride}
	// plotter.Field scales by the longest vector; a still field has none.
	if grid.maxLength() > 0 {
		field := plotter.NewField(grid)
		field.LineStyle.Width = vg.Points(0.6)
		field.LineStyle.Color = color.Black
		field.DrawGlyph = arrowGlyph
		p.Add(field)
	}
	return savePNG(fsys, path, p)
}

// arrowGlyph draws a unit vector along (1, 0) with a filled head. The
// plotter rotates and scales it; zero vectors are skipped.
func arrowGlyph(c vg.Canvas, sty draw.LineStyle, v plotter.XY) {
	if math.Hypot(v.X, v.Y) == 0 {
		return
	}
	c.Push()
	defer c.Pop()
	c.SetColor(sty.Color)

	var shaft vg.Path
	shaft.Move(vg.Point{})
	shaft.Line(vg.Point{X: 0.7})
	c.Stroke(shaft)

	var head vg.Path
	head.Move(vg.Point{X: 1})
	head.Line(vg.Point{X: 0.7, Y: 0.15})
	head.Line(vg.Point{X: 0.7, Y: -0.15})
	head.Close()
	c.Fill(head)
}
