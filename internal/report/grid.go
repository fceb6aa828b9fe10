// Package report renders velocity fields as PNG plots and HTML charts.
//
// Grid row 0 is drawn at the top. Plot Y therefore runs from -(rows-1) at
// the bottom to 0 at the top, and the v component is negated for display.
package report

import (
	"errors"
	"math"

	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/echoflow/internal/array"
)

// ErrNoData is returned when a field has no finite samples to draw.
var ErrNoData = errors.New("report: field has no finite samples")

// scalarGrid adapts a field to plotter.GridXYZ.
type scalarGrid struct {
	f *array.Array2[float32]
}

func (g scalarGrid) Dims() (c, r int) { return g.f.Cols(), g.f.Rows() }

func (g scalarGrid) Z(c, r int) float64 {
	return float64(g.f.At(g.f.Rows()-1-r, c))
}

func (g scalarGrid) X(c int) float64 { return float64(c) }

func (g scalarGrid) Y(r int) float64 { return float64(r - (g.f.Rows() - 1)) }

// vectorGrid adapts a subsampled (u, v) pair to plotter.FieldXY. NaN
// vectors are drawn as zero length.
type vectorGrid struct {
	u, v   *array.Array2[float32]
	stride int
}

func (g vectorGrid) Dims() (c, r int) {
	return ceilDiv(g.u.Cols(), g.stride), ceilDiv(g.u.Rows(), g.stride)
}

func (g vectorGrid) row(r int) int {
	_, rows := g.Dims()
	return (rows - 1 - r) * g.stride
}

func (g vectorGrid) Vector(c, r int) plotter.XY {
	y, x := g.row(r), c*g.stride
	du, dv := float64(g.u.At(y, x)), float64(g.v.At(y, x))
	if math.IsNaN(du) || math.IsNaN(dv) {
		return plotter.XY{}
	}
	return plotter.XY{X: du, Y: -dv}
}

func (g vectorGrid) X(c int) float64 { return float64(c * g.stride) }

func (g vectorGrid) Y(r int) float64 { return -float64(g.row(r)) }

func (g vectorGrid) maxLength() float64 {
	var longest float64
	cols, rows := g.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			xy := g.Vector(c, r)
			longest = math.Max(longest, math.Hypot(xy.X, xy.Y))
		}
	}
	return longest
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// finiteRange returns the smallest and largest finite samples.
func finiteRange(data []float32) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range data {
		x := float64(s)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
		ok = true
	}
	return lo, hi, ok
}
