package arrayutil

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/banshee-data/echoflow/internal/array"
)

// Interpolate resamples in onto out's grid.
//
// Equal shapes are copied. An output exactly half the input in both
// dimensions is filled with the mean of each 2x2 input block. Anything else
// is bilinear: output index d maps to source coordinate d*ratio + 0.5,
// matching the box alignment of the pyramid, and samples past the edge are
// clamped to the border.
func Interpolate[T constraints.Float](out, in *array.Array2[T]) error {
	if out.Len() == 0 || in.Len() == 0 {
		return &ShapeError{
			Op:   "interpolate",
			Want: [2]int{in.Rows(), in.Cols()},
			Got:  [2]int{out.Rows(), out.Cols()},
		}
	}
	if array.SameShape(out, in) {
		if !array.SharesStorage(out, in) {
			copy(out.Data(), in.Data())
		}
		return nil
	}
	if array.SharesStorage(out, in) {
		return fmt.Errorf("interpolate: output aliases input")
	}
	if in.Rows() == 2*out.Rows() && in.Cols() == 2*out.Cols() {
		halve(out, in)
		return nil
	}
	bilinear(out, in)
	return nil
}

func halve[T constraints.Float](out, in *array.Array2[T]) {
	for y := 0; y < out.Rows(); y++ {
		r0 := in.Row(2 * y)
		r1 := in.Row(2*y + 1)
		dst := out.Row(y)
		for x := range dst {
			i := 2 * x
			dst[x] = (r0[i] + r0[i+1] + r1[i] + r1[i+1]) * 0.25
		}
	}
}

// axisMap holds, per output index, the two source indices and the weight of
// the second.
type axisMap struct {
	lo, hi []int
	frac   []float64
}

func newAxisMap(outN, inN int) axisMap {
	m := axisMap{
		lo:   make([]int, outN),
		hi:   make([]int, outN),
		frac: make([]float64, outN),
	}
	ratio := float64(inN) / float64(outN)
	last := float64(inN - 1)
	for d := 0; d < outN; d++ {
		s := float64(d)*ratio + 0.5
		s = math.Max(0, math.Min(s, last))
		i := int(s)
		j := i + 1
		if j > inN-1 {
			j = inN - 1
		}
		m.lo[d], m.hi[d], m.frac[d] = i, j, s-float64(i)
	}
	return m
}

func bilinear[T constraints.Float](out, in *array.Array2[T]) {
	ym := newAxisMap(out.Rows(), in.Rows())
	xm := newAxisMap(out.Cols(), in.Cols())
	for y := 0; y < out.Rows(); y++ {
		r0 := in.Row(ym.lo[y])
		r1 := in.Row(ym.hi[y])
		fy := ym.frac[y]
		dst := out.Row(y)
		for x := range dst {
			x0, x1, fx := xm.lo[x], xm.hi[x], xm.frac[x]
			top := float64(r0[x0])*(1-fx) + float64(r0[x1])*fx
			bot := float64(r1[x0])*(1-fx) + float64(r1[x1])*fx
			dst[x] = T(top*(1-fy) + bot*fy)
		}
	}
}
