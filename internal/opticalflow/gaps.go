package opticalflow

import (
	"fmt"
	"math"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

// InterpolateGaps fills vectors whose u component is NaN.
//
// Stage one averages the valid vectors of every spacing x spacing block,
// keeping a block only when at least minFrac*spacing^2 of its pixels are
// valid, then fills the remaining blocks by inverse-distance weighting over
// every kept block with exponent lowPower. Stage two fills each missing
// pixel by inverse-distance weighting over the block centres within
// spacing pixels of it, with exponent highPower. Valid pixels are not
// modified. A block or pixel with no weighted neighbours becomes (0, 0).
func InterpolateGaps(u, v *array.Array2[float32], spacing int, minFrac float32, lowPower, highPower float64) error {
	if err := arrayutil.CheckShape("interpolate_gaps", u, v); err != nil {
		return err
	}
	if spacing < 1 {
		return fmt.Errorf("%w: gap spacing %d must be positive", ErrInvalidConfig, spacing)
	}
	if arrayutil.CountNaNs(u) == 0 {
		return nil
	}
	lu, lv := blockAverages(u, v, spacing, minFrac)
	fillBlocks(lu, lv, lowPower)
	fillPixels(u, v, lu, lv, spacing, highPower)
	return nil
}

// blockAverages returns the per-block mean of the valid vectors, NaN where
// too few pixels are valid.
func blockAverages(u, v *array.Array2[float32], spacing int, minFrac float32) (*array.Array2[float32], *array.Array2[float32]) {
	rows := (u.Rows() + spacing - 1) / spacing
	cols := (u.Cols() + spacing - 1) / spacing
	lu := array.New2[float32](rows, cols)
	lv := array.New2[float32](rows, cols)
	need := float64(minFrac) * float64(spacing*spacing)
	nan := float32(math.NaN())

	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			var su, sv float64
			n := 0
			for y := by * spacing; y < min((by+1)*spacing, u.Rows()); y++ {
				ur, vr := u.Row(y), v.Row(y)
				for x := bx * spacing; x < min((bx+1)*spacing, u.Cols()); x++ {
					if math.IsNaN(float64(ur[x])) {
						continue
					}
					su += float64(ur[x])
					sv += float64(vr[x])
					n++
				}
			}
			if n == 0 || float64(n) < need {
				lu.Set(by, bx, nan)
				lv.Set(by, bx, nan)
				continue
			}
			lu.Set(by, bx, float32(su/float64(n)))
			lv.Set(by, bx, float32(sv/float64(n)))
		}
	}
	return lu, lv
}

type idwSample struct {
	y, x float64
	u, v float64
}

// fillBlocks fills every NaN block by inverse-distance weighting over all
// blocks that were valid on entry. The search covers the whole block grid.
func fillBlocks(lu, lv *array.Array2[float32], power float64) {
	var known []idwSample
	for y := 0; y < lu.Rows(); y++ {
		for x := 0; x < lu.Cols(); x++ {
			if ux := lu.At(y, x); !math.IsNaN(float64(ux)) {
				known = append(known, idwSample{y: float64(y), x: float64(x), u: float64(ux), v: float64(lv.At(y, x))})
			}
		}
	}
	for y := 0; y < lu.Rows(); y++ {
		for x := 0; x < lu.Cols(); x++ {
			if !math.IsNaN(float64(lu.At(y, x))) {
				continue
			}
			fu, fv := idw(known, float64(y), float64(x), power)
			lu.Set(y, x, fu)
			lv.Set(y, x, fv)
		}
	}
}

// fillPixels fills every NaN pixel of u (and the matching v) from the block
// centres within spacing pixels.
func fillPixels(u, v, lu, lv *array.Array2[float32], spacing int, power float64) {
	centre := func(b int) float64 { return float64(b*spacing) + float64(spacing-1)*0.5 }
	near := make([]idwSample, 0, 9)
	for y := 0; y < u.Rows(); y++ {
		ur, vr := u.Row(y), v.Row(y)
		for x := 0; x < u.Cols(); x++ {
			if !math.IsNaN(float64(ur[x])) {
				continue
			}
			near = near[:0]
			by, bx := y/spacing, x/spacing
			for ny := max(by-1, 0); ny <= min(by+1, lu.Rows()-1); ny++ {
				cy := centre(ny)
				if math.Abs(cy-float64(y)) > float64(spacing) {
					continue
				}
				for nx := max(bx-1, 0); nx <= min(bx+1, lu.Cols()-1); nx++ {
					cx := centre(nx)
					if math.Abs(cx-float64(x)) > float64(spacing) {
						continue
					}
					near = append(near, idwSample{y: cy, x: cx, u: float64(lu.At(ny, nx)), v: float64(lv.At(ny, nx))})
				}
			}
			ur[x], vr[x] = idw(near, float64(y), float64(x), power)
		}
	}
}

// idw returns the inverse-distance weighted mean of samples at (y, x). A
// sample at zero distance is returned as is; no samples give (0, 0).
func idw(samples []idwSample, y, x, power float64) (float32, float32) {
	var su, sv, sw float64
	for _, s := range samples {
		d := math.Hypot(s.y-y, s.x-x)
		if d == 0 {
			return float32(s.u), float32(s.v)
		}
		w := 1 / math.Pow(d, power)
		su += w * s.u
		sv += w * s.v
		sw += w
	}
	if sw == 0 {
		return 0, 0
	}
	return float32(su / sw), float32(sv / sw)
}
