package opticalflow

import (
	"fmt"
	"math"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

// PixelMask bilinearly samples f at the fractional position (y, x).
// Corners outside the grid or holding NaN contribute background instead,
// so a position entirely off the grid yields background.
func PixelMask(f *array.Array2[float32], y, x float64, background float32) float32 {
	if math.IsNaN(y) || math.IsNaN(x) {
		return background
	}
	y0, x0 := math.Floor(y), math.Floor(x)
	fy, fx := y-y0, x-x0
	iy, ix := int(y0), int(x0)

	corner := func(cy, cx int) float64 {
		if cy < 0 || cx < 0 || cy >= f.Rows() || cx >= f.Cols() {
			return float64(background)
		}
		s := f.At(cy, cx)
		if math.IsNaN(float64(s)) {
			return float64(background)
		}
		return float64(s)
	}

	weights := [4]float64{(1 - fy) * (1 - fx), (1 - fy) * fx, fy * (1 - fx), fy * fx}
	offsets := [4][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	sum := 0.0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		sum += w * corner(iy+offsets[i][0], ix+offsets[i][1])
	}
	return float32(sum)
}

// AdvectField forecasts dst by moving src along (u, v):
// dst(y, x) = src(y - v, x - u). dst and src must be distinct arrays.
func AdvectField(dst, src, u, v *array.Array2[float32], background float32) error {
	if err := arrayutil.CheckSameShape("advect_field", src, dst, u, v); err != nil {
		return err
	}
	if array.SharesStorage(dst, src) {
		return fmt.Errorf("advect_field: %w", ErrAliasedFields)
	}
	for y := 0; y < dst.Rows(); y++ {
		out, ur, vr := dst.Row(y), u.Row(y), v.Row(y)
		for x := range out {
			out[x] = PixelMask(src, float64(y)-float64(vr[x]), float64(x)-float64(ur[x]), background)
		}
	}
	return nil
}
