package opticalflow

import (
	"math"

	"github.com/banshee-data/echoflow/internal/array"
)

// Normal-equations layout of a per-pixel system
// [[G11 G12] [G12 G22]] * d = [h1 h2], with d ordered (dy, dx).
const (
	sysG11 = iota
	sysG12
	sysG22
	sysH1
	sysH2
)

// borderBand is the number of pixels from each edge whose systems are
// attenuated by borderWeight.
const borderBand = 5

var borderWeight = [borderBand]float64{0.14, 0.14, 0.4472, 0.4472, 0.4472}

// sampleDisplaced bilinearly interpolates r at the fractional position
// (fy, fx). It reports false when the 2x2 neighbourhood is not strictly
// inside the grid.
func sampleDisplaced(r *array.Array2[Vec5], fy, fx float64) (Vec5, bool) {
	x0, y0 := math.Floor(fx), math.Floor(fy)
	// written so that NaN positions fail too
	if !(x0 >= 0 && y0 >= 0 && x0 < float64(r.Cols()-1) && y0 < float64(r.Rows()-1)) {
		return Vec5{}, false
	}
	ix, iy := int(x0), int(y0)
	ax, ay := fx-x0, fy-y0
	a00 := (1 - ax) * (1 - ay)
	a01 := ax * (1 - ay)
	a10 := (1 - ax) * ay
	a11 := ax * ay
	top, bot := r.Row(iy), r.Row(iy+1)
	p00, p01, p10, p11 := &top[ix], &top[ix+1], &bot[ix], &bot[ix+1]
	var out Vec5
	for i := range out {
		out[i] = a00*p00[i] + a01*p01[i] + a10*p10[i] + a11*p11[i]
	}
	return out, true
}

// matchTerms combines the local expansion with the other field's expansion
// sampled at the displaced position. When the displaced point falls outside
// the grid the local quadratic terms are used alone and the other field's
// linear terms are taken as zero.
//
// The returned terms are (r2, r3) = half the linear residual in (y, x) and
// (r4, r5, r6) = the averaged quadratic terms, with r6 already halved to
// the off-diagonal entry of the symmetric 2x2 model.
func matchTerms(local Vec5, other *array.Array2[Vec5], fy, fx float64) (r2, r3, r4, r5, r6 float64) {
	if d, ok := sampleDisplaced(other, fy, fx); ok {
		r2, r3 = d[coefY], d[coefX]
		r4 = (local[coefYY] + d[coefYY]) * 0.5
		r5 = (local[coefXX] + d[coefXX]) * 0.5
		r6 = (local[coefXY] + d[coefXY]) * 0.25
	} else {
		r4 = local[coefYY]
		r5 = local[coefXX]
		r6 = local[coefXY] * 0.5
	}
	r2 = (local[coefY] - r2) * 0.5
	r3 = (local[coefX] - r3) * 0.5
	return r2, r3, r4, r5, r6
}

// borderScale returns the attenuation for pixel (y, x) of a rows x cols
// grid: 1 in the interior, the product of per-axis weights in the band.
func borderScale(y, x, rows, cols int) float64 {
	s := 1.0
	if x < borderBand {
		s *= borderWeight[x]
	}
	if x >= cols-borderBand {
		s *= borderWeight[cols-x-1]
	}
	if y < borderBand {
		s *= borderWeight[y]
	}
	if y >= rows-borderBand {
		s *= borderWeight[rows-y-1]
	}
	return s
}

// UpdateMatrices fills rows [y0, y1) of m with the per-pixel normal
// equations linearised around the current flow (u, v).
func UpdateMatrices(r0, r1 *array.Array2[Vec5], u, v *array.Array2[float32], m *array.Array2[Vec5], y0, y1 int) {
	rows, cols := u.Rows(), u.Cols()
	for y := y0; y < y1; y++ {
		ur, vr := u.Row(y), v.Row(y)
		local := r0.Row(y)
		out := m.Row(y)
		for x := 0; x < cols; x++ {
			dx, dy := float64(ur[x]), float64(vr[x])
			r2, r3, r4, r5, r6 := matchTerms(local[x], r1, float64(y)+dy, float64(x)+dx)

			r2 += r4*dy + r6*dx
			r3 += r6*dy + r5*dx

			if s := borderScale(y, x, rows, cols); s != 1 {
				r2 *= s
				r3 *= s
				r4 *= s
				r5 *= s
				r6 *= s
			}

			out[x] = Vec5{
				sysG11: r4*r4 + r6*r6,
				sysG12: (r4 + r5) * r6,
				sysG22: r5*r5 + r6*r6,
				sysH1:  r4*r2 + r6*r3,
				sysH2:  r6*r2 + r5*r3,
			}
		}
	}
}
