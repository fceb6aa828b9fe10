package opticalflow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/echoflow/internal/array"
)

// Vec5 is a five-term per-pixel vector: either polynomial coefficients
// (indexed by the coef* constants) or a normal-equations system (indexed by
// the sys* constants).
type Vec5 [5]float64

// Polynomial coefficient layout. The constant term is not stored.
const (
	coefY  = iota // linear in the row direction
	coefX         // linear in the column direction
	coefYY        // quadratic in the row direction
	coefXX        // quadratic in the column direction
	coefXY        // mixed
)

// polyBasis holds the Gaussian applicability and the four distinct entries
// of the inverted 6x6 basis matrix for the quadratic model
// 1, x, y, x^2, y^2, xy.
type polyBasis struct {
	n   int
	g   []float64 // g[n+k] = weight at offset k
	xg  []float64 // k * g
	xxg []float64 // k^2 * g

	ig11, ig03, ig33, ig55 float64
}

func newPolyBasis(n int, sigma float64) (*polyBasis, error) {
	if sigma <= 0 {
		sigma = 0.3 * float64(n)
	}
	b := &polyBasis{
		n:   n,
		g:   make([]float64, 2*n+1),
		xg:  make([]float64, 2*n+1),
		xxg: make([]float64, 2*n+1),
	}
	sum := 0.0
	for k := -n; k <= n; k++ {
		w := math.Exp(-float64(k*k) / (2 * sigma * sigma))
		b.g[n+k] = w
		sum += w
	}
	for k := -n; k <= n; k++ {
		w := b.g[n+k] / sum
		b.g[n+k] = w
		b.xg[n+k] = float64(k) * w
		b.xxg[n+k] = float64(k*k) * w
	}

	var g00, g11, g33, g55 float64
	for y := -n; y <= n; y++ {
		for x := -n; x <= n; x++ {
			w := b.g[n+y] * b.g[n+x]
			fx, fy := float64(x), float64(y)
			g00 += w
			g11 += w * fx * fx
			g33 += w * fx * fx * fx * fx
			g55 += w * fx * fx * fy * fy
		}
	}
	G := mat.NewSymDense(6, nil)
	G.SetSym(0, 0, g00)
	for _, i := range []int{1, 2} {
		G.SetSym(i, i, g11)
	}
	G.SetSym(0, 3, g11)
	G.SetSym(0, 4, g11)
	G.SetSym(3, 3, g33)
	G.SetSym(4, 4, g33)
	G.SetSym(3, 4, g55)
	G.SetSym(5, 5, g55)

	var chol mat.Cholesky
	if ok := chol.Factorize(G); !ok {
		return nil, fmt.Errorf("%w: poly_n=%d sigma=%g", ErrDegenerateBasis, n, sigma)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateBasis, err)
	}
	b.ig11 = inv.At(1, 1)
	b.ig03 = inv.At(0, 3)
	b.ig33 = inv.At(3, 3)
	b.ig55 = inv.At(5, 5)
	for _, v := range []float64{b.ig11, b.ig03, b.ig33, b.ig55} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite inverse entry", ErrDegenerateBasis)
		}
	}
	return b, nil
}

// polyRow is the scratch row of vertical moments used by PolyExpansion.
// Each pixel holds three sums (g, xg, xxg weighted) and the row is padded by
// n pixels on both sides; pixel x starts at buf[(x+n)*3].
type polyRow struct {
	buf []float64
	n   int
}

func newPolyRow(cols, n int) *polyRow {
	return &polyRow{buf: make([]float64, (cols+2*n)*3), n: n}
}

func (r *polyRow) idx(x int) int { return (x + r.n) * 3 }

// PolyExpansion fits the quadratic model to every pixel of src and stores
// the five coefficients in dst, which must have src's shape.
func (b *polyBasis) PolyExpansion(dst *array.Array2[Vec5], src *array.Array2[float32], row *polyRow) {
	rows, cols := src.Rows(), src.Cols()
	n := b.n
	g, xg, xxg := b.g[n:], b.xg[n:], b.xxg[n:]

	for y := 0; y < rows; y++ {
		// vertical part
		s0 := src.Row(y)
		for x := 0; x < cols; x++ {
			i := row.idx(x)
			row.buf[i] = float64(s0[x]) * g[0]
			row.buf[i+1] = 0
			row.buf[i+2] = 0
		}
		for k := 1; k <= n; k++ {
			up := src.Row(max(y-k, 0))
			down := src.Row(min(y+k, rows-1))
			for x := 0; x < cols; x++ {
				i := row.idx(x)
				a, c := float64(up[x]), float64(down[x])
				row.buf[i] += g[k] * (a + c)
				row.buf[i+1] += xg[k] * (c - a)
				row.buf[i+2] += xxg[k] * (a + c)
			}
		}

		// replicate the end pixels into the padding
		first, last := row.idx(0), row.idx(cols-1)
		for k := 1; k <= n; k++ {
			copy(row.buf[row.idx(-k):row.idx(-k)+3], row.buf[first:first+3])
			copy(row.buf[row.idx(cols-1+k):row.idx(cols-1+k)+3], row.buf[last:last+3])
		}

		// horizontal part
		out := dst.Row(y)
		for x := 0; x < cols; x++ {
			c := row.idx(x)
			b1 := row.buf[c] * g[0]
			b3 := row.buf[c+1] * g[0]
			b5 := row.buf[c+2] * g[0]
			var b2, b4, b6 float64
			for k := 1; k <= n; k++ {
				r, l := row.idx(x+k), row.idx(x-k)
				t := row.buf[r] + row.buf[l]
				b1 += t * g[k]
				b4 += t * xxg[k]
				b2 += (row.buf[r] - row.buf[l]) * xg[k]
				b3 += (row.buf[r+1] + row.buf[l+1]) * g[k]
				b6 += (row.buf[r+1] - row.buf[l+1]) * xg[k]
				b5 += (row.buf[r+2] + row.buf[l+2]) * g[k]
			}
			out[x] = Vec5{
				coefY:  b3 * b.ig11,
				coefX:  b2 * b.ig11,
				coefYY: b1*b.ig03 + b5*b.ig33,
				coefXX: b1*b.ig03 + b4*b.ig33,
				coefXY: b6 * b.ig55,
			}
		}
	}
}
