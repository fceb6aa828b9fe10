package opticalflow

import "github.com/banshee-data/echoflow/internal/array"

// regularizer is added to every 2x2 determinant so near-singular systems
// give small flows instead of blowing up.
const regularizer = 1e-3

// vsumRow is the running vertical sum of system rows used by
// BlurIteration. It is padded by m+1 pixels on each side; pixel x starts at
// buf[(x+m+1)*5].
type vsumRow struct {
	buf  []float64
	pad  int
	cols int
}

func newVsumRow(cols, m int) *vsumRow {
	return &vsumRow{buf: make([]float64, (cols+2*(m+1))*5), pad: m + 1, cols: cols}
}

// reset narrows the row to cols pixels, which must not exceed the width it
// was allocated for.
func (s *vsumRow) reset(cols int) { s.cols = cols }

func (s *vsumRow) idx(x int) int { return (x + s.pad) * 5 }

// at returns the five sums for pixel x, which may lie in the padding.
func (s *vsumRow) at(x int) []float64 {
	i := s.idx(x)
	return s.buf[i : i+5 : i+5]
}

func (s *vsumRow) replicateEdges() {
	first, last := s.at(0), s.at(s.cols-1)
	for k := 1; k <= s.pad; k++ {
		copy(s.at(-k), first)
		copy(s.at(s.cols-1+k), last)
	}
}

// BlurIteration box-filters the systems in m over a winSize x winSize
// window, solves each filtered system and writes the result into (u, v).
//
// When refresh is set, rows of m that the vertical filter has moved past
// are rebuilt from the new flow as soon as a stripe of them is available,
// so the next iteration starts from updated systems.
func BlurIteration(r0, r1 *array.Array2[Vec5], u, v *array.Array2[float32], m *array.Array2[Vec5], winSize int, refresh bool, vsum *vsumRow) {
	rows, cols := u.Rows(), u.Cols()
	half := winSize / 2
	minStripe := max((1<<10)/cols, winSize)
	scale := 1.0 / float64(winSize*winSize)

	// Seed the running column sums with the window above row 0, clamped.
	vsum.reset(cols)
	clear(vsum.buf)
	first := m.Row(0)
	for x := 0; x < cols; x++ {
		acc := vsum.at(x)
		for i := range acc {
			acc[i] = first[x][i] * float64(half+2)
		}
	}
	for y := 1; y < half; y++ {
		src := m.Row(min(y, rows-1))
		for x := 0; x < cols; x++ {
			acc := vsum.at(x)
			for i := range acc {
				acc[i] += src[x][i]
			}
		}
	}

	y0 := 0
	for y := 0; y < rows; y++ {
		leave := m.Row(max(y-half-1, 0))
		enter := m.Row(min(y+half, rows-1))
		for x := 0; x < cols; x++ {
			acc := vsum.at(x)
			for i := range acc {
				acc[i] += enter[x][i] - leave[x][i]
			}
		}
		vsum.replicateEdges()

		var sum Vec5
		for i, s := range vsum.at(0) {
			sum[i] = s * float64(half+2)
		}
		for x := 1; x < half; x++ {
			for i, s := range vsum.at(x) {
				sum[i] += s
			}
		}

		ur, vr := u.Row(y), v.Row(y)
		for x := 0; x < cols; x++ {
			in, out := vsum.at(x+half), vsum.at(x-half-1)
			for i := range sum {
				sum[i] += in[i] - out[i]
			}
			g11 := sum[sysG11] * scale
			g12 := sum[sysG12] * scale
			g22 := sum[sysG22] * scale
			h1 := sum[sysH1] * scale
			h2 := sum[sysH2] * scale
			idet := 1 / (g11*g22 - g12*g12 + regularizer)
			ur[x] = float32((g11*h2 - g12*h1) * idet)
			vr[x] = float32((g22*h1 - g12*h2) * idet)
		}

		y1 := y - winSize
		if y == rows-1 {
			y1 = rows
		}
		if refresh && (y1 == rows || y1 >= y0+minStripe) {
			UpdateMatrices(r0, r1, u, v, m, y0, y1)
			y0 = y1
		}
	}
}
