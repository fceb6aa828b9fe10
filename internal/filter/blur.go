package filter

import (
	"fmt"

	"github.com/banshee-data/echoflow/internal/array"
)

// GaussianBlur smooths f in place with a separable Gaussian: a horizontal
// pass followed by a vertical pass.
func GaussianBlur(f *array.Array2[float32], size int, sigma float64) error {
	kernel, err := GaussianKernel(size, sigma)
	if err != nil {
		return err
	}
	if f.Cols() < len(kernel) || f.Rows() < len(kernel) {
		return fmt.Errorf("%w: %dx%d field, kernel size %d",
			ErrFieldTooSmall, f.Rows(), f.Cols(), len(kernel))
	}
	if len(kernel) == 1 {
		return nil
	}
	scratch := newLine(max(f.Rows(), f.Cols()), len(kernel)/2)
	convolveX(f, kernel, scratch)
	convolveY(f, kernel, scratch)
	return nil
}

// ConvolveX convolves every row of f with kernel in place.
func ConvolveX(f *array.Array2[float32], kernel []float64) error {
	if err := checkKernel(kernel); err != nil {
		return err
	}
	if f.Cols() < len(kernel) {
		return fmt.Errorf("%w: %d columns, kernel size %d", ErrFieldTooSmall, f.Cols(), len(kernel))
	}
	convolveX(f, kernel, newLine(f.Cols(), len(kernel)/2))
	return nil
}

// ConvolveY convolves every column of f with kernel in place.
func ConvolveY(f *array.Array2[float32], kernel []float64) error {
	if err := checkKernel(kernel); err != nil {
		return err
	}
	if f.Rows() < len(kernel) {
		return fmt.Errorf("%w: %d rows, kernel size %d", ErrFieldTooSmall, f.Rows(), len(kernel))
	}
	convolveY(f, kernel, newLine(f.Rows(), len(kernel)/2))
	return nil
}

func checkKernel(kernel []float64) error {
	if len(kernel)%2 == 0 {
		return fmt.Errorf("%w: size %d is even", ErrInvalidKernel, len(kernel))
	}
	return nil
}

// line is a scratch copy of one row or column with half-kernel padding on
// both ends. Sample i of the source lives at buf[pad+i].
type line struct {
	buf []float64
	pad int
}

func newLine(n, pad int) *line {
	return &line{buf: make([]float64, n+2*pad), pad: pad}
}

// load copies n samples of src, starting at start and stride apart, into
// the line and replicates the first and last sample into the padding.
func (l *line) load(src []float32, start, stride, n int) {
	dst := l.buf[l.pad : l.pad+n]
	for i, j := 0, start; i < n; i, j = i+1, j+stride {
		dst[i] = float64(src[j])
	}
	first, last := l.buf[l.pad], l.buf[l.pad+n-1]
	for i := 0; i < l.pad; i++ {
		l.buf[i] = first
		l.buf[l.pad+n+i] = last
	}
}

// apply returns the kernel response centred on sample i.
func (l *line) apply(kernel []float64, i int) float32 {
	window := l.buf[i : i+len(kernel)]
	sum := 0.0
	for k, w := range kernel {
		sum += w * window[k]
	}
	return float32(sum)
}

func convolveX(f *array.Array2[float32], kernel []float64, l *line) {
	cols := f.Cols()
	for y := 0; y < f.Rows(); y++ {
		row := f.Row(y)
		l.load(row, 0, 1, cols)
		for x := range row {
			row[x] = l.apply(kernel, x)
		}
	}
}

func convolveY(f *array.Array2[float32], kernel []float64, l *line) {
	rows, cols := f.Rows(), f.Cols()
	data := f.Data()
	for x := 0; x < cols; x++ {
		l.load(data, x, cols, rows)
		for y := 0; y < rows; y++ {
			data[y*cols+x] = l.apply(kernel, y)
		}
	}
}
