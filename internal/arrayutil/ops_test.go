package arrayutil

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echoflow/internal/array"
)

func filled(rows, cols int, f func(y, x int) float32) *array.Array2[float32] {
	a := array.New2[float32](rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			a.Set(y, x, f(y, x))
		}
	}
	return a
}

func TestCopy_RoundTrip(t *testing.T) {
	src := filled(5, 7, func(y, x int) float32 { return float32(y*7+x) * 0.5 })
	dst := array.New2[float32](5, 7)
	require.NoError(t, Copy(dst, src))
	if diff := cmp.Diff(src.Data(), dst.Data()); diff != "" {
		t.Errorf("copy mismatch (-want +got):\n%s", diff)
	}
}

func TestShapeMismatch_LeavesOutputUntouched(t *testing.T) {
	a := filled(3, 3, func(y, x int) float32 { return 1 })
	b := filled(3, 4, func(y, x int) float32 { return 2 })
	dst := filled(3, 3, func(y, x int) float32 { return 9 })

	cases := map[string]func() error{
		"copy":         func() error { return Copy(dst, b) },
		"add":          func() error { return Add(dst, a, b) },
		"subtract":     func() error { return Subtract(dst, b, a) },
		"multiply":     func() error { return Multiply(dst, a, b) },
		"divide":       func() error { return Divide(dst, a, b) },
		"multiply_add": func() error { return MultiplyAdd(dst, a, a, b) },
		"remove_nans":  func() error { return RemoveNaNsFrom(dst, b) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShapeMismatch))
			var se *ShapeError
			require.True(t, errors.As(err, &se))
			assert.Contains(t, err.Error(), "3x4")
			for _, v := range dst.Data() {
				assert.Equal(t, float32(9), v)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := filled(2, 2, func(y, x int) float32 { return float32(y + x + 1) })
	b := filled(2, 2, func(y, x int) float32 { return 2 })
	dst := array.New2[float32](2, 2)

	require.NoError(t, Add(dst, a, b))
	assert.Equal(t, []float32{3, 4, 4, 5}, dst.Data())
	require.NoError(t, Subtract(dst, a, b))
	assert.Equal(t, []float32{-1, 0, 0, 1}, dst.Data())
	require.NoError(t, Multiply(dst, a, b))
	assert.Equal(t, []float32{2, 4, 4, 6}, dst.Data())
	require.NoError(t, Divide(dst, a, b))
	assert.Equal(t, []float32{0.5, 1, 1, 1.5}, dst.Data())
	require.NoError(t, MultiplyAdd(dst, a, b, b))
	assert.Equal(t, []float32{4, 6, 6, 8}, dst.Data())

	Scale(dst, 0.5)
	assert.Equal(t, []float32{2, 3, 3, 4}, dst.Data())
	AddScalar(dst, -2)
	assert.Equal(t, []float32{0, 1, 1, 2}, dst.Data())

	ints := array.New2[int](1, 3)
	Fill(ints, 4)
	assert.Equal(t, []int{4, 4, 4}, ints.Data())
	Zero(ints)
	assert.Equal(t, []int{0, 0, 0}, ints.Data())
}

func TestRemoveNaNsAndThresholds(t *testing.T) {
	nan := float32(math.NaN())
	a, err := array.Wrap(1, 5, []float32{nan, 1, 5, nan, 10})
	require.NoError(t, err)
	assert.Equal(t, 2, CountNaNs(a))

	b := a.Clone()
	RemoveNaNs(b, -1)
	assert.Equal(t, []float32{-1, 1, 5, -1, 10}, b.Data())

	repl, _ := array.Wrap(1, 5, []float32{7, 7, 7, 8, 7})
	c := a.Clone()
	require.NoError(t, RemoveNaNsFrom(c, repl))
	assert.Equal(t, []float32{7, 1, 5, 8, 10}, c.Data())

	ThresholdMin(b, 2, 0)
	assert.Equal(t, []float32{0, 0, 5, 0, 10}, b.Data())
	ThresholdMax(b, 6, 6)
	assert.Equal(t, []float32{0, 0, 5, 0, 6}, b.Data())

	d := a.Clone()
	ThresholdMin(d, 2, 0)
	assert.True(t, math.IsNaN(float64(d.At(0, 0))), "NaN never compares below a threshold")
}
