// Package arrayutil holds the elementwise arithmetic, masking and
// resampling helpers shared by the filter and optical-flow packages.
//
// Every binary or ternary operation validates that all operands share the
// output's shape and returns a *ShapeError before touching the output.
package arrayutil

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/banshee-data/echoflow/internal/array"
)

// Number is any element type the arithmetic helpers accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// Copy copies src into dst.
func Copy[T any](dst, src *array.Array2[T]) error {
	if err := CheckShape("copy", dst, src); err != nil {
		return err
	}
	copy(dst.Data(), src.Data())
	return nil
}

// Fill sets every element of dst to v.
func Fill[T any](dst *array.Array2[T], v T) {
	d := dst.Data()
	for i := range d {
		d[i] = v
	}
}

// Zero is Fill with the zero value.
func Zero[T any](dst *array.Array2[T]) {
	clear(dst.Data())
}

// Add stores a+b in dst.
func Add[T Number](dst, a, b *array.Array2[T]) error {
	if err := CheckSameShape("add", dst, a, b); err != nil {
		return err
	}
	d, x, y := dst.Data(), a.Data(), b.Data()
	for i := range d {
		d[i] = x[i] + y[i]
	}
	return nil
}

// Subtract stores a-b in dst.
func Subtract[T Number](dst, a, b *array.Array2[T]) error {
	if err := CheckSameShape("subtract", dst, a, b); err != nil {
		return err
	}
	d, x, y := dst.Data(), a.Data(), b.Data()
	for i := range d {
		d[i] = x[i] - y[i]
	}
	return nil
}

// Multiply stores a*b in dst.
func Multiply[T Number](dst, a, b *array.Array2[T]) error {
	if err := CheckSameShape("multiply", dst, a, b); err != nil {
		return err
	}
	d, x, y := dst.Data(), a.Data(), b.Data()
	for i := range d {
		d[i] = x[i] * y[i]
	}
	return nil
}

// Divide stores a/b in dst. Integer division by zero panics as usual.
func Divide[T Number](dst, a, b *array.Array2[T]) error {
	if err := CheckSameShape("divide", dst, a, b); err != nil {
		return err
	}
	d, x, y := dst.Data(), a.Data(), b.Data()
	for i := range d {
		d[i] = x[i] / y[i]
	}
	return nil
}

// MultiplyAdd stores a*b + c in dst.
func MultiplyAdd[T Number](dst, a, b, c *array.Array2[T]) error {
	if err := CheckSameShape("multiply_add", dst, a, b, c); err != nil {
		return err
	}
	d, x, y, z := dst.Data(), a.Data(), b.Data(), c.Data()
	for i := range d {
		d[i] = x[i]*y[i] + z[i]
	}
	return nil
}

// AddScalar adds s to every element of dst.
func AddScalar[T Number](dst *array.Array2[T], s T) {
	d := dst.Data()
	for i := range d {
		d[i] += s
	}
}

// Scale multiplies every element of dst by s.
func Scale[T Number](dst *array.Array2[T], s T) {
	d := dst.Data()
	for i := range d {
		d[i] *= s
	}
}

// RemoveNaNs replaces every NaN in a with v.
func RemoveNaNs[T constraints.Float](a *array.Array2[T], v T) {
	d := a.Data()
	for i, x := range d {
		if isNaN(x) {
			d[i] = v
		}
	}
}

// RemoveNaNsFrom replaces every NaN in a with the corresponding element of
// replacement.
func RemoveNaNsFrom[T constraints.Float](a, replacement *array.Array2[T]) error {
	if err := CheckShape("remove_nans", a, replacement); err != nil {
		return err
	}
	d, r := a.Data(), replacement.Data()
	for i, x := range d {
		if isNaN(x) {
			d[i] = r[i]
		}
	}
	return nil
}

// ThresholdMin replaces every element below limit with replacement. NaN
// elements compare false and are left alone.
func ThresholdMin[T Number](a *array.Array2[T], limit, replacement T) {
	d := a.Data()
	for i, x := range d {
		if x < limit {
			d[i] = replacement
		}
	}
}

// ThresholdMax replaces every element above limit with replacement.
func ThresholdMax[T Number](a *array.Array2[T], limit, replacement T) {
	d := a.Data()
	for i, x := range d {
		if x > limit {
			d[i] = replacement
		}
	}
}

// CountNaNs returns the number of NaN elements in a.
func CountNaNs[T constraints.Float](a *array.Array2[T]) int {
	n := 0
	for _, x := range a.Data() {
		if isNaN(x) {
			n++
		}
	}
	return n
}

func isNaN[T constraints.Float](x T) bool {
	return math.IsNaN(float64(x))
}
