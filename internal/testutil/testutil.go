// Package testutil provides shared test fixtures: synthetic echo fields,
// shifted copies of them and error assertions.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/echoflow/internal/array"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// EchoField returns a smooth, feature-rich rows x cols field: a gently
// varying base with a handful of Gaussian cells whose positions and sizes
// are drawn from seed.
func EchoField(rows, cols int, seed uint64) *array.Array2[float32] {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	type cell struct{ y, x, sigma, amp float64 }
	cells := make([]cell, 8)
	for i := range cells {
		cells[i] = cell{
			y:     rng.Float64() * float64(rows),
			x:     rng.Float64() * float64(cols),
			sigma: 4 + rng.Float64()*5,
			amp:   15 + rng.Float64()*25,
		}
	}
	f := array.New2[float32](rows, cols)
	for y := 0; y < rows; y++ {
		row := f.Row(y)
		for x := range row {
			fy, fx := float64(y), float64(x)
			val := 10 + 6*math.Sin(fx/6+0.4)*math.Cos(fy/8-0.2)
			for _, c := range cells {
				dy, dx := fy-c.y, fx-c.x
				val += c.amp * math.Exp(-(dy*dy+dx*dx)/(2*c.sigma*c.sigma))
			}
			row[x] = float32(val)
		}
	}
	return f
}

// Shift returns f translated by (dy, dx) with edge replication:
// out(y, x) = f(y-dy, x-dx), clamped to the grid.
func Shift(f *array.Array2[float32], dy, dx int) *array.Array2[float32] {
	out := array.New2[float32](f.Rows(), f.Cols())
	for y := 0; y < f.Rows(); y++ {
		sy := min(max(y-dy, 0), f.Rows()-1)
		for x := 0; x < f.Cols(); x++ {
			sx := min(max(x-dx, 0), f.Cols()-1)
			out.Set(y, x, f.At(sy, sx))
		}
	}
	return out
}

// Scaled returns a copy of f multiplied by k.
func Scaled(f *array.Array2[float32], k float32) *array.Array2[float32] {
	out := f.Clone()
	for i, x := range out.Data() {
		out.Data()[i] = x * k
	}
	return out
}

// Constant returns a rows x cols field filled with v.
func Constant(rows, cols int, v float32) *array.Array2[float32] {
	f := array.New2[float32](rows, cols)
	for i := range f.Data() {
		f.Data()[i] = v
	}
	return f
}

// InteriorRMS returns the root-mean-square difference between f and want
// over the pixels at least margin away from every edge.
func InteriorRMS(f *array.Array2[float32], want float64, margin int) float64 {
	sum, n := 0.0, 0
	for y := margin; y < f.Rows()-margin; y++ {
		for x := margin; x < f.Cols()-margin; x++ {
			d := float64(f.At(y, x)) - want
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}
