package array

import "fmt"

// Buffer is the element access shared by Array1 and Array2.
type Buffer[T any] interface {
	// Len returns the logical number of elements.
	Len() int
	// Data returns the logical elements in storage order.
	Data() []T
}

// Array1 is an owned one-dimensional buffer.
type Array1[T any] struct {
	data []T
}

// New1 allocates a zeroed Array1 of n elements.
func New1[T any](n int) *Array1[T] {
	if n < 0 {
		panic(fmt.Sprintf("array: negative size %d", n))
	}
	return &Array1[T]{data: make([]T, n)}
}

// Len returns the logical size.
func (a *Array1[T]) Len() int { return len(a.data) }

// Cap returns the size of the backing allocation.
func (a *Array1[T]) Cap() int { return cap(a.data) }

// Data returns the logical elements.
func (a *Array1[T]) Data() []T { return a.data }

// At returns element i.
func (a *Array1[T]) At(i int) T { return a.data[i] }

// Set stores v at element i.
func (a *Array1[T]) Set(i int, v T) { a.data[i] = v }

// Resize changes the logical size to n. The backing allocation is replaced
// only when n exceeds its capacity, in which case the contents are not
// preserved.
func (a *Array1[T]) Resize(n int) {
	if n > cap(a.data) {
		a.data = make([]T, n)
		return
	}
	a.data = a.data[:n]
}

// Clone returns a deep copy trimmed to the logical size.
func (a *Array1[T]) Clone() *Array1[T] {
	out := make([]T, len(a.data))
	copy(out, a.data)
	return &Array1[T]{data: out}
}

// Array2 is an owned, row-major two-dimensional buffer.
type Array2[T any] struct {
	data []T
	rows int
	cols int
}

// New2 allocates a zeroed rows x cols Array2.
func New2[T any](rows, cols int) *Array2[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("array: negative shape %dx%d", rows, cols))
	}
	return &Array2[T]{data: make([]T, rows*cols), rows: rows, cols: cols}
}

// Wrap adopts data as a rows x cols array without copying.
func Wrap[T any](rows, cols int, data []T) (*Array2[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("array: negative shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("array: %d elements cannot form a %dx%d array", len(data), rows, cols)
	}
	return &Array2[T]{data: data, rows: rows, cols: cols}, nil
}

// Rows returns the logical number of rows.
func (a *Array2[T]) Rows() int { return a.rows }

// Cols returns the logical number of columns.
func (a *Array2[T]) Cols() int { return a.cols }

// Shape returns (rows, cols).
func (a *Array2[T]) Shape() (int, int) { return a.rows, a.cols }

// Len returns rows*cols.
func (a *Array2[T]) Len() int { return a.rows * a.cols }

// Cap returns the number of elements in the backing allocation.
func (a *Array2[T]) Cap() int { return cap(a.data) }

// Data returns the logical elements in row-major order.
func (a *Array2[T]) Data() []T { return a.data[:a.rows*a.cols] }

// Row returns the slice backing row y. Writes through it modify the array.
func (a *Array2[T]) Row(y int) []T {
	off := y * a.cols
	return a.data[off : off+a.cols : off+a.cols]
}

// At returns the element at row y, column x.
func (a *Array2[T]) At(y, x int) T { return a.data[y*a.cols+x] }

// Set stores v at row y, column x.
func (a *Array2[T]) Set(y, x int, v T) { a.data[y*a.cols+x] = v }

// Ptr returns a pointer to the element at row y, column x.
func (a *Array2[T]) Ptr(y, x int) *T { return &a.data[y*a.cols+x] }

// Resize sets the logical shape. A new zeroed allocation is made only when
// the requested area exceeds the current capacity; otherwise the existing
// elements are reinterpreted under the new shape.
func (a *Array2[T]) Resize(rows, cols int) {
	n := rows * cols
	if n > cap(a.data) {
		a.data = make([]T, n)
	} else {
		a.data = a.data[:n]
	}
	a.rows, a.cols = rows, cols
}

// HackSize reinterprets the existing allocation as rows x cols without
// reallocating or copying. The caller must guarantee rows*cols does not
// exceed Cap; violating that panics with a slice bounds error.
func (a *Array2[T]) HackSize(rows, cols int) {
	a.data = a.data[:rows*cols]
	a.rows, a.cols = rows, cols
}

// Clone returns a deep copy with a tight allocation.
func (a *Array2[T]) Clone() *Array2[T] {
	out := make([]T, a.Len())
	copy(out, a.Data())
	return &Array2[T]{data: out, rows: a.rows, cols: a.cols}
}

// SameShape reports whether a and b have identical logical shapes.
func SameShape[T, U any](a *Array2[T], b *Array2[U]) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// SharesStorage reports whether a and b are backed by the same allocation.
func SharesStorage[T any](a, b *Array2[T]) bool {
	if a == b {
		return true
	}
	if cap(a.data) == 0 || cap(b.data) == 0 {
		return false
	}
	return &a.data[:1][0] == &b.data[:1][0]
}
