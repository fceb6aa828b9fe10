package arrayutil

import (
	"errors"
	"fmt"

	"github.com/banshee-data/echoflow/internal/array"
)

// ErrShapeMismatch is matched by every *ShapeError.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError reports two arrays that were required to share dimensions.
type ShapeError struct {
	Op   string
	Want [2]int
	Got  [2]int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %dx%d, got %dx%d",
		e.Op, e.Want[0], e.Want[1], e.Got[0], e.Got[1])
}

// Is lets errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeError) Is(target error) bool { return target == ErrShapeMismatch }

// CheckShape returns a *ShapeError naming op when b's shape differs from a's.
func CheckShape[T, U any](op string, a *array.Array2[T], b *array.Array2[U]) error {
	if array.SameShape(a, b) {
		return nil
	}
	return &ShapeError{
		Op:   op,
		Want: [2]int{a.Rows(), a.Cols()},
		Got:  [2]int{b.Rows(), b.Cols()},
	}
}

// CheckSameShape verifies every array in rest matches ref.
func CheckSameShape[T any](op string, ref *array.Array2[T], rest ...*array.Array2[T]) error {
	for _, b := range rest {
		if err := CheckShape(op, ref, b); err != nil {
			return err
		}
	}
	return nil
}
