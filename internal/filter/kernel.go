package filter

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidKernel is returned for negative or even kernel sizes, or
	// when neither a size nor a sigma is supplied.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrFieldTooSmall is returned when a field is shorter than the kernel
	// along the convolution axis.
	ErrFieldTooSmall = errors.New("field smaller than kernel")
)

// DeriveKernel resolves the (size, sigma) pair.
//
// A size of 0 is derived from sigma as round(8*sigma+1) forced odd. A sigma
// <= 0 is derived from size as 0.3*((size-1)/2 - 1) + 0.8.
func DeriveKernel(size int, sigma float64) (int, float64, error) {
	if size < 0 {
		return 0, 0, fmt.Errorf("%w: size %d is negative", ErrInvalidKernel, size)
	}
	if size == 0 {
		if sigma <= 0 {
			return 0, 0, fmt.Errorf("%w: size and sigma both unset", ErrInvalidKernel)
		}
		size = int(math.Round(sigma*8+1)) | 1
	}
	if size%2 == 0 {
		return 0, 0, fmt.Errorf("%w: size %d is even", ErrInvalidKernel, size)
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	return size, sigma, nil
}

// GaussianKernel returns a symmetric kernel normalized to unit sum.
func GaussianKernel(size int, sigma float64) ([]float64, error) {
	size, sigma, err := DeriveKernel(size, sigma)
	if err != nil {
		return nil, err
	}
	kernel := make([]float64, size)
	half := size / 2
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}
	inv := 1 / sum
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel, nil
}
