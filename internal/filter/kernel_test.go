package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussianKernel_SumsToOne(t *testing.T) {
	cases := []struct {
		size  int
		sigma float64
	}{
		{1, 0}, {3, 0}, {5, 1.2}, {7, 0}, {0, 0.5}, {0, 2.5}, {31, 7.75}, {11, 0.1},
	}
	for _, tc := range cases {
		k, err := GaussianKernel(tc.size, tc.sigma)
		require.NoError(t, err, "size=%d sigma=%g", tc.size, tc.sigma)
		assert.InDelta(t, 1.0, floats.Sum(k), 1e-12, "size=%d sigma=%g", tc.size, tc.sigma)
		assert.Equal(t, 1, len(k)%2)
		for i := 0; i < len(k)/2; i++ {
			assert.Equal(t, k[i], k[len(k)-1-i], "kernel must be symmetric")
		}
	}
}

func TestDeriveKernel(t *testing.T) {
	size, sigma, err := DeriveKernel(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, size)
	assert.Equal(t, 1.0, sigma)

	size, sigma, err = DeriveKernel(5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, size)
	assert.InDelta(t, 1.1, sigma, 1e-12)

	_, _, err = DeriveKernel(-3, 1)
	assert.ErrorIs(t, err, ErrInvalidKernel)
	_, _, err = DeriveKernel(4, 1)
	assert.ErrorIs(t, err, ErrInvalidKernel)
	_, _, err = DeriveKernel(0, 0)
	assert.ErrorIs(t, err, ErrInvalidKernel)
}
