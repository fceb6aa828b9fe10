package opticalflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/testutil"
)

func TestPixelMask(t *testing.T) {
	f, err := array.Wrap(2, 2, []float32{0, 10, 20, 30})
	require.NoError(t, err)

	assert.Equal(t, float32(10), PixelMask(f, 0, 1, -1), "integer position is exact")
	assert.InDelta(t, 15, PixelMask(f, 0.5, 0.5, -1), 1e-6)
	assert.Equal(t, float32(-1), PixelMask(f, 5, 5, -1), "fully outside")
	assert.Equal(t, float32(-1), PixelMask(f, -1.5, 0, -1))
	// half the weight falls off the right edge
	assert.InDelta(t, (10+(-1))*0.5, PixelMask(f, 0, 1.5, -1), 1e-6)
	assert.Equal(t, float32(-1), PixelMask(f, math.NaN(), 0, -1))

	f.Set(0, 0, float32(math.NaN()))
	assert.InDelta(t, (-1+10)*0.5, PixelMask(f, 0, 0.5, -1), 1e-6, "NaN samples count as background")
}

func TestAdvectField_ZeroFlowIsIdentity(t *testing.T) {
	src := testutil.EchoField(30, 40, 2)
	dst := array.New2[float32](30, 40)
	zero := array.New2[float32](30, 40)
	require.NoError(t, AdvectField(dst, src, zero, zero, 0))
	assert.Equal(t, src.Data(), dst.Data())
}

func TestAdvectField_IntegerShift(t *testing.T) {
	src := testutil.EchoField(30, 40, 2)
	dst := array.New2[float32](30, 40)
	u := testutil.Constant(30, 40, 3)
	v := testutil.Constant(30, 40, -1)
	require.NoError(t, AdvectField(dst, src, u, v, -5))

	want := testutil.Shift(src, -1, 3)
	for y := 0; y < 29; y++ {
		for x := 3; x < 40; x++ {
			assert.Equal(t, want.At(y, x), dst.At(y, x), "(%d,%d)", y, x)
		}
	}
	assert.Equal(t, float32(-5), dst.At(0, 0), "sampled from off the grid")
}

// Advecting lag1 with the velocities estimated from (lag1, lag0) should
// reproduce lag0 closely.
func TestAdvectField_ForecastMatchesLaterField(t *testing.T) {
	lag1 := testutil.EchoField(96, 96, 17)
	lag0 := testutil.Shift(lag1, 2, -1)
	tr := newTestTracker(t, 96, 96)
	u := array.New2[float32](96, 96)
	v := array.New2[float32](96, 96)
	require.NoError(t, tr.DetermineVelocities(lag1, lag0, u, v, gainOptions()))

	forecast := array.New2[float32](96, 96)
	require.NoError(t, AdvectField(forecast, lag1, u, v, 0))
	diff := array.New2[float32](96, 96)
	require.NoError(t, arrayutil.Subtract(diff, forecast, lag0))
	assert.Less(t, testutil.InteriorRMS(diff, 0, margin), 3.0)
}

func TestAdvectField_Errors(t *testing.T) {
	f := testutil.EchoField(10, 10, 1)
	u := array.New2[float32](10, 10)
	assert.ErrorIs(t, AdvectField(f, f, u, u, 0), ErrAliasedFields)
	assert.ErrorIs(t, AdvectField(array.New2[float32](10, 9), f, u, u, 0), arrayutil.ErrShapeMismatch)
}
