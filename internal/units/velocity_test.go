package units

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"valid knots", Knots, true},
		{"invalid unit", "invalid", false},
		{"empty unit", "", false},
		{"uppercase MPS", "MPS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	assert.Equal(t, "mps, mph, kmph, kph, kt", GetValidUnitsString())
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		unit     string
		expected float64
	}{
		{"1 m/s to mps", 1.0, MPS, 1.0},
		{"1 m/s to mph", 1.0, MPH, 2.2369362920544},
		{"5 m/s to mph", 5.0, MPH, 11.184681460272},
		{"1 m/s to kmph", 1.0, KMPH, 3.6},
		{"5 m/s to kph", 5.0, KPH, 18.0},
		{"1 m/s to knots", 1.0, Knots, 1.9438444924406},
		{"1 m/s to unknown", 1.0, "unknown", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMPS, tt.unit)
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMPS, tt.unit, result, tt.expected)
			}
		})
	}
}

func TestPixelsPerStepToMPS(t *testing.T) {
	// 2 cells of 250 m every 5 minutes.
	assert.InDelta(t, 500.0/300.0, PixelsPerStepToMPS(2, 250, 5*time.Minute), 1e-12)
	assert.Equal(t, 0.0, PixelsPerStepToMPS(0, 250, time.Second))
	assert.True(t, math.IsNaN(PixelsPerStepToMPS(1, 1, 0)))
}

func TestSpeedField(t *testing.T) {
	u := array.New2[float32](1, 3)
	v := array.New2[float32](1, 3)
	dst := array.New2[float32](1, 3)
	u.Set(0, 0, 3)
	v.Set(0, 0, 4)
	u.Set(0, 2, float32(math.NaN()))

	require.NoError(t, SpeedField(dst, u, v, 10, 2*time.Second, KMPH))
	assert.InDelta(t, 5*10/2.0*3.6, dst.At(0, 0), 1e-4)
	assert.Equal(t, float32(0), dst.At(0, 1))
	assert.True(t, math.IsNaN(float64(dst.At(0, 2))))

	t.Run("invalid units", func(t *testing.T) {
		err := SpeedField(dst, u, v, 10, time.Second, "furlongs")
		assert.ErrorContains(t, err, "invalid units")
	})
	t.Run("zero step", func(t *testing.T) {
		assert.Error(t, SpeedField(dst, u, v, 10, 0, MPS))
	})
	t.Run("shape mismatch", func(t *testing.T) {
		err := SpeedField(array.New2[float32](2, 3), u, v, 10, time.Second, MPS)
		assert.ErrorIs(t, err, arrayutil.ErrShapeMismatch)
	})
}
