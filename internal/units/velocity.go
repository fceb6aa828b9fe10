package units

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

// PixelsPerStepToMPS converts a displacement in grid cells per frame
// interval to metres per second.
func PixelsPerStepToMPS(pixels, gridSpacingM float64, step time.Duration) float64 {
	if step <= 0 {
		return math.NaN()
	}
	return pixels * gridSpacingM / step.Seconds()
}

// SpeedField writes the magnitude of (u, v) in the target units to dst.
// NaN vectors stay NaN.
func SpeedField(dst, u, v *array.Array2[float32], gridSpacingM float64, step time.Duration, targetUnits string) error {
	if !IsValid(targetUnits) {
		return fmt.Errorf("invalid units %q, expected one of: %s", targetUnits, GetValidUnitsString())
	}
	if step <= 0 {
		return fmt.Errorf("time step must be positive, got %s", step)
	}
	if err := arrayutil.CheckSameShape("speed_field", dst, u, v); err != nil {
		return err
	}
	ud, vd, out := u.Data(), v.Data(), dst.Data()
	for i := range out {
		px := math.Hypot(float64(ud[i]), float64(vd[i]))
		out[i] = float32(ConvertSpeed(PixelsPerStepToMPS(px, gridSpacingM, step), targetUnits))
	}
	return nil
}
