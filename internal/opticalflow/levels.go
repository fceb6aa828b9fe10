package opticalflow

import "math"

// Level describes one pyramid level.
type Level struct {
	Index int
	// Scale is relative to the original resolution.
	Scale float64
	// Sigma and KernelSize smooth the full-resolution field before it is
	// resampled to this level. Level 0 is not smoothed.
	Sigma      float64
	KernelSize int
	Rows       int
	Cols       int
}

// PlanLevels returns the pyramid for a rows x cols grid, finest first.
// Coarser levels are added while the shorter side stays at least 32 samples
// and fewer than maxLevels have been added.
func PlanLevels(rows, cols int, scale float64, maxLevels int) []Level {
	n := 0
	for s := 1.0; n < maxLevels; n++ {
		s *= scale
		if float64(cols)*s < minLevelSize || float64(rows)*s < minLevelSize {
			break
		}
	}

	levels := make([]Level, n+1)
	s := 1.0
	for k := range levels {
		sigma := (1/s - 1) * 0.5
		size := int(math.Round(sigma*5)) | 1
		levels[k] = Level{
			Index:      k,
			Scale:      s,
			Sigma:      sigma,
			KernelSize: max(size, 3),
			Rows:       int(math.Round(float64(rows) * s)),
			Cols:       int(math.Round(float64(cols) * s)),
		}
		s *= scale
	}
	return levels
}
