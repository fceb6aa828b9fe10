package opticalflow

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

// Summary describes a velocity field in grid units per frame interval.
type Summary struct {
	Rows, Cols int
	// Valid counts vectors with both components finite.
	Valid     int
	MeanU     float64
	MeanV     float64
	MeanSpeed float64
	MaxSpeed  float64
	// SpeedStdDev is the sample standard deviation of the speeds.
	SpeedStdDev float64
}

// ValidFraction returns Valid over the grid area.
func (s Summary) ValidFraction() float64 {
	if s.Rows*s.Cols == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Rows*s.Cols)
}

// Summarize computes Summary for (u, v).
func Summarize(u, v *array.Array2[float32]) (Summary, error) {
	if err := arrayutil.CheckShape("summarize", u, v); err != nil {
		return Summary{}, err
	}
	s := Summary{Rows: u.Rows(), Cols: u.Cols()}
	us := make([]float64, 0, u.Len())
	vs := make([]float64, 0, u.Len())
	speeds := make([]float64, 0, u.Len())
	vd := v.Data()
	for i, x := range u.Data() {
		a, b := float64(x), float64(vd[i])
		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			continue
		}
		us = append(us, a)
		vs = append(vs, b)
		speeds = append(speeds, math.Hypot(a, b))
	}
	s.Valid = len(speeds)
	if s.Valid == 0 {
		return s, nil
	}
	s.MeanU = stat.Mean(us, nil)
	s.MeanV = stat.Mean(vs, nil)
	s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	if s.Valid == 1 {
		s.SpeedStdDev = 0
	}
	s.MaxSpeed = floats.Max(speeds)
	return s, nil
}
