package opticalflow

import (
	"fmt"
	"math"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
)

// VelocityOptions are the per-call settings of DetermineVelocities. Nil
// pointers mean "not supplied".
type VelocityOptions struct {
	// UseInitialFlow seeds the coarsest level from the incoming velocities.
	UseInitialFlow bool

	// Background replaces NaN input samples. Threshold and Gain are only
	// applied when Background is set.
	Background *float32
	// Threshold sets samples below it to Background before tracking, and
	// marks where gap filling applies.
	Threshold *float32
	// Gain multiplies both fields after thresholding.
	Gain *float32

	// FillGaps replaces vectors where lag0 does not exceed Threshold with
	// values interpolated from the tracked regions.
	FillGaps          bool
	Spacing           int
	MinFracBinsForAvg float32
	IDWLowResPower    float64
	IDWHighResPower   float64
}

// DefaultVelocityOptions returns the gap-filling defaults with no
// preprocessing.
func DefaultVelocityOptions() VelocityOptions {
	return VelocityOptions{
		Spacing:           8,
		MinFracBinsForAvg: 0.25,
		IDWLowResPower:    2,
		IDWHighResPower:   2,
	}
}

// DetermineVelocities estimates the motion from lag1 (earlier) to lag0
// (later) and writes it to (u, v), in grid units per frame interval.
//
// The vectors are anchored on lag0's grid: internally the tracker runs from
// lag0 back to lag1 and the result is negated, so that
// lag0(y, x) ~ lag1(y-v, x-u).
//
// The solver's regulariser is an absolute constant, so fields with weak
// gradients (amplitudes of a few tens, spread over many cells) track to
// almost zero. Set Background and Gain to lift such fields into range.
//
// A shape error leaves u and v untouched.
func (t *Tracker) DetermineVelocities(lag1, lag0, u, v *array.Array2[float32], opts VelocityOptions) error {
	if err := arrayutil.CheckSameShape("determine_velocities", lag1, lag0, u, v); err != nil {
		return err
	}
	if err := t.checkShape("determine_velocities", lag1, lag0, u, v); err != nil {
		return err
	}
	if opts.FillGaps && opts.Spacing < 1 {
		return fmt.Errorf("%w: gap spacing %d must be positive", ErrInvalidConfig, opts.Spacing)
	}

	f1, f0 := lag1, lag0
	if opts.Background != nil {
		f1 = prepareField(lag1, opts)
		f0 = prepareField(lag0, opts)
	}

	if opts.UseInitialFlow {
		arrayutil.Scale(u, -1)
		arrayutil.Scale(v, -1)
	}
	if err := t.TrackFields(f0, f1, u, v, opts.UseInitialFlow); err != nil {
		return err
	}
	arrayutil.Scale(u, -1)
	arrayutil.Scale(v, -1)

	if !opts.FillGaps {
		return nil
	}
	maskUntracked(u, lag0, opts.Threshold)
	return InterpolateGaps(u, v, opts.Spacing, opts.MinFracBinsForAvg, opts.IDWLowResPower, opts.IDWHighResPower)
}

// prepareField returns a copy of f with NaNs replaced by the background,
// sub-threshold samples set to the background and the gain applied.
func prepareField(f *array.Array2[float32], opts VelocityOptions) *array.Array2[float32] {
	out := f.Clone()
	bg := *opts.Background
	arrayutil.RemoveNaNs(out, bg)
	if opts.Threshold != nil {
		arrayutil.ThresholdMin(out, *opts.Threshold, bg)
	}
	if opts.Gain != nil {
		arrayutil.Scale(out, *opts.Gain)
	}
	return out
}

// maskUntracked sets u to NaN wherever lag0 does not exceed threshold. With
// no threshold only missing lag0 samples are masked.
func maskUntracked(u, lag0 *array.Array2[float32], threshold *float32) {
	nan := float32(math.NaN())
	ud, ld := u.Data(), lag0.Data()
	for i, x := range ld {
		if threshold == nil {
			if math.IsNaN(float64(x)) {
				ud[i] = nan
			}
			continue
		}
		if !(x > *threshold) {
			ud[i] = nan
		}
	}
}
