package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/config"
	"github.com/banshee-data/echoflow/internal/db"
	"github.com/banshee-data/echoflow/internal/fieldio"
	"github.com/banshee-data/echoflow/internal/opticalflow"
	"github.com/banshee-data/echoflow/internal/timeutil"
	"github.com/banshee-data/echoflow/internal/units"
)

var clock timeutil.Clock = timeutil.RealClock{}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// pairResult is the outcome of tracking one pair of frames.
type pairResult struct {
	Lag1Path, Lag0Path string
	U, V               *array.Array2[float32]
	Summary            opticalflow.Summary
	Elapsed            time.Duration
}

// trackPair estimates the motion from lag1Path to lag0Path. A nil tracker
// is built to fit the fields.
func trackPair(store *fieldio.Store, tuning *config.TuningConfig, tracker *opticalflow.Tracker, lag1Path, lag0Path string) (*pairResult, error) {
	lag1, err := store.Read(lag1Path)
	if err != nil {
		return nil, err
	}
	lag0, err := store.Read(lag0Path)
	if err != nil {
		return nil, err
	}
	if err := arrayutil.CheckSameShape("track", lag1, lag0); err != nil {
		return nil, fmt.Errorf("%s and %s: %w", lag1Path, lag0Path, err)
	}
	if tracker == nil {
		tracker, err = opticalflow.NewTracker(tuning.TrackerConfig(lag0.Rows(), lag0.Cols()))
		if err != nil {
			return nil, err
		}
	}

	u := array.New2[float32](lag0.Rows(), lag0.Cols())
	v := array.New2[float32](lag0.Rows(), lag0.Cols())
	start := clock.Now()
	if err := tracker.DetermineVelocities(lag1, lag0, u, v, tuning.VelocityOptions()); err != nil {
		return nil, fmt.Errorf("track %s -> %s: %w", lag1Path, lag0Path, err)
	}
	elapsed := clock.Since(start)

	summary, err := opticalflow.Summarize(u, v)
	if err != nil {
		return nil, err
	}
	return &pairResult{
		Lag1Path: lag1Path,
		Lag0Path: lag0Path,
		U:        u,
		V:        v,
		Summary:  summary,
		Elapsed:  elapsed,
	}, nil
}

func (r *pairResult) run(tuning *config.TuningConfig) (*db.Run, error) {
	params, err := json.Marshal(tuning)
	if err != nil {
		return nil, err
	}
	return &db.Run{
		Lag1Path: r.Lag1Path,
		Lag0Path: r.Lag0Path,
		Params:   params,
		Summary:  r.Summary,
		Elapsed:  r.Elapsed,
		U:        r.U,
		V:        r.V,
	}, nil
}

// printSummary writes one line describing a result in physical units.
func printSummary(w io.Writer, r *pairResult, tuning *config.TuningConfig, speedUnits string) {
	toUnits := func(px float64) float64 {
		return units.ConvertSpeed(units.PixelsPerStepToMPS(px, tuning.GetGridSpacingM(), tuning.GetTimeStep()), speedUnits)
	}
	s := r.Summary
	fmt.Fprintf(w, "%s -> %s: valid=%.1f%% mean=%.3f max=%.3f %s (u=%.3f v=%.3f px/step) in %v\n",
		r.Lag1Path, r.Lag0Path, 100*s.ValidFraction(),
		toUnits(s.MeanSpeed), toUnits(s.MaxSpeed), speedUnits,
		s.MeanU, s.MeanV, r.Elapsed.Round(time.Millisecond))
}
