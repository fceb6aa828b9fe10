package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/echoflow/internal/fieldio"
	"github.com/banshee-data/echoflow/internal/monitoring"
	"github.com/banshee-data/echoflow/internal/opticalflow"
)

func runBatch(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	dir := fs.String("dir", "", "directory of frames, time ordered by name")
	parallel := fs.Int("parallel", runtime.NumCPU(), "maximum pairs tracked at once")
	configPath := fs.String("config", "", "tuning config JSON (defaults apply when empty)")
	outDir := fs.String("out", "", "output directory (default <dir>/flow)")
	dbPath := fs.String("db", "", "record every run in this SQLite database")
	var o outputOptions
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("-dir is required")
	}
	if *parallel < 1 {
		return fmt.Errorf("-parallel must be positive, got %d", *parallel)
	}
	if *outDir == "" {
		*outDir = filepath.Join(*dir, "flow")
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	store := fieldio.NewStore()
	frames, err := store.Frames(*dir)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("need at least two frames in %s, found %d", *dir, len(frames))
	}

	first, err := store.Read(frames[0])
	if err != nil {
		return err
	}
	// Scratch space is per call, so one tracker serves every goroutine.
	tracker, err := opticalflow.NewTracker(tuning.TrackerConfig(first.Rows(), first.Cols()))
	if err != nil {
		return err
	}

	defer monitoring.Timed(fmt.Sprintf("batch of %d pairs", len(frames)-1))()
	results := make([]*pairResult, len(frames)-1)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for i := 1; i < len(frames); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := trackPair(store, tuning, tracker, frames[i-1], frames[i])
			if err != nil {
				return err
			}
			prefix := filepath.Join(*outDir, strings.TrimSuffix(filepath.Base(frames[i]), filepath.Ext(frames[i])))
			if err := writeOutputs(store, prefix, res, tuning, o); err != nil {
				return err
			}
			results[i-1] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		printSummary(stdout, res, tuning, o.units)
	}
	if *dbPath != "" {
		ids, err := recordRuns(*dbPath, tuning, results...)
		if err != nil {
			return err
		}
		log.Printf("recorded %d runs in %s", len(ids), *dbPath)
	}
	return nil
}
