package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/config"
	"github.com/banshee-data/echoflow/internal/db"
	"github.com/banshee-data/echoflow/internal/fieldio"
	"github.com/banshee-data/echoflow/internal/report"
	"github.com/banshee-data/echoflow/internal/units"
)

// outputOptions control what is written for each tracked pair.
type outputOptions struct {
	plot   bool
	html   bool
	stride int
	units  string
}

func (o *outputOptions) register(fs *flag.FlagSet) {
	fs.BoolVar(&o.plot, "plot", false, "write quiver and speed PNG plots")
	fs.BoolVar(&o.html, "html", false, "write an interactive speed heat map")
	fs.IntVar(&o.stride, "stride", 8, "sampling stride of plotted vectors and HTML cells")
	fs.StringVar(&o.units, "units", units.MPS, "speed units: "+units.GetValidUnitsString())
}

func runTrack(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	lag1 := fs.String("lag1", "", "earlier field (.ecf, .png, .tif)")
	lag0 := fs.String("lag0", "", "later field")
	configPath := fs.String("config", "", "tuning config JSON (defaults apply when empty)")
	out := fs.String("out", "flow", "output path prefix")
	dbPath := fs.String("db", "", "record the run in this SQLite database")
	imageScale := fs.Float64("image-scale", 1, "value of a full-scale image sample")
	var o outputOptions
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lag1 == "" || *lag0 == "" {
		return errors.New("both -lag1 and -lag0 are required")
	}
	if !units.IsValid(o.units) {
		return fmt.Errorf("invalid units %q, expected one of: %s", o.units, units.GetValidUnitsString())
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	store := fieldio.NewStore()
	store.ImageScale = float32(*imageScale)

	res, err := trackPair(store, tuning, nil, *lag1, *lag0)
	if err != nil {
		return err
	}
	if err := writeOutputs(store, *out, res, tuning, o); err != nil {
		return err
	}
	printSummary(stdout, res, tuning, o.units)

	if *dbPath != "" {
		id, err := recordRuns(*dbPath, tuning, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run %s\n", id[0])
	}
	return nil
}

// writeOutputs stores u and v under prefix and renders the requested views.
func writeOutputs(store *fieldio.Store, prefix string, r *pairResult, tuning *config.TuningConfig, o outputOptions) error {
	if err := store.Write(prefix+"_u"+fieldio.RawExt, r.U); err != nil {
		return err
	}
	if err := store.Write(prefix+"_v"+fieldio.RawExt, r.V); err != nil {
		return err
	}
	if !o.plot && !o.html {
		return nil
	}

	speed := array.New2[float32](r.U.Rows(), r.U.Cols())
	if err := units.SpeedField(speed, r.U, r.V, tuning.GetGridSpacingM(), tuning.GetTimeStep(), o.units); err != nil {
		return err
	}
	if o.plot {
		if err := report.SaveQuiverPNG(store.FS, prefix+"_flow.png", r.U, r.V, o.stride, "Motion "+r.Lag0Path); err != nil {
			return skipEmpty(err, prefix+"_flow.png")
		}
		if err := report.SaveHeatMapPNG(store.FS, prefix+"_speed.png", speed, "Speed ("+o.units+") "+r.Lag0Path); err != nil {
			return skipEmpty(err, prefix+"_speed.png")
		}
	}
	if o.html {
		var buf bytes.Buffer
		if err := report.WriteSpeedHeatMapHTML(&buf, speed, "Speed "+r.Lag0Path, o.units, o.stride); err != nil {
			return skipEmpty(err, prefix+"_speed.html")
		}
		if err := store.FS.WriteFile(prefix+"_speed.html", buf.Bytes(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// skipEmpty logs and drops report.ErrNoData; a field with no tracked
// vectors is a valid result.
func skipEmpty(err error, path string) error {
	if errors.Is(err, report.ErrNoData) {
		log.Printf("skipping %s: %v", path, err)
		return nil
	}
	return err
}

// recordRuns stores the results in the database at path and returns their ids.
func recordRuns(path string, tuning *config.TuningConfig, results ...*pairResult) ([]string, error) {
	store, err := db.NewDB(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ids := make([]string, 0, len(results))
	for _, res := range results {
		run, err := res.run(tuning)
		if err != nil {
			return ids, err
		}
		if err := store.InsertRun(context.Background(), run); err != nil {
			return ids, err
		}
		ids = append(ids, run.ID)
	}
	return ids, nil
}
