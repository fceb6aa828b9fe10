package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/db"
	"github.com/banshee-data/echoflow/internal/fieldio"
	"github.com/banshee-data/echoflow/internal/opticalflow"
)

func runAdvect(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("advect", flag.ContinueOnError)
	fieldPath := fs.String("field", "", "field to forecast")
	runID := fs.String("run", "", "take the velocities from this stored run (requires -db)")
	dbPath := fs.String("db", "", "SQLite run store")
	uPath := fs.String("u", "", "column velocity field (alternative to -run)")
	vPath := fs.String("v", "", "row velocity field (alternative to -run)")
	out := fs.String("out", "", "forecast output path (.ecf)")
	steps := fs.Int("steps", 1, "number of frame intervals to forecast ahead")
	background := fs.Float64("background", 0, "value used outside the grid and for missing samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch {
	case *fieldPath == "" || *out == "":
		return errors.New("-field and -out are required")
	case (*runID == "") == (*uPath == "" || *vPath == ""):
		return errors.New("give either -run or both -u and -v")
	case *runID != "" && *dbPath == "":
		return errors.New("-run requires -db")
	case *steps < 1:
		return fmt.Errorf("-steps must be positive, got %d", *steps)
	}

	store := fieldio.NewStore()
	src, err := store.Read(*fieldPath)
	if err != nil {
		return err
	}

	var u, v *array.Array2[float32]
	if *runID != "" {
		runs, err := db.NewDB(*dbPath)
		if err != nil {
			return err
		}
		defer runs.Close()
		run, err := runs.GetRun(context.Background(), *runID)
		if err != nil {
			return err
		}
		u, v = run.U, run.V
	} else {
		if u, err = store.Read(*uPath); err != nil {
			return err
		}
		if v, err = store.Read(*vPath); err != nil {
			return err
		}
	}

	forecast, err := advectSteps(src, u, v, float32(*background), *steps)
	if err != nil {
		return err
	}
	if err := store.Write(*out, forecast); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "forecast %d step(s) of %s -> %s\n", *steps, *fieldPath, *out)
	return nil
}

// advectSteps applies AdvectField steps times, ping-ponging two buffers.
func advectSteps(src, u, v *array.Array2[float32], background float32, steps int) (*array.Array2[float32], error) {
	cur := src.Clone()
	next := array.New2[float32](src.Rows(), src.Cols())
	for i := 0; i < steps; i++ {
		if err := opticalflow.AdvectField(next, cur, u, v, background); err != nil {
			return nil, err
		}
		cur, next = next, cur
	}
	return cur, nil
}
