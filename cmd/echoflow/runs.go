package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/echoflow/internal/db"
)

func runRuns(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite run store")
	limit := fs.Int("limit", 20, "number of runs to list, newest first (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("-db is required")
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tGRID\tVALID\tMEAN PX\tMAX PX\tLAG0")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%.1f%%\t%.3f\t%.3f\t%s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Summary.Rows, r.Summary.Cols,
			100*r.Summary.ValidFraction(), r.Summary.MeanSpeed, r.Summary.MaxSpeed, r.Lag0Path)
	}
	return tw.Flush()
}
