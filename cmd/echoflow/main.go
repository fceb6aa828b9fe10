// Command echoflow estimates motion between echo fields, forecasts fields
// along the estimated motion and manages the run store.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/echoflow/internal/version"
)

const usage = `usage: echoflow <command> [flags]

commands:
  track    estimate the motion between two fields
  advect   forecast a field along a velocity field
  batch    track every consecutive pair of frames in a directory
  runs     list stored tracking runs
  migrate  manage the run store schema (up, down, version)
  version  print build information

Run "echoflow <command> -h" for the flags of a command.
`

var commands = map[string]func(args []string, stdout io.Writer) error{
	"track":   runTrack,
	"advect":  runAdvect,
	"batch":   runBatch,
	"runs":    runRuns,
	"migrate": runMigrate,
	"version": func(_ []string, stdout io.Writer) error {
		_, err := fmt.Fprintln(stdout, version.String())
		return err
	},
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("echoflow: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err := cmd(os.Args[2:], os.Stdout); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
