// Package monitoring holds the diagnostic logger shared by the motion
// engine, the run store and the command-line tools.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger so tests and batch runs can redirect or mute
// engine diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Discard mutes Logf and returns a function restoring the previous logger.
func Discard() (restore func()) {
	prev := Logf
	SetLogger(nil)
	return func() { Logf = prev }
}

// Timed logs how long a named step took once the returned function runs:
//
//	defer monitoring.Timed("track 20260101_0000")()
func Timed(step string) func() {
	start := time.Now()
	return func() {
		Logf("%s took %v", step, time.Since(start).Round(time.Millisecond))
	}
}
