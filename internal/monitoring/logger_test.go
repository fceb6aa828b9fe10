package monitoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("level %d", 3)
	assert.Equal(t, []string{"level 3"}, got)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("muted") })
	assert.Len(t, got, 1)
}

func TestDiscardRestores(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })
	restore := Discard()
	Logf("dropped")
	assert.Equal(t, 0, calls)
	restore()
	Logf("kept")
	assert.Equal(t, 1, calls)
}

func TestTimed(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var line string
	SetLogger(func(format string, v ...interface{}) { line = fmt.Sprintf(format, v...) })
	Timed("poly expansion")()
	assert.True(t, strings.HasPrefix(line, "poly expansion took "), line)
}
