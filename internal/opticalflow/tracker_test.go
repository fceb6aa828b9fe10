package opticalflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/testutil"
)

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig(64, 64)
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"empty grid":   func(c *Config) { c.Rows = 0 },
		"scale one":    func(c *Config) { c.Scale = 1 },
		"scale zero":   func(c *Config) { c.Scale = 0 },
		"neg levels":   func(c *Config) { c.Levels = -1 },
		"even window":  func(c *Config) { c.WindowSize = 4 },
		"tiny window":  func(c *Config) { c.WindowSize = 1 },
		"no iteration": func(c *Config) { c.Iterations = 0 },
		"no poly":      func(c *Config) { c.PolyN = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
			_, err := NewTracker(c)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestPlanLevels(t *testing.T) {
	levels := PlanLevels(256, 200, 0.5, 100)
	require.Len(t, levels, 3, "200*0.25 = 50 >= 32, 200*0.125 = 25 < 32")
	assert.Equal(t, Level{Index: 0, Scale: 1, Sigma: 0, KernelSize: 3, Rows: 256, Cols: 200}, levels[0])
	assert.Equal(t, 128, levels[1].Rows)
	assert.Equal(t, 100, levels[1].Cols)
	assert.InDelta(t, 0.5, levels[1].Sigma, 1e-12)
	assert.Equal(t, 3, levels[1].KernelSize)
	assert.InDelta(t, 1.5, levels[2].Sigma, 1e-12)
	assert.Equal(t, 9, levels[2].KernelSize)
	assert.Equal(t, 50, levels[2].Cols)

	assert.Len(t, PlanLevels(256, 200, 0.5, 1), 2, "caller cap")
	assert.Len(t, PlanLevels(256, 200, 0.5, 0), 1)
	assert.Len(t, PlanLevels(20, 20, 0.5, 100), 1, "already below the minimum")
}

// fieldGain lifts the echo fixtures, which span a few tens of units, well
// clear of the solver's regulariser.
const fieldGain = 50

// margin excludes the border band where edge replication biases the flow.
const margin = 8

func trackable(rows, cols int, seed uint64) *array.Array2[float32] {
	return testutil.Scaled(testutil.EchoField(rows, cols, seed), fieldGain)
}

func newTestTracker(t *testing.T, rows, cols int) *Tracker {
	t.Helper()
	tr, err := NewTracker(DefaultConfig(rows, cols))
	require.NoError(t, err)
	return tr
}

func TestTrackFields_ZeroMotion(t *testing.T) {
	f := trackable(80, 96, 3)
	tr := newTestTracker(t, 80, 96)
	u := array.New2[float32](80, 96)
	v := array.New2[float32](80, 96)
	require.NoError(t, tr.TrackFields(f, f, u, v, false))

	assert.Less(t, testutil.InteriorRMS(u, 0, margin), 0.05)
	assert.Less(t, testutil.InteriorRMS(v, 0, margin), 0.05)
}

func TestTrackFields_Translation(t *testing.T) {
	prev := trackable(96, 96, 11)
	next := testutil.Shift(prev, 1, 2)
	tr := newTestTracker(t, 96, 96)
	u := array.New2[float32](96, 96)
	v := array.New2[float32](96, 96)
	require.NoError(t, tr.TrackFields(prev, next, u, v, false))

	assert.Less(t, testutil.InteriorRMS(u, 2, margin), 0.5)
	assert.Less(t, testutil.InteriorRMS(v, 1, margin), 0.5)
}

func TestTrackFields_InitialFlowIsUsed(t *testing.T) {
	prev := trackable(96, 96, 5)
	next := testutil.Shift(prev, -2, 3)
	tr := newTestTracker(t, 96, 96)
	u := testutil.Constant(96, 96, 3)
	v := testutil.Constant(96, 96, -2)
	require.NoError(t, tr.TrackFields(prev, next, u, v, true))

	assert.Less(t, testutil.InteriorRMS(u, 3, margin), 0.5)
	assert.Less(t, testutil.InteriorRMS(v, -2, margin), 0.5)
}

func TestTrackFields_ShapeMismatch(t *testing.T) {
	tr := newTestTracker(t, 40, 40)
	f := testutil.EchoField(40, 40, 1)
	u := testutil.Constant(40, 40, 5)
	v := testutil.Constant(40, 40, 5)

	err := tr.TrackFields(f, testutil.EchoField(40, 41, 1), u, v, false)
	require.ErrorIs(t, err, arrayutil.ErrShapeMismatch)
	assert.Equal(t, testutil.Constant(40, 40, 5).Data(), u.Data(), "no partial output")
}

func TestNewTracker_Levels(t *testing.T) {
	tr := newTestTracker(t, 128, 128)
	levels := tr.Levels()
	require.Len(t, levels, 3)
	levels[0].Rows = -1
	assert.Equal(t, 128, tr.Levels()[0].Rows, "Levels returns a copy")
	assert.Equal(t, DefaultIterations, tr.Config().Iterations)
}
