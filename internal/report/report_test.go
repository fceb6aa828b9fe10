package report

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/fsutil"
	"github.com/banshee-data/echoflow/internal/testutil"
)

func rotation(rows, cols int) (*array.Array2[float32], *array.Array2[float32]) {
	u := array.New2[float32](rows, cols)
	v := array.New2[float32](rows, cols)
	cy, cx := float32(rows-1)/2, float32(cols-1)/2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			u.Set(y, x, -(float32(y) - cy)*0.1)
			v.Set(y, x, (float32(x)-cx)*0.1)
		}
	}
	return u, v
}

func decodePNG(t *testing.T, fsys fsutil.FileSystem, path string) {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestScalarGridOrientation(t *testing.T) {
	f := array.New2[float32](3, 2)
	f.Set(0, 1, 7)
	g := scalarGrid{f}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, r)
	// Top plot row is grid row 0.
	assert.Equal(t, 7.0, g.Z(1, 2))
	assert.Equal(t, 0.0, g.Y(2))
	assert.Equal(t, -2.0, g.Y(0))
}

func TestVectorGridSubsamples(t *testing.T) {
	u := array.New2[float32](5, 5)
	v := array.New2[float32](5, 5)
	u.Set(0, 2, 1)
	v.Set(0, 2, 2)
	v.Set(4, 4, float32(math.NaN()))
	g := vectorGrid{u: u, v: v, stride: 2}

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 0.0, g.Y(2))
	assert.Equal(t, 2.0, g.X(1))
	xy := g.Vector(1, 2)
	assert.Equal(t, 1.0, xy.X)
	assert.Equal(t, -2.0, xy.Y)
	assert.Zero(t, g.Vector(2, 0).Y, "NaN vector should be drawn as zero")
	assert.InDelta(t, math.Sqrt(5), g.maxLength(), 1e-12)
}

func TestSaveHeatMapPNG(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	f := testutil.EchoField(24, 32, 3)
	f.Set(5, 5, float32(math.NaN()))

	require.NoError(t, SaveHeatMapPNG(fsys, "speed.png", f, "speed"))
	decodePNG(t, fsys, "speed.png")

	require.NoError(t, SaveHeatMapPNG(fsys, "flat.png", testutil.Constant(8, 8, 2), "flat"))

	nan := testutil.Constant(4, 4, float32(math.NaN()))
	assert.True(t, errors.Is(SaveHeatMapPNG(fsys, "nan.png", nan, "nan"), ErrNoData))
}

func TestSaveQuiverPNG(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	u, v := rotation(20, 20)

	require.NoError(t, SaveQuiverPNG(fsys, "flow.png", u, v, 4, "rotation"))
	decodePNG(t, fsys, "flow.png")

	still := array.New2[float32](10, 10)
	require.NoError(t, SaveQuiverPNG(fsys, "still.png", still, still.Clone(), 0, "still"))

	err := SaveQuiverPNG(fsys, "bad.png", u, array.New2[float32](3, 3), 1, "bad")
	assert.ErrorIs(t, err, arrayutil.ErrShapeMismatch)
}

func TestArrowGlyph(t *testing.T) {
	sty := draw.LineStyle{Color: color.Black}

	var c recorder.Canvas
	arrowGlyph(&c, sty, plotter.XY{X: 0.6, Y: 0.8})
	var strokes, fills int
	for _, a := range c.Actions {
		switch a := a.(type) {
		case *recorder.SetColor:
			assert.Equal(t, color.Black, a.Color)
		case *recorder.Stroke:
			strokes++
		case *recorder.Fill:
			fills++
		}
	}
	assert.Equal(t, 1, strokes, "shaft")
	assert.Equal(t, 1, fills, "head")

	var still recorder.Canvas
	arrowGlyph(&still, sty, plotter.XY{})
	assert.Empty(t, still.Actions)
}

func TestWriteSpeedHeatMapHTML(t *testing.T) {
	f := testutil.EchoField(16, 16, 9)
	f.Set(0, 0, float32(math.NaN()))

	var buf bytes.Buffer
	require.NoError(t, WriteSpeedHeatMapHTML(&buf, f, "Echo speed", "kph", 2))
	html := buf.String()
	assert.Contains(t, html, "Echo speed")
	assert.Contains(t, html, "stride=2 units=kph")
	assert.Contains(t, html, "heatmap")

	nan := testutil.Constant(2, 2, float32(math.NaN()))
	assert.ErrorIs(t, WriteSpeedHeatMapHTML(&bytes.Buffer{}, nan, "x", "mps", 1), ErrNoData)
}
