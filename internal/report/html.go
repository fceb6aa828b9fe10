package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/echoflow/internal/array"
)

// viridis matches the palette of the other HTML views.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteSpeedHeatMapHTML renders a speed field as an interactive heat map.
// Every stride-th cell is emitted; NaN cells are omitted.
func WriteSpeedHeatMapHTML(w io.Writer, speed *array.Array2[float32], title, units string, stride int) error {
	lo, hi, ok := finiteRange(speed.Data())
	if !ok {
		return ErrNoData
	}
	if stride < 1 {
		stride = 1
	}

	var xs, ys []int
	for x := 0; x < speed.Cols(); x += stride {
		xs = append(xs, x)
	}
	for y := 0; y < speed.Rows(); y += stride {
		ys = append(ys, y)
	}
	// Category axes grow upwards; list rows bottom first so row 0 is on top.
	labels := make([]int, len(ys))
	for i, y := range ys {
		labels[len(ys)-1-i] = y
	}

	data := make([]opts.HeatMapData, 0, len(xs)*len(ys))
	for yi, y := range ys {
		for xi, x := range xs {
			s := float64(speed.At(y, x))
			if math.IsNaN(s) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, len(ys) - 1 - yi, s}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("grid=%dx%d stride=%d units=%s", speed.Rows(), speed.Cols(), stride, units)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Column", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels, Name: "Row", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.SetXAxis(xs).AddSeries("speed", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("render speed heat map: %w", err)
	}
	return nil
}
