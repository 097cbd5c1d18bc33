package monitor

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/depthcluster/internal/lidar"
)

// viridisRamp matches the colour ramp used across the project's charts.
var viridisRamp = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// maxChartCells bounds the number of heat-map cells in one HTML page to
// keep the payload renderable in a browser; larger images are
// downsampled by column stride.
const maxChartCells = 60000

// RenderLabelHeatMap writes a standalone HTML page visualising a label
// image as an ECharts heat map. Unlabeled pixels are omitted so the
// chart shows only cluster extents.
func RenderLabelHeatMap(labels *lidar.LabelImage, w io.Writer) error {
	rows, cols := labels.Rows, labels.Cols

	stride := 1
	if rows*cols > maxChartCells {
		stride = (rows*cols + maxChartCells - 1) / maxChartCells
	}

	maxLabel := uint16(0)
	data := make([]opts.HeatMapData, 0, rows*cols/stride+1)
	for c := 0; c < cols; c += stride {
		for r := 0; r < rows; r++ {
			label := labels.At(r, c)
			if label == 0 {
				continue
			}
			if label > maxLabel {
				maxLabel = label
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{c, r, int(label)}})
		}
	}
	if maxLabel == 0 {
		maxLabel = 1
	}

	xAxis := make([]int, 0, cols/stride+1)
	for c := 0; c < cols; c += stride {
		xAxis = append(xAxis, c)
	}
	yAxis := make([]int, rows)
	for r := range yAxis {
		yAxis[r] = r
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Segmentation Labels",
			Theme:     "dark",
			Width:     "1400px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Segmentation label image",
			Subtitle: fmt.Sprintf("%dx%d cells=%d stride=%d", rows, cols, len(data), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "azimuth bin"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "beam", Data: yAxis}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        1,
			Max:        float32(maxLabel),
			InRange:    &opts.VisualMapInRange{Color: viridisRamp},
		}),
	)

	hm.SetXAxis(xAxis).AddSeries("labels", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("failed to render label heat map: %w", err)
	}
	return nil
}
