// Package monitor renders segmentation artefacts for offline
// inspection: beta-angle tables as PNG heat maps and label images as
// standalone ECharts HTML pages. Nothing here runs in the segmentation
// hot path.
package monitor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/depthcluster/internal/lidar"
)

// betaGrid adapts an AngleDiff beta table to plotter.GridXYZ.
// Row 0 of the table is the top beam; plot Y grows upward, so the row
// axis is flipped to keep the rendered image oriented like the sensor
// sweep.
type betaGrid struct {
	ad      *lidar.AngleDiff
	useRows bool // true: beta_rows table, false: beta_cols
}

func (g betaGrid) Dims() (c, r int) { return g.ad.Cols(), g.ad.Rows() }

func (g betaGrid) Z(c, r int) float64 {
	row := g.ad.Rows() - 1 - r
	if g.useRows {
		return g.ad.BetaRow(row, c)
	}
	return g.ad.BetaCol(row, c)
}

func (g betaGrid) X(c int) float64 { return float64(c) }
func (g betaGrid) Y(r int) float64 { return float64(r) }

// SaveBetaHeatMaps writes beta_rows.png and beta_cols.png heat maps of
// the metric's precomputed tables into outputDir, creating it if
// necessary. Returns the two file paths.
func SaveBetaHeatMaps(ad *lidar.AngleDiff, outputDir string) (rowsFile, colsFile string, err error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	rowsFile = filepath.Join(outputDir, "beta_rows.png")
	if err := saveBetaHeatMap(betaGrid{ad: ad, useRows: true}, "Row-neighbour beta angles", rowsFile); err != nil {
		return "", "", err
	}

	colsFile = filepath.Join(outputDir, "beta_cols.png")
	if err := saveBetaHeatMap(betaGrid{ad: ad, useRows: false}, "Column-neighbour beta angles", colsFile); err != nil {
		return "", "", err
	}
	return rowsFile, colsFile, nil
}

func saveBetaHeatMap(grid betaGrid, title, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "azimuth bin"
	p.Y.Label.Text = "beam"

	h := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	// Fix the palette range to the full beta domain [0, pi/2] so plots
	// of different frames are directly comparable.
	h.Min = 0
	h.Max = math.Pi / 2
	p.Add(h)

	if err := p.Save(14*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save heat map %s: %w", file, err)
	}
	return nil
}
