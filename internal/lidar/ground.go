package lidar

import (
	"fmt"
	"math"

	"github.com/banshee-data/depthcluster/internal/monitoring"
	"github.com/banshee-data/depthcluster/internal/units"
)

// groundSeedMaxAngle gates seeding of the ground flood fill: a column
// whose bottom-most valid pixel already inclines more than 30 degrees
// cannot be looking at ground, so that column contributes no seed.
var groundSeedMaxAngle = units.Radians(30)

// Depth repair defaults: holes are filled from up to repairStep-1 rows
// above and below, and only from neighbour pairs that agree to within
// repairDepthThreshold metres, so repairs never smooth across a real
// depth discontinuity.
const (
	repairStep           = 5
	repairDepthThreshold = 1.0

	dilationWindow = 5
)

// DepthGroundRemover suppresses ground returns in depth images. The
// pipeline on each image: repair small vertical holes, derive the
// row-to-row inclination-angle image, smooth it column-wise with a
// Savitzky-Golay kernel, flood-fill ground from the bottom of each
// column, dilate the resulting mask, and zero the masked pixels.
type DepthGroundRemover struct {
	params            *ProjectionParams
	windowSize        int
	groundRemoveAngle float64

	// Statistics (for tuning and validation)
	imagesProcessed int64
	pixelsZeroed    int64
}

// NewDepthGroundRemover validates the smoothing window and builds the
// remover. groundRemoveAngle is the inclination-change threshold (in
// radians) under which neighbouring pixels are considered part of the
// same ground patch.
func NewDepthGroundRemover(params *ProjectionParams, windowSize int, groundRemoveAngle float64) (*DepthGroundRemover, error) {
	if windowSize%2 == 0 || savitzkyGolayKernel(windowSize) == nil {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidWindowSize, windowSize)
	}
	return &DepthGroundRemover{
		params:            params,
		windowSize:        windowSize,
		groundRemoveAngle: groundRemoveAngle,
	}, nil
}

// RemoveGround runs the full pipeline on one depth image and returns a
// fresh image with ground pixels zeroed. The input is never modified.
func (g *DepthGroundRemover) RemoveGround(depth *FloatImage) (*FloatImage, error) {
	if err := g.params.CheckShape(depth.Rows, depth.Cols); err != nil {
		return nil, err
	}

	repaired := RepairDepth(depth, repairStep, repairDepthThreshold)
	angle := g.createAngleImage(repaired)
	smoothed := applySavitzkyGolay(angle, g.windowSize)
	out := g.zeroOutGround(repaired, smoothed)

	g.imagesProcessed++
	monitoring.Debugf("ground: image %dx%d processed, %d pixels zeroed total",
		depth.Rows, depth.Cols, g.pixelsZeroed)
	return out, nil
}

// Stats returns the number of images processed and the number of valid
// pixels zeroed as ground so far.
func (g *DepthGroundRemover) Stats() (images, zeroed int64) {
	return g.imagesProcessed, g.pixelsZeroed
}

// RepairDepth fills small vertical holes in a depth image. For every
// pixel below MinValidDepth it scans up to step-1 rows above and below
// in the same column; every pair of valid neighbours that agree to
// within depthThreshold contributes both its values to an average that
// replaces the hole. Repairs propagate downward within a column because
// earlier rows are repaired before later ones are read.
func RepairDepth(depth *FloatImage, step int, depthThreshold float32) *FloatImage {
	repaired := depth.Clone()
	rows, cols := repaired.Rows, repaired.Cols

	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if repaired.Pix[r*cols+c] >= MinValidDepth {
				continue
			}
			counter := 0
			sum := float32(0)
			for i := 1; i < step; i++ {
				if r-i < 0 {
					continue
				}
				for j := 1; j < step; j++ {
					if r+j > rows-1 {
						continue
					}
					prev := repaired.Pix[(r-i)*cols+c]
					next := repaired.Pix[(r+j)*cols+c]
					if prev > MinValidDepth && next > MinValidDepth &&
						absf32(prev-next) < depthThreshold {
						sum += prev + next
						counter += 2
					}
				}
			}
			if counter > 0 {
				repaired.Pix[r*cols+c] = sum / float32(counter)
			}
		}
	}
	return repaired
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// createAngleImage derives the inclination-angle image: for each pixel,
// the angle of the segment connecting its (x, y) = (d*cos(el), d*sin(el))
// position with the pixel one row above in the same column. The first
// row has no predecessor and stays zero.
func (g *DepthGroundRemover) createAngleImage(depth *FloatImage) *FloatImage {
	rows, cols := depth.Rows, depth.Cols
	angle := NewFloatImage(rows, cols)

	prevX := make([]float64, cols)
	prevY := make([]float64, cols)
	for c := 0; c < cols; c++ {
		d := float64(depth.Pix[c])
		prevX[c] = d * g.params.RowCos(0)
		prevY[c] = d * g.params.RowSin(0)
	}

	for r := 1; r < rows; r++ {
		sin, cos := g.params.RowSin(r), g.params.RowCos(r)
		for c := 0; c < cols; c++ {
			d := float64(depth.Pix[r*cols+c])
			x := d * cos
			y := d * sin
			dx := math.Abs(x - prevX[c])
			dy := math.Abs(y - prevY[c])
			angle.Pix[r*cols+c] = float32(math.Atan2(dy, dx))
			prevX[c] = x
			prevY[c] = y
		}
	}
	return angle
}

// savitzkyGolayKernel returns the quadratic Savitzky-Golay coefficients
// for the supported window sizes, or nil for any other. Coefficients
// are unnormalised; applySavitzkyGolay divides by their sum
// (35, 21, 231 and 429 respectively).
func savitzkyGolayKernel(windowSize int) []float64 {
	switch windowSize {
	case 5:
		return []float64{-3, 12, 17, 12, -3}
	case 7:
		return []float64{-2, 3, 6, 7, 6, 3, -2}
	case 9:
		return []float64{-21, 14, 39, 54, 59, 54, 39, 14, -21}
	case 11:
		return []float64{-36, 9, 44, 69, 84, 89, 84, 69, 44, 9, -36}
	}
	return nil
}

// applySavitzkyGolay smooths the angle image column-wise with the 1-D
// kernel for windowSize, using reflect-101 border handling (the border
// pixel itself is not duplicated in the reflection).
func applySavitzkyGolay(img *FloatImage, windowSize int) *FloatImage {
	kernel := savitzkyGolayKernel(windowSize)
	norm := 0.0
	for _, k := range kernel {
		norm += k
	}

	rows, cols := img.Rows, img.Cols
	half := windowSize / 2
	out := NewFloatImage(rows, cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for k := 0; k < windowSize; k++ {
				sum += kernel[k] * float64(img.Pix[reflect101(r+k-half, rows)*cols+c])
			}
			out.Pix[r*cols+c] = float32(sum / norm)
		}
	}
	return out
}

// reflect101 maps an out-of-range row index back into [0, rows) by
// mirroring about the border without repeating the border pixel.
func reflect101(r, rows int) int {
	for r < 0 || r >= rows {
		if r < 0 {
			r = -r
		}
		if r >= rows {
			r = 2*(rows-1) - r
		}
	}
	return r
}

// zeroOutGround labels ground from the bottom of each column, dilates
// the label mask, and returns the depth image with masked pixels
// zeroed. Only the bottom-most valid pixel of a column can seed; if its
// smoothed inclination already exceeds groundSeedMaxAngle the column is
// skipped entirely.
func (g *DepthGroundRemover) zeroOutGround(depth, smoothed *FloatImage) *FloatImage {
	rows, cols := depth.Rows, depth.Cols

	labeler := NewLinearImageLabeler(rows, cols, g.groundRemoveAngle, NewSimpleDiff(smoothed))
	labels := NewLabelImage(rows, cols)

	for c := 0; c < cols; c++ {
		r := rows - 1
		for r > 0 && depth.Pix[r*cols+c] < MinValidDepth {
			r--
		}
		if labels.Pix[r*cols+c] > 0 {
			continue
		}
		if float64(smoothed.Pix[r*cols+c]) > groundSeedMaxAngle {
			continue
		}
		labeler.LabelOneComponent(labels, depth, 1, PixelCoord{Row: r, Col: c})
	}

	dilated := dilateLabels(labels, dilationWindow)

	out := NewFloatImage(rows, cols)
	for i, label := range dilated.Pix {
		if label == 0 {
			out.Pix[i] = depth.Pix[i]
		} else if depth.Pix[i] >= MinValidDepth {
			g.pixelsZeroed++
		}
	}
	return out
}

// dilateLabels applies a windowSize x windowSize max filter to the
// interior of the label image; boundary half-windows keep their
// original values.
func dilateLabels(labels *LabelImage, windowSize int) *LabelImage {
	rows, cols := labels.Rows, labels.Cols
	half := windowSize / 2
	dilated := labels.Clone()

	for r := half; r < rows-half; r++ {
		for c := half; c < cols-half; c++ {
			maxVal := uint16(0)
			for wr := r - half; wr <= r+half; wr++ {
				for wc := c - half; wc <= c+half; wc++ {
					if v := labels.Pix[wr*cols+wc]; v > maxVal {
						maxVal = v
					}
				}
			}
			dilated.Pix[r*cols+c] = maxVal
		}
	}
	return dilated
}
