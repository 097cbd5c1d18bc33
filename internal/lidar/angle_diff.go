package lidar

import (
	"image"
	"image/color"
	"math"
)

// AngleDiff is the between-neighbour metric used for object clustering.
// For each pixel it precomputes beta, the angle at the far vertex of the
// depth triangle formed by the pixel, its neighbour, and the sensor:
// beta approaches pi/2 where the surface is perpendicular to the line of
// sight and 0 where it is tangential. The labeler grows components
// where beta exceeds the threshold, i.e. where the surface is locally
// coherent.
//
// Tables are indexed so that BetaRow(r, c) is the angle between (r, c)
// and (r+1, c), and BetaCol(r, c) the angle between (r, c) and
// (r, (c+1) mod cols). Entries stay zero for pixels below MinValidDepth
// and for the last row of BetaRow.
type AngleDiff struct {
	depth  *FloatImage
	params *ProjectionParams

	rowAlphas []float64 // angular step row r -> r+1; last entry 0
	colAlphas []float64 // angular step col c -> c+1; last entry closes the circle
	betaRows  []float32 // rows*cols, row-major
	betaCols  []float32 // rows*cols, row-major
}

var _ DiffMetric = (*AngleDiff)(nil)

// NewAngleDiff precomputes the alpha vectors and beta tables for one
// depth image. Returns ErrShapeMismatch if the image does not belong to
// the sensor model.
func NewAngleDiff(depth *FloatImage, params *ProjectionParams) (*AngleDiff, error) {
	if err := params.CheckShape(depth.Rows, depth.Cols); err != nil {
		return nil, err
	}

	rows, cols := params.Rows(), params.Cols()
	a := &AngleDiff{
		depth:     depth,
		params:    params,
		rowAlphas: make([]float64, rows),
		colAlphas: make([]float64, cols),
		betaRows:  make([]float32, rows*cols),
		betaCols:  make([]float32, rows*cols),
	}

	for r := 0; r < rows-1; r++ {
		a.rowAlphas[r] = math.Abs(params.AngleFromRow(r+1) - params.AngleFromRow(r))
	}
	a.rowAlphas[rows-1] = 0

	for c := 0; c < cols-1; c++ {
		a.colAlphas[c] = math.Abs(params.AngleFromCol(c+1) - params.AngleFromCol(c))
	}
	// The wrap entry is the residual step that closes the circle. It can
	// be negative when the horizontal span slightly over-covers 2*pi;
	// betaAngle takes the absolute of the resulting angle either way.
	a.colAlphas[cols-1] = math.Abs(params.AngleFromCol(0)-params.AngleFromCol(cols-1)) - params.HSpan()

	for r := 0; r < rows; r++ {
		alphaRow := a.rowAlphas[r]
		for c := 0; c < cols; c++ {
			curr := float64(depth.Pix[r*cols+c])
			if curr < float64(MinValidDepth) {
				continue
			}
			alphaCol := a.colAlphas[c]

			nextC := (c + 1) % cols
			a.betaCols[r*cols+c] = float32(betaAngle(alphaCol, curr, float64(depth.Pix[r*cols+nextC])))

			nextR := r + 1
			if nextR >= rows {
				continue
			}
			a.betaRows[r*cols+c] = float32(betaAngle(alphaRow, curr, float64(depth.Pix[nextR*cols+c])))
		}
	}

	return a, nil
}

// betaAngle computes the angle at the far vertex of the depth triangle
// spanned by two beams alpha radians apart with the given depths.
func betaAngle(alpha, currentDepth, neighbourDepth float64) float64 {
	d1 := math.Max(currentDepth, neighbourDepth)
	d2 := math.Min(currentDepth, neighbourDepth)
	return math.Abs(math.Atan2(d2*math.Sin(alpha), d1-d2*math.Cos(alpha)))
}

// DiffAt returns the precomputed beta angle between two neighbouring
// pixels. The pair may be adjacent through the column wrap: (r, 0) and
// (r, cols-1) select the wrap entry at column cols-1, and symmetrically
// for rows. from and to must be distinct.
func (a *AngleDiff) DiffAt(from, to PixelCoord) float64 {
	lastRow := a.params.Rows() - 1
	row := from.Row
	if to.Row < row {
		row = to.Row
	}
	if (from.Row == lastRow && to.Row == 0) || (from.Row == 0 && to.Row == lastRow) {
		row = lastRow
	}

	lastCol := a.params.Cols() - 1
	col := from.Col
	if to.Col < col {
		col = to.Col
	}
	if (from.Col == lastCol && to.Col == 0) || (from.Col == 0 && to.Col == lastCol) {
		col = lastCol
	}

	if from.Row != to.Row {
		return float64(a.betaRows[row*a.params.Cols()+col])
	}
	return float64(a.betaCols[row*a.params.Cols()+col])
}

// SatisfiesThreshold keeps two pixels in the same component when beta
// exceeds the threshold: a large beta means the surface between them is
// close to perpendicular to the line of sight.
func (a *AngleDiff) SatisfiesThreshold(diff, threshold float64) bool {
	return diff > threshold
}

// BetaRow returns the precomputed row-neighbour beta at (r, c).
func (a *AngleDiff) BetaRow(r, c int) float64 {
	return float64(a.betaRows[r*a.params.Cols()+c])
}

// BetaCol returns the precomputed column-neighbour beta at (r, c).
func (a *AngleDiff) BetaCol(r, c int) float64 {
	return float64(a.betaCols[r*a.params.Cols()+c])
}

// RowAlpha returns the angular step between rows r and r+1.
func (a *AngleDiff) RowAlpha(r int) float64 { return a.rowAlphas[r] }

// ColAlpha returns the angular step between columns c and c+1; the last
// entry is the (possibly negative) residual closing the circle.
func (a *AngleDiff) ColAlpha(c int) float64 { return a.colAlphas[c] }

// Rows returns the grid height of the bound image.
func (a *AngleDiff) Rows() int { return a.params.Rows() }

// Cols returns the grid width of the bound image.
func (a *AngleDiff) Cols() int { return a.params.Cols() }

// maxBetaDegrees is the beta value mapped to channel intensity 0; beta
// is bounded by pi/2 so the mapping never leaves [0, 255].
const maxBetaDegrees = 90.0

// Visualize renders the beta tables as an RGB image: red encodes the
// row-neighbour angle and green the column-neighbour angle, with
// channel = 255 - 255*degrees(beta)/90 so perpendicular surfaces appear
// dark. Invalid pixels stay black.
func (a *AngleDiff) Visualize() *image.RGBA {
	rows, cols := a.params.Rows(), a.params.Cols()
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if a.depth.Pix[r*cols+c] < MinValidDepth {
				img.SetRGBA(c, r, color.RGBA{A: 255})
				continue
			}
			rowDeg := float64(a.betaRows[r*cols+c]) * 180 / math.Pi
			colDeg := float64(a.betaCols[r*cols+c]) * 180 / math.Pi
			img.SetRGBA(c, r, color.RGBA{
				R: uint8(255 - int(255*rowDeg/maxBetaDegrees)),
				G: uint8(255 - int(255*colDeg/maxBetaDegrees)),
				A: 255,
			})
		}
	}
	return img
}
