package lidar

import (
	"fmt"
	"math"
)

// SpanParams describes one axis of a sensor's beam layout: the angular
// interval [StartAngle, EndAngle) divided evenly into NumBeams beams.
// Angles are radians throughout; Step carries the sign of the sweep
// direction while Span is always non-negative.
type SpanParams struct {
	StartAngle float64
	EndAngle   float64
	NumBeams   int
	Step       float64
	Span       float64
}

// NewSpanParams builds a SpanParams, deriving Step and Span.
// Returns ErrDegenerateSpan if numBeams < 1.
func NewSpanParams(startAngle, endAngle float64, numBeams int) (SpanParams, error) {
	if numBeams < 1 {
		return SpanParams{}, fmt.Errorf("%w (got %d)", ErrDegenerateSpan, numBeams)
	}
	return SpanParams{
		StartAngle: startAngle,
		EndAngle:   endAngle,
		NumBeams:   numBeams,
		Step:       (endAngle - startAngle) / float64(numBeams),
		Span:       math.Abs(endAngle - startAngle),
	}, nil
}

// ProjectionParams maps (row, col) grid indices to beam angles for one
// sensor model. The horizontal span covers azimuth (columns, typically
// the full 2*pi) and the vertical span covers elevation (rows). Row
// sines and cosines are precomputed once since the ground pipeline
// consumes them per pixel.
//
// ProjectionParams is immutable after construction.
type ProjectionParams struct {
	hSpan SpanParams
	vSpan SpanParams

	colAngles  []float64
	rowAngles  []float64
	rowSines   []float64
	rowCosines []float64
}

// NewProjectionParams derives the per-index angle vectors and the row
// trigonometry tables from the two spans.
func NewProjectionParams(hSpan, vSpan SpanParams) *ProjectionParams {
	p := &ProjectionParams{
		hSpan:     hSpan,
		vSpan:     vSpan,
		colAngles: fillAngleVector(hSpan),
		rowAngles: fillAngleVector(vSpan),
	}
	p.rowSines = make([]float64, len(p.rowAngles))
	p.rowCosines = make([]float64, len(p.rowAngles))
	for i, a := range p.rowAngles {
		p.rowSines[i] = math.Sin(a)
		p.rowCosines[i] = math.Cos(a)
	}
	return p
}

func fillAngleVector(span SpanParams) []float64 {
	v := make([]float64, span.NumBeams)
	rad := span.StartAngle
	for i := range v {
		v[i] = rad
		rad += span.Step
	}
	return v
}

// Rows returns the number of vertical beams.
func (p *ProjectionParams) Rows() int { return len(p.rowAngles) }

// Cols returns the number of azimuth beams.
func (p *ProjectionParams) Cols() int { return len(p.colAngles) }

// Size returns Rows * Cols.
func (p *ProjectionParams) Size() int { return len(p.rowAngles) * len(p.colAngles) }

// HSpan returns the horizontal (azimuth) angular span.
func (p *ProjectionParams) HSpan() float64 { return p.hSpan.Span }

// VSpan returns the vertical (elevation) angular span.
func (p *ProjectionParams) VSpan() float64 { return p.vSpan.Span }

// AngleFromRow returns the elevation angle of row r. Indices are wrapped
// once, so any r in [-Rows, 2*Rows) resolves; callers must not pass
// indices further out.
func (p *ProjectionParams) AngleFromRow(r int) float64 {
	if r < 0 {
		r += len(p.rowAngles)
	} else if r >= len(p.rowAngles) {
		r -= len(p.rowAngles)
	}
	return p.rowAngles[r]
}

// AngleFromCol returns the azimuth angle of column c, with the same
// single-wrap index rule as AngleFromRow.
func (p *ProjectionParams) AngleFromCol(c int) float64 {
	if c < 0 {
		c += len(p.colAngles)
	} else if c >= len(p.colAngles) {
		c -= len(p.colAngles)
	}
	return p.colAngles[c]
}

// RowSin returns sin(AngleFromRow(r)) for an in-range r.
func (p *ProjectionParams) RowSin(r int) float64 { return p.rowSines[r] }

// RowCos returns cos(AngleFromRow(r)) for an in-range r.
func (p *ProjectionParams) RowCos(r int) float64 { return p.rowCosines[r] }

// CheckShape validates that an image of the given dimensions belongs to
// this sensor model. Every pipeline entry point calls this before doing
// any work; no partial output is produced on mismatch.
func (p *ProjectionParams) CheckShape(rows, cols int) error {
	if rows != p.Rows() || cols != p.Cols() {
		return fmt.Errorf("%w: image %dx%d, params %dx%d",
			ErrShapeMismatch, rows, cols, p.Rows(), p.Cols())
	}
	return nil
}
