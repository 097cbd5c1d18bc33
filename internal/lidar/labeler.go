package lidar

import "fmt"

// PixelCoord addresses one pixel of the projection grid. It is the unit
// of the flood-fill frontier.
type PixelCoord struct {
	Row, Col int
}

// Add returns the componentwise sum of p and o.
func (p PixelCoord) Add(o PixelCoord) PixelCoord {
	return PixelCoord{Row: p.Row + o.Row, Col: p.Col + o.Col}
}

// DiffMetric is the capability the labeler needs from a neighbour
// metric: a non-negative "distance" between two 4-neighbouring pixels
// (column wrap included) and the predicate deciding whether that
// distance keeps the pixels in the same component. The predicate
// direction differs between metrics (AngleDiff grows where the
// difference is large, SimpleDiff where it is small), which is why it
// lives on the metric rather than in the labeler.
type DiffMetric interface {
	// DiffAt returns the distance between two distinct neighbouring
	// pixels. Behaviour is only defined for 4-neighbours, possibly
	// adjacent via column wrap.
	DiffAt(from, to PixelCoord) float64

	// SatisfiesThreshold reports whether a diff value keeps the two
	// pixels in the same component under the given threshold.
	SatisfiesThreshold(diff, threshold float64) bool
}

// neighbourSteps are the 4-connected offsets explored from each pixel.
var neighbourSteps = [4]PixelCoord{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// wrapCol maps any column offset into [0, cols). Columns are cyclic
// (azimuth wraps at 360 degrees); rows are not.
func wrapCol(c, cols int) int {
	return ((c % cols) + cols) % cols
}

// LinearImageLabeler assigns connected-component labels across a depth
// image. Components grow through 4-neighbours whose metric difference
// satisfies the threshold; columns wrap, rows do not.
//
// The frontier is a LIFO stack, so the traversal is depth-first in
// shape. Visit order does not affect the result: labels are determined
// by connectivity alone, and seeds are taken in row-major order, so the
// output is byte-identical across runs on identical input.
//
// A labeler is not safe for concurrent use; the frontier would race.
type LinearImageLabeler struct {
	rows, cols int
	threshold  float64
	metric     DiffMetric

	frontier []PixelCoord // reused between components
}

// NewLinearImageLabeler builds a labeler over a rows x cols grid using
// the given metric and threshold. The metric must be bound to an image
// of the same dimensions.
func NewLinearImageLabeler(rows, cols int, threshold float64, metric DiffMetric) *LinearImageLabeler {
	return &LinearImageLabeler{
		rows:      rows,
		cols:      cols,
		threshold: threshold,
		metric:    metric,
	}
}

// ComputeLabels labels every component of the depth image and returns a
// fresh label image. Pixels below MinSeedDepth never seed a component;
// unreached pixels stay zero. Labels are dense starting from 1 in
// row-major seed order.
func (l *LinearImageLabeler) ComputeLabels(depth *FloatImage) (*LabelImage, error) {
	if depth.Rows != l.rows || depth.Cols != l.cols {
		return nil, fmt.Errorf("%w: depth %dx%d, labeler %dx%d",
			ErrShapeMismatch, depth.Rows, depth.Cols, l.rows, l.cols)
	}

	labels := NewLabelImage(l.rows, l.cols)
	label := uint16(1)
	for r := 0; r < l.rows; r++ {
		for c := 0; c < l.cols; c++ {
			idx := r*l.cols + c
			if labels.Pix[idx] > 0 {
				continue
			}
			if depth.Pix[idx] < MinSeedDepth {
				continue
			}
			l.LabelOneComponent(labels, depth, label, PixelCoord{Row: r, Col: c})
			label++
		}
	}
	return labels, nil
}

// LabelOneComponent flood-fills the component containing seed, writing
// label into labels. Pixels already labeled are never overwritten.
// A pixel below MinValidDepth still receives the label when reached but
// is never expanded from: its depth is too unreliable to judge its
// neighbours.
func (l *LinearImageLabeler) LabelOneComponent(labels *LabelImage, depth *FloatImage, label uint16, seed PixelCoord) {
	l.frontier = append(l.frontier[:0], seed)

	for len(l.frontier) > 0 {
		current := l.frontier[len(l.frontier)-1]
		l.frontier = l.frontier[:len(l.frontier)-1]

		idx := current.Row*l.cols + current.Col
		if labels.Pix[idx] > 0 {
			continue
		}
		labels.Pix[idx] = label
		if depth.Pix[idx] < MinValidDepth {
			continue
		}

		for _, step := range neighbourSteps {
			neighbour := current.Add(step)
			if neighbour.Row < 0 || neighbour.Row >= l.rows {
				continue
			}
			neighbour.Col = wrapCol(neighbour.Col, l.cols)
			if labels.Pix[neighbour.Row*l.cols+neighbour.Col] > 0 {
				continue
			}
			diff := l.metric.DiffAt(current, neighbour)
			if l.metric.SatisfiesThreshold(diff, l.threshold) {
				l.frontier = append(l.frontier, neighbour)
			}
		}
	}
}
