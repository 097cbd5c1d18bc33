package lidar

import "math"

// SimpleDiff is the between-neighbour metric used for ground removal:
// the absolute difference of a source image (in practice the smoothed
// inclination-angle image) at the two pixels. Unlike AngleDiff, the
// threshold test is inverted: two pixels stay in the same component
// when the difference is small, i.e. the local inclination barely
// changes across them.
type SimpleDiff struct {
	source *FloatImage
}

var _ DiffMetric = (*SimpleDiff)(nil)

// NewSimpleDiff binds the metric to a source image.
func NewSimpleDiff(source *FloatImage) *SimpleDiff {
	return &SimpleDiff{source: source}
}

// DiffAt returns |source[from] - source[to]| for two distinct
// neighbouring pixels.
func (s *SimpleDiff) DiffAt(from, to PixelCoord) float64 {
	return math.Abs(float64(s.source.Pix[from.Row*s.source.Cols+from.Col]) -
		float64(s.source.Pix[to.Row*s.source.Cols+to.Col]))
}

// SatisfiesThreshold keeps two pixels in the same component when the
// difference stays below the threshold.
func (s *SimpleDiff) SatisfiesThreshold(diff, threshold float64) bool {
	return diff < threshold
}
