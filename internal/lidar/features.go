package lidar

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ClusterFeatures captures per-cluster spatial summaries extracted from
// one segmented frame: pixel count, Cartesian centroid and axis-aligned
// extents, and the distribution of radial range across the cluster's
// pixels. These feed persistence, monitoring, and downstream
// classification.
type ClusterFeatures struct {
	Label      uint16
	PointCount int

	CentroidX, CentroidY, CentroidZ float64
	ExtentX, ExtentY, ExtentZ       float64

	RangeMean float64
	RangeP50  float64
	RangeP85  float64
	RangeP95  float64
}

// ExtractClusterFeatures computes features for every non-zero label in
// the label image. depth supplies the radial ranges and cloud the
// Cartesian positions; all three matrices must share one shape.
// Results are ordered by ascending label.
func ExtractClusterFeatures(labels *LabelImage, depth *FloatImage, cloud *CloudImage) ([]ClusterFeatures, error) {
	if labels.Rows != depth.Rows || labels.Cols != depth.Cols ||
		labels.Rows != cloud.Rows || labels.Cols != cloud.Cols {
		return nil, fmt.Errorf("%w: labels %dx%d, depth %dx%d, cloud %dx%d",
			ErrShapeMismatch, labels.Rows, labels.Cols, depth.Rows, depth.Cols, cloud.Rows, cloud.Cols)
	}

	type bucket struct {
		ranges                             []float64
		sumX, sumY, sumZ                   float64
		minX, maxX, minY, maxY, minZ, maxZ float64
	}
	buckets := make(map[uint16]*bucket)

	for i, label := range labels.Pix {
		if label == 0 {
			continue
		}
		b := buckets[label]
		p := cloud.Pts[i]
		if b == nil {
			b = &bucket{
				minX: p.X, maxX: p.X,
				minY: p.Y, maxY: p.Y,
				minZ: p.Z, maxZ: p.Z,
			}
			buckets[label] = b
		} else {
			if p.X < b.minX {
				b.minX = p.X
			}
			if p.X > b.maxX {
				b.maxX = p.X
			}
			if p.Y < b.minY {
				b.minY = p.Y
			}
			if p.Y > b.maxY {
				b.maxY = p.Y
			}
			if p.Z < b.minZ {
				b.minZ = p.Z
			}
			if p.Z > b.maxZ {
				b.maxZ = p.Z
			}
		}
		b.ranges = append(b.ranges, float64(depth.Pix[i]))
		b.sumX += p.X
		b.sumY += p.Y
		b.sumZ += p.Z
	}

	features := make([]ClusterFeatures, 0, len(buckets))
	for label, b := range buckets {
		n := float64(len(b.ranges))
		sort.Float64s(b.ranges)
		features = append(features, ClusterFeatures{
			Label:      label,
			PointCount: len(b.ranges),
			CentroidX:  b.sumX / n,
			CentroidY:  b.sumY / n,
			CentroidZ:  b.sumZ / n,
			ExtentX:    b.maxX - b.minX,
			ExtentY:    b.maxY - b.minY,
			ExtentZ:    b.maxZ - b.minZ,
			RangeMean:  stat.Mean(b.ranges, nil),
			RangeP50:   stat.Quantile(0.5, stat.Empirical, b.ranges, nil),
			RangeP85:   stat.Quantile(0.85, stat.Empirical, b.ranges, nil),
			RangeP95:   stat.Quantile(0.95, stat.Empirical, b.ranges, nil),
		})
	}

	sort.Slice(features, func(i, j int) bool { return features[i].Label < features[j].Label })
	return features, nil
}
