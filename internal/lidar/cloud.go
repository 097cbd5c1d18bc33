package lidar

import (
	"fmt"
	"math"
)

// Point is a Cartesian sensor-frame position in metres.
type Point struct {
	X, Y, Z float64
}

// CloudImage is a depth image projected to Cartesian space: one Point
// per pixel, in the same row-major layout as the source image.
type CloudImage struct {
	Rows, Cols int
	Pts        []Point // len = Rows*Cols, row-major
}

// At returns the point at (r, c).
func (ci *CloudImage) At(r, c int) Point { return ci.Pts[r*ci.Cols+c] }

// DepthToCloud converts a depth image to a Cartesian point image using
// the beam angles of the sensor model. Axis convention: X right,
// Y up (negative elevation looks down), Z towards the viewer, so a
// return straight ahead at azimuth 0 lands on the negative Z axis.
func DepthToCloud(depth *FloatImage, params *ProjectionParams) (*CloudImage, error) {
	if err := params.CheckShape(depth.Rows, depth.Cols); err != nil {
		return nil, err
	}

	rows, cols := params.Rows(), params.Cols()
	cloud := &CloudImage{Rows: rows, Cols: cols, Pts: make([]Point, rows*cols)}

	for r := 0; r < rows; r++ {
		elevation := -params.AngleFromRow(r)
		sinEl, cosEl := math.Sin(elevation), math.Cos(elevation)
		for c := 0; c < cols; c++ {
			azimuth := params.AngleFromCol(c)
			d := float64(depth.Pix[r*cols+c])
			cloud.Pts[r*cols+c] = Point{
				X: d * cosEl * math.Sin(azimuth),
				Y: d * sinEl,
				Z: -d * cosEl * math.Cos(azimuth),
			}
		}
	}
	return cloud, nil
}

// SegmentPointClouds collates the points of each labeled cluster,
// keyed by label. Points are in row-major pixel order within each
// cluster. Label 0 (unlabeled / erased) is excluded.
func SegmentPointClouds(labels *LabelImage, cloud *CloudImage) (map[uint16][]Point, error) {
	if labels.Rows != cloud.Rows || labels.Cols != cloud.Cols {
		return nil, fmt.Errorf("%w: labels %dx%d, cloud %dx%d",
			ErrShapeMismatch, labels.Rows, labels.Cols, cloud.Rows, cloud.Cols)
	}

	result := make(map[uint16][]Point)
	for i, label := range labels.Pix {
		if label == 0 {
			continue
		}
		result[label] = append(result[label], cloud.Pts[i])
	}
	return result, nil
}
