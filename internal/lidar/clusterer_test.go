package lidar

import (
	"math"
	"testing"
)

func countDistinctLabels(labels *LabelImage) int {
	seen := make(map[uint16]bool)
	for _, label := range labels.Pix {
		if label != 0 {
			seen[label] = true
		}
	}
	return len(seen)
}

func TestFilterClustersBounds(t *testing.T) {
	labels := NewLabelImage(4, 4)
	// Label 1: 3 pixels, label 2: 10 pixels, 3 background zeros.
	for i := 0; i < 3; i++ {
		labels.Pix[i] = 1
	}
	for i := 3; i < 13; i++ {
		labels.Pix[i] = 2
	}

	filtered := FilterClusters(labels, 5, 3000)

	for i := 0; i < 3; i++ {
		if filtered.Pix[i] != 0 {
			t.Fatalf("undersized cluster pixel %d kept label %d", i, filtered.Pix[i])
		}
	}
	for i := 3; i < 13; i++ {
		if filtered.Pix[i] != 2 {
			t.Fatalf("surviving cluster pixel %d = %d, want 2", i, filtered.Pix[i])
		}
	}

	// The original must be untouched.
	if labels.Pix[0] != 1 {
		t.Fatal("FilterClusters modified its input")
	}
}

func TestFilterClustersMaxSize(t *testing.T) {
	labels := NewLabelImage(4, 4)
	for i := range labels.Pix {
		labels.Pix[i] = 1
	}
	filtered := FilterClusters(labels, 1, 10)
	for i, label := range filtered.Pix {
		if label != 0 {
			t.Fatalf("oversized cluster pixel %d kept label %d", i, label)
		}
	}
}

// Tightening either bound can only shrink the set of surviving labels.
func TestFilterClustersMonotonic(t *testing.T) {
	params := testParams(t)
	depth := randomImage(params.Rows(), params.Cols(), 29)

	labels, err := ComputeLabels(depth, params, 10*math.Pi/180)
	if err != nil {
		t.Fatalf("ComputeLabels: %v", err)
	}

	prev := math.MaxInt
	for _, minSize := range []int{1, 2, 5, 10, 50} {
		n := countDistinctLabels(FilterClusters(labels, minSize, 3000))
		if n > prev {
			t.Fatalf("min size %d retained %d labels, more than the looser bound's %d", minSize, n, prev)
		}
		prev = n
	}

	prev = math.MaxInt
	for _, maxSize := range []int{3000, 500, 100, 20, 5} {
		n := countDistinctLabels(FilterClusters(labels, 1, maxSize))
		if n > prev {
			t.Fatalf("max size %d retained %d labels, more than the looser bound's %d", maxSize, n, prev)
		}
		prev = n
	}
}

func TestComputeLabelsWithFiltering(t *testing.T) {
	h := mustSpan(t, -math.Pi, math.Pi, 16)
	v := mustSpan(t, -0.2, 0.2, 8)
	params := NewProjectionParams(h, v)
	depth := constantImage(8, 16, 10.0)

	labels, err := ComputeLabelsWithFiltering(depth, params, 10*math.Pi/180, 10, 3000)
	if err != nil {
		t.Fatalf("ComputeLabelsWithFiltering: %v", err)
	}

	// One coherent surface of 128 pixels survives the [10, 3000] bounds.
	if n := countDistinctLabels(labels); n != 1 {
		t.Fatalf("distinct labels = %d, want 1", n)
	}
}

func TestSegmentPointClouds(t *testing.T) {
	h := mustSpan(t, -math.Pi, math.Pi, 16)
	v := mustSpan(t, -0.2, 0.2, 8)
	params := NewProjectionParams(h, v)
	depth := constantImage(8, 16, 10.0)

	labels, err := ComputeLabels(depth, params, 10*math.Pi/180)
	if err != nil {
		t.Fatalf("ComputeLabels: %v", err)
	}
	cloud, err := DepthToCloud(depth, params)
	if err != nil {
		t.Fatalf("DepthToCloud: %v", err)
	}

	segmented, err := SegmentPointClouds(labels, cloud)
	if err != nil {
		t.Fatalf("SegmentPointClouds: %v", err)
	}
	if len(segmented) != 1 {
		t.Fatalf("segments = %d, want 1", len(segmented))
	}
	pts, ok := segmented[1]
	if !ok {
		t.Fatal("label 1 missing from segmented clouds")
	}
	if len(pts) != 8*16 {
		t.Fatalf("segment has %d points, want %d", len(pts), 8*16)
	}

	// All points of a constant-depth image sit on a 10 m shell.
	for i, p := range pts {
		r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		if math.Abs(r-10.0) > 1e-4 {
			t.Fatalf("point %d has radius %v, want 10", i, r)
		}
	}
}

func TestSegmentPointCloudsShapeMismatch(t *testing.T) {
	labels := NewLabelImage(4, 4)
	cloud := &CloudImage{Rows: 4, Cols: 5, Pts: make([]Point, 20)}
	if _, err := SegmentPointClouds(labels, cloud); err == nil {
		t.Fatal("expected shape mismatch error, got nil")
	}
}
