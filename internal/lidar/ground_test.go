package lidar

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDepthGroundRemoverWindowSizes(t *testing.T) {
	params := testParams(t)
	for _, w := range []int{5, 7, 9, 11} {
		if _, err := NewDepthGroundRemover(params, w, 0.1); err != nil {
			t.Errorf("window %d rejected: %v", w, err)
		}
	}
	for _, w := range []int{0, 3, 4, 6, 8, 13} {
		_, err := NewDepthGroundRemover(params, w, 0.1)
		if !errors.Is(err, ErrInvalidWindowSize) {
			t.Errorf("window %d: expected ErrInvalidWindowSize, got %v", w, err)
		}
	}
}

func TestRemoveGroundShapeAndFiniteness(t *testing.T) {
	params := fullSweepParams(t)
	depth := randomImage(64, 870, 17)

	remover, err := NewDepthGroundRemover(params, 5, 5*math.Pi/180)
	if err != nil {
		t.Fatalf("NewDepthGroundRemover: %v", err)
	}

	out, err := remover.RemoveGround(depth)
	if err != nil {
		t.Fatalf("RemoveGround: %v", err)
	}
	if out.Rows != 64 || out.Cols != 870 {
		t.Fatalf("output shape = %dx%d, want 64x870", out.Rows, out.Cols)
	}
	for i, v := range out.Pix {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("pixel %d not finite: %v", i, v)
		}
	}

	// The input must be untouched.
	if diff := cmp.Diff(randomImage(64, 870, 17).Pix, depth.Pix); diff != "" {
		t.Fatalf("RemoveGround modified its input:\n%s", diff)
	}
}

func TestRemoveGroundShapeMismatch(t *testing.T) {
	params := fullSweepParams(t)
	remover, err := NewDepthGroundRemover(params, 5, 0.1)
	if err != nil {
		t.Fatalf("NewDepthGroundRemover: %v", err)
	}
	if _, err := remover.RemoveGround(NewFloatImage(10, 10)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestRepairDepthFillsVerticalHoles(t *testing.T) {
	depth := NewFloatImage(8, 2)
	for r := 0; r < 8; r++ {
		depth.Set(r, 0, 5.0)
	}
	depth.Set(3, 0, 0) // hole surrounded by agreeing neighbours

	repaired := RepairDepth(depth, 5, 1.0)
	if got := repaired.At(3, 0); math.Abs(float64(got)-5.0) > 1e-6 {
		t.Fatalf("hole repaired to %v, want 5.0", got)
	}
	// Column 1 is entirely invalid and must stay so.
	for r := 0; r < 8; r++ {
		if repaired.At(r, 1) != 0 {
			t.Fatalf("empty column pixel (%d,1) repaired to %v", r, repaired.At(r, 1))
		}
	}
}

func TestRepairDepthRespectsDiscontinuity(t *testing.T) {
	depth := NewFloatImage(8, 1)
	for r := 0; r < 3; r++ {
		depth.Set(r, 0, 5.0)
	}
	for r := 4; r < 8; r++ {
		depth.Set(r, 0, 20.0)
	}
	// Row 3 sits on a 15 m jump; no neighbour pair agrees to within the
	// 1 m threshold, so the hole must survive.
	repaired := RepairDepth(depth, 5, 1.0)
	if got := repaired.At(3, 0); got != 0 {
		t.Fatalf("hole across discontinuity repaired to %v, want 0", got)
	}
}

func TestRepairDepthIdempotent(t *testing.T) {
	depth := NewFloatImage(10, 3)
	for r := 0; r < 10; r++ {
		depth.Set(r, 0, 7.5)
	}
	depth.Set(4, 0, 0)
	depth.Set(5, 0, 0)

	once := RepairDepth(depth, 5, 1.0)
	twice := RepairDepth(once, 5, 1.0)
	if diff := cmp.Diff(once.Pix, twice.Pix); diff != "" {
		t.Fatalf("repair not idempotent (-once +twice):\n%s", diff)
	}
}

func TestReflect101(t *testing.T) {
	cases := []struct{ r, rows, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{6, 5, 2},
	}
	for _, tc := range cases {
		if got := reflect101(tc.r, tc.rows); got != tc.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tc.r, tc.rows, got, tc.want)
		}
	}
}

func TestSavitzkyGolayPreservesConstant(t *testing.T) {
	img := constantImage(16, 4, 0.25)
	for _, w := range []int{5, 7, 9, 11} {
		smoothed := applySavitzkyGolay(img, w)
		for i, v := range smoothed.Pix {
			if math.Abs(float64(v)-0.25) > 1e-5 {
				t.Fatalf("window %d: pixel %d = %v, want 0.25", w, i, v)
			}
		}
	}
}

// Ground labeling grows upward from the bottom of each column while the
// smoothed inclination stays flat, and stops at the jump to a steep
// surface. Pixels well above the jump must keep their depth; the
// dilation may eat up to two rows of the steep surface next to it.
func TestZeroOutGroundPreservesSteepSurface(t *testing.T) {
	params := NewProjectionParams(
		mustSpan(t, -math.Pi, math.Pi, 10),
		mustSpan(t, -0.2, 0.2, 12),
	)
	remover, err := NewDepthGroundRemover(params, 5, 5*math.Pi/180)
	if err != nil {
		t.Fatalf("NewDepthGroundRemover: %v", err)
	}

	depth := constantImage(12, 10, 10.0)
	smoothed := NewFloatImage(12, 10)
	for r := 0; r < 6; r++ {
		for c := 0; c < 10; c++ {
			smoothed.Set(r, c, 1.0) // steep: ~57 degrees
		}
	}
	// Rows 6..11 stay at 0: flat ground.

	out := remover.zeroOutGround(depth, smoothed)

	for r := 6; r < 12; r++ {
		for c := 0; c < 10; c++ {
			if out.At(r, c) != 0 {
				t.Fatalf("ground pixel (%d,%d) kept depth %v", r, c, out.At(r, c))
			}
		}
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 10; c++ {
			if out.At(r, c) != 10.0 {
				t.Fatalf("steep pixel (%d,%d) = %v, want 10.0", r, c, out.At(r, c))
			}
		}
	}
}

// Columns whose bottom-most valid pixel is already steep contribute no
// seed, so nothing in them is removed.
func TestZeroOutGroundSkipsSteepColumns(t *testing.T) {
	params := NewProjectionParams(
		mustSpan(t, -math.Pi, math.Pi, 6),
		mustSpan(t, -0.2, 0.2, 8),
	)
	remover, err := NewDepthGroundRemover(params, 5, 5*math.Pi/180)
	if err != nil {
		t.Fatalf("NewDepthGroundRemover: %v", err)
	}

	depth := constantImage(8, 6, 10.0)
	smoothed := NewFloatImage(8, 6)
	for i := range smoothed.Pix {
		smoothed.Pix[i] = 1.0 // everywhere above the 30 degree seed gate
	}

	out := remover.zeroOutGround(depth, smoothed)
	if diff := cmp.Diff(depth.Pix, out.Pix); diff != "" {
		t.Fatalf("image changed without any ground seed (-want +got):\n%s", diff)
	}
}

func TestDilateLabels(t *testing.T) {
	labels := NewLabelImage(9, 9)
	labels.Set(4, 4, 1)

	dilated := dilateLabels(labels, 5)

	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			inWindow := r >= 2 && r <= 6 && c >= 2 && c <= 6
			got := dilated.At(r, c)
			if inWindow && got != 1 {
				t.Fatalf("pixel (%d,%d) = %d, want 1 inside dilation window", r, c, got)
			}
			if !inWindow && got != 0 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 outside dilation window", r, c, got)
			}
		}
	}
}
