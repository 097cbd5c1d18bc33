// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code
// duplication across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/banshee-data/depthcluster/internal/lidar"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// RandomDepthImage returns a rows x cols depth image with values drawn
// uniformly from [0, 1) using a fixed seed, so tests are deterministic.
func RandomDepthImage(rows, cols int, seed int64) *lidar.FloatImage {
	rng := rand.New(rand.NewSource(seed))
	img := lidar.NewFloatImage(rows, cols)
	for i := range img.Pix {
		img.Pix[i] = rng.Float32()
	}
	return img
}

// ConstantDepthImage returns a rows x cols depth image filled with v.
func ConstantDepthImage(rows, cols int, v float32) *lidar.FloatImage {
	img := lidar.NewFloatImage(rows, cols)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// AssertShape fails the test unless the image has the given dimensions.
func AssertShape(t *testing.T, img *lidar.FloatImage, rows, cols int) {
	t.Helper()
	if img.Rows != rows || img.Cols != cols {
		t.Fatalf("image shape = %dx%d, want %dx%d", img.Rows, img.Cols, rows, cols)
	}
}

// AssertAllFinite fails the test if any pixel is NaN or infinite.
func AssertAllFinite(t *testing.T, img *lidar.FloatImage) {
	t.Helper()
	for i, v := range img.Pix {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("pixel %d (row %d, col %d) is not finite: %v",
				i, i/img.Cols, i%img.Cols, v)
		}
	}
}
