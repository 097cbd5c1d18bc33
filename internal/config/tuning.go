package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Canonical defaults for the segmentation pipeline. Angles are stored
// in degrees in config files (the one place the library tolerates
// degrees) and the Get*Deg accessors return them in degrees too;
// conversion to radians happens outside this package.
const (
	DefaultGroundRemoveAngleDeg = 5.0
	DefaultSmoothingWindowSize  = 5
	DefaultAngleThresholdDeg    = 10.0
	DefaultMinClusterSize       = 10
	DefaultMaxClusterSize       = 3000
	DefaultRepairStep           = 5
	DefaultRepairDepthThreshold = 1.0
)

// TuningConfig represents the tunable parameters of the segmentation
// pipeline. Fields are pointers so that a partial JSON document leaves
// omitted parameters at their defaults; the Get* accessors supply the
// fallbacks.
type TuningConfig struct {
	// Ground removal params
	GroundRemoveAngleDeg *float64 `json:"ground_remove_angle_deg,omitempty"`
	SmoothingWindowSize  *int     `json:"smoothing_window_size,omitempty"`
	RepairStep           *int     `json:"repair_step,omitempty"`
	RepairDepthThreshold *float64 `json:"repair_depth_threshold,omitempty"`

	// Clustering params
	AngleThresholdDeg *float64 `json:"angle_threshold_deg,omitempty"`
	MinClusterSize    *int     `json:"min_cluster_size,omitempty"`
	MaxClusterSize    *int     `json:"max_cluster_size,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset, so
// every accessor yields its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the size cap; fields omitted
// from the JSON retain their default values, so partial configs are
// safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// GetGroundRemoveAngleDeg returns the ground-removal threshold in degrees.
func (c *TuningConfig) GetGroundRemoveAngleDeg() float64 {
	if c.GroundRemoveAngleDeg != nil {
		return *c.GroundRemoveAngleDeg
	}
	return DefaultGroundRemoveAngleDeg
}

// GetSmoothingWindowSize returns the Savitzky-Golay window size.
func (c *TuningConfig) GetSmoothingWindowSize() int {
	if c.SmoothingWindowSize != nil {
		return *c.SmoothingWindowSize
	}
	return DefaultSmoothingWindowSize
}

// GetRepairStep returns the depth-repair scan radius in rows.
func (c *TuningConfig) GetRepairStep() int {
	if c.RepairStep != nil {
		return *c.RepairStep
	}
	return DefaultRepairStep
}

// GetRepairDepthThreshold returns the maximum disagreement (metres)
// between hole neighbours that still contributes to a repair.
func (c *TuningConfig) GetRepairDepthThreshold() float64 {
	if c.RepairDepthThreshold != nil {
		return *c.RepairDepthThreshold
	}
	return DefaultRepairDepthThreshold
}

// GetAngleThresholdDeg returns the clustering beta-angle threshold in degrees.
func (c *TuningConfig) GetAngleThresholdDeg() float64 {
	if c.AngleThresholdDeg != nil {
		return *c.AngleThresholdDeg
	}
	return DefaultAngleThresholdDeg
}

// GetMinClusterSize returns the smallest cluster kept by filtering.
func (c *TuningConfig) GetMinClusterSize() int {
	if c.MinClusterSize != nil {
		return *c.MinClusterSize
	}
	return DefaultMinClusterSize
}

// GetMaxClusterSize returns the largest cluster kept by filtering.
func (c *TuningConfig) GetMaxClusterSize() int {
	if c.MaxClusterSize != nil {
		return *c.MaxClusterSize
	}
	return DefaultMaxClusterSize
}
