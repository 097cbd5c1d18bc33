package lidar

// Default cluster-size bounds. ComputeLabelsWithFiltering does not
// apply them itself; it takes its bounds as arguments. Clusters below the minimum are typically speckle noise; clusters
// above the maximum are environment (walls, hedges) rather than
// discrete objects.
const (
	DefaultMinClusterSize = 10
	DefaultMaxClusterSize = 3000
)

// ComputeLabels segments a depth image into connected components using
// the beta-angle metric: neighbouring pixels join the same component
// when the angle of the surface between them exceeds angleThreshold.
// Labels are assigned in row-major seed order and are therefore stable
// across runs.
func ComputeLabels(depth *FloatImage, params *ProjectionParams, angleThreshold float64) (*LabelImage, error) {
	diff, err := NewAngleDiff(depth, params)
	if err != nil {
		return nil, err
	}
	labeler := NewLinearImageLabeler(params.Rows(), params.Cols(), angleThreshold, diff)
	return labeler.ComputeLabels(depth)
}

// ComputeLabelsWithFiltering segments a depth image and erases clusters
// whose pixel count falls outside [minSize, maxSize].
func ComputeLabelsWithFiltering(depth *FloatImage, params *ProjectionParams, angleThreshold float64, minSize, maxSize int) (*LabelImage, error) {
	labels, err := ComputeLabels(depth, params, angleThreshold)
	if err != nil {
		return nil, err
	}
	return FilterClusters(labels, minSize, maxSize), nil
}

// FilterClusters returns a copy of the label image in which every label
// whose pixel count falls outside [minSize, maxSize] is replaced with
// zero. Label 0 participates in the counting like any other value, so
// the background survives only when there happen to be between minSize
// and maxSize background pixels; callers must not rely on zero meaning
// anything but "erased or never labeled".
func FilterClusters(labels *LabelImage, minSize, maxSize int) *LabelImage {
	result := labels.Clone()

	counts := make(map[uint16]int)
	for _, label := range result.Pix {
		counts[label]++
	}

	erase := make(map[uint16]bool)
	for label, count := range counts {
		if count < minSize || count > maxSize {
			erase[label] = true
		}
	}

	for i, label := range result.Pix {
		if erase[label] {
			result.Pix[i] = 0
		}
	}
	return result
}
