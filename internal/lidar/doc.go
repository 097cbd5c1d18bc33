// Package lidar implements depth-image segmentation for rotating range
// sensors. A sensor sweep is projected onto a (row = vertical beam,
// column = azimuth) grid; the package removes ground returns from the
// resulting depth image and groups the remaining pixels into connected
// clusters representing distinct objects.
//
// The column axis is cyclic: azimuth wraps at 360 degrees, so pixels in
// the first and last columns are neighbours. Rows never wrap.
//
// Key types: ProjectionParams (beam layout), DepthGroundRemover (ground
// suppression pipeline), LinearImageLabeler (wrap-aware flood fill),
// AngleDiff and SimpleDiff (the two neighbour-difference metrics that
// drive the labeler).
//
// All operations are synchronous and allocate their own outputs; no
// state is shared between invocations. A single labeler instance must
// not be used from multiple goroutines, but independent depth images
// may be processed in parallel with independent instances.
package lidar
