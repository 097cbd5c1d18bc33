package lidar

import "errors"

// ErrShapeMismatch is returned when an image's dimensions disagree with
// the projection parameters (or with a companion image) it is used with.
var ErrShapeMismatch = errors.New("lidar: image shape does not match projection parameters")

// ErrInvalidWindowSize is returned when a smoothing window size is even
// or outside the supported set {5, 7, 9, 11}.
var ErrInvalidWindowSize = errors.New("lidar: window size must be one of 5, 7, 9, 11")

// ErrDegenerateSpan is returned when a SpanParams is constructed with
// fewer than one beam.
var ErrDegenerateSpan = errors.New("lidar: span must contain at least one beam")
