// Package units provides shared angle conversions and normalisation.
// The segmentation library works in radians throughout; these helpers
// exist for the boundaries where humans (configs, logs, charts) prefer
// degrees.
package units

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAzimuth maps an angle in radians into [0, 2*pi).
func NormalizeAzimuth(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}
