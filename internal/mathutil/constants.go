package mathutil

import "math"

// Epsilon is the tolerance used for degenerate-length checks.
const Epsilon = 1e-12

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// AxisY is the world up axis (glTF is Y-up).
var AxisY = Vec3{0, 1, 0}
