// Package retarget turns landmark coordinates into humanoid bone rotations.
package retarget

import (
	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/pose"
)

// RestAxis is the bone direction in local space at rest: bones point down.
var RestAxis = mathutil.Vec3{0, -1, 0}

// RotationBetween returns the rotation taking RestAxis onto the direction from
// a to b. ok is false when a and b coincide and the direction is undefined.
func RotationBetween(a, b pose.JointPoint) (q mathutil.Quat, ok bool) {
	dir := b.Vec().Sub(a.Vec())
	if dir.Len() < mathutil.Epsilon {
		return mathutil.QuatIdentity(), false
	}
	return mathutil.QuatFromUnitVectors(RestAxis, dir.Normalize()), true
}
