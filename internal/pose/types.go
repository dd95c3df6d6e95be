package pose

import "vrm-pose-player/internal/mathutil"

// Landmark indices of the body pose scheme consumed by playback.
const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
)

// Landmark indices of the 21-point hand scheme.
const (
	HandWrist     = 0
	HandMiddleMCP = 9
	HandLandmarks = 21
)

// JointPoint is one landmark coordinate in model space.
type JointPoint struct {
	X, Y, Z float64
}

// Vec returns the point as a vector.
func (p JointPoint) Vec() mathutil.Vec3 {
	return mathutil.Vec3{p.X, p.Y, p.Z}
}

// HandFrame holds the landmarks of one hand. Nil means the hand was not tracked.
type HandFrame []JointPoint

// PoseFrame is one time sample: body landmarks plus optional left/right hands.
type PoseFrame struct {
	Index int
	Body  []JointPoint
	Hands [2]HandFrame
}

// Empty reports whether the frame carries no body landmarks.
func (f PoseFrame) Empty() bool {
	return len(f.Body) == 0
}

// PoseFile is one recorded clip.
type PoseFile struct {
	Name   string
	Frames []PoseFrame
}
