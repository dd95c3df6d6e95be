package retarget

import (
	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/pose"
)

// HandBlend is the slerp factor moving a hand bone towards its target each
// update. Wrist landmarks jitter more than arm landmarks.
const HandBlend = 0.3

// Humanoid bone names driven by playback.
const (
	LeftUpperArm  = "leftUpperArm"
	RightUpperArm = "rightUpperArm"
	LeftLowerArm  = "leftLowerArm"
	RightLowerArm = "rightLowerArm"
	LeftHand      = "leftHand"
	RightHand     = "rightHand"
)

// BoneNode is a rotatable joint of an avatar skeleton.
type BoneNode interface {
	LocalRotation() mathutil.Quat
	SetLocalRotation(q mathutil.Quat)
}

// Humanoid looks up bone nodes by humanoid bone name. Rigs may omit bones.
type Humanoid interface {
	BoneNode(name string) (BoneNode, bool)
}

// Binding maps a bone to the landmark pair that gives its direction.
type Binding struct {
	Bone     string
	From, To int
}

// ArmBindings are hard-set from body landmarks every update.
var ArmBindings = []Binding{
	{LeftUpperArm, pose.LeftShoulder, pose.LeftElbow},
	{RightUpperArm, pose.RightShoulder, pose.RightElbow},
	{LeftLowerArm, pose.LeftElbow, pose.LeftWrist},
	{RightLowerArm, pose.RightElbow, pose.RightWrist},
}

// HandBones are blended from hand landmarks, indexed like PoseFrame.Hands.
var HandBones = [2]string{LeftHand, RightHand}

// ApplyPose writes the frame's arm and hand rotations onto h and returns the
// number of bones changed. Empty frames change nothing.
func ApplyPose(h Humanoid, frame pose.PoseFrame) int {
	if frame.Empty() {
		return 0
	}

	n := 0
	for _, b := range ArmBindings {
		q, ok := bindingRotation(frame.Body, b.From, b.To)
		if !ok {
			continue
		}
		node, ok := h.BoneNode(b.Bone)
		if !ok {
			continue
		}
		node.SetLocalRotation(q)
		n++
	}

	for i, hand := range frame.Hands {
		if hand == nil {
			continue
		}
		q, ok := bindingRotation(hand, pose.HandWrist, pose.HandMiddleMCP)
		if !ok {
			continue
		}
		node, ok := h.BoneNode(HandBones[i])
		if !ok {
			continue
		}
		node.SetLocalRotation(mathutil.Slerp(node.LocalRotation(), q, HandBlend))
		n++
	}
	return n
}

func bindingRotation(points []pose.JointPoint, from, to int) (mathutil.Quat, bool) {
	if from >= len(points) || to >= len(points) {
		return mathutil.Quat{}, false
	}
	return RotationBetween(points[from], points[to])
}
