package retarget

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/pose"
)

type fakeBone struct {
	rot    mathutil.Quat
	writes int
}

func (b *fakeBone) LocalRotation() mathutil.Quat     { return b.rot }
func (b *fakeBone) SetLocalRotation(q mathutil.Quat) { b.rot = q; b.writes++ }

type fakeHumanoid map[string]*fakeBone

func (h fakeHumanoid) BoneNode(name string) (BoneNode, bool) {
	b, ok := h[name]
	if !ok {
		return nil, false
	}
	return b, true
}

func (h fakeHumanoid) writes() int {
	n := 0
	for _, b := range h {
		n += b.writes
	}
	return n
}

func fullHumanoid() fakeHumanoid {
	h := fakeHumanoid{}
	for _, name := range []string{LeftUpperArm, RightUpperArm, LeftLowerArm, RightLowerArm, LeftHand, RightHand} {
		h[name] = &fakeBone{rot: mathutil.QuatIdentity()}
	}
	return h
}

func randomPoint(r *rand.Rand) pose.JointPoint {
	return pose.JointPoint{X: r.Float64()*2 - 1, Y: r.Float64()*2 - 1, Z: r.Float64()*2 - 1}
}

func randomBody(r *rand.Rand, n int) []pose.JointPoint {
	pts := make([]pose.JointPoint, n)
	for i := range pts {
		pts[i] = randomPoint(r)
	}
	return pts
}

func TestRotationBetweenMapsRestAxisOntoDirection(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		a, b := randomPoint(r), randomPoint(r)
		q, ok := RotationBetween(a, b)
		require.True(t, ok)

		want := b.Vec().Sub(a.Vec()).Normalize()
		got := q.Rotate(RestAxis)
		assert.InDelta(t, 1.0, got.Len(), 1e-9)
		assert.InDelta(t, 1.0, got.Dot(want), 1e-9)
	}
}

func TestRotationBetweenEdgeCases(t *testing.T) {
	t.Run("coincident points", func(t *testing.T) {
		p := pose.JointPoint{X: 1, Y: 2, Z: 3}
		_, ok := RotationBetween(p, p)
		assert.False(t, ok)
	})

	t.Run("pointing down is identity", func(t *testing.T) {
		q, ok := RotationBetween(pose.JointPoint{}, pose.JointPoint{Y: -5})
		require.True(t, ok)
		assert.True(t, mathutil.QuatIdentity().ApproxEqual(q, 1e-12))
	})

	t.Run("pointing up is a half turn", func(t *testing.T) {
		q, ok := RotationBetween(pose.JointPoint{}, pose.JointPoint{Y: 1})
		require.True(t, ok)
		got := q.Rotate(RestAxis)
		assert.InDelta(t, 1.0, got[1], 1e-9)
	})
}

func TestApplyPoseEmptyFrame(t *testing.T) {
	h := fullHumanoid()
	hand := make(pose.HandFrame, pose.HandLandmarks)
	hand[pose.HandMiddleMCP] = pose.JointPoint{X: 1}

	assert.Equal(t, 0, ApplyPose(h, pose.PoseFrame{}))
	assert.Equal(t, 0, ApplyPose(h, pose.PoseFrame{Body: []pose.JointPoint{}, Hands: [2]pose.HandFrame{hand, hand}}))
	assert.Equal(t, 0, h.writes())
}

func TestApplyPoseSetsArms(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	body := randomBody(r, 17)
	h := fullHumanoid()

	n := ApplyPose(h, pose.PoseFrame{Body: body})
	assert.Equal(t, 4, n)

	for _, b := range ArmBindings {
		want, ok := RotationBetween(body[b.From], body[b.To])
		require.True(t, ok)
		assert.Equal(t, want, h[b.Bone].rot, b.Bone)
	}
	assert.Equal(t, 0, h[LeftHand].writes)
	assert.Equal(t, 0, h[RightHand].writes)
}

func TestApplyPoseHardReplacesArms(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	body := randomBody(r, 17)
	h := fullHumanoid()
	h[LeftUpperArm].rot = mathutil.QuatFromAxisAngle(mathutil.Vec3{1, 0, 0}, 1)

	ApplyPose(h, pose.PoseFrame{Body: body})
	want, _ := RotationBetween(body[11], body[13])
	assert.Equal(t, want, h[LeftUpperArm].rot)
}

func TestApplyPoseBlendsHands(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	left := pose.HandFrame(randomBody(r, pose.HandLandmarks))
	right := pose.HandFrame(randomBody(r, pose.HandLandmarks))

	h := fullHumanoid()
	r0 := mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 0, 1}, 0.8)
	h[LeftHand].rot = r0
	h[RightHand].rot = r0

	n := ApplyPose(h, pose.PoseFrame{Body: randomBody(r, 17), Hands: [2]pose.HandFrame{left, right}})
	assert.Equal(t, 6, n)

	for i, hand := range []pose.HandFrame{left, right} {
		target, ok := RotationBetween(hand[0], hand[9])
		require.True(t, ok)
		want := mathutil.Slerp(r0, target, 0.3)
		got := h[HandBones[i]].rot
		assert.Equal(t, want, got)
		assert.False(t, target.ApproxEqual(got, 1e-6), "hand should be damped, not replaced")
	}
}

func TestApplyPoseSkipsMissingBonesAndLandmarks(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	h := fakeHumanoid{LeftUpperArm: &fakeBone{rot: mathutil.QuatIdentity()}}

	t.Run("missing bones", func(t *testing.T) {
		hand := pose.HandFrame(randomBody(r, pose.HandLandmarks))
		n := ApplyPose(h, pose.PoseFrame{Body: randomBody(r, 17), Hands: [2]pose.HandFrame{hand, hand}})
		assert.Equal(t, 1, n)
	})

	t.Run("short body", func(t *testing.T) {
		full := fullHumanoid()
		n := ApplyPose(full, pose.PoseFrame{Body: randomBody(r, 13)})
		assert.Equal(t, 0, n)
	})

	t.Run("short hand", func(t *testing.T) {
		full := fullHumanoid()
		n := ApplyPose(full, pose.PoseFrame{Body: randomBody(r, 11), Hands: [2]pose.HandFrame{randomBody(r, 5)}})
		assert.Equal(t, 0, n)
	})
}
