package avatar

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/retarget"
)

const vrm0Humanoid = `{
	"meta": {"title": "Sample", "author": "someone"},
	"humanoid": {"humanBones": [
		{"bone": "hips", "node": 0},
		{"bone": "leftUpperArm", "node": 1},
		{"bone": "leftLowerArm", "node": 2},
		{"bone": "leftHand", "node": 99}
	]}
}`

const vrm1Humanoid = `{
	"specVersion": "1.0",
	"meta": {"name": "Sample One", "authors": ["a", "b"]},
	"humanoid": {"humanBones": {
		"hips": {"node": 0},
		"leftUpperArm": {"node": 1},
		"leftLowerArm": {"node": 2}
	}}
}`

func testDocument(ext string, body string) *gltf.Document {
	return &gltf.Document{
		Nodes: []*gltf.Node{
			{Name: "Hips", Children: []int{1}, Translation: [3]float64{0, 1, 0}},
			{Name: "LeftArm", Children: []int{2}, Rotation: [4]float64{0, 0, 0, 1}, Translation: [3]float64{0.2, 0.3, 0}},
			{Name: "LeftForeArm", Translation: [3]float64{0.25, 0, 0}},
		},
		Extensions: gltf.Extensions{ext: json.RawMessage(body)},
	}
}

func TestFromDocumentHumanoid(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		body    string
		version string
		title   string
	}{
		{"vrm 0.x", ExtVRM0, vrm0Humanoid, "0.x", "Sample"},
		{"vrm 1.0", ExtVRM1, vrm1Humanoid, "1.0", "Sample One"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromDocument(testDocument(tt.ext, tt.body), Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.version, a.Meta.Version)
			assert.Equal(t, tt.title, a.Meta.Title)
			assert.Equal(t, []string{"hips", "leftLowerArm", "leftUpperArm"}, a.BoneNames())
			assert.Equal(t, []string{retarget.LeftHand, retarget.RightUpperArm}, a.MissingBones([]string{retarget.LeftUpperArm, retarget.LeftHand, retarget.RightUpperArm}))

			n, ok := a.Node(retarget.LeftUpperArm)
			require.True(t, ok)
			assert.Equal(t, "LeftArm", n.Name)
			assert.Equal(t, 0, n.Parent)
			assert.Equal(t, []int{0}, a.Roots)
		})
	}
}

func TestFromDocumentRejectsPlainGLTF(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{{Name: "root"}}}
	_, err := FromDocument(doc, Options{})
	assert.ErrorIs(t, err, ErrNotVRM)
}

func TestNodeDefaults(t *testing.T) {
	a, err := FromDocument(testDocument(ExtVRM0, vrm0Humanoid), Options{})
	require.NoError(t, err)

	n := a.Nodes[2]
	assert.Equal(t, mathutil.QuatIdentity(), n.Rotation)
	assert.Equal(t, mathutil.Vec3{1, 1, 1}, n.Scale)
	assert.Equal(t, -1, n.Mesh)
	assert.Equal(t, -1, n.Skin)
	assert.Equal(t, mathutil.Vec3{0.25, 0, 0}, n.Local().Translation())
}

func TestBoneNodeRotationAndReset(t *testing.T) {
	a, err := FromDocument(testDocument(ExtVRM1, vrm1Humanoid), Options{})
	require.NoError(t, err)

	var h retarget.Humanoid = a
	bone, ok := h.BoneNode(retarget.LeftLowerArm)
	require.True(t, ok)

	q := mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 0, 1}, 1)
	bone.SetLocalRotation(q)
	assert.Equal(t, q, a.Nodes[2].Rotation)

	_, ok = h.BoneNode(retarget.RightHand)
	assert.False(t, ok)

	a.ResetPose()
	assert.Equal(t, mathutil.QuatIdentity(), a.Nodes[2].Rotation)
}

func TestTurnVRM0(t *testing.T) {
	opts := Options{TurnVRM0: true, Offset: mathutil.Vec3{0, 0.4, 0}}

	a0, err := FromDocument(testDocument(ExtVRM0, vrm0Humanoid), opts)
	require.NoError(t, err)
	forward := a0.RootTransform().MulDir(mathutil.Vec3{0, 0, -1})
	assert.InDelta(t, 1.0, forward[2], 1e-9)
	assert.Equal(t, mathutil.Vec3{0, 0.4, 0}, a0.RootTransform().Translation())

	a1, err := FromDocument(testDocument(ExtVRM1, vrm1Humanoid), opts)
	require.NoError(t, err)
	assert.Equal(t, mathutil.QuatIdentity(), a1.Facing)
}

func TestDecomposeMatrixNode(t *testing.T) {
	q := mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 1, 0}, math.Pi/3)
	m := mathutil.FromTRS(mathutil.Vec3{1, 2, 3}, q, mathutil.Vec3{2, 2, 2})

	tr, rot, sc := decompose(m)
	assert.InDelta(t, 2.0, sc[0], 1e-9)
	assert.InDelta(t, 2.0, sc[2], 1e-9)
	assert.True(t, q.ApproxEqual(rot, 1e-12))
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, tr)
}
