package skeleton

import (
	"math"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/mathutil"
)

// BuildWorldMatrices computes the world transform of every node for the
// avatar's current pose, including the scene root placement.
// Returns a slice of 4×4 matrices indexed by node index.
func BuildWorldMatrices(a *avatar.Avatar) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(a.Nodes))
	visited := make([]bool, len(a.Nodes))
	root := a.RootTransform()

	var walk func(i int, parent mathutil.Mat4)
	walk = func(i int, parent mathutil.Mat4) {
		if i < 0 || i >= len(a.Nodes) || visited[i] {
			return
		}
		visited[i] = true
		worlds[i] = mathutil.Mat4Mul(parent, a.Nodes[i].Local())
		for _, c := range a.Nodes[i].Children {
			walk(c, worlds[i])
		}
	}

	for _, r := range a.Roots {
		walk(r, root)
	}
	// Nodes outside the active scene still get a transform.
	for i, n := range a.Nodes {
		if !visited[i] && n.Parent < 0 {
			walk(i, root)
		}
	}
	return worlds
}

// PosedMesh is world-space geometry ready for rasterization.
type PosedMesh struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float32
	Indices   []uint32
	Material  int
}

// Pose skins every mesh instance of the avatar into world space.
// Skinned primitives use linear blend skinning over up to four joints;
// unskinned primitives follow their node rigidly.
func Pose(a *avatar.Avatar) []PosedMesh {
	worlds := BuildWorldMatrices(a)

	var out []PosedMesh
	for _, n := range a.Nodes {
		if n.Mesh < 0 || n.Mesh >= len(a.Meshes) {
			continue
		}

		var jointMats []mathutil.Mat4
		if n.Skin >= 0 && n.Skin < len(a.Skins) {
			jointMats = skinMatrices(a.Skins[n.Skin], worlds)
		}

		for _, p := range a.Meshes[n.Mesh].Primitives {
			pm := PosedMesh{
				Positions: make([]mathutil.Vec3, len(p.Positions)),
				UVs:       p.UVs,
				Indices:   p.Indices,
				Material:  p.Material,
			}
			if len(p.Normals) == len(p.Positions) {
				pm.Normals = make([]mathutil.Vec3, len(p.Normals))
			}

			skinned := jointMats != nil && len(p.Joints) == len(p.Positions) && len(p.Weights) == len(p.Positions)
			for vi, v := range p.Positions {
				m := worlds[n.Index]
				if skinned {
					m = blend(jointMats, p.Joints[vi], p.Weights[vi], m)
				}
				pm.Positions[vi] = m.MulPoint(v)
				if pm.Normals != nil {
					pm.Normals[vi] = m.MulDir(p.Normals[vi]).Normalize()
				}
			}
			out = append(out, pm)
		}
	}
	return out
}

// skinMatrices returns world × inverseBind for each joint of the skin.
func skinMatrices(s avatar.Skin, worlds []mathutil.Mat4) []mathutil.Mat4 {
	mats := make([]mathutil.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		if j < 0 || j >= len(worlds) {
			mats[i] = mathutil.Mat4Identity()
			continue
		}
		mats[i] = mathutil.Mat4Mul(worlds[j], s.InverseBind[i])
	}
	return mats
}

// blend mixes joint matrices by weight. Vertices with no usable weight keep
// the fallback transform.
func blend(mats []mathutil.Mat4, joints [4]uint16, weights [4]float32, fallback mathutil.Mat4) mathutil.Mat4 {
	var acc mathutil.Mat4
	total := 0.0
	for k := 0; k < 4; k++ {
		w := float64(weights[k])
		j := int(joints[k])
		if w <= 0 || j >= len(mats) {
			continue
		}
		acc = acc.Add(mats[j].Scaled(w))
		total += w
	}
	if total < 1e-8 {
		return fallback
	}
	if math.Abs(total-1) > 1e-6 {
		acc = acc.Scaled(1 / total)
	}
	return acc
}

// Bounds returns the axis-aligned bounds of the posed geometry.
// ok is false when there are no vertices.
func Bounds(meshes []PosedMesh) (min, max mathutil.Vec3, ok bool) {
	min = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, m := range meshes {
		for _, v := range m.Positions {
			min = min.Min(v)
			max = max.Max(v)
			ok = true
		}
	}
	return min, max, ok
}
