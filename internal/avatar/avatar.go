// Package avatar loads a VRM humanoid model and exposes its bone nodes.
package avatar

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/retarget"
)

// ErrNotVRM is returned for glTF documents without a VRM humanoid extension.
var ErrNotVRM = errors.New("avatar: no VRM humanoid extension")

// Avatar is a loaded VRM model. Bone rotations are mutated in place by
// playback; everything else is read-only after Load.
type Avatar struct {
	Meta      Meta
	Nodes     []*Node
	Roots     []int
	Meshes    []Mesh
	Skins     []Skin
	Materials []Material
	Images    []Image

	// Offset and Facing place the model root in the scene.
	Offset mathutil.Vec3
	Facing mathutil.Quat

	humanoid map[string]int
}

// Options adjusts how the model is placed in the scene.
type Options struct {
	Offset mathutil.Vec3

	// Dir resolves external image URIs. Load sets it to the model's directory.
	Dir string

	// TurnVRM0 rotates VRM 0.x models half a turn about Y so they face +Z
	// like VRM 1.0 models.
	TurnVRM0 bool
}

// Load reads a .vrm file.
func Load(path string, opts Options) (*Avatar, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("avatar: open %s: %w", path, err)
	}
	if opts.Dir == "" {
		opts.Dir = filepath.Dir(path)
	}
	a, err := FromDocument(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("avatar: %s: %w", path, err)
	}
	return a, nil
}

// FromDocument builds an avatar from a decoded glTF document.
func FromDocument(doc *gltf.Document, opts Options) (*Avatar, error) {
	humanoid, meta, err := parseHumanoid(doc.Extensions, len(doc.Nodes))
	if err != nil {
		return nil, err
	}

	a := &Avatar{
		Meta:     meta,
		Offset:   opts.Offset,
		Facing:   mathutil.QuatIdentity(),
		humanoid: humanoid,
	}
	if opts.TurnVRM0 && meta.Version == "0.x" {
		a.Facing = mathutil.QuatFromAxisAngle(mathutil.AxisY, math.Pi)
	}

	a.Nodes = readNodes(doc)
	a.Roots = sceneRoots(doc, a.Nodes)

	if a.Meshes, err = readMeshes(doc); err != nil {
		return nil, err
	}
	if a.Skins, err = readSkins(doc); err != nil {
		return nil, err
	}
	a.Materials = readMaterials(doc)
	if a.Images, err = readImages(doc, opts.Dir); err != nil {
		return nil, err
	}
	return a, nil
}

// Node returns the node mapped to a humanoid bone name.
func (a *Avatar) Node(name string) (*Node, bool) {
	i, ok := a.humanoid[name]
	if !ok {
		return nil, false
	}
	return a.Nodes[i], true
}

// BoneNode implements retarget.Humanoid.
func (a *Avatar) BoneNode(name string) (retarget.BoneNode, bool) {
	n, ok := a.Node(name)
	if !ok {
		return nil, false
	}
	return n, true
}

// ResetPose restores every node rotation to the loaded rest pose. Nodes built
// by hand, without a recorded rest rotation, return to identity.
func (a *Avatar) ResetPose() {
	for _, n := range a.Nodes {
		n.Rotation = n.rest.Normalize()
	}
}

// RootTransform places the model in the scene.
func (a *Avatar) RootTransform() mathutil.Mat4 {
	return mathutil.FromTRS(a.Offset, a.Facing, mathutil.Vec3{1, 1, 1})
}

func readNodes(doc *gltf.Document) []*Node {
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		n := &Node{
			Index:  i,
			Name:   gn.Name,
			Parent: -1,
			Mesh:   -1,
			Skin:   -1,
		}
		if gn.Mesh != nil {
			n.Mesh = *gn.Mesh
		}
		if gn.Skin != nil {
			n.Skin = *gn.Skin
		}

		if m := gn.MatrixOrDefault(); m != identityColumnMajor {
			n.Translation, n.Rotation, n.Scale = decompose(mathutil.Mat4FromColumnMajor(m))
		} else {
			t := gn.Translation
			r := gn.RotationOrDefault()
			s := gn.ScaleOrDefault()
			n.Translation = mathutil.Vec3{t[0], t[1], t[2]}
			n.Rotation = mathutil.Quat{r[0], r[1], r[2], r[3]}.Normalize()
			n.Scale = mathutil.Vec3{s[0], s[1], s[2]}
		}
		n.rest = n.Rotation
		n.Children = append([]int(nil), gn.Children...)
		nodes[i] = n
	}

	for _, n := range nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(nodes) {
				nodes[c].Parent = n.Index
			}
		}
	}
	return nodes
}

var identityColumnMajor = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func decompose(m mathutil.Mat4) (mathutil.Vec3, mathutil.Quat, mathutil.Vec3) {
	t := m.Translation()
	cols := [3]mathutil.Vec3{
		{m[0], m[4], m[8]},
		{m[1], m[5], m[9]},
		{m[2], m[6], m[10]},
	}
	s := mathutil.Vec3{cols[0].Len(), cols[1].Len(), cols[2].Len()}
	var r mathutil.Mat3
	for c := 0; c < 3; c++ {
		n := cols[c].Normalize()
		r[0*3+c], r[1*3+c], r[2*3+c] = n[0], n[1], n[2]
	}
	return t, mathutil.Mat3ToQuat(r), s
}

func sceneRoots(doc *gltf.Document, nodes []*Node) []int {
	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene < len(doc.Scenes) && len(doc.Scenes[scene].Nodes) > 0 {
		return append([]int(nil), doc.Scenes[scene].Nodes...)
	}
	var roots []int
	for _, n := range nodes {
		if n.Parent < 0 {
			roots = append(roots, n.Index)
		}
	}
	return roots
}
