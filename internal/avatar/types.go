package avatar

import "vrm-pose-player/internal/mathutil"

// Node is one transform of the model hierarchy. Playback only touches Rotation.
type Node struct {
	Index       int
	Name        string
	Parent      int // -1 for roots
	Children    []int
	Translation mathutil.Vec3
	Rotation    mathutil.Quat
	Scale       mathutil.Vec3
	Mesh        int // -1 when the node has no mesh
	Skin        int // -1 when the mesh is not skinned

	rest mathutil.Quat
}

func (n *Node) LocalRotation() mathutil.Quat {
	return n.Rotation
}

func (n *Node) SetLocalRotation(q mathutil.Quat) {
	n.Rotation = q
}

// Local returns the node's local transform.
func (n *Node) Local() mathutil.Mat4 {
	return mathutil.FromTRS(n.Translation, n.Rotation, n.Scale)
}

// Primitive is one triangle list of a mesh.
type Primitive struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float32
	Joints    [][4]uint16
	Weights   [][4]float32
	Indices   []uint32
	Material  int // -1 for the default material
}

// Mesh holds the primitives referenced by a node.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Skin binds mesh vertices to joint nodes.
type Skin struct {
	Joints      []int
	InverseBind []mathutil.Mat4
}

// Material is the subset of glTF PBR used by the rasterizer.
type Material struct {
	Name      string
	BaseColor [4]float64
	Image     int // -1 when untextured
	AlphaMode string
}

// Image is an encoded texture image (PNG, JPEG or TGA bytes).
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}
