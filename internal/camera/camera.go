// Package camera holds the perspective camera that frames the avatar.
package camera

import (
	"math"

	"vrm-pose-player/internal/mathutil"
)

// Defaults of the viewer scene.
const (
	DefaultFOV  = 30.0
	DefaultNear = 0.1
	DefaultFar  = 100.0
)

// DefaultPosition is where the camera starts before the model is framed.
var DefaultPosition = mathutil.Vec3{0, 1.4, 2.5}

// Camera is a right-handed perspective camera looking from Position at Target.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position mathutil.Vec3
	Target   mathutil.Vec3
}

// New returns the default camera for a width×height viewport, looking down -Z.
func New(width, height int) Camera {
	c := Camera{
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: DefaultPosition,
		Target:   DefaultPosition.Add(mathutil.Vec3{0, 0, -1}),
	}
	c.SetAspect(width, height)
	return c
}

// SetAspect updates the aspect ratio after a viewport resize.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// Frame moves the camera in front of the bounds and looks at their center:
// up by a tenth of the diagonal and back by 1.2 diagonals.
func (c *Camera) Frame(min, max mathutil.Vec3) {
	center := min.Add(max).Scale(0.5)
	size := max.Sub(min).Len()
	c.Position = center.Add(mathutil.Vec3{0, size * 0.1, size * 1.2})
	c.Target = center
}

// View returns the world-to-camera rotation (rows: right, up, back).
func (c Camera) View() mathutil.Mat3 {
	forward := c.Target.Sub(c.Position).Normalize()
	if forward.Len() == 0 {
		forward = mathutil.Vec3{0, 0, -1}
	}
	right := forward.Cross(mathutil.AxisY).Normalize()
	if right.Len() == 0 {
		right = mathutil.Vec3{1, 0, 0}
	}
	up := right.Cross(forward)
	return mathutil.Mat3FromRows(right, up, forward.Scale(-1))
}

// Projection maps world points to screen pixels for one frame.
type Projection struct {
	view          mathutil.Mat3
	pos           mathutil.Vec3
	fx, fy        float64
	near, far     float64
	width, height float64
}

// Projector precomputes the projection for a width×height target.
func (c Camera) Projector(width, height int) Projection {
	f := 1 / math.Tan(mathutil.Deg2Rad(c.FOV)/2)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = float64(width) / float64(height)
	}
	return Projection{
		view:   c.View(),
		pos:    c.Position,
		fx:     f / aspect,
		fy:     f,
		near:   c.Near,
		far:    c.Far,
		width:  float64(width),
		height: float64(height),
	}
}

// Project returns screen x, y (pixels, y down) and a depth where larger is
// closer. ok is false outside the near/far range.
func (p Projection) Project(v mathutil.Vec3) (x, y, depth float64, ok bool) {
	cam := p.view.MulVec3(v.Sub(p.pos))
	dist := -cam[2]
	if dist < p.near || dist > p.far {
		return 0, 0, 0, false
	}
	ndcX := p.fx * cam[0] / dist
	ndcY := p.fy * cam[1] / dist
	x = (ndcX + 1) * 0.5 * p.width
	y = (1 - ndcY) * 0.5 * p.height
	return x, y, cam[2], true
}

// ProjectVertices projects a vertex slice. Vertices outside the depth range
// are reported in the visible mask.
func (p Projection) ProjectVertices(verts []mathutil.Vec3) (px, py, pz []float64, visible []bool) {
	n := len(verts)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)
	visible = make([]bool, n)
	for i, v := range verts {
		px[i], py[i], pz[i], visible[i] = p.Project(v)
	}
	return px, py, pz, visible
}
