package raster

import (
	"image"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/camera"
	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/skeleton"
	"vrm-pose-player/internal/texture"
)

// maskCutoff is the alpha threshold of MASK materials.
const maskCutoff = 0.5

// defaultMaterial colors primitives that reference no material.
var defaultMaterial = avatar.Material{
	Name:      "default",
	BaseColor: [4]float64{0.63, 0.63, 0.67, 1},
	Image:     -1,
	AlphaMode: "OPAQUE",
}

// Renderer rasterizes posed avatar meshes. It owns its frame buffer, which is
// reused across frames; a Renderer must not be shared between goroutines.
type Renderer struct {
	Light LightConfig
	fb    *FrameBuffer
}

// NewRenderer returns a renderer with the default scene lights.
func NewRenderer() *Renderer {
	return &Renderer{Light: DefaultLightConfig(), fb: &FrameBuffer{}}
}

// Draw renders into the internal frame buffer and returns it. The buffer is
// only valid until the next call.
func (r *Renderer) Draw(
	meshes []skeleton.PosedMesh,
	materials []avatar.Material,
	tex texture.Resolver,
	cam camera.Camera,
	width, height int,
) *FrameBuffer {
	r.fb.Resize(width, height)
	if width <= 0 || height <= 0 {
		return r.fb
	}
	proj := cam.Projector(width, height)

	// Opaque and masked surfaces first so blended ones composite over them.
	for pass := 0; pass < 2; pass++ {
		for i := range meshes {
			mat := materialFor(materials, meshes[i].Material)
			if (mat.AlphaMode == "BLEND") != (pass == 1) {
				continue
			}
			r.drawMesh(&meshes[i], mat, tex, proj)
		}
	}
	return r.fb
}

// Render draws the meshes at supersample× the requested size and returns a
// copy of the result. Callers downsample when supersample > 1.
func (r *Renderer) Render(
	meshes []skeleton.PosedMesh,
	materials []avatar.Material,
	tex texture.Resolver,
	cam camera.Camera,
	width, height, supersample int,
) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	w, h := width*supersample, height*supersample
	fb := r.Draw(meshes, materials, tex, cam, w, h)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, fb.Color)
	return img
}

func (r *Renderer) drawMesh(m *skeleton.PosedMesh, mat *avatar.Material, tex texture.Resolver, proj camera.Projection) {
	if len(m.Positions) == 0 {
		return
	}
	px, py, pz, visible := proj.ProjectVertices(m.Positions)

	s := Surface{BaseColor: mat.BaseColor}
	if tex != nil && mat.Image >= 0 {
		s.Tex = tex.Resolve(mat.Image)
	}
	switch mat.AlphaMode {
	case "MASK":
		s.Cutoff = maskCutoff
	case "BLEND":
		s.Blend = true
		s.Cutoff = 1.0 / 255
	}
	hasUV := len(m.UVs) == len(m.Positions)

	idx := m.Indices
	n := len(m.Positions)
	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := int(idx[t]), int(idx[t+1]), int(idx[t+2])
		if a >= n || b >= n || c >= n {
			continue
		}
		if !visible[a] || !visible[b] || !visible[c] {
			continue
		}

		s.Shade = r.Light.ComputeShade(FaceNormal(m.Positions[a], m.Positions[b], m.Positions[c]))

		v0 := Vertex{X: px[a], Y: py[a], Z: pz[a]}
		v1 := Vertex{X: px[b], Y: py[b], Z: pz[b]}
		v2 := Vertex{X: px[c], Y: py[c], Z: pz[c]}
		if hasUV {
			v0.U, v0.V = float64(m.UVs[a][0]), float64(m.UVs[a][1])
			v1.U, v1.V = float64(m.UVs[b][0]), float64(m.UVs[b][1])
			v2.U, v2.V = float64(m.UVs[c][0]), float64(m.UVs[c][1])
		}
		RasterizeTriangle(r.fb, v0, v1, v2, &s, &r.Light)
	}
}

func materialFor(materials []avatar.Material, i int) *avatar.Material {
	if i < 0 || i >= len(materials) {
		return &defaultMaterial
	}
	return &materials[i]
}

// FaceNormal returns the unit normal of a counter-clockwise triangle.
func FaceNormal(a, b, c mathutil.Vec3) mathutil.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
