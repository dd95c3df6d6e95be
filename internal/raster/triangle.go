package raster

import (
	"image"
	"math"
)

// Vertex is a projected vertex: screen position, depth (larger is closer) and
// texture coordinate.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Surface describes how a triangle is colored.
type Surface struct {
	Tex       *image.NRGBA // nil for untextured
	BaseColor [4]float64   // linear RGBA factor
	Shade     float64      // flat lighting scalar
	Cutoff    float64      // texels with alpha below this are discarded
	Blend     bool         // alpha-blend over the existing color
}

// RasterizeTriangle rasterizes a single triangle with texture mapping, z-buffer,
// sRGB color space and flat lighting.
//
// Hot path: the inner loop does not allocate.
func RasterizeTriangle(fb *FrameBuffer, v0, v1, v2 Vertex, s *Surface, lc *LightConfig) {
	x0, y0, z0 := v0.X, v0.Y, v0.Z
	x1, y1, z1 := v1.X, v1.Y, v1.Z
	x2, y2, z2 := v2.X, v2.Y, v2.Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	shade := s.Shade
	invGamma := lc.InvGamma
	hasTex := s.Tex != nil

	// Samples are taken at pixel centers.
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			lr, lg, lb, alpha := s.BaseColor[0], s.BaseColor[1], s.BaseColor[2], s.BaseColor[3]
			if hasTex {
				u := w0*v0.U + w1*v1.U + w2*v2.U
				v := w0*v0.V + w1*v1.V + w2*v2.V
				cr, cg, cb, ca := SampleTexture(s.Tex, u, v)
				lr *= srgbToLinear[cr]
				lg *= srgbToLinear[cg]
				lb *= srgbToLinear[cb]
				alpha *= float64(ca) / 255
			}
			if alpha < s.Cutoff {
				continue
			}

			fr := math.Pow(math.Min(lr*shade, 1), invGamma) * 255
			fg := math.Pow(math.Min(lg*shade, 1), invGamma) * 255
			ffb := math.Pow(math.Min(lb*shade, 1), invGamma) * 255

			pxIdx := zIdx * 4
			if s.Blend && alpha < 1 {
				// Straight-alpha "over" composite.
				dstA := float64(fb.Color[pxIdx+3]) / 255
				outA := alpha + dstA*(1-alpha)
				if outA > 0 {
					k := dstA * (1 - alpha)
					fb.Color[pxIdx] = clamp255((fr*alpha + float64(fb.Color[pxIdx])*k) / outA)
					fb.Color[pxIdx+1] = clamp255((fg*alpha + float64(fb.Color[pxIdx+1])*k) / outA)
					fb.Color[pxIdx+2] = clamp255((ffb*alpha + float64(fb.Color[pxIdx+2])*k) / outA)
				}
				fb.Color[pxIdx+3] = clamp255(outA * 255)
				if alpha >= 0.5 {
					fb.ZBuf[zIdx] = z
				}
				continue
			}

			fb.ZBuf[zIdx] = z
			fb.Color[pxIdx] = clamp255(fr)
			fb.Color[pxIdx+1] = clamp255(fg)
			fb.Color[pxIdx+2] = clamp255(ffb)
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
