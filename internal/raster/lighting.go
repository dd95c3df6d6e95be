package raster

import (
	"math"

	"vrm-pose-player/internal/mathutil"
)

// LightConfig holds the scene lights.
type LightConfig struct {
	LightDir  mathutil.Vec3 // towards the light
	Direct    float64
	Ambient   float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig is a white directional light from (1, 1, 2) at full
// intensity plus a 0.4 ambient term.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir:  mathutil.Vec3{1, 1, 2}.Normalize(),
		Direct:    1.0,
		Ambient:   0.4,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the lighting scalar for a world-space face normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndl := math.Abs(normal.Dot(lc.LightDir))
	return lc.Ambient + ndl*lc.Direct
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}
