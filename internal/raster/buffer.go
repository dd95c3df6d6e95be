package raster

import "math"

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffers when the size changes, then clears them.
func (fb *FrameBuffer) Resize(w, h int) {
	if w != fb.Width || h != fb.Height || len(fb.ZBuf) != w*h {
		fb.Width, fb.Height = w, h
		fb.Color = make([]uint8, w*h*4)
		fb.ZBuf = make([]float64, w*h)
	}
	fb.Clear()
}

// Clear resets color to transparent and depth to -inf for the next frame.
func (fb *FrameBuffer) Clear() {
	clear(fb.Color)
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}
