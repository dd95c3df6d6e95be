package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/rs/zerolog"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/camera"
	"vrm-pose-player/internal/playback"
	"vrm-pose-player/internal/postprocess"
	"vrm-pose-player/internal/raster"
	"vrm-pose-player/internal/skeleton"
	"vrm-pose-player/internal/texture"
)

// Config holds all shared resources for an export run.
type Config struct {
	OutputDir   string
	Textures    texture.Resolver
	Camera      camera.Camera
	Width       int
	Height      int
	Supersample int
	Workers     int
	Frames      int     // ticks to export
	Step        float64 // seconds of playback per tick
	Logger      zerolog.Logger
}

// Result holds the outcome of rendering one tick.
type Result struct {
	Tick    int
	File    int
	Frame   int
	Image   string
	Success bool
	Error   string
}

type job struct {
	tick   int
	cursor playback.Cursor
	meshes []skeleton.PosedMesh
}

// Run rewinds the session, plays cfg.Frames ticks on the calling goroutine and
// renders each tick's pose on a worker pool. Results are indexed by tick;
// ticks skipped after cancellation are left zero.
func Run(ctx context.Context, cfg Config, a *avatar.Avatar, session *playback.Session) []Result {
	total := cfg.Frames
	if total <= 0 {
		return nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	log := cfg.Logger
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info().Int64("done", p).Int("total", total).
						Float64("rate", float64(p)/elapsed).Msg("Export progress")
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan job, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := raster.NewRenderer()
			for j := range jobs {
				results[j.tick] = renderTick(cfg, r, a.Materials, j)
				processed.Add(1)
			}
		}()
	}

	// Playback is sequential: hand blending depends on the previous tick.
	session.Reset()
produce:
	for tick := 0; tick < total; tick++ {
		if ctx.Err() != nil {
			break
		}
		cursor := session.Cursor()
		session.Tick(cfg.Step)
		j := job{tick: tick, cursor: cursor, meshes: skeleton.Pose(a)}
		select {
		case jobs <- j:
		case <-ctx.Done():
			break produce
		}
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// ImageName is the output path of a tick relative to the output directory.
func ImageName(tick int) string {
	return fmt.Sprintf("%d.webp", tick)
}

func renderTick(cfg Config, r *raster.Renderer, materials []avatar.Material, j job) Result {
	res := Result{Tick: j.tick, File: j.cursor.File, Frame: j.cursor.Frame, Image: ImageName(j.tick)}

	img := r.Render(j.meshes, materials, cfg.Textures, cfg.Camera, cfg.Width, cfg.Height, cfg.Supersample)

	// Post-processing: supersample downsample
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}

	// Save as WebP
	outPath := filepath.Join(cfg.OutputDir, res.Image)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}

	res.Success = true
	return res
}
