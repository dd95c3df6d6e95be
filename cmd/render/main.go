package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"vrm-pose-player/internal/app"
	"vrm-pose-player/internal/batch"
	"vrm-pose-player/internal/camera"
	"vrm-pose-player/internal/config"
	"vrm-pose-player/internal/loader"
	"vrm-pose-player/internal/logging"
	"vrm-pose-player/internal/playback"
	"vrm-pose-player/internal/skeleton"
	"vrm-pose-player/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (json, yaml or toml)")
	model := flag.String("model", "", "Path to the .vrm model")
	poseURL := flag.String("pose-url", "", "Pose directory listing URL (absolute or relative to base_url)")
	poseDir := flag.String("pose-dir", "", "Local pose directory (overrides -pose-url)")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	frames := flag.Int("frames", 0, "Ticks to export (default: one pass through every pose frame)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")

	flag.Parse()

	// Load config
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Model:     *model,
		PoseURL:   *poseURL,
		PoseDir:   *poseDir,
		OutputDir: *outputDir,
		Workers:   *workers,
		Frames:    *frames,
		LogLevel:  *logLevel,
	})

	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.LoadAvatar(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Model load failed")
		os.Exit(1)
	}

	src, desc, err := app.PoseSource(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Pose source")
		os.Exit(1)
	}
	log.Info().Str("source", desc).Msg("Loading poses")
	store, res, err := loader.Load(ctx, loader.Options{
		Manifest:    src,
		Fetcher:     src,
		Concurrency: cfg.Concurrency,
		Logger:      log,
	})
	if err != nil {
		log.Error().Err(err).Msg("Pose load failed")
		os.Exit(1)
	}

	total := cfg.Frames
	if total <= 0 {
		total = store.TotalFrames()
	}
	if total == 0 {
		fmt.Println("No frames to render.")
		os.Exit(0)
	}

	// Frame the rest pose so every tick shares one camera.
	cam := camera.New(cfg.Width, cfg.Height)
	if lo, hi, ok := skeleton.Bounds(skeleton.Pose(a)); ok {
		cam.Frame(lo, hi)
	}

	textures := texture.NewCache(a.Images, log)
	textures.Preload()

	step := 0.0
	if cfg.PoseFPS > 0 {
		step = 1 / cfg.PoseFPS
	}
	session := playback.NewSession(store, a, playback.Options{
		PoseFPS: cfg.PoseFPS,
		Loop:    cfg.Loop,
		Logger:  log,
	})

	log.Info().
		Int("files", res.Loaded).
		Int("ticks", total).
		Int("workers", cfg.Workers).
		Str("output", cfg.OutputDir).
		Msg("VRM pose player → WebP")

	start := time.Now()

	// Run batch
	results := batch.Run(ctx, batch.Config{
		OutputDir:   cfg.OutputDir,
		Textures:    textures,
		Camera:      cam,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Frames:      total,
		Step:        step,
		Logger:      log,
	}, a, session)

	// Count results
	success, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Success:
			success++
		case r.Error != "":
			failed++
			if failed <= 20 {
				log.Error().Int("tick", r.Tick).Str("error", r.Error).Msg("Tick failed")
			}
		}
	}
	log.Info().
		Float64("seconds", time.Since(start).Seconds()).
		Int("rendered", success).
		Int("failed", failed).
		Msg("Done")

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Warn().Err(err).Msg("Output directory")
	}
	if err := batch.WriteManifest(manifestPath, results, store.Names()); err != nil {
		log.Warn().Err(err).Msg("Manifest write failed")
	} else {
		log.Info().Str("path", manifestPath).Msg("Manifest written")
	}

	if failed > 0 || ctx.Err() != nil {
		os.Exit(1)
	}
}
