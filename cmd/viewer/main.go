package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"vrm-pose-player/internal/app"
	"vrm-pose-player/internal/config"
	"vrm-pose-player/internal/loader"
	"vrm-pose-player/internal/logging"
	"vrm-pose-player/internal/playback"
	"vrm-pose-player/internal/pose"
	"vrm-pose-player/internal/texture"
	"vrm-pose-player/internal/viewer"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (json, yaml or toml)")
	model := flag.String("model", "", "Path to the .vrm model")
	poseURL := flag.String("pose-url", "", "Pose directory listing URL (absolute or relative to base_url)")
	poseDir := flag.String("pose-dir", "", "Local pose directory (overrides -pose-url)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	debug := flag.Bool("debug", false, "Show the playback cursor and FPS")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{
		Model:    *model,
		PoseURL:  *poseURL,
		PoseDir:  *poseDir,
		LogLevel: *logLevel,
	})

	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	a, err := app.LoadAvatar(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Model load failed")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The window starts right away; frames show up as files arrive.
	store := pose.NewStore()
	src, desc, err := app.PoseSource(cfg)
	if err != nil {
		log.Error().Err(err).Msg("No pose source; the avatar will stay in its rest pose")
	} else {
		log.Info().Str("source", desc).Msg("Loading poses")
		go func() {
			_, res, err := loader.Load(ctx, loader.Options{
				Manifest:    src,
				Fetcher:     src,
				Concurrency: cfg.Concurrency,
				Store:       store,
				Logger:      log,
			})
			if err != nil {
				return
			}
			log.Info().Int("loaded", res.Loaded).Int("failed", len(res.Failed)).
				Int("frames", store.TotalFrames()).Msg("Poses loaded")
		}()
	}

	session := playback.NewSession(store, a, playback.Options{
		PoseFPS: cfg.PoseFPS,
		Loop:    cfg.Loop,
		Logger:  log,
	})

	game := viewer.New(a, session, texture.NewCache(a.Images, log), viewer.Options{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		Debug:  *debug,
		Logger: log,
	})
	if err := viewer.Run(game); err != nil {
		log.Error().Err(err).Msg("Viewer stopped")
		os.Exit(1)
	}
}
