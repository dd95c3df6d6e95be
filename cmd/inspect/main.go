package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"vrm-pose-player/internal/app"
	"vrm-pose-player/internal/config"
	"vrm-pose-player/internal/loader"
	"vrm-pose-player/internal/logging"
	"vrm-pose-player/internal/skeleton"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (json, yaml or toml)")
	model := flag.String("model", "", "Path to the .vrm model")
	poseDir := flag.String("pose-dir", "", "Local pose directory to summarize")
	poseURL := flag.String("pose-url", "", "Pose listing URL to summarize")
	verbose := flag.Bool("v", false, "Log loader progress")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{Model: *model, PoseDir: *poseDir, PoseURL: *poseURL})

	log := zerolog.Nop()
	if *verbose {
		log = logging.New(logging.Options{Level: "debug", Format: "console"})
	}

	if cfg.Model != "" {
		if err := inspectModel(cfg, log); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.PoseDir != "" || *poseURL != "" {
		if err := inspectPoses(cfg, log); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func inspectModel(cfg config.Config, log zerolog.Logger) error {
	a, err := app.LoadAvatar(cfg, log)
	if err != nil {
		return err
	}
	fmt.Printf("Model: %s (VRM %s)\n", cfg.Model, a.Meta.Version)
	if a.Meta.Title != "" || a.Meta.Author != "" {
		fmt.Printf("  Title: %q  Author: %q\n", a.Meta.Title, a.Meta.Author)
	}
	fmt.Printf("Nodes: %d, Meshes: %d, Skins: %d, Materials: %d, Images: %d\n",
		len(a.Nodes), len(a.Meshes), len(a.Skins), len(a.Materials), len(a.Images))

	fmt.Println("Humanoid bones:")
	for _, name := range a.BoneNames() {
		n, _ := a.Node(name)
		fmt.Printf("  %-24s node %-4d %q\n", name, n.Index, n.Name)
	}
	if missing := a.MissingBones(app.DrivenBones()); len(missing) > 0 {
		fmt.Printf("Missing driven bones: %s\n", strings.Join(missing, ", "))
	}

	if lo, hi, ok := skeleton.Bounds(skeleton.Pose(a)); ok {
		size := hi.Sub(lo)
		fmt.Printf("BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
		fmt.Printf("Size: %.2f x %.2f x %.2f\n", size[0], size[1], size[2])
	}
	return nil
}

func inspectPoses(cfg config.Config, log zerolog.Logger) error {
	src, desc, err := app.PoseSource(cfg)
	if err != nil {
		return err
	}
	store, res, err := loader.Load(context.Background(), loader.Options{
		Manifest:    src,
		Fetcher:     src,
		Concurrency: cfg.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Poses: %s\n", desc)
	fmt.Printf("Files: %d found, %d loaded, %d failed, %d frames\n",
		res.Found, res.Loaded, len(res.Failed), store.TotalFrames())
	for i := 0; i < store.Len(); i++ {
		f, _ := store.File(i)
		hands := [2]int{}
		body := 0
		for _, fr := range f.Frames {
			if len(fr.Body) > body {
				body = len(fr.Body)
			}
			for h := range fr.Hands {
				if len(fr.Hands[h]) > 0 {
					hands[h]++
				}
			}
		}
		fmt.Printf("  %-24s frames=%-5d landmarks=%-3d left-hand=%-5d right-hand=%d\n",
			f.Name, len(f.Frames), body, hands[0], hands[1])
	}
	for _, name := range res.Failed {
		fmt.Printf("  FAILED %s\n", name)
	}
	return nil
}
