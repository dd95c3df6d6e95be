package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/camera"
	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/playback"
	"vrm-pose-player/internal/pose"
	"vrm-pose-player/internal/skeleton"
)

func quad() *avatar.Avatar {
	id := mathutil.QuatIdentity()
	return &avatar.Avatar{
		Facing: id,
		Roots:  []int{0},
		Nodes: []*avatar.Node{
			{Index: 0, Parent: -1, Rotation: id, Scale: mathutil.Vec3{1, 1, 1}, Mesh: 0, Skin: -1},
		},
		Meshes: []avatar.Mesh{{Primitives: []avatar.Primitive{{
			Positions: []mathutil.Vec3{{-0.5, 0, 0}, {0.5, 0, 0}, {0.5, 1.6, 0}, {-0.5, 1.6, 0}},
			Indices:   []uint32{0, 1, 2, 0, 2, 3},
			Material:  -1,
		}}}},
	}
}

func setup(t *testing.T, frames int) (Config, *avatar.Avatar, *playback.Session) {
	t.Helper()
	a := quad()
	store := pose.NewStore()
	store.Append(pose.PoseFile{Name: "1_pose.json", Frames: make([]pose.PoseFrame, 2)})
	store.Append(pose.PoseFile{Name: "2_pose.json", Frames: make([]pose.PoseFrame, 1)})
	s := playback.NewSession(store, a, playback.Options{PoseFPS: 30, Loop: true, Logger: zerolog.Nop()})

	cam := camera.New(32, 24)
	lo, hi, ok := skeleton.Bounds(skeleton.Pose(a))
	require.True(t, ok)
	cam.Frame(lo, hi)

	return Config{
		OutputDir:   t.TempDir(),
		Camera:      cam,
		Width:       32,
		Height:      24,
		Supersample: 2,
		Workers:     2,
		Frames:      frames,
		Step:        1.0 / 30,
		Logger:      zerolog.Nop(),
	}, a, s
}

func TestRunWritesOneImagePerTick(t *testing.T) {
	cfg, a, s := setup(t, 4)
	results := Run(context.Background(), cfg, a, s)
	require.Len(t, results, 4)

	wantCursors := []playback.Cursor{{File: 0, Frame: 0}, {File: 0, Frame: 1}, {File: 1, Frame: 0}, {File: 0, Frame: 0}}
	for i, r := range results {
		require.True(t, r.Success, "tick %d: %s", i, r.Error)
		assert.Equal(t, wantCursors[i], playback.Cursor{File: r.File, Frame: r.Frame}, "tick %d", i)

		f, err := os.Open(filepath.Join(cfg.OutputDir, r.Image))
		require.NoError(t, err)
		img, err := webp.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())
		assert.Equal(t, 24, img.Bounds().Dy())

		_, _, _, alpha := img.At(16, 12).RGBA()
		assert.NotZero(t, alpha, "avatar covers the center of tick %d", i)
	}
}

func TestRunStartsFromRestPose(t *testing.T) {
	cfg, a, s := setup(t, 1)
	a.Nodes[0].SetLocalRotation(mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 1, 0}, 1))
	s.Tick(cfg.Step)
	s.Tick(cfg.Step)

	results := Run(context.Background(), cfg, a, s)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].File)
	assert.Equal(t, 0, results[0].Frame)
	assert.Equal(t, mathutil.QuatIdentity(), a.Nodes[0].LocalRotation())
}

func TestRunCancelled(t *testing.T) {
	cfg, a, s := setup(t, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, cfg, a, s)
	require.Len(t, results, 50)
	rendered := 0
	for _, r := range results {
		if r.Success {
			rendered++
		}
	}
	assert.Zero(t, rendered)
}

func TestRunNoFrames(t *testing.T) {
	cfg, a, s := setup(t, 0)
	assert.Nil(t, Run(context.Background(), cfg, a, s))
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	results := []Result{
		{Tick: 0, File: 1, Frame: 2, Image: "0.webp", Success: true},
		{Tick: 1, File: 0, Frame: 0, Image: "1.webp", Error: "boom"},
	}
	require.NoError(t, WriteManifest(path, results, []string{"a.json", "b.json"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []ManifestEntry{{Tick: 0, File: "b.json", Frame: 2, Image: "0.webp"}}, entries)
}
