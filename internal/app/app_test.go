package app

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrm-pose-player/internal/config"
	"vrm-pose-player/internal/posesource"
)

func TestPoseSourcePrefersDirectory(t *testing.T) {
	dir := t.TempDir()
	src, desc, err := PoseSource(config.Config{PoseDir: dir, PoseURL: "/posedata/pose/"})
	require.NoError(t, err)
	assert.Equal(t, posesource.Dir{Path: dir}, src)
	assert.Equal(t, dir, desc)
}

func TestPoseSourceHTTP(t *testing.T) {
	cfg := config.Config{
		BaseURL:      "http://localhost:8000/",
		PoseURL:      "/posedata/pose",
		PoseIndex:    "index.json",
		FetchTimeout: 5 * time.Second,
	}
	src, desc, err := PoseSource(cfg)
	require.NoError(t, err)

	h, ok := src.(*posesource.HTTP)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8000/posedata/pose/", desc)
	assert.Equal(t, "index.json", h.Index)
	assert.Equal(t, 5*time.Second, h.Client.Timeout)
}

func TestPoseSourceMissing(t *testing.T) {
	_, _, err := PoseSource(config.Config{})
	assert.ErrorIs(t, err, config.ErrNoPoseSource)
}

func TestLoadAvatarErrors(t *testing.T) {
	_, err := LoadAvatar(config.Config{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = LoadAvatar(config.Config{Model: "/nonexistent/model.vrm"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestDrivenBones(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"leftUpperArm", "rightUpperArm", "leftLowerArm", "rightLowerArm", "leftHand", "rightHand",
	}, DrivenBones())
}
