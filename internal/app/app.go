// Package app wires configuration into the avatar and pose source shared by
// the commands.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"vrm-pose-player/internal/avatar"
	"vrm-pose-player/internal/config"
	"vrm-pose-player/internal/mathutil"
	"vrm-pose-player/internal/posesource"
	"vrm-pose-player/internal/retarget"
)

// RootOffset lifts the model root in the scene.
var RootOffset = mathutil.Vec3{0, 0.4, 0}

// PoseSource picks the local directory when pose_dir is set, otherwise the
// HTTP listing (or index) under pose_url. The second return describes the
// source for logging.
func PoseSource(cfg config.Config) (posesource.Source, string, error) {
	if cfg.PoseDir != "" {
		return posesource.Dir{Path: cfg.PoseDir}, cfg.PoseDir, nil
	}
	loc, err := cfg.PoseLocation()
	if err != nil {
		return nil, "", err
	}
	src, err := posesource.NewHTTP(loc.String(), cfg.FetchTimeout)
	if err != nil {
		return nil, "", err
	}
	src.Index = cfg.PoseIndex
	return src, src.Base.String(), nil
}

// LoadAvatar reads the configured model and reports the driven bones it
// lacks.
func LoadAvatar(cfg config.Config, log zerolog.Logger) (*avatar.Avatar, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("app: no model configured")
	}
	a, err := avatar.Load(cfg.Model, avatar.Options{Offset: RootOffset, TurnVRM0: true})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("model", cfg.Model).
		Str("vrm", a.Meta.Version).
		Str("title", a.Meta.Title).
		Int("bones", len(a.BoneNames())).
		Int("meshes", len(a.Meshes)).
		Msg("Avatar loaded")
	if missing := a.MissingBones(DrivenBones()); len(missing) > 0 {
		log.Debug().Strs("bones", missing).Msg("Avatar lacks driven bones")
	}
	return a, nil
}

// DrivenBones lists every humanoid bone playback may write.
func DrivenBones() []string {
	names := make([]string, 0, len(retarget.ArmBindings)+len(retarget.HandBones))
	for _, b := range retarget.ArmBindings {
		names = append(names, b.Bone)
	}
	return append(names, retarget.HandBones[:]...)
}
