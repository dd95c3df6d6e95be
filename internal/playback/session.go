// Package playback steps through a pose store and drives the avatar's bones.
package playback

import (
	"github.com/rs/zerolog"

	"vrm-pose-player/internal/pose"
	"vrm-pose-player/internal/retarget"
)

// DefaultPoseFPS is the rate the pose frames were recorded at.
const DefaultPoseFPS = 30.0

// Cursor addresses one frame of the store.
type Cursor struct {
	File  int
	Frame int
}

// Options configures a Session.
type Options struct {
	// PoseFPS is the number of pose frames consumed per second of Tick time.
	// Zero or less advances exactly one frame per Tick.
	PoseFPS float64
	// Loop wraps to the first file after the last one; otherwise playback
	// holds on the last frame.
	Loop   bool
	Logger zerolog.Logger
}

// Session is a single playing state over a Store. It is not safe for
// concurrent use; the Store it reads may still be filling up.
type Session struct {
	store    *pose.Store
	humanoid retarget.Humanoid
	opts     Options

	cursor Cursor
	acc    float64
}

// NewSession starts playback at (0, 0).
func NewSession(store *pose.Store, h retarget.Humanoid, opts Options) *Session {
	return &Session{store: store, humanoid: h, opts: opts}
}

// Cursor returns the frame the next Tick will apply.
func (s *Session) Cursor() Cursor {
	return s.cursor
}

// poseResetter is implemented by humanoids that can return to their rest pose.
type poseResetter interface {
	ResetPose()
}

// Reset rewinds to the first frame and, when the humanoid supports it,
// restores the rest pose so blended bones start from scratch.
func (s *Session) Reset() {
	s.cursor = Cursor{}
	s.acc = 0
	if r, ok := s.humanoid.(poseResetter); ok {
		r.ResetPose()
	}
}

// Frame returns the frame under the cursor.
func (s *Session) Frame() (pose.PoseFrame, bool) {
	return s.store.Frame(s.cursor.File, s.cursor.Frame)
}

// Tick applies the current frame to the humanoid, then advances the cursor by
// however many frames dt seconds cover. A missing frame leaves the bones
// untouched. Returns the number of bones mutated.
func (s *Session) Tick(dt float64) int {
	mutated := 0
	if frame, ok := s.Frame(); ok {
		mutated = retarget.ApplyPose(s.humanoid, frame)
	}

	if s.opts.PoseFPS <= 0 {
		s.advance()
		return mutated
	}
	step := 1 / s.opts.PoseFPS
	s.acc += dt
	for s.acc >= step {
		s.acc -= step
		if !s.advance() {
			s.acc = 0
			break
		}
	}
	return mutated
}

// advance moves to the next frame, crossing into the next non-empty file at
// the end of a file. Reports false when the cursor could not move.
func (s *Session) advance() bool {
	n := s.store.Len()
	if n == 0 {
		return false
	}
	if f, ok := s.store.File(s.cursor.File); ok && s.cursor.Frame+1 < len(f.Frames) {
		s.cursor.Frame++
		return true
	}

	for i := 1; i <= n; i++ {
		next := s.cursor.File + i
		if next >= n {
			if !s.opts.Loop {
				return false
			}
			next -= n
		}
		f, ok := s.store.File(next)
		if !ok || len(f.Frames) == 0 {
			continue
		}
		if next <= s.cursor.File {
			s.opts.Logger.Debug().Msg("Playback wrapped")
		}
		s.cursor = Cursor{File: next}
		s.opts.Logger.Debug().Str("file", f.Name).Int("frames", len(f.Frames)).Msg("Playing pose file")
		return true
	}
	return false
}
