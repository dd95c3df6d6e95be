package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. POSEPLAYER_POSE_FPS.
const EnvPrefix = "POSEPLAYER"

// Config holds the model, pose source, playback and output settings.
type Config struct {
	// Inputs
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	PoseURL   string `mapstructure:"pose_url"`
	PoseIndex string `mapstructure:"pose_index"`
	PoseDir   string `mapstructure:"pose_dir"`

	// Loading and playback
	PoseFPS      float64       `mapstructure:"pose_fps"`
	Loop         bool          `mapstructure:"loop"`
	Concurrency  int           `mapstructure:"concurrency"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// Render settings
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Supersample int    `mapstructure:"supersample"`
	Workers     int    `mapstructure:"workers"`
	OutputDir   string `mapstructure:"output_dir"`
	Frames      int    `mapstructure:"frames"`
	Title       string `mapstructure:"title"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", "")
	v.SetDefault("base_url", "http://localhost:8000/")
	v.SetDefault("pose_url", "/posedata/pose/")
	v.SetDefault("pose_index", "")
	v.SetDefault("pose_dir", "")

	v.SetDefault("pose_fps", 30.0)
	v.SetDefault("loop", true)
	v.SetDefault("concurrency", 4)
	v.SetDefault("fetch_timeout", "30s")

	v.SetDefault("width", 800)
	v.SetDefault("height", 600)
	v.SetDefault("supersample", 2)
	v.SetDefault("workers", 0)
	v.SetDefault("output_dir", "out")
	v.SetDefault("frames", 0)
	v.SetDefault("title", "VRM Pose Player")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")
}

// Load reads a JSON, YAML or TOML config file (by extension) over the
// defaults, then applies POSEPLAYER_* environment overrides. An empty path
// loads defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Model     string
	PoseURL   string
	PoseDir   string
	OutputDir string
	Workers   int
	Frames    int
	LogLevel  string
}

// Resolve applies CLI flags, which take priority when non-zero/non-empty,
// and fills remaining zero values with usable defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.PoseURL != "" {
		c.PoseURL = flags.PoseURL
		c.PoseDir = ""
	}
	if flags.PoseDir != "" {
		c.PoseDir = flags.PoseDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.PoseDir != "" && !filepath.IsAbs(c.PoseDir) {
		if abs, err := filepath.Abs(c.PoseDir); err == nil {
			c.PoseDir = abs
		}
	}

	if c.PoseFPS < 0 {
		c.PoseFPS = 0
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
}

// ErrNoPoseSource is returned when neither a directory nor a URL is set.
var ErrNoPoseSource = errors.New("config: no pose source configured")

// PoseLocation returns the absolute pose listing URL, resolving pose_url
// against base_url.
func (c *Config) PoseLocation() (*url.URL, error) {
	if strings.TrimSpace(c.PoseURL) == "" {
		return nil, ErrNoPoseSource
	}
	ref, err := url.Parse(c.PoseURL)
	if err != nil {
		return nil, fmt.Errorf("config: pose_url: %w", err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("config: relative pose_url %q needs base_url", c.PoseURL)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("config: base_url: %w", err)
	}
	return base.ResolveReference(ref), nil
}
