// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/ports"
	"github.com/user/screenrec/pkg/screenrec"
	"github.com/user/screenrec/pkg/session"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Source kinds.
const (
	SourceScreen  = "screen"
	SourcePattern = "pattern"
	SourceChrome  = "chrome"
)

// Config represents the full configuration for a recording.
type Config struct {
	// Input/Output
	OutputPath string `yaml:"output"`
	Source     string `yaml:"source"`

	// Screen source
	Display int `yaml:"display"`

	// Chrome source
	URL         string `yaml:"url"`
	ChromePath  string `yaml:"chrome_path"`
	Headless    bool   `yaml:"headless"`
	JPEGQuality int    `yaml:"jpeg_quality"`

	// Video. Resolution is a preset (720p, 1080p, 1440p, native) or WIDTHxHEIGHT;
	// explicit Width and Height take precedence.
	Resolution string `yaml:"resolution"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FPS        int    `yaml:"fps"`

	// Stop conditions
	TargetFrames int64 `yaml:"target_frames"`
	TimeoutMs    int   `yaml:"timeout_ms"`

	// Pipeline
	ChannelCapacity  int    `yaml:"channel_capacity"`
	PollTimeoutMs    int    `yaml:"poll_timeout_ms"`
	ReceiveTimeoutMs int    `yaml:"receive_timeout_ms"`
	TimestampMode    string `yaml:"timestamp_mode"`

	// Encoding. A nil CRF keeps the quality preset's value; 0 is lossless.
	Codec        string            `yaml:"codec"`
	Quality      string            `yaml:"quality"`
	CRF          *int              `yaml:"crf"`
	Preset       string            `yaml:"preset"`
	CodecOptions map[string]string `yaml:"codec_options"`
	FFmpegPath   string            `yaml:"ffmpeg_path"`

	// Output extras
	SummaryPath string `yaml:"summary"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug     bool   `yaml:"debug"`
	DebugDir  string `yaml:"debug_dir"`
	SaveEvery int64  `yaml:"save_every"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath: "recording.mp4",
		Source:     SourceScreen,

		Headless: true,

		Resolution: string(screenrec.ResolutionNative),
		FPS:        30,

		ChannelCapacity:  pipeline.DefaultChannelCapacity,
		PollTimeoutMs:    100,
		ReceiveTimeoutMs: 100,
		TimestampMode:    string(pipeline.TimestampConstant),

		Codec:   string(ports.CodecH264),
		Quality: "medium",

		LogLevel: "info",

		DebugDir:  "./debug",
		SaveEvery: 30,
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges. Dimension parity is left to the encoder.
func (c Config) Validate() error {
	switch c.Source {
	case SourceScreen, SourcePattern:
	case SourceChrome:
		if c.URL == "" {
			return fmt.Errorf("%w: chrome source needs a url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalid, c.Source)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalid)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if _, _, _, err := screenrec.ParseResolution(c.Resolution); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("%w: fps %d out of range 1-240", ErrInvalid, c.FPS)
	}
	if c.TargetFrames < 0 || c.TimeoutMs < 0 {
		return fmt.Errorf("%w: negative stop condition", ErrInvalid)
	}
	if c.CRF != nil && (*c.CRF < 0 || *c.CRF > 51) {
		return fmt.Errorf("%w: crf %d out of range 0-51", ErrInvalid, *c.CRF)
	}
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality %d", ErrInvalid, c.JPEGQuality)
	}
	if _, err := pipeline.ParseTimestampMode(c.TimestampMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Quality {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("%w: unknown quality %q", ErrInvalid, c.Quality)
	}
	return nil
}

// ResolveSize returns the output size for a source of the given native size.
func (c Config) ResolveSize(nativeW, nativeH int) (int, int, error) {
	if c.Width > 0 && c.Height > 0 {
		return c.Width, c.Height, nil
	}
	preset, w, h, err := screenrec.ParseResolution(c.Resolution)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if preset == "" {
		return w, h, nil
	}
	w, h = screenrec.Dimensions(preset, nativeW, nativeH)
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: cannot resolve %s without a source size", ErrInvalid, preset)
	}
	return w, h, nil
}

// QualitySettings returns the effective quality settings: the preset, with explicit
// crf and preset values taking precedence. An explicit crf of 0 is kept.
func (c Config) QualitySettings() screenrec.QualitySettings {
	q := screenrec.GetQualitySettings(screenrec.QualityPreset(c.Quality))
	if c.CRF != nil {
		q.CRF = *c.CRF
	}
	if c.Preset != "" {
		q.Preset = c.Preset
	}
	if c.JPEGQuality > 0 {
		q.JPEGQuality = c.JPEGQuality
	}
	return q
}

// ToSessionConfig converts Config to session.Config. Width and Height are
// copied as is; use ResolveSize first when they are not set explicitly.
func (c Config) ToSessionConfig() session.Config {
	mode, _ := pipeline.ParseTimestampMode(c.TimestampMode)
	q := c.QualitySettings()

	opts := map[string]string{
		"crf":    strconv.Itoa(q.CRF),
		"preset": q.Preset,
	}
	for k, v := range c.CodecOptions {
		opts[k] = v
	}

	return session.Config{
		OutputPath:      c.OutputPath,
		Width:           c.Width,
		Height:          c.Height,
		FPS:             c.FPS,
		TargetFrames:    c.TargetFrames,
		Timeout:         time.Duration(c.TimeoutMs) * time.Millisecond,
		ChannelCapacity: c.ChannelCapacity,
		PollTimeout:     time.Duration(c.PollTimeoutMs) * time.Millisecond,
		ReceiveTimeout:  time.Duration(c.ReceiveTimeoutMs) * time.Millisecond,
		TimestampMode:   mode,
		Codec:           ports.CodecID(c.Codec),
		CodecOptions:    opts,
		SaveEvery:       c.debugSaveEvery(),
	}
}

func (c Config) debugSaveEvery() int64 {
	if !c.Debug {
		return 0
	}
	return c.SaveEvery
}
