// Package screenrec provides a high-level API for recording a capture source
// to an H.264 MP4 file.
package screenrec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/session"
)

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for encoding and capture.
type QualitySettings struct {
	CRF         int    // x264 CRF (0-51, lower is better)
	Preset      string // x264 speed preset
	JPEGQuality int    // screencast JPEG quality for browser sources (0-100)
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			CRF:         30,
			Preset:      "veryfast",
			JPEGQuality: 60,
		}
	case QualityHigh:
		return QualitySettings{
			CRF:         18,
			Preset:      "medium",
			JPEGQuality: 90,
		}
	default: // medium
		return QualitySettings{
			CRF:         23,
			Preset:      "fast",
			JPEGQuality: 80,
		}
	}
}

// ResolutionPreset names an output size.
type ResolutionPreset string

const (
	Resolution720p   ResolutionPreset = "720p"
	Resolution1080p  ResolutionPreset = "1080p"
	Resolution1440p  ResolutionPreset = "1440p"
	ResolutionNative ResolutionPreset = "native"
)

// ParseResolution accepts a preset name or an explicit WIDTHxHEIGHT.
// For presets the returned size is zero and must be resolved with Dimensions.
func ParseResolution(s string) (ResolutionPreset, int, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch ResolutionPreset(s) {
	case Resolution720p, Resolution1080p, Resolution1440p, ResolutionNative:
		return ResolutionPreset(s), 0, 0, nil
	case "":
		return ResolutionNative, 0, 0, nil
	}

	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return "", 0, 0, fmt.Errorf("unknown resolution %q", s)
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return "", 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	return "", w, h, nil
}

// Dimensions returns the output size for a preset given the native size of
// the source. Preset heights keep the source aspect ratio; results are
// rounded down to even numbers as 4:2:0 requires.
func Dimensions(preset ResolutionPreset, nativeW, nativeH int) (int, int) {
	var h int
	switch preset {
	case Resolution720p:
		h = 720
	case Resolution1080p:
		h = 1080
	case Resolution1440p:
		h = 1440
	default:
		return even(nativeW), even(nativeH)
	}
	if nativeW <= 0 || nativeH <= 0 {
		return even(h * 16 / 9), h
	}
	w := int(float64(nativeW) * float64(h) / float64(nativeH))
	return even(w), h
}

func even(v int) int {
	return v &^ 1
}

// Config represents the configuration for a recording.
type Config struct {
	Width  int // output width (0 = source width)
	Height int // output height (0 = source height)
	FPS    int

	CRF         int
	Preset      string
	Tune        string
	GOP         int // keyframe interval in frames (0 = 2 * FPS)
	JPEGQuality int

	TargetFrames  int64
	Timeout       time.Duration
	TimestampMode pipeline.TimestampMode

	ChannelCapacity int
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with defaults: native size,
// 30 fps, medium quality, no stop condition.
func NewConfigBuilder() *ConfigBuilder {
	q := GetQualitySettings(QualityMedium)
	return &ConfigBuilder{
		config: Config{
			FPS:             30,
			CRF:             q.CRF,
			Preset:          q.Preset,
			Tune:            "zerolatency",
			JPEGQuality:     q.JPEGQuality,
			TimestampMode:   pipeline.TimestampConstant,
			ChannelCapacity: pipeline.DefaultChannelCapacity,
		},
	}
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.FPS < 1 {
		cfg.FPS = 1
	}
	if cfg.CRF < 0 {
		cfg.CRF = 0
	}
	if cfg.CRF > 51 {
		cfg.CRF = 51
	}
	cfg.Width = even(cfg.Width)
	cfg.Height = even(cfg.Height)

	return cfg
}

// WithSize sets the output size. Odd values are rounded down.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithResolution sets the output size from a preset and the source's native size.
func (b *ConfigBuilder) WithResolution(preset ResolutionPreset, nativeW, nativeH int) *ConfigBuilder {
	b.config.Width, b.config.Height = Dimensions(preset, nativeW, nativeH)
	return b
}

// WithFPS sets the nominal frame rate. Values below 1 are forced to 1.
func (b *ConfigBuilder) WithFPS(fps int) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.CRF = settings.CRF
	b.config.Preset = settings.Preset
	b.config.JPEGQuality = settings.JPEGQuality
	return b
}

// WithCRF sets the x264 CRF (0-51, lower is better).
func (b *ConfigBuilder) WithCRF(crf int) *ConfigBuilder {
	b.config.CRF = crf
	return b
}

// WithPreset sets the x264 speed preset.
func (b *ConfigBuilder) WithPreset(preset string) *ConfigBuilder {
	b.config.Preset = preset
	return b
}

// WithGOP sets the keyframe interval in frames.
func (b *ConfigBuilder) WithGOP(frames int) *ConfigBuilder {
	b.config.GOP = frames
	return b
}

// WithTargetFrames stops the recording after n frames.
func (b *ConfigBuilder) WithTargetFrames(n int64) *ConfigBuilder {
	b.config.TargetFrames = n
	return b
}

// WithTimeout stops the recording after d.
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.Timeout = d
	return b
}

// WithWallClockTimestamps stamps frames by capture time instead of encode order.
func (b *ConfigBuilder) WithWallClockTimestamps(enabled bool) *ConfigBuilder {
	if enabled {
		b.config.TimestampMode = pipeline.TimestampWallClock
	} else {
		b.config.TimestampMode = pipeline.TimestampConstant
	}
	return b
}

// WithChannelCapacity sets how many frames may queue between capture and encode.
func (b *ConfigBuilder) WithChannelCapacity(n int) *ConfigBuilder {
	b.config.ChannelCapacity = n
	return b
}

// CodecOptions returns the option set passed to the codec.
func (c Config) CodecOptions() map[string]string {
	opts := map[string]string{
		"crf": strconv.Itoa(c.CRF),
	}
	if c.Preset != "" {
		opts["preset"] = c.Preset
	}
	if c.Tune != "" {
		opts["tune"] = c.Tune
	}
	if c.GOP > 0 {
		opts["g"] = strconv.Itoa(c.GOP)
	}
	return opts
}

// ToSessionConfig converts Config to session.Config.
func (c Config) ToSessionConfig(outputPath string) session.Config {
	cfg := session.DefaultConfig()
	cfg.OutputPath = outputPath
	cfg.Width = c.Width
	cfg.Height = c.Height
	cfg.FPS = c.FPS
	cfg.TargetFrames = c.TargetFrames
	cfg.Timeout = c.Timeout
	cfg.TimestampMode = c.TimestampMode
	if c.ChannelCapacity > 0 {
		cfg.ChannelCapacity = c.ChannelCapacity
	}
	cfg.CodecOptions = c.CodecOptions()
	return cfg
}
