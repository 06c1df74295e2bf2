// Package summarizer provides summary generation for recording results.
package summarizer

import (
	"time"

	"github.com/user/screenrec/pkg/session"
)

// Summary contains all data collected during a recording session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// What was recorded
	Source SourceInfo

	// Session outcome
	Session SessionInfo

	// Recording settings
	Settings Settings

	// Video output details
	Video VideoInfo

	Warnings []string
}

// SourceInfo describes the capture source.
type SourceInfo struct {
	Kind   string // screen, pattern or chrome
	Detail string // display index, URL...
}

// SessionInfo describes how the session ran and ended.
type SessionInfo struct {
	ID         string
	StartedAt  time.Time
	DurationMs int64
	StopReason string
	Error      string
}

// Settings contains the recording configuration.
type Settings struct {
	Codec         string
	Quality       string
	CRF           int
	Preset        string
	TimestampMode string
	FPS           int
	Width         int
	Height        int
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Path           string
	FramesReceived int64
	FramesEncoded  int64
	FramesSkipped  int64
	DurationMs     int64
	EffectiveFPS   float64
	FileSize       int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the capture source description.
func (b *Builder) WithSource(kind, detail string) *Builder {
	b.summary.Source = SourceInfo{Kind: kind, Detail: detail}
	return b
}

// WithSettings sets recording settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithFileSize records the size of the written MP4.
func (b *Builder) WithFileSize(size int64) *Builder {
	b.summary.Video.FileSize = size
	return b
}

// WithReport copies the session outcome and frame counters from a report.
// Size, frame rate and timestamp mode fill in settings left unset.
func (b *Builder) WithReport(r session.Report) *Builder {
	s := b.summary
	s.Session = SessionInfo{
		ID:         r.SessionID,
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
		StopReason: string(r.StopReason),
	}
	if r.EncodeErr != nil {
		s.Session.Error = r.EncodeErr.Error()
	}

	size := s.Video.FileSize
	s.Video = VideoInfo{
		Path:           r.OutputPath,
		FramesReceived: r.FramesReceived,
		FramesEncoded:  r.FramesEncoded,
		FramesSkipped:  r.FramesSkipped,
		DurationMs:     r.VideoDuration.Milliseconds(),
		EffectiveFPS:   r.EffectiveFPS(),
		FileSize:       size,
	}
	s.Warnings = append(s.Warnings, r.Warnings...)

	if s.Settings.Width == 0 && s.Settings.Height == 0 {
		s.Settings.Width, s.Settings.Height = r.Width, r.Height
	}
	if s.Settings.FPS == 0 {
		s.Settings.FPS = r.FPS
	}
	if s.Settings.TimestampMode == "" {
		s.Settings.TimestampMode = string(r.TimestampMode)
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
