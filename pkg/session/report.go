package session

import (
	"encoding/json"
	"time"

	"github.com/user/screenrec/pkg/pipeline"
)

// Report describes a finished recording.
type Report struct {
	SessionID     string
	OutputPath    string
	Width         int
	Height        int
	FPS           int
	TimestampMode pipeline.TimestampMode

	StartedAt     time.Time
	Duration      time.Duration // wall-clock length of the session
	VideoDuration time.Duration // FramesEncoded at the nominal frame rate

	FramesReceived int64
	FramesEncoded  int64
	FramesSkipped  int64

	StopReason StopReason
	CaptureEnd pipeline.CaptureEndReason

	CaptureErr error
	EncodeErr  error
	Warnings   []string
}

// EffectiveFPS returns the capture rate actually achieved.
func (r Report) EffectiveFPS() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.FramesReceived) / r.Duration.Seconds()
}

// Succeeded reports whether the output file was finalized without encode errors.
func (r Report) Succeeded() bool {
	return r.EncodeErr == nil
}

type reportJSON struct {
	SessionID       string   `json:"sessionId"`
	OutputPath      string   `json:"outputPath"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	FPS             int      `json:"fps"`
	TimestampMode   string   `json:"timestampMode"`
	StartedAt       string   `json:"startedAt"`
	DurationMs      int64    `json:"durationMs"`
	VideoDurationMs int64    `json:"videoDurationMs"`
	FramesReceived  int64    `json:"framesReceived"`
	FramesEncoded   int64    `json:"framesEncoded"`
	FramesSkipped   int64    `json:"framesSkipped,omitempty"`
	EffectiveFPS    float64  `json:"effectiveFps"`
	StopReason      string   `json:"stopReason"`
	CaptureEnd      string   `json:"captureEnd,omitempty"`
	CaptureError    string   `json:"captureError,omitempty"`
	EncodeError     string   `json:"encodeError,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// MarshalJSON renders durations in milliseconds and errors as strings.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		SessionID:       r.SessionID,
		OutputPath:      r.OutputPath,
		Width:           r.Width,
		Height:          r.Height,
		FPS:             r.FPS,
		TimestampMode:   string(r.TimestampMode),
		StartedAt:       r.StartedAt.Format(time.RFC3339Nano),
		DurationMs:      r.Duration.Milliseconds(),
		VideoDurationMs: r.VideoDuration.Milliseconds(),
		FramesReceived:  r.FramesReceived,
		FramesEncoded:   r.FramesEncoded,
		FramesSkipped:   r.FramesSkipped,
		EffectiveFPS:    r.EffectiveFPS(),
		StopReason:      string(r.StopReason),
		CaptureEnd:      string(r.CaptureEnd),
		Warnings:        r.Warnings,
	}
	if r.CaptureErr != nil {
		out.CaptureError = r.CaptureErr.Error()
	}
	if r.EncodeErr != nil {
		out.EncodeError = r.EncodeErr.Error()
	}
	return json.Marshal(out)
}
