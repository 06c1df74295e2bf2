package summarizer

import (
	"strings"
	"testing"
	"time"
)

func sampleSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Source:      SourceInfo{Kind: "chrome", Detail: "https://example.com"},
		Session: SessionInfo{
			ID:         "3f1c0c1e-0000-4000-8000-000000000001",
			StartedAt:  time.Date(2024, 1, 15, 10, 29, 55, 0, time.UTC),
			DurationMs: 5012,
			StopReason: "target_reached",
		},
		Settings: Settings{
			Codec:         "h264",
			Quality:       "medium",
			CRF:           23,
			Preset:        "fast",
			TimestampMode: "constant",
			FPS:           30,
			Width:         1920,
			Height:        1080,
		},
		Video: VideoInfo{
			Path:           "out.mp4",
			FramesReceived: 150,
			FramesEncoded:  150,
			DurationMs:     5000,
			EffectiveFPS:   29.93,
			FileSize:       1024 * 1024,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Recording Summary",
		"chrome",
		"https://example.com",
		"5012 ms",
		"Target frame count reached",
		"1920x1080",
		"30 fps",
		"h264",
		"CRF**: 23",
		"constant",
		"**Frames Encoded**: 150",
		"29.9 fps",
		"1.00 MB",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "Warnings") || strings.Contains(result, "Frames Skipped") {
		t.Error("empty sections should be omitted")
	}
}

func TestMarkdownFormatter_Format_Failure(t *testing.T) {
	s := sampleSummary()
	s.Session.StopReason = "encode_failed"
	s.Session.Error = "encoder: encode failed: broken pipe"
	s.Video.FramesSkipped = 3
	s.Warnings = []string{"capture: source disconnected"}

	result := NewMarkdownFormatter().Format(s)

	for _, check := range []string{"Encoding failed", "broken pipe", "**Frames Skipped**: 3", "## Warnings", "- capture: source disconnected"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestStopReasonLabel(t *testing.T) {
	tests := map[string]string{
		"timeout":      "Timeout",
		"external":     "Stopped by user",
		"source_ended": "Capture source ended",
		"":             "N/A",
		"mystery":      "mystery",
	}
	for in, want := range tests {
		if got := stopReasonLabel(in); got != want {
			t.Errorf("stopReasonLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Recording Summary": "録画サマリー",
			"Stop Reason":       "停止理由",
			"Timeout":           "タイムアウト",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	s := sampleSummary()
	s.Session.StopReason = "timeout"
	result := NewMarkdownFormatter(WithTranslator(translator)).Format(s)

	for _, check := range []string{"録画サマリー", "停止理由", "タイムアウト"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected translated %q", check)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(sampleSummary())
	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatBytes(tt.bytes); got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
