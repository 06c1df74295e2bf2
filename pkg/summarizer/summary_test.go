package summarizer

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/screenrec/pkg/mocks"
	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/session"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithReport(t *testing.T) {
	report := session.Report{
		SessionID:      "abc",
		OutputPath:     "out.mp4",
		Width:          1280,
		Height:         720,
		FPS:            30,
		TimestampMode:  pipeline.TimestampWallClock,
		Duration:       2 * time.Second,
		VideoDuration:  1900 * time.Millisecond,
		FramesReceived: 60,
		FramesEncoded:  57,
		FramesSkipped:  3,
		StopReason:     session.StopEncodeFailed,
		EncodeErr:      errors.New("pipe closed"),
		Warnings:       []string{"late frame"},
	}

	s := NewBuilder().
		WithSource("pattern", "").
		WithFileSize(4096).
		WithSettings(Settings{Codec: "h264", FPS: 60}).
		WithReport(report).
		Build()

	if s.Source.Kind != "pattern" {
		t.Errorf("source = %+v", s.Source)
	}
	if s.Session.ID != "abc" || s.Session.DurationMs != 2000 || s.Session.Error != "pipe closed" {
		t.Errorf("session = %+v", s.Session)
	}
	if s.Video.FramesEncoded != 57 || s.Video.FramesSkipped != 3 || s.Video.DurationMs != 1900 {
		t.Errorf("video = %+v", s.Video)
	}
	if s.Video.FileSize != 4096 {
		t.Errorf("file size lost: %d", s.Video.FileSize)
	}
	if s.Video.EffectiveFPS != 30 {
		t.Errorf("effective fps = %v", s.Video.EffectiveFPS)
	}
	// explicit settings win over the report
	if s.Settings.FPS != 60 || s.Settings.Width != 1280 || s.Settings.TimestampMode != "wallclock" {
		t.Errorf("settings = %+v", s.Settings)
	}
	if len(s.Warnings) != 1 {
		t.Errorf("warnings = %v", s.Warnings)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(NewMarkdownFormatter(), fs)

	path := filepath.Join("out", "summary.md")
	if err := w.Write(path, sampleSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile(path)
	if !ok || !strings.HasPrefix(string(data), "# Recording Summary") {
		t.Errorf("unexpected summary file: %q", data)
	}

	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }
	if err := w.Write(path, sampleSummary()); err == nil {
		t.Error("expected write error")
	}
}

func TestForPath(t *testing.T) {
	md := NewMarkdownFormatter()
	if f := ForPath("summary.md", md); f != Formatter(md) {
		t.Errorf("markdown path got %T", f)
	}
	f := ForPath("out/summary.JSON", md)
	if _, ok := f.(JSONFormatter); !ok {
		t.Fatalf("json path got %T", f)
	}

	var decoded Summary
	if err := json.Unmarshal([]byte(f.Format(sampleSummary())), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Video.FramesEncoded != sampleSummary().Video.FramesEncoded {
		t.Errorf("frames encoded = %d", decoded.Video.FramesEncoded)
	}
}

func TestFormatFunc(t *testing.T) {
	var f Formatter = FormatFunc(func(s *Summary) string { return s.Source.Kind })
	if got := f.Format(&Summary{Source: SourceInfo{Kind: "screen"}}); got != "screen" {
		t.Errorf("got %q", got)
	}
}
