package screenrec

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/screenrec/pkg/adapters/h264encoder"
	"github.com/user/screenrec/pkg/adapters/mp4probe"
	"github.com/user/screenrec/pkg/adapters/patternsource"
	"github.com/user/screenrec/pkg/session"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	if !h264encoder.IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}
}

func TestRecord_PatternToMP4(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "out.mp4")
	src := patternsource.New(patternsource.Options{Width: 1280, Height: 720, FPS: 30})
	cfg := NewConfigBuilder().
		WithSize(1280, 720).
		WithQualityPreset(QualityLow).
		WithTargetFrames(60).
		Build()

	report, err := Record(context.Background(), src, path, cfg, Options{})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if report.StopReason != session.StopTargetReached || report.FramesEncoded != 60 {
		t.Errorf("stop %s, encoded %d", report.StopReason, report.FramesEncoded)
	}

	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if info.Width != 1280 || info.Height != 720 || info.Samples != 60 {
		t.Errorf("track = %+v", info)
	}
	if info.Keyframes < 1 {
		t.Error("expected at least one keyframe")
	}
	if d := info.Duration; d < 1990*time.Millisecond || d > 2010*time.Millisecond {
		t.Errorf("duration = %v, want 2s", d)
	}
}

func TestRecord_StopFinalizesFile(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "stopped.mp4")
	src := patternsource.New(patternsource.Options{Width: 320, Height: 240, FPS: 30})
	r := NewRecorder(src, path, NewConfigBuilder().Build(), Options{})

	time.AfterFunc(700*time.Millisecond, r.Stop)
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.StopReason != session.StopExternal {
		t.Errorf("stop reason = %s", report.StopReason)
	}

	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if int64(info.Samples) != report.FramesEncoded || info.Samples == 0 {
		t.Errorf("samples %d, encoded %d", info.Samples, report.FramesEncoded)
	}
}

func TestRecord_WallClockTimestamps(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "wallclock.mp4")
	// renders at 10 fps while the nominal rate is 30
	src := patternsource.New(patternsource.Options{Width: 320, Height: 240, FPS: 10})
	cfg := NewConfigBuilder().
		WithSize(320, 240).
		WithFPS(30).
		WithTargetFrames(10).
		WithWallClockTimestamps(true).
		Build()

	if _, err := Record(context.Background(), src, path, cfg, Options{}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	// ten frames spaced ~100ms apart span about a second, not 10/30s
	if info.Duration < 800*time.Millisecond {
		t.Errorf("duration = %v, expected wall-clock spacing", info.Duration)
	}
}
