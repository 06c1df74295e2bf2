package h264decoder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/screenrec/pkg/adapters/h264encoder"
	"github.com/user/screenrec/pkg/adapters/patternsource"
	"github.com/user/screenrec/pkg/screenrec"
)

func TestFrameArgs(t *testing.T) {
	args := strings.Join(FrameArgs("in.mp4", 7), " ")
	for _, want := range []string{"-i in.mp4", `select=eq(n\,7)`, "-frames:v 1", "-vcodec png -"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg round trip in short mode")
	}
	if !h264encoder.IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}

	path := filepath.Join(t.TempDir(), "pattern.mp4")
	cfg := screenrec.NewConfigBuilder().
		WithSize(320, 180).
		WithFPS(30).
		WithTargetFrames(10).
		Build()
	src := patternsource.New(patternsource.Options{Width: 320, Height: 180, FPS: 30})

	report, err := screenrec.Record(context.Background(), src, path, cfg, screenrec.Options{})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if report.FramesEncoded != 10 {
		t.Fatalf("encoded %d frames", report.FramesEncoded)
	}

	dec, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	img, err := dec.ExtractFrame(context.Background(), path, 3)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("decoded %dx%d", b.Dx(), b.Dy())
	}

	if _, err := dec.ExtractFrame(context.Background(), path, 50); !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("expected ErrFrameNotFound, got %v", err)
	}
	if _, err := dec.ExtractFrame(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), 0); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("expected ErrDecodeFailed, got %v", err)
	}
}
