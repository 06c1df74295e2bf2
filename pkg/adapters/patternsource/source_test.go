package patternsource

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/ports"
)

func TestRender_Size(t *testing.T) {
	img := Render(320, 180, 0, "test").Image()
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("expected 320x180, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRender_FramesDiffer(t *testing.T) {
	a := convert.FromImage(Render(160, 90, 0, "").Image(), time.Time{})
	b := convert.FromImage(Render(160, 90, 10, "").Image(), time.Time{})
	if bytes.Equal(a.Pixels, b.Pixels) {
		t.Error("expected frame 0 and frame 10 to differ")
	}

	again := convert.FromImage(Render(160, 90, 0, "").Image(), time.Time{})
	if !bytes.Equal(a.Pixels, again.Pixels) {
		t.Error("expected rendering to be deterministic")
	}
}

func TestSource_DeliversUntilLimit(t *testing.T) {
	src := New(Options{Width: 64, Height: 36, FPS: 200, Limit: 5})
	if w, h := src.Size(); w != 64 || h != 36 {
		t.Errorf("Size() = %dx%d", w, h)
	}

	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer src.Stop()

	got := 0
	for {
		img, err := src.Receive(ctx, time.Second)
		if errors.Is(err, ports.ErrSourceDisconnected) {
			break
		}
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if len(img.Pixels) != 64*36*4 {
			t.Fatalf("pixel buffer = %d bytes", len(img.Pixels))
		}
		got++
	}
	// the queue holds 4 images and drops the oldest when full
	if got < 4 || got > 5 {
		t.Errorf("received %d images", got)
	}
}

func TestSource_StopDisconnects(t *testing.T) {
	src := New(Options{Width: 32, Height: 32, FPS: 50})
	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := src.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: expected ErrAlreadyStarted, got %v", err)
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		_, err := src.Receive(ctx, 100*time.Millisecond)
		if errors.Is(err, ports.ErrSourceDisconnected) {
			return
		}
	}
	t.Error("expected ErrSourceDisconnected after Stop")
}

func TestSource_InvalidSize(t *testing.T) {
	if err := New(Options{}).Start(context.Background()); err == nil {
		t.Error("expected error for zero size")
	}
}
