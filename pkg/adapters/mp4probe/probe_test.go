package mp4probe

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestProbeRejectsGarbage(t *testing.T) {
	if _, err := Probe(bytes.NewReader([]byte("definitely not an mp4 file"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestProbeFileMissing(t *testing.T) {
	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestInfoFPS(t *testing.T) {
	info := Info{Samples: 150, Duration: 5 * time.Second}
	if fps := info.FPS(); fps != 30 {
		t.Errorf("FPS = %v, want 30", fps)
	}
	if fps := (Info{}).FPS(); fps != 0 {
		t.Errorf("empty FPS = %v", fps)
	}
}

func TestTicksToDuration(t *testing.T) {
	if d := ticksToDuration(90000, 30000); d != 3*time.Second {
		t.Errorf("got %v", d)
	}
	if d := ticksToDuration(100, 0); d != 0 {
		t.Errorf("zero timescale should give 0, got %v", d)
	}
}
