package filesink

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/user/screenrec/pkg/mocks"
)

var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	if !New(testBaseDir, mocks.NewFileSystem()).Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	if err := sink.SaveFrame(30, img); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "frames", "frame-000030.png")
	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file at %s, have %v", path, fs.Files())
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("saved frame is not a PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("expected 8x4, got %dx%d", b.Dx(), b.Dy())
	}
	if ok, _ := fs.Exists(filepath.Join(testBaseDir, "frames")); !ok {
		t.Error("expected frames directory to be created")
	}
}

func TestSink_SaveSessionJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte(`{"framesEncoded": 150}`)
	if err := sink.SaveSessionJSON(data); err != nil {
		t.Fatalf("SaveSessionJSON failed: %v", err)
	}
	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "session.json"))
	if !ok || string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(string) error { return errors.New("read-only") }

	if err := New(testBaseDir, fs).SaveFrame(0, image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected error when the frames directory cannot be created")
	}
}

func TestSink_FramesThenReport(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for _, i := range []int64{0, 15, 30} {
		if err := sink.SaveFrame(i, img); err != nil {
			t.Fatalf("SaveFrame(%d) failed: %v", i, err)
		}
	}
	if err := sink.SaveSessionJSON([]byte("{}")); err != nil {
		t.Fatal(err)
	}

	frames := filepath.Join(testBaseDir, "frames")
	want := []string{
		filepath.Join(frames, "frame-000000.png"),
		filepath.Join(frames, "frame-000015.png"),
		filepath.Join(frames, "frame-000030.png"),
		filepath.Join(testBaseDir, "session.json"),
	}
	got := fs.Written()
	if len(got) != len(want) {
		t.Fatalf("written %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d = %s, want %s", i, got[i], want[i])
		}
	}
	if ok, _ := fs.Exists(testBaseDir); !ok {
		t.Error("base directory should exist once frames are written")
	}
}
