package h264encoder

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/ports"
)

// au builds an Annex B access unit: AUD followed by the given NAL units.
func au(nalus ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 1, 0x09, 0xF0})
	for _, n := range nalus {
		buf.Write([]byte{0, 0, 0, 1})
		buf.Write(n)
	}
	return buf.Bytes()
}

var (
	testSPS = []byte{0x67, 0x42, 0xC0, 0x1E, 0xDA}
	testPPS = []byte{0x68, 0xCE, 0x3C, 0x80}
	testIDR = []byte{0x65, 0x88, 0x84, 0x00, 0x33}
	testP   = []byte{0x41, 0x9A, 0x02, 0x04}
)

func TestSplitterCutsAtDelimiters(t *testing.T) {
	first := au(testSPS, testPPS, testIDR)
	second := au(testP)
	third := au(testP)
	stream := append(append(append([]byte{}, first...), second...), third...)

	// Feed in small chunks so start codes straddle chunk boundaries.
	var s auSplitter
	var units [][]byte
	for i := 0; i < len(stream); i += 3 {
		end := i + 3
		if end > len(stream) {
			end = len(stream)
		}
		units = append(units, s.Write(stream[i:end])...)
	}
	if last := s.Flush(); last != nil {
		units = append(units, last)
	}

	if len(units) != 3 {
		t.Fatalf("expected 3 access units, got %d", len(units))
	}
	for i, want := range [][]byte{first, second, third} {
		if !bytes.Equal(units[i], want) {
			t.Errorf("unit %d = %x, want %x", i, units[i], want)
		}
	}
}

func TestSplitterFlushEmpty(t *testing.T) {
	var s auSplitter
	if got := s.Flush(); got != nil {
		t.Errorf("expected nil flush, got %x", got)
	}
}

func TestIsKeyframe(t *testing.T) {
	if !IsKeyframe(au(testSPS, testPPS, testIDR)) {
		t.Error("IDR access unit should be a keyframe")
	}
	if IsKeyframe(au(testP)) {
		t.Error("P access unit should not be a keyframe")
	}
}

func TestBuildArgsDefaults(t *testing.T) {
	args := BuildArgs(ports.CodecConfig{Width: 640, Height: 480, FPS: 30})
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-s 640x480",
		"-r 30",
		"-c:v libx264",
		"-preset fast",
		"-crf 23",
		"-tune zerolatency",
		"-g 60",
		"-bf 0",
		"-f h264 pipe:1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestBuildArgsOverrides(t *testing.T) {
	args := BuildArgs(ports.CodecConfig{
		Width: 320, Height: 240, FPS: 10,
		Options: map[string]string{"preset": "veryfast", "crf": "30", "profile": "baseline", "tune": ""},
	})
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-preset veryfast") || !strings.Contains(joined, "-crf 30") {
		t.Errorf("overrides not applied: %s", joined)
	}
	if !strings.Contains(joined, "-profile:v baseline") {
		t.Errorf("profile not mapped: %s", joined)
	}
	if strings.Contains(joined, "-tune") {
		t.Errorf("empty option should be omitted: %s", joined)
	}
}

func TestCodecNotOpened(t *testing.T) {
	c := New(logger.NewNoop())

	if err := c.SendFrame(image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420), 0); !errors.Is(err, ErrNotOpened) {
		t.Errorf("SendFrame: expected ErrNotOpened, got %v", err)
	}
	if _, err := c.ReceivePacket(); !errors.Is(err, ErrNotOpened) {
		t.Errorf("ReceivePacket: expected ErrNotOpened, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on unopened codec: %v", err)
	}
}

func TestCodecRejectsOddDimensions(t *testing.T) {
	c := New(logger.NewNoop())
	err := c.Open(ports.CodecConfig{Width: 321, Height: 240, FPS: 30})
	if !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestFFmpegNotFoundIsBackendUnavailable(t *testing.T) {
	SetFFmpegPath("/nonexistent/ffmpeg")
	defer SetFFmpegPath("")

	c := New(logger.NewNoop())
	err := c.Open(ports.CodecConfig{Width: 320, Height: 240, FPS: 30})
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Fatalf("expected ErrFFmpegNotFound, got %v", err)
	}
	if !errors.Is(err, ports.ErrBackendUnavailable) {
		t.Errorf("expected ports.ErrBackendUnavailable in chain, got %v", err)
	}
}

func testFrame(w, h, n int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Y[img.YOffset(x, y)] = uint8((x + y + n*4) % 256)
		}
	}
	for i := range img.Cb {
		img.Cb[i] = uint8(128 + n%32)
		img.Cr[i] = 128
	}
	return img
}

func TestCodecEncodesWithFFmpeg(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	if !IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}

	const w, h, fps, frames = 320, 240, 30, 45
	c := New(logger.NewNoop())
	if err := c.Open(ports.CodecConfig{Width: w, Height: h, FPS: fps}); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	var packets []ports.Packet
	drain := func() {
		for {
			pkt, err := c.ReceivePacket()
			if errors.Is(err, ports.ErrAgain) || errors.Is(err, ports.ErrEOF) {
				return
			}
			if err != nil {
				t.Fatalf("ReceivePacket failed: %v", err)
			}
			packets = append(packets, pkt)
		}
	}

	for i := 0; i < frames; i++ {
		if err := c.SendFrame(testFrame(w, h, i), int64(i)); err != nil {
			t.Fatalf("SendFrame %d failed: %v", i, err)
		}
		drain()
	}
	if err := c.SendEOF(); err != nil {
		t.Fatalf("SendEOF failed: %v", err)
	}
	drain()

	if len(packets) != frames {
		t.Fatalf("expected %d packets, got %d", frames, len(packets))
	}
	if !packets[0].Keyframe {
		t.Error("first packet should be a keyframe")
	}
	for i, pkt := range packets {
		if pkt.PTS != int64(i) {
			t.Errorf("packet %d: pts %d", i, pkt.PTS)
		}
	}
	if tb := c.TimeBase(); tb != ports.NewRational(1, fps) {
		t.Errorf("time base = %v", tb)
	}
}

func TestCodecRejectsNonIncreasingPTS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	if !IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}

	c := New(logger.NewNoop())
	if err := c.Open(ports.CodecConfig{Width: 64, Height: 64, FPS: 10}); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if err := c.SendFrame(testFrame(64, 64, 0), 5); err != nil {
		t.Fatalf("SendFrame failed: %v", err)
	}
	if err := c.SendFrame(testFrame(64, 64, 1), 5); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for repeated pts, got %v", err)
	}
}
