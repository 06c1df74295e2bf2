package mp4mux

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/adapters/mp4probe"
	"github.com/user/screenrec/pkg/ports"
)

// Baseline profile SPS for 320x240 and a matching PPS.
var (
	sps320x240 = []byte{0x67, 0x42, 0xC0, 0x1E, 0xF4, 0x0A, 0x0F, 0xC8}
	ppsBasic   = []byte{0x68, 0xCE, 0x3C, 0x80}
)

func annexB(nalus ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 1, 0x09, 0xF0})
	for _, n := range nalus {
		buf.Write([]byte{0, 0, 0, 1})
		buf.Write(n)
	}
	return buf.Bytes()
}

func keyUnit() []byte {
	return annexB(sps320x240, ppsBasic, []byte{0x65, 0x88, 0x84, 0x21, 0xA0})
}

func deltaUnit(i int) []byte {
	return annexB([]byte{0x41, 0x9A, byte(i), 0x10})
}

func testStream() ports.StreamInfo {
	return ports.StreamInfo{Codec: ports.CodecH264, Width: 320, Height: 240, FPS: 30}
}

func writeStream(t *testing.T, m *Muxer, n, gop int) {
	t.Helper()
	if err := m.WriteHeader(testStream()); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	step := m.TimeBase().Den / 30
	for i := 0; i < n; i++ {
		data, key := deltaUnit(i), false
		if i%gop == 0 {
			data, key = keyUnit(), true
		}
		pkt := ports.Packet{Data: data, PTS: int64(i) * step, DTS: int64(i) * step, Duration: step, Keyframe: key}
		if err := m.WritePacket(pkt); err != nil {
			t.Fatalf("WritePacket %d failed: %v", i, err)
		}
	}
	if err := m.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer failed: %v", err)
	}
}

func TestMuxerWritesPlayableFile(t *testing.T) {
	var buf bytes.Buffer
	m := NewWriter(&buf, logger.NewNoop())
	writeStream(t, m, 90, 30)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if string(buf.Bytes()[4:8]) != "ftyp" {
		t.Fatalf("expected ftyp first, got %q", buf.Bytes()[4:8])
	}

	info, err := mp4probe.Probe(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Codec != mp4probe.CodecH264 {
		t.Errorf("codec = %s", info.Codec)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("dimensions = %dx%d", info.Width, info.Height)
	}
	if info.Samples != 90 {
		t.Errorf("samples = %d, want 90", info.Samples)
	}
	if info.Keyframes != 3 {
		t.Errorf("keyframes = %d, want 3", info.Keyframes)
	}
	if info.Fragments != 3 {
		t.Errorf("fragments = %d, want 3", info.Fragments)
	}
	if d := info.Duration.Seconds(); d < 2.99 || d > 3.01 {
		t.Errorf("duration = %.3fs, want 3s", d)
	}
}

func TestMuxerEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	m := NewWriter(&buf, logger.NewNoop())
	writeStream(t, m, 0, 1)
	m.Close()

	info, err := mp4probe.Probe(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Samples != 0 {
		t.Errorf("samples = %d, want 0", info.Samples)
	}
}

func TestMuxerOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp4")
	m, err := Open(path, logger.NewNoop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	writeStream(t, m, 10, 5)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	if info.Samples != 10 {
		t.Errorf("samples = %d", info.Samples)
	}
}

func TestMuxerErrors(t *testing.T) {
	m := NewWriter(&bytes.Buffer{}, logger.NewNoop())

	if err := m.WritePacket(ports.Packet{Data: keyUnit()}); !errors.Is(err, ErrHeaderNotWritten) {
		t.Errorf("expected ErrHeaderNotWritten, got %v", err)
	}
	if err := m.WriteHeader(ports.StreamInfo{Codec: "vp9", Width: 2, Height: 2, FPS: 1}); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
	if err := m.WriteHeader(testStream()); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteHeader(testStream()); !errors.Is(err, ErrHeaderWritten) {
		t.Errorf("expected ErrHeaderWritten, got %v", err)
	}
	if err := m.WritePacket(ports.Packet{Data: deltaUnit(0), Keyframe: false}); !errors.Is(err, ErrMissingParameterSets) {
		t.Errorf("expected ErrMissingParameterSets, got %v", err)
	}
	if err := m.WritePacket(ports.Packet{Data: keyUnit(), DTS: 1000, Keyframe: true}); err != nil {
		t.Fatal(err)
	}
	if err := m.WritePacket(ports.Packet{Data: deltaUnit(1), DTS: 1000}); !errors.Is(err, ErrNonMonotonicDTS) {
		t.Errorf("expected ErrNonMonotonicDTS, got %v", err)
	}
	if err := m.WriteTrailer(); err != nil {
		t.Fatal(err)
	}
	if err := m.WritePacket(ports.Packet{Data: deltaUnit(2), DTS: 2000}); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
}

func TestToSampleDropsParameterSets(t *testing.T) {
	got := toSample(keyUnit())
	want := []byte{0, 0, 0, 5, 0x65, 0x88, 0x84, 0x21, 0xA0}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
