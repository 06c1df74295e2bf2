// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/screenrec/pkg/ports"
)

// Sink writes sampled frames and the session report under a base directory:
//
//	<baseDir>/frames/frame-000030.png
//	<baseDir>/session.json
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{baseDir: baseDir, fs: fs}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame saves a captured frame as PNG.
func (s *Sink) SaveFrame(index int64, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%06d.png", index)), buf.Bytes())
}

// SaveSessionJSON saves the session report.
func (s *Sink) SaveSessionJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "session.json"), data)
}

var _ ports.DebugSink = (*Sink)(nil)
