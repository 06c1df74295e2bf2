// Package h264decoder decodes single frames of recorded MP4 files through an
// external ffmpeg process. It is used to check what a recording contains.
package h264decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"

	"github.com/user/screenrec/pkg/adapters/h264encoder"
)

var (
	// ErrFrameNotFound is returned when the file has fewer frames than requested.
	ErrFrameNotFound = errors.New("h264decoder: frame not found")

	// ErrDecodeFailed is returned when ffmpeg cannot decode the file.
	ErrDecodeFailed = errors.New("h264decoder: decode failed")
)

// Decoder extracts frames with ffmpeg.
type Decoder struct {
	ffmpegPath string
}

// New locates ffmpeg the same way the encoder does.
func New() (*Decoder, error) {
	path, err := h264encoder.FindFFmpeg()
	if err != nil {
		return nil, err
	}
	return &Decoder{ffmpegPath: path}, nil
}

// FrameArgs returns the ffmpeg arguments that write frame index of path to
// stdout as a PNG.
func FrameArgs(path string, index int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, index),
		"-vsync", "0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// ExtractFrame decodes the frame with the given zero-based index.
func (d *Decoder) ExtractFrame(ctx context.Context, path string, index int) (image.Image, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: index %d", ErrFrameNotFound, index)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.ffmpegPath, FrameArgs(path, index)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrDecodeFailed, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: index %d", ErrFrameNotFound, index)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %v", ErrDecodeFailed, err)
	}
	return img, nil
}
