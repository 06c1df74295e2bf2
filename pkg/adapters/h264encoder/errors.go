package h264encoder

import (
	"errors"
	"fmt"

	"github.com/user/screenrec/pkg/ports"
)

var (
	// ErrNotOpened is returned when codec methods are called before Open.
	ErrNotOpened = errors.New("h264encoder: codec not opened")

	// ErrEncodingFailed is returned when ffmpeg rejects input or exits abnormally.
	ErrEncodingFailed = errors.New("h264encoder: encoding failed")

	// ErrInvalidFrame is returned for frames that do not match the configured stream.
	ErrInvalidFrame = errors.New("h264encoder: invalid frame")

	// ErrEOFSent is returned by SendFrame after SendEOF.
	ErrEOFSent = errors.New("h264encoder: end of stream already signalled")

	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = fmt.Errorf("h264encoder: ffmpeg not found: %w", ports.ErrBackendUnavailable)
)
