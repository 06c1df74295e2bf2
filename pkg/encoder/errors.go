package encoder

import (
	"errors"

	"github.com/user/screenrec/pkg/pipeline"
)

var (
	// ErrConfig is returned by Open for invalid dimensions, frame rate or options.
	ErrConfig = errors.New("encoder: invalid configuration")

	// ErrCodecUnavailable is returned by Open when the codec is not registered
	// or its backend is missing.
	ErrCodecUnavailable = errors.New("encoder: codec unavailable")

	// ErrIO wraps failures opening or writing the output container.
	ErrIO = errors.New("encoder: output error")

	// ErrEncode wraps failures reported by the codec.
	ErrEncode = errors.New("encoder: codec error")

	// ErrInvalidTimestamp is returned when a frame's pts does not increase.
	ErrInvalidTimestamp = errors.New("encoder: non-increasing timestamp")

	// ErrClosed is returned by every call after Finish completed.
	ErrClosed = errors.New("encoder: closed")

	// ErrInvalidState is returned for calls that are out of order.
	ErrInvalidState = errors.New("encoder: invalid state")

	// ErrFrameSizeMismatch is returned for frames whose dimensions or buffer
	// size do not match the stream.
	ErrFrameSizeMismatch = pipeline.ErrFrameSizeMismatch
)
