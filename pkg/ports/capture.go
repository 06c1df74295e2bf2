// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCaptureTimeout is returned by CaptureSource.Receive when no image
	// arrived within the requested timeout.
	ErrCaptureTimeout = errors.New("capture: receive timed out")

	// ErrSourceDisconnected is returned by CaptureSource.Receive once the
	// source has stopped and will never deliver another image.
	ErrSourceDisconnected = errors.New("capture: source disconnected")
)

// CapturedImage is one raw image delivered by a capture source.
// Pixels are tightly packed BGRA (4 bytes per pixel, no row padding).
type CapturedImage struct {
	Width      uint32
	Height     uint32
	Pixels     []byte
	CapturedAt time.Time
}

// CaptureSource abstracts a screen grabber that delivers raw images on its own cadence.
type CaptureSource interface {
	// Start begins delivering images. The context bounds the lifetime of any
	// background work the source spawns.
	Start(ctx context.Context) error

	// Stop stops delivery. Images already buffered may still be received;
	// afterwards Receive returns ErrSourceDisconnected.
	Stop() error

	// Receive waits up to timeout for the next image.
	// It returns ErrCaptureTimeout when nothing arrived in time and
	// ErrSourceDisconnected once the source is exhausted.
	Receive(ctx context.Context, timeout time.Duration) (CapturedImage, error)
}

// SizedSource is implemented by sources that know their native image size
// before the first image arrives.
type SizedSource interface {
	Size() (width, height int)
}
