package pipeline

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/user/screenrec/pkg/ports"
)

// BytesPerPixel is the size of one BGRA source pixel.
const BytesPerPixel = 4

// ErrFrameSizeMismatch is returned when a frame's buffer length does not
// match its declared dimensions.
var ErrFrameSizeMismatch = errors.New("pipeline: frame size mismatch")

// =============================================================================
// Frame
// =============================================================================

// Frame is an immutable snapshot of one captured BGRA image.
type Frame struct {
	Width      uint32
	Height     uint32
	Raw        []byte    // BGRA, Width*Height*BytesPerPixel bytes
	CapturedAt time.Time // wall-clock time the source delivered the image
	Seq        int64     // capture order, starting at 0
}

// NewFrame wraps a captured image without copying its pixels.
func NewFrame(img ports.CapturedImage, seq int64) Frame {
	return Frame{
		Width:      img.Width,
		Height:     img.Height,
		Raw:        img.Pixels,
		CapturedAt: img.CapturedAt,
		Seq:        seq,
	}
}

// ExpectedSize returns the buffer length implied by the frame dimensions.
func (f Frame) ExpectedSize() int {
	return int(f.Width) * int(f.Height) * BytesPerPixel
}

// Validate checks the size invariant. Frames with a zero dimension are rejected too.
func (f Frame) Validate() error {
	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("%w: empty frame %dx%d", ErrFrameSizeMismatch, f.Width, f.Height)
	}
	if len(f.Raw) != f.ExpectedSize() {
		return fmt.Errorf("%w: %dx%d expects %d bytes, got %d",
			ErrFrameSizeMismatch, f.Width, f.Height, f.ExpectedSize(), len(f.Raw))
	}
	return nil
}

// =============================================================================
// Shared session state
// =============================================================================

// SharedState is the only state shared between the capture goroutine, the
// encode goroutine and the orchestrator. Every field is accessed atomically.
type SharedState struct {
	stop           atomic.Bool
	framesReceived atomic.Int64
	framesEncoded  atomic.Int64
	startedAt      atomic.Int64 // unix nanoseconds
}

// NewSharedState returns state with the start time set to now.
func NewSharedState() *SharedState {
	s := &SharedState{}
	s.startedAt.Store(time.Now().UnixNano())
	return s
}

// RequestStop sets the stop flag. It returns true only for the call that flipped it.
func (s *SharedState) RequestStop() bool {
	return s.stop.CompareAndSwap(false, true)
}

// StopRequested reports whether the stop flag is set.
func (s *SharedState) StopRequested() bool {
	return s.stop.Load()
}

// AddReceived increments the received counter and returns the new value.
func (s *SharedState) AddReceived() int64 {
	return s.framesReceived.Add(1)
}

// FramesReceived returns how many frames were handed to the channel.
func (s *SharedState) FramesReceived() int64 {
	return s.framesReceived.Load()
}

// AddEncoded increments the encoded counter and returns the new value.
func (s *SharedState) AddEncoded() int64 {
	return s.framesEncoded.Add(1)
}

// FramesEncoded returns how many frames were submitted to the encoder.
func (s *SharedState) FramesEncoded() int64 {
	return s.framesEncoded.Load()
}

// StartedAt returns the session start time.
func (s *SharedState) StartedAt() time.Time {
	return time.Unix(0, s.startedAt.Load())
}

// Elapsed returns the time since the session started.
func (s *SharedState) Elapsed() time.Duration {
	return time.Since(s.StartedAt())
}

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput configures the capture loop.
type CaptureInput struct {
	Source       ports.CaptureSource
	Channel      *FrameChannel
	State        *SharedState
	TargetFrames int64         // 0 = unlimited
	PollTimeout  time.Duration // bounded wait per Receive (default: 100ms)
}

// CaptureEndReason explains why the capture loop exited.
type CaptureEndReason string

const (
	CaptureStopped       CaptureEndReason = "stopped"        // stop flag observed
	CaptureTargetReached CaptureEndReason = "target_reached" // TargetFrames sent
	CaptureDisconnected  CaptureEndReason = "disconnected"   // source exhausted
	CaptureConsumerGone  CaptureEndReason = "consumer_gone"  // channel closed or abandoned
	CaptureSourceError   CaptureEndReason = "source_error"   // source failed
	CaptureCancelled     CaptureEndReason = "cancelled"      // context done
)

// CaptureResult summarizes a finished capture loop.
type CaptureResult struct {
	FramesSent int64
	Reason     CaptureEndReason
	Err        error // source error, reported as a warning
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// TimestampMode selects how presentation timestamps are derived.
type TimestampMode string

const (
	// TimestampConstant stamps frames by encode order at the nominal frame rate.
	TimestampConstant TimestampMode = "constant"
	// TimestampWallClock stamps frames by capture time relative to session start.
	TimestampWallClock TimestampMode = "wallclock"
)

// ParseTimestampMode parses a mode name. Unknown names return an error.
func ParseTimestampMode(s string) (TimestampMode, error) {
	switch TimestampMode(s) {
	case "", TimestampConstant:
		return TimestampConstant, nil
	case TimestampWallClock:
		return TimestampWallClock, nil
	default:
		return "", fmt.Errorf("unknown timestamp mode %q", s)
	}
}

// EncodeInput configures the encode loop.
type EncodeInput struct {
	Channel        *FrameChannel
	State          *SharedState
	ReceiveTimeout time.Duration // bounded wait per Receive (default: 100ms)
	FPS            int
	TimestampMode  TimestampMode
}

// EncodeResult summarizes a finished encode loop.
type EncodeResult struct {
	FramesEncoded int64
	FramesSkipped int64 // frames left in the channel after a fatal error
	Err           error // first fatal error of the loop, if any
	FinishErr     error // error from the finalize sequence, if any
}
