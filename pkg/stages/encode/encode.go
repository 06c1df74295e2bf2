// Package encode implements the encode loop: it drains the frame channel,
// converts each frame and submits it to the encoder.
package encode

import (
	"context"
	"errors"
	"image"
	"math"
	"time"

	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/ports"
)

// DefaultReceiveTimeout bounds each wait on the frame channel.
const DefaultReceiveTimeout = 100 * time.Millisecond

// FrameEncoder is the part of encoder.Encoder the loop depends on.
type FrameEncoder interface {
	Encode(frame *image.YCbCr) error
	EncodeAt(frame *image.YCbCr, pts int64) error
	Finish() error
	FrameCount() int64
	Width() int
	Height() int
}

// Stage is the consumer side of a recording.
type Stage struct {
	encoder   FrameEncoder
	converter *convert.Converter
	logger    ports.Logger
}

// New creates a new encode stage.
func New(encoder FrameEncoder, converter *convert.Converter, logger ports.Logger) *Stage {
	if converter == nil {
		converter = convert.New()
	}
	return &Stage{
		encoder:   encoder,
		converter: converter,
		logger:    logger.WithComponent("encode"),
	}
}

// Execute consumes frames in FIFO order until the channel is closed and
// empty, then finalizes the encoder. The first validation, conversion or
// encoding failure stops consumption; the remaining frames are discarded
// and the encoder is still finalized. Finalization happens exactly once.
// The producer side of the channel must eventually be closed.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	timeout := input.ReceiveTimeout
	if timeout <= 0 {
		timeout = DefaultReceiveTimeout
	}
	stamp := newStamper(input)

	for {
		frame, err := input.Channel.Receive(ctx, timeout)
		if errors.Is(err, pipeline.ErrReceiveTimeout) {
			continue
		}
		if errors.Is(err, pipeline.ErrChannelClosed) {
			s.logger.Debug("Frame channel closed and drained")
			break
		}
		if err == nil {
			err = s.encodeFrame(frame, stamp)
		}
		if err != nil {
			s.logger.Error("Encoding stopped at frame %d: %v", s.encoder.FrameCount(), err)
			result.Err = err
			input.State.RequestStop()
			input.Channel.Abandon()
			result.FramesSkipped = input.Channel.Drain()
			if result.FramesSkipped > 0 {
				s.logger.Warn("Discarded %d queued frames", result.FramesSkipped)
			}
			break
		}
		input.State.AddEncoded()
	}

	if err := s.encoder.Finish(); err != nil {
		s.logger.Error("Failed to finalize output: %v", err)
		result.FinishErr = err
	}
	result.FramesEncoded = s.encoder.FrameCount()
	s.logger.Debug("Encode loop ended after %d frames", result.FramesEncoded)

	if result.Err != nil {
		return result, result.Err
	}
	return result, result.FinishErr
}

func (s *Stage) encodeFrame(frame pipeline.Frame, stamp *stamper) error {
	yuv, err := s.converter.Convert(frame, s.encoder.Width(), s.encoder.Height())
	if err != nil {
		return err
	}
	if stamp == nil {
		return s.encoder.Encode(yuv)
	}
	return s.encoder.EncodeAt(yuv, stamp.next(frame.CapturedAt))
}

// stamper derives presentation timestamps from capture times, measured from
// the first frame so source startup latency does not become a leading gap.
type stamper struct {
	start time.Time
	fps   float64
	last  int64
}

// newStamper returns nil in constant mode.
func newStamper(input pipeline.EncodeInput) *stamper {
	if input.TimestampMode != pipeline.TimestampWallClock {
		return nil
	}
	return &stamper{fps: float64(input.FPS), last: -1}
}

// next returns round(elapsed * fps), bumped past the previous value so
// frames arriving within one tick keep their order.
func (s *stamper) next(capturedAt time.Time) int64 {
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	if s.start.IsZero() {
		s.start = capturedAt
	}
	pts := int64(math.Round(capturedAt.Sub(s.start).Seconds() * s.fps))
	if pts <= s.last {
		pts = s.last + 1
	}
	s.last = pts
	return pts
}
