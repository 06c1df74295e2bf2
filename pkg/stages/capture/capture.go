// Package capture implements the capture loop: it pulls images from a
// capture source and hands them to the frame channel.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/ports"
)

// DefaultPollTimeout bounds each wait on the source so the stop flag is
// re-checked at least this often.
const DefaultPollTimeout = 100 * time.Millisecond

// progressInterval is how often captured-frame progress is logged.
const progressInterval = time.Second

// Options configures the capture stage.
type Options struct {
	// SaveEvery saves every Nth captured frame to the debug sink (0 = never).
	SaveEvery int64
}

// Stage is the producer side of a recording.
type Stage struct {
	sink   ports.DebugSink
	logger ports.Logger
	opts   Options
}

// New creates a new capture stage.
func New(sink ports.DebugSink, logger ports.Logger, opts Options) *Stage {
	return &Stage{
		sink:   sink,
		logger: logger.WithComponent("capture"),
		opts:   opts,
	}
}

// Execute runs the capture loop until the stop flag is set, the target frame
// count is reached, the source disconnects or the channel is closed.
// Source failures end the loop but are reported in the result, not as an error.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	result := pipeline.CaptureResult{}

	poll := input.PollTimeout
	if poll <= 0 {
		poll = DefaultPollTimeout
	}

	lastReport := time.Now()
	var sinceReport int64

	for {
		if abandoned(input.Channel) {
			s.logger.Debug("Frame channel abandoned, stopping capture")
			result.Reason = pipeline.CaptureConsumerGone
			break
		}
		if input.State.StopRequested() {
			result.Reason = pipeline.CaptureStopped
			break
		}

		img, err := input.Source.Receive(ctx, poll)
		if err != nil {
			if errors.Is(err, ports.ErrCaptureTimeout) {
				continue
			}
			if errors.Is(err, ports.ErrSourceDisconnected) {
				result.Reason = pipeline.CaptureDisconnected
				break
			}
			if ctx.Err() != nil {
				result.Reason = pipeline.CaptureCancelled
				break
			}
			s.logger.Warn("Capture source failed: %v", err)
			result.Reason = pipeline.CaptureSourceError
			result.Err = err
			break
		}

		frame := pipeline.NewFrame(img, result.FramesSent)
		if err := input.Channel.Send(ctx, frame); err != nil {
			if errors.Is(err, pipeline.ErrChannelClosed) {
				s.logger.Debug("Frame channel closed, stopping capture")
				result.Reason = pipeline.CaptureConsumerGone
			} else {
				result.Reason = pipeline.CaptureCancelled
			}
			break
		}

		result.FramesSent++
		sinceReport++
		total := input.State.AddReceived()

		s.saveDebugFrame(frame)

		if now := time.Now(); now.Sub(lastReport) >= progressInterval {
			fps := float64(sinceReport) / now.Sub(lastReport).Seconds()
			s.logger.Info("Captured %d frames (%.1f fps)", total, fps)
			lastReport, sinceReport = now, 0
		}

		if input.TargetFrames > 0 && total >= input.TargetFrames {
			input.State.RequestStop()
			result.Reason = pipeline.CaptureTargetReached
			break
		}
	}

	s.logger.Debug("Capture loop ended (%s) after %d frames", result.Reason, result.FramesSent)
	return result, nil
}

func abandoned(ch *pipeline.FrameChannel) bool {
	select {
	case <-ch.Abandoned():
		return true
	default:
		return false
	}
}

func (s *Stage) saveDebugFrame(frame pipeline.Frame) {
	if s.opts.SaveEvery <= 0 || !s.sink.Enabled() || frame.Seq%s.opts.SaveEvery != 0 {
		return
	}
	if frame.Validate() != nil {
		return
	}
	if err := s.sink.SaveFrame(frame.Seq, convert.ToRGBA(frame)); err != nil {
		s.logger.Warn("Failed to save debug frame %d: %v", frame.Seq, err)
	}
}
