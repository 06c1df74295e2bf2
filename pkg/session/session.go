// Package session runs one recording: it wires a capture source to an
// encoder through a bounded frame channel and decides when to stop.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/adapters/nullsink"
	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/encoder"
	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/ports"
	"github.com/user/screenrec/pkg/stages/capture"
	"github.com/user/screenrec/pkg/stages/encode"
)

var (
	// ErrInvalidConfig is returned by Run before anything is opened.
	ErrInvalidConfig = errors.New("session: invalid configuration")

	// ErrSourceStart is returned when the capture source fails to start.
	ErrSourceStart = errors.New("session: capture source failed to start")

	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("session: already run")
)

// StopReason explains why a recording ended.
type StopReason string

const (
	StopTargetReached StopReason = "target_reached"
	StopTimeout       StopReason = "timeout"
	StopExternal      StopReason = "external"
	StopCancelled     StopReason = "cancelled"
	StopSourceEnded   StopReason = "source_ended"
	StopEncodeFailed  StopReason = "encode_failed"
)

// Config contains all configuration for a recording.
type Config struct {
	OutputPath string
	Width      int
	Height     int
	FPS        int

	// Stop conditions. With both zero the recording runs until Stop or
	// context cancellation.
	TargetFrames int64
	Timeout      time.Duration

	ChannelCapacity int
	PollTimeout     time.Duration
	ReceiveTimeout  time.Duration
	TimestampMode   pipeline.TimestampMode

	Codec        ports.CodecID
	CodecOptions map[string]string

	// SaveEvery saves every Nth captured frame to the debug sink (0 = never).
	SaveEvery int64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputPath:      "recording.mp4",
		Width:           1280,
		Height:          720,
		FPS:             30,
		ChannelCapacity: pipeline.DefaultChannelCapacity,
		PollTimeout:     capture.DefaultPollTimeout,
		ReceiveTimeout:  encode.DefaultReceiveTimeout,
		TimestampMode:   pipeline.TimestampConstant,
		Codec:           ports.CodecH264,
	}
}

// Validate checks the parts of the configuration the session itself owns.
// Encoder settings are validated by encoder.Open.
func (c Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if c.TargetFrames < 0 {
		return fmt.Errorf("%w: target frames %d", ErrInvalidConfig, c.TargetFrames)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v", ErrInvalidConfig, c.Timeout)
	}
	if c.ChannelCapacity < 0 {
		return fmt.Errorf("%w: channel capacity %d", ErrInvalidConfig, c.ChannelCapacity)
	}
	if _, err := pipeline.ParseTimestampMode(string(c.TimestampMode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Deps are the collaborators of a session.
type Deps struct {
	Source        ports.CaptureSource
	Registry      *encoder.Registry
	OpenContainer ports.ContainerOpener
	Converter     *convert.Converter // default: convert.New()
	Sink          ports.DebugSink    // optional
	Logger        ports.Logger
}

// Session coordinates the capture and encode loops of one recording.
type Session struct {
	deps   Deps
	logger ports.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	ran      bool
	mu       sync.Mutex
}

// New creates a session. It is meant to be run once.
func New(deps Deps) *Session {
	s := &Session{
		deps:   deps,
		logger: deps.Logger,
		stopCh: make(chan struct{}),
	}
	if s.deps.Converter == nil {
		s.deps.Converter = convert.New()
	}
	if s.deps.Sink == nil {
		s.deps.Sink = nullsink.New()
	}
	if s.logger == nil {
		s.logger = logger.NewNoop()
	}
	return s
}

// Stop requests an external stop. It is safe to call from any goroutine,
// any number of times, before or during Run.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type captureOutcome struct {
	result pipeline.CaptureResult
	err    error
}

type encodeOutcome struct {
	result pipeline.EncodeResult
	err    error
}

// Run records until a stop condition is met and returns the report.
// Only startup failures and encode-side failures are returned as errors;
// capture-side problems are reported as warnings in the report.
func (s *Session) Run(ctx context.Context, cfg Config) (Report, error) {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return Report{}, ErrAlreadyRun
	}
	s.ran = true
	s.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if s.deps.Source == nil {
		return Report{}, fmt.Errorf("%w: no capture source", ErrInvalidConfig)
	}

	report := Report{
		SessionID:     uuid.NewString(),
		OutputPath:    cfg.OutputPath,
		Width:         cfg.Width,
		Height:        cfg.Height,
		FPS:           cfg.FPS,
		TimestampMode: cfg.TimestampMode,
	}
	if report.TimestampMode == "" {
		report.TimestampMode = pipeline.TimestampConstant
	}

	s.logger.Info("Recording %dx%d @ %d fps to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.OutputPath)

	enc, err := encoder.Open(cfg.OutputPath, cfg.Width, cfg.Height, cfg.FPS, encoder.Options{
		Codec:         cfg.Codec,
		Registry:      s.deps.Registry,
		OpenContainer: s.deps.OpenContainer,
		CodecOptions:  cfg.CodecOptions,
		Converter:     s.deps.Converter,
		Logger:        s.logger.WithComponent("encoder"),
	})
	if err != nil {
		s.logger.Error("Failed to open encoder: %v", err)
		return report, fmt.Errorf("open encoder: %w", err)
	}

	channel := pipeline.NewFrameChannel(cfg.ChannelCapacity)
	state := pipeline.NewSharedState()
	report.StartedAt = state.StartedAt()

	if err := s.deps.Source.Start(ctx); err != nil {
		s.logger.Error("Failed to start capture source: %v", err)
		if ferr := enc.Finish(); ferr != nil {
			s.logger.Warn("Failed to finalize output: %v", ferr)
		}
		return report, fmt.Errorf("%w: %v", ErrSourceStart, err)
	}

	var captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult] = capture.New(s.deps.Sink, s.logger, capture.Options{SaveEvery: cfg.SaveEvery})
	var encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = encode.New(enc, s.deps.Converter, s.logger)

	captureDone := make(chan captureOutcome, 1)
	go func() {
		res, err := captureStage.Execute(ctx, pipeline.CaptureInput{
			Source:       s.deps.Source,
			Channel:      channel,
			State:        state,
			TargetFrames: cfg.TargetFrames,
			PollTimeout:  cfg.PollTimeout,
		})
		captureDone <- captureOutcome{res, err}
	}()

	// The encode loop ignores cancellation; it ends when the channel is
	// closed so the output is always finalized.
	encodeDone := make(chan encodeOutcome, 1)
	go func() {
		res, err := encodeStage.Execute(context.WithoutCancel(ctx), pipeline.EncodeInput{
			Channel:        channel,
			State:          state,
			ReceiveTimeout: cfg.ReceiveTimeout,
			FPS:            cfg.FPS,
			TimestampMode:  cfg.TimestampMode,
		})
		encodeDone <- encodeOutcome{res, err}
	}()

	var timeout <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var captured *captureOutcome
	select {
	case <-timeout:
		report.StopReason = StopTimeout
		s.logger.Info("Timeout of %v reached", cfg.Timeout)
	case <-s.stopCh:
		report.StopReason = StopExternal
		s.logger.Info("Stop requested")
	case <-ctx.Done():
		report.StopReason = StopCancelled
		s.logger.Info("Recording cancelled")
	case <-channel.Abandoned():
		report.StopReason = StopEncodeFailed
		s.logger.Warn("Encoding failed, stopping capture")
	case out := <-captureDone:
		captured = &out
		report.StopReason = stopReasonFor(out.result.Reason)
	}

	// Shutdown order: flag, source, capture loop, channel, encode loop.
	state.RequestStop()
	if err := s.deps.Source.Stop(); err != nil {
		s.logger.Warn("Failed to stop capture source: %v", err)
	}
	if captured == nil {
		out := <-captureDone
		captured = &out
	}
	channel.Close()
	encoded := <-encodeDone

	report.Duration = state.Elapsed()
	report.FramesReceived = state.FramesReceived()
	report.FramesEncoded = encoded.result.FramesEncoded
	report.FramesSkipped = encoded.result.FramesSkipped
	report.CaptureEnd = captured.result.Reason
	report.VideoDuration = videoDuration(report.FramesEncoded, cfg.FPS)

	if captured.err != nil {
		report.CaptureErr = captured.err
	} else if captured.result.Err != nil {
		report.CaptureErr = captured.result.Err
	}
	if report.CaptureErr != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("capture: %v", report.CaptureErr))
	}
	if report.FramesReceived == 0 {
		s.logger.Warn("No frames were captured")
		report.Warnings = append(report.Warnings, "no frames were captured")
	}

	if encoded.err != nil {
		report.EncodeErr = encoded.err
		if report.StopReason != StopEncodeFailed && encoded.result.Err != nil {
			report.StopReason = StopEncodeFailed
		}
	}

	s.saveReport(report)

	if report.EncodeErr != nil {
		s.logger.Error("Recording failed after %d frames: %v", report.FramesEncoded, report.EncodeErr)
		return report, fmt.Errorf("encode: %w", report.EncodeErr)
	}

	s.logger.Info("Recorded %d frames in %.1fs (%s)", report.FramesEncoded, report.Duration.Seconds(), report.StopReason)
	return report, nil
}

func stopReasonFor(reason pipeline.CaptureEndReason) StopReason {
	switch reason {
	case pipeline.CaptureTargetReached:
		return StopTargetReached
	case pipeline.CaptureDisconnected, pipeline.CaptureSourceError:
		return StopSourceEnded
	case pipeline.CaptureConsumerGone:
		return StopEncodeFailed
	case pipeline.CaptureCancelled:
		return StopCancelled
	default:
		return StopExternal
	}
}

func videoDuration(frames int64, fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(fps)
}

func (s *Session) saveReport(report Report) {
	if !s.deps.Sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.logger.Warn("Failed to encode session report: %v", err)
		return
	}
	if err := s.deps.Sink.SaveSessionJSON(data); err != nil {
		s.logger.Warn("Failed to save session report: %v", err)
	}
}
