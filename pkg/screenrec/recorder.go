package screenrec

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/screenrec/pkg/adapters/h264encoder"
	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/adapters/mp4mux"
	"github.com/user/screenrec/pkg/encoder"
	"github.com/user/screenrec/pkg/ports"
	"github.com/user/screenrec/pkg/session"
)

// ErrUnknownSize is returned when no output size is configured and the
// source cannot report its native size.
var ErrUnknownSize = errors.New("screenrec: output size unknown")

// DefaultRegistry returns a registry holding the ffmpeg-backed H.264 codec.
func DefaultRegistry(log ports.Logger) *encoder.Registry {
	r := encoder.NewRegistry()
	r.Register(ports.CodecH264, func() ports.VideoCodec {
		return h264encoder.New(log.WithComponent("ffmpeg"))
	})
	return r
}

// Options carries optional collaborators; zero values select the defaults.
type Options struct {
	Logger        ports.Logger
	Sink          ports.DebugSink
	Registry      *encoder.Registry
	OpenContainer ports.ContainerOpener
}

// Recorder records one capture source to one MP4 file.
type Recorder struct {
	session *session.Session
	config  session.Config
	err     error
}

// NewRecorder prepares a recording. A zero Width or Height in cfg is taken
// from the source when it implements ports.SizedSource.
func NewRecorder(source ports.CaptureSource, outputPath string, cfg Config, opts Options) *Recorder {
	return NewSessionRecorder(source, cfg.ToSessionConfig(outputPath), opts)
}

// NewSessionRecorder prepares a recording from a complete session
// configuration, for callers that tune the pipeline directly.
func NewSessionRecorder(source ports.CaptureSource, sc session.Config, opts Options) *Recorder {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry(log)
	}
	if opts.OpenContainer == nil {
		opts.OpenContainer = mp4mux.Opener(log.WithComponent("mp4"))
	}

	r := &Recorder{config: sc}
	if sc.Width == 0 || sc.Height == 0 {
		sized, ok := source.(ports.SizedSource)
		if !ok {
			r.err = ErrUnknownSize
		} else {
			w, h := sized.Size()
			r.config.Width, r.config.Height = Dimensions(ResolutionNative, w, h)
		}
	}

	r.session = session.New(session.Deps{
		Source:        source,
		Registry:      opts.Registry,
		OpenContainer: opts.OpenContainer,
		Sink:          opts.Sink,
		Logger:        log,
	})
	return r
}

// SessionConfig returns the resolved session configuration.
func (r *Recorder) SessionConfig() session.Config {
	return r.config
}

// Run records until a stop condition is met.
func (r *Recorder) Run(ctx context.Context) (session.Report, error) {
	if r.err != nil {
		return session.Report{}, r.err
	}
	report, err := r.session.Run(ctx, r.config)
	if err != nil {
		return report, fmt.Errorf("record %s: %w", r.config.OutputPath, err)
	}
	return report, nil
}

// Stop ends the recording; the output file is still finalized.
func (r *Recorder) Stop() {
	r.session.Stop()
}

// Record is a convenience for NewRecorder(...).Run(ctx).
func Record(ctx context.Context, source ports.CaptureSource, outputPath string, cfg Config, opts Options) (session.Report, error) {
	return NewRecorder(source, outputPath, cfg, opts).Run(ctx)
}
