package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/screenrec/pkg/adapters/chromesource"
	"github.com/user/screenrec/pkg/adapters/filesink"
	"github.com/user/screenrec/pkg/adapters/h264encoder"
	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/adapters/nullsink"
	"github.com/user/screenrec/pkg/adapters/osfilesystem"
	"github.com/user/screenrec/pkg/adapters/patternsource"
	"github.com/user/screenrec/pkg/adapters/screencapture"
	"github.com/user/screenrec/pkg/config"
	"github.com/user/screenrec/pkg/ports"
	"github.com/user/screenrec/pkg/screenrec"
	"github.com/user/screenrec/pkg/session"
	"github.com/user/screenrec/pkg/summarizer"
)

// Default viewport for sources without a native size.
const (
	defaultWidth  = 1280
	defaultHeight = 720
)

func recordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},

		// Output
		&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output MP4 file path")},
		&cli.PathFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)")},

		// Source
		&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: l10n.T("Capture source (screen, pattern, chrome)")},
		&cli.IntFlag{Name: "display", Usage: l10n.T("Display index for the screen source")},
		&cli.PathFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable")},
		&cli.BoolFlag{Name: "no-headless", Usage: l10n.T("Run browser in non-headless mode")},

		// Video
		&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: l10n.T("Resolution preset (720p, 1080p, 1440p, native) or WIDTHxHEIGHT")},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Output video width")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Output video height")},
		&cli.IntFlag{Name: "fps", Usage: l10n.T("Nominal frame rate")},
		&cli.StringFlag{Name: "timestamps", Usage: l10n.T("Timestamp mode (constant, wallclock)")},

		// Stop conditions
		&cli.Int64Flag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Stop after this many frames (0 = unlimited)")},
		&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Usage: l10n.T("Stop after this duration (0 = unlimited)")},

		// Encoding
		&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Quality preset (low, medium, high)")},
		&cli.IntFlag{Name: "crf", Usage: l10n.T("Video CRF value (0-51, lower is better, overrides quality preset)")},
		&cli.StringFlag{Name: "preset", Usage: l10n.T("x264 speed preset (overrides quality preset)")},
		&cli.PathFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable")},
		&cli.IntFlag{Name: "channel-capacity", Usage: l10n.T("Frames buffered between capture and encode")},

		// Debug
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output")},
		&cli.PathFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output")},
		&cli.Int64Flag{Name: "save-every", Usage: l10n.T("Save every Nth captured frame in debug mode")},

		// Logging
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
	}
}

// loadConfig reads the optional config file and applies the flags that were
// set explicitly. A URL argument selects the chrome source.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.Path("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("output") {
		cfg.OutputPath = c.Path("output")
	}
	if c.IsSet("summary") {
		cfg.SummaryPath = c.Path("summary")
	}
	if c.NArg() > 0 {
		cfg.URL = c.Args().First()
		cfg.Source = config.SourceChrome
	}
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("display") {
		cfg.Display = c.Int("display")
	}
	if c.IsSet("chrome-path") {
		cfg.ChromePath = c.Path("chrome-path")
	}
	if c.Bool("no-headless") {
		cfg.Headless = false
	}
	if c.IsSet("resolution") {
		cfg.Resolution = c.String("resolution")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if c.IsSet("timestamps") {
		cfg.TimestampMode = c.String("timestamps")
	}
	if c.IsSet("frames") {
		cfg.TargetFrames = c.Int64("frames")
	}
	if c.IsSet("timeout") {
		cfg.TimeoutMs = int(c.Duration("timeout") / time.Millisecond)
	}
	if c.IsSet("quality") {
		cfg.Quality = c.String("quality")
	}
	if c.IsSet("crf") {
		crf := c.Int("crf")
		cfg.CRF = &crf
	}
	if c.IsSet("preset") {
		cfg.Preset = c.String("preset")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.Path("ffmpeg")
	}
	if c.IsSet("channel-capacity") {
		cfg.ChannelCapacity = c.Int("channel-capacity")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.Path("debug-dir")
	}
	if c.IsSet("save-every") {
		cfg.SaveEvery = c.Int64("save-every")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	console := logger.NewConsole(level)
	if level == ports.LevelDebug {
		return console.WithTimestamps()
	}
	return console
}

// newSource creates the capture source and returns it with the output size.
func newSource(cfg config.Config, log ports.Logger) (ports.CaptureSource, int, int, error) {
	switch cfg.Source {
	case config.SourceScreen:
		src, err := screencapture.New(cfg.Display, cfg.FPS)
		if err != nil {
			return nil, 0, 0, err
		}
		w, h, err := cfg.ResolveSize(src.Size())
		return src, w, h, err

	case config.SourcePattern:
		w, h, err := cfg.ResolveSize(defaultWidth, defaultHeight)
		if err != nil {
			return nil, 0, 0, err
		}
		return patternsource.New(patternsource.Options{Width: w, Height: h, FPS: cfg.FPS}), w, h, nil

	case config.SourceChrome:
		w, h, err := cfg.ResolveSize(defaultWidth, defaultHeight)
		if err != nil {
			return nil, 0, 0, err
		}
		src := chromesource.New(chromesource.Options{
			URL:         cfg.URL,
			ChromePath:  cfg.ChromePath,
			Headless:    cfg.Headless,
			Width:       w,
			Height:      h,
			JPEGQuality: cfg.QualitySettings().JPEGQuality,
			Logger:      log,
		})
		return src, w, h, nil
	}
	return nil, 0, 0, fmt.Errorf("%w: unknown source %q", config.ErrInvalid, cfg.Source)
}

func sourceDetail(cfg config.Config) string {
	switch cfg.Source {
	case config.SourceScreen:
		return fmt.Sprintf("display %d", cfg.Display)
	case config.SourceChrome:
		return cfg.URL
	}
	return ""
}

func runRecord(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 2)
	}
	log := newLogger(cfg)

	if cfg.FFmpegPath != "" {
		h264encoder.SetFFmpegPath(cfg.FFmpegPath)
	}

	source, w, h, err := newSource(cfg, log)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fs := osfilesystem.New()
	var sink ports.DebugSink = nullsink.New()
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return cli.Exit(fmt.Errorf("create debug directory: %w", err), 1)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	}

	sc := cfg.ToSessionConfig()
	sc.Width, sc.Height = w, h

	recorder := screenrec.NewSessionRecorder(source, sc, screenrec.Options{
		Logger: log,
		Sink:   sink,
	})

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	release := notifyStop(recorder.Stop, cancel, log)
	defer release()

	report, runErr := recorder.Run(ctx)

	if cfg.SummaryPath != "" && report.SessionID != "" {
		writeSummary(cfg, report, fs, log)
	}
	if runErr != nil {
		return cli.Exit(runErr, 1)
	}

	log.Info("Output saved to %s", cfg.OutputPath)
	return nil
}

func writeSummary(cfg config.Config, report session.Report, fs ports.FileSystem, log ports.Logger) {
	q := cfg.QualitySettings()
	b := summarizer.NewBuilder().
		WithSource(cfg.Source, sourceDetail(cfg)).
		WithSettings(summarizer.Settings{
			Codec:   cfg.Codec,
			Quality: cfg.Quality,
			CRF:     q.CRF,
			Preset:  q.Preset,
		})
	if info, err := os.Stat(cfg.OutputPath); err == nil {
		b.WithFileSize(info.Size())
	}
	summary := b.WithReport(report).Build()

	md := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	w := summarizer.NewWriter(summarizer.ForPath(cfg.SummaryPath, md), fs)
	if err := w.Write(cfg.SummaryPath, summary); err != nil {
		log.Warn("Failed to write summary: %v", err)
		return
	}
	log.Info("Summary saved to %s", cfg.SummaryPath)
}
