// Package main provides the CLI entry point for screenrec.
package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/screenrec/pkg/adapters/h264decoder"
	"github.com/user/screenrec/pkg/adapters/mp4probe"
	"github.com/user/screenrec/pkg/adapters/osfilesystem"
	"github.com/user/screenrec/pkg/adapters/screencapture"
	"github.com/user/screenrec/pkg/ports"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "screenrec version %s\n", c.App.Version)
	}

	return &cli.App{
		Name:    "screenrec",
		Usage:   l10n.T("Record the screen, a test pattern or a web page to H.264 MP4"),
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "record",
				Usage:     l10n.T("Record to an MP4 file until a stop condition is met"),
				ArgsUsage: "[URL]",
				Flags:     recordFlags(),
				Action:    runRecord,
			},
			{
				Name:      "probe",
				Usage:     l10n.T("Show the video track of an MP4 file"),
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "frame", Value: -1, Usage: l10n.T("Decode this frame index (requires ffmpeg)")},
					&cli.PathFlag{Name: "png", Usage: l10n.T("Write the decoded frame to this PNG file")},
				},
				Action: runProbe,
			},
			{
				Name:   "displays",
				Usage:  l10n.T("List active displays"),
				Action: runDisplays,
			},
		},
	}
}

// notifyStop calls stop on the first SIGINT or SIGTERM and cancel on the second.
func notifyStop(stop func(), cancel context.CancelFunc, log ports.Logger) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, finalizing output...")
			stop()
		case <-done:
			return
		}
		select {
		case <-sigCh:
			log.Warn("Interrupted again, aborting")
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func runProbe(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A file argument is required"), 2)
	}
	info, err := mp4probe.ProbeFile(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%-12s %s\n", l10n.T("Codec")+":", info.Codec)
	fmt.Fprintf(w, "%-12s %dx%d\n", l10n.T("Size")+":", info.Width, info.Height)
	fmt.Fprintf(w, "%-12s %d (%d %s)\n", l10n.T("Frames")+":", info.Samples, info.Keyframes, l10n.T("keyframes"))
	fmt.Fprintf(w, "%-12s %v\n", l10n.T("Duration")+":", info.Duration)
	fmt.Fprintf(w, "%-12s %.2f\n", "FPS:", info.FPS())
	fmt.Fprintf(w, "%-12s %d\n", l10n.T("Timescale")+":", info.Timescale)
	if info.Fragmented {
		fmt.Fprintf(w, "%-12s %d\n", l10n.T("Fragments")+":", info.Fragments)
	}

	if index := c.Int("frame"); index >= 0 {
		return extractFrame(c, index)
	}
	return nil
}

func extractFrame(c *cli.Context, index int) error {
	dec, err := h264decoder.New()
	if err != nil {
		return cli.Exit(err, 1)
	}
	img, err := dec.ExtractFrame(c.Context, c.Args().First(), index)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := c.Path("png")
	if out == "" {
		out = fmt.Sprintf("frame-%06d.png", index)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return cli.Exit(err, 1)
	}
	if err := osfilesystem.New().WriteFile(out, buf.Bytes()); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintln(c.App.Writer, l10n.F("Frame %d written to %s", index, out))
	return nil
}

func runDisplays(c *cli.Context) error {
	displays := screencapture.Displays()
	if len(displays) == 0 {
		return cli.Exit(screencapture.ErrNoDisplay, 1)
	}
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = " " + l10n.T("(primary)")
		}
		fmt.Fprintf(c.App.Writer, "%d: %dx%d+%d+%d%s\n",
			d.Index, d.Bounds.Dx(), d.Bounds.Dy(), d.Bounds.Min.X, d.Bounds.Min.Y, primary)
	}
	return nil
}
