// Package h264encoder implements ports.VideoCodec with libx264 running in an
// external ffmpeg process.
//
// Raw yuv420p frames are written to ffmpeg's stdin and an Annex B elementary
// stream with access unit delimiters is read back from stdout. Every access
// unit becomes one ports.Packet.
package h264encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"sync"

	"github.com/user/screenrec/pkg/ports"
)

// Default libx264 settings.
const (
	DefaultPreset = "fast"
	DefaultCRF    = "23"
	DefaultTune   = "zerolatency"
)

// stderrTail bounds how much ffmpeg diagnostics are kept for error messages.
const stderrTail = 2048

// Codec drives one ffmpeg process per stream.
type Codec struct {
	log ports.Logger

	cfg      ports.CodecConfig
	timeBase ports.Rational
	opened   bool

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	yuv    []byte

	lastPTS  int64
	eofSent  bool
	finished bool

	mu         sync.Mutex
	units      [][]byte // completed access units awaiting ReceivePacket
	pending    []int64  // submitted pts in order, matched one-to-one with units
	readDone   bool
	readErr    error
	notify     chan struct{}
	readerExit chan struct{}
}

// New creates an unopened codec.
func New(log ports.Logger) *Codec {
	return &Codec{log: log}
}

// ID implements ports.VideoCodec.
func (c *Codec) ID() ports.CodecID {
	return ports.CodecH264
}

// TimeBase implements ports.VideoCodec.
func (c *Codec) TimeBase() ports.Rational {
	return c.timeBase
}

// Open locates ffmpeg and starts the encoder process.
func (c *Codec) Open(cfg ports.CodecConfig) error {
	if c.opened {
		return fmt.Errorf("%w: already opened", ErrEncodingFailed)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width%2 != 0 || cfg.Height%2 != 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFrame, cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalidFrame, cfg.FPS)
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.timeBase = cfg.TimeBase
	if !c.timeBase.Valid() {
		c.timeBase = ports.NewRational(1, int64(cfg.FPS))
	}

	args := BuildArgs(cfg)
	c.log.Debug("Starting ffmpeg: %s %v", ffmpegPath, args)

	c.cmd = exec.Command(ffmpegPath, args...)
	c.cmd.Stderr = &c.stderr

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %v", ErrEncodingFailed, err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrEncodingFailed, err)
	}
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("%w: start ffmpeg: %v", ErrEncodingFailed, err)
	}

	c.stdin = stdin
	c.yuv = make([]byte, cfg.Width*cfg.Height*3/2)
	c.lastPTS = -1
	c.notify = make(chan struct{}, 1)
	c.readerExit = make(chan struct{})
	c.opened = true

	go c.readStream(stdout)
	return nil
}

// BuildArgs returns the ffmpeg command line for a stream configuration.
// Options override the libx264 defaults; unknown keys are passed as -key value.
func BuildArgs(cfg ports.CodecConfig) []string {
	opts := map[string]string{
		"preset": DefaultPreset,
		"crf":    DefaultCRF,
		"tune":   DefaultTune,
		"g":      strconv.Itoa(2 * cfg.FPS),
		"bf":     "0",
	}
	for k, v := range cfg.Options {
		opts[k] = v
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.Itoa(cfg.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := opts[k]
		if v == "" {
			continue
		}
		switch k {
		case "profile":
			args = append(args, "-profile:v", v)
		case "bitrate":
			args = append(args, "-b:v", v)
		default:
			args = append(args, "-"+k, v)
		}
	}

	return append(args,
		"-x264-params", "aud=1:repeat-headers=1",
		"-f", "h264",
		"pipe:1",
	)
}

// SendFrame writes one frame to ffmpeg. pts must increase strictly.
func (c *Codec) SendFrame(frame *image.YCbCr, pts int64) error {
	if !c.opened {
		return ErrNotOpened
	}
	if c.eofSent {
		return ErrEOFSent
	}
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	if frame.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return fmt.Errorf("%w: subsample ratio %v", ErrInvalidFrame, frame.SubsampleRatio)
	}
	b := frame.Rect
	if b.Dx() != c.cfg.Width || b.Dy() != c.cfg.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrInvalidFrame, b.Dx(), b.Dy(), c.cfg.Width, c.cfg.Height)
	}
	if pts <= c.lastPTS {
		return fmt.Errorf("%w: pts %d not after %d", ErrInvalidFrame, pts, c.lastPTS)
	}

	c.packPlanes(frame)

	// Register the pts before writing so the reader can never see a unit
	// without a matching timestamp.
	c.mu.Lock()
	c.pending = append(c.pending, pts)
	c.mu.Unlock()

	if _, err := c.stdin.Write(c.yuv); err != nil {
		c.mu.Lock()
		c.pending = c.pending[:len(c.pending)-1]
		c.mu.Unlock()
		return fmt.Errorf("%w: write frame: %v", ErrEncodingFailed, err)
	}

	c.lastPTS = pts
	return nil
}

// packPlanes copies the three planes into the contiguous I420 buffer,
// dropping any row padding.
func (c *Codec) packPlanes(frame *image.YCbCr) {
	w, h := c.cfg.Width, c.cfg.Height
	cw, ch := w/2, h/2
	off := 0

	for y := 0; y < h; y++ {
		i := frame.YOffset(frame.Rect.Min.X, frame.Rect.Min.Y+y)
		off += copy(c.yuv[off:off+w], frame.Y[i:i+w])
	}
	for _, plane := range [][]byte{frame.Cb, frame.Cr} {
		for y := 0; y < ch; y++ {
			i := frame.COffset(frame.Rect.Min.X, frame.Rect.Min.Y+2*y)
			off += copy(c.yuv[off:off+cw], plane[i:i+cw])
		}
	}
}

// SendEOF closes ffmpeg's input. Buffered packets stay receivable.
func (c *Codec) SendEOF() error {
	if !c.opened {
		return ErrNotOpened
	}
	if c.eofSent {
		return nil
	}
	c.eofSent = true
	if err := c.stdin.Close(); err != nil {
		return fmt.Errorf("%w: close stdin: %v", ErrEncodingFailed, err)
	}
	return nil
}

// ReceivePacket returns the next access unit. Before SendEOF it never blocks
// and returns ports.ErrAgain when nothing is ready; after SendEOF it waits
// for ffmpeg and returns ports.ErrEOF once the stream is drained.
func (c *Codec) ReceivePacket() (ports.Packet, error) {
	if !c.opened {
		return ports.Packet{}, ErrNotOpened
	}

	for {
		c.mu.Lock()
		if len(c.units) > 0 {
			au := c.units[0]
			c.units = c.units[1:]
			pts := c.lastPTS
			if len(c.pending) > 0 {
				pts = c.pending[0]
				c.pending = c.pending[1:]
			}
			c.mu.Unlock()

			return ports.Packet{
				Data:     au,
				PTS:      pts,
				DTS:      pts,
				Duration: 1,
				Keyframe: IsKeyframe(au),
			}, nil
		}
		if c.readDone {
			err := c.readErr
			c.mu.Unlock()
			if err != nil {
				return ports.Packet{}, err
			}
			if !c.eofSent {
				return ports.Packet{}, fmt.Errorf("%w: ffmpeg exited before end of stream", ErrEncodingFailed)
			}
			c.finished = true
			return ports.Packet{}, ports.ErrEOF
		}
		c.mu.Unlock()

		if !c.eofSent {
			return ports.Packet{}, ports.ErrAgain
		}
		<-c.notify
	}
}

// readStream splits ffmpeg's stdout into access units until the process exits.
func (c *Codec) readStream(stdout io.Reader) {
	defer close(c.readerExit)

	var splitter auSplitter
	buf := make([]byte, 64*1024)
	var readErr error

	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if units := splitter.Write(buf[:n]); len(units) > 0 {
				c.push(units...)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}
	if last := splitter.Flush(); len(last) > 0 {
		c.push(last)
	}

	waitErr := c.cmd.Wait()

	c.mu.Lock()
	switch {
	case readErr != nil:
		c.readErr = fmt.Errorf("%w: read stream: %v", ErrEncodingFailed, readErr)
	case waitErr != nil:
		c.readErr = fmt.Errorf("%w: %v: %s", ErrEncodingFailed, waitErr, tail(c.stderr.Bytes()))
	}
	c.readDone = true
	c.mu.Unlock()
	c.signal()
}

func (c *Codec) push(units ...[]byte) {
	c.mu.Lock()
	c.units = append(c.units, units...)
	c.mu.Unlock()
	c.signal()
}

func (c *Codec) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Close stops ffmpeg if it is still running and waits for the reader.
func (c *Codec) Close() error {
	if !c.opened {
		return nil
	}
	if !c.eofSent {
		c.eofSent = true
		c.stdin.Close()
	}
	if !c.finished && c.cmd.Process != nil {
		c.mu.Lock()
		done := c.readDone
		c.mu.Unlock()
		if !done {
			c.cmd.Process.Kill()
		}
	}
	<-c.readerExit
	c.opened = false
	return nil
}

func tail(b []byte) string {
	if len(b) > stderrTail {
		b = b[len(b)-stderrTail:]
	}
	return string(bytes.TrimSpace(b))
}

var _ ports.VideoCodec = (*Codec)(nil)
