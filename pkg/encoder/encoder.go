// Package encoder owns the codec and container of one recording and drives
// the send-frame / receive-packet / write-packet cycle between them.
package encoder

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"sync"

	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/pipeline"
	"github.com/user/screenrec/pkg/ports"
)

// Options configures Open.
type Options struct {
	Codec         ports.CodecID         // default: ports.CodecH264
	Registry      *Registry             // required
	OpenContainer ports.ContainerOpener // required
	CodecOptions  map[string]string     // e.g. preset, crf; merged over DefaultCodecOptions
	Converter     *convert.Converter    // used by EncodeFrame (default: convert.New())
	Logger        ports.Logger          // default: no-op
}

// DefaultCodecOptions returns the low-latency settings for a frame rate.
func DefaultCodecOptions(fps int) map[string]string {
	return map[string]string{
		"preset": "fast",
		"crf":    "23",
		"tune":   "zerolatency",
		"g":      strconv.Itoa(2 * fps),
		"bf":     "0",
	}
}

// Encoder encodes one stream of frames into one output file.
// Methods are safe for concurrent use but are meant for a single goroutine.
type Encoder struct {
	mu  sync.Mutex
	log ports.Logger

	path   string
	width  int
	height int
	fps    int

	codec     ports.VideoCodec
	container ports.Container
	converter *convert.Converter

	codecTB     ports.Rational
	containerTB ports.Rational

	state          State
	frameCounter   int64
	lastPTS        int64
	lastPacketPTS  int64
	packetsWritten int64
	bytesWritten   int64
}

// Open validates the configuration, creates the output container, opens the
// codec and writes the file header.
func Open(path string, width, height, fps int, opts Options) (*Encoder, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("%w: size %dx%d must be positive and even", ErrConfig, width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps %d", ErrConfig, fps)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrConfig)
	}
	if opts.OpenContainer == nil {
		return nil, fmt.Errorf("%w: no container opener", ErrConfig)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	id := opts.Codec
	if id == "" {
		id = ports.CodecH264
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("%w: %s (no registry)", ErrCodecUnavailable, id)
	}
	factory, ok := opts.Registry.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCodecUnavailable, id)
	}

	e := &Encoder{
		log:           log,
		path:          path,
		width:         width,
		height:        height,
		fps:           fps,
		converter:     opts.Converter,
		state:         StateCreated,
		lastPTS:       -1,
		lastPacketPTS: -1,
	}
	if e.converter == nil {
		e.converter = convert.New()
	}

	container, err := opts.OpenContainer(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	e.container = container

	codecOpts := DefaultCodecOptions(fps)
	for k, v := range opts.CodecOptions {
		codecOpts[k] = v
	}

	e.codec = factory()
	cfg := ports.CodecConfig{
		Width:    width,
		Height:   height,
		FPS:      fps,
		TimeBase: ports.NewRational(1, int64(fps)),
		Options:  codecOpts,
	}
	if err := e.codec.Open(cfg); err != nil {
		e.abort()
		if errors.Is(err, ports.ErrBackendUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrCodecUnavailable, err)
		}
		return nil, fmt.Errorf("%w: open codec %s: %v", ErrConfig, id, err)
	}
	e.codecTB = e.codec.TimeBase()
	if !e.codecTB.Valid() {
		e.codecTB = cfg.TimeBase
	}

	stream := ports.StreamInfo{
		Codec:    e.codec.ID(),
		Width:    width,
		Height:   height,
		FPS:      fps,
		TimeBase: e.codecTB,
	}
	if err := container.WriteHeader(stream); err != nil {
		e.abort()
		return nil, fmt.Errorf("%w: write header: %v", ErrIO, err)
	}
	e.containerTB = container.TimeBase()
	if !e.containerTB.Valid() {
		e.containerTB = e.codecTB
	}

	e.state = StateOpened
	log.Debug("Encoder opened: %s %dx%d @ %d fps (codec %s, container time base %s)",
		path, width, height, fps, id, e.containerTB)
	return e, nil
}

// abort releases codec and container after a failed Open.
func (e *Encoder) abort() {
	if e.codec != nil {
		e.codec.Close()
	}
	if e.container != nil {
		e.container.Close()
	}
	e.state = StateClosed
}

// checkWritable returns the error for calls made outside Opened/Encoding.
func (e *Encoder) checkWritable() error {
	switch e.state {
	case StateOpened, StateEncoding:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
}

// Encode submits a frame stamped with the current frame counter.
func (e *Encoder) Encode(frame *image.YCbCr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encode(frame, e.frameCounter)
}

// EncodeAt submits a frame with an explicit pts in codec time base units (1/fps).
// pts must be greater than every pts submitted before.
func (e *Encoder) EncodeAt(frame *image.YCbCr, pts int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encode(frame, pts)
}

// EncodeFrame validates and converts a captured frame to the stream size and encodes it.
func (e *Encoder) EncodeFrame(frame pipeline.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	yuv, err := e.converter.Convert(frame, e.width, e.height)
	if err != nil {
		return err
	}
	return e.encode(yuv, e.frameCounter)
}

func (e *Encoder) encode(frame *image.YCbCr, pts int64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrFrameSizeMismatch)
	}
	if w, h := frame.Rect.Dx(), frame.Rect.Dy(); w != e.width || h != e.height {
		return fmt.Errorf("%w: got %dx%d, stream is %dx%d", ErrFrameSizeMismatch, w, h, e.width, e.height)
	}
	if pts <= e.lastPTS {
		return fmt.Errorf("%w: %d after %d", ErrInvalidTimestamp, pts, e.lastPTS)
	}

	if err := e.codec.SendFrame(frame, pts); err != nil {
		return fmt.Errorf("%w: send frame %d: %v", ErrEncode, e.frameCounter, err)
	}
	e.frameCounter++
	e.lastPTS = pts
	e.state = StateEncoding

	return e.drain(false)
}

// drain moves every available packet from codec to container. With
// untilEOF it keeps going until the codec reports end of stream.
func (e *Encoder) drain(untilEOF bool) error {
	for {
		pkt, err := e.codec.ReceivePacket()
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrAgain):
			if untilEOF {
				return fmt.Errorf("%w: codec wants input after end of stream", ErrEncode)
			}
			return nil
		case errors.Is(err, ports.ErrEOF):
			return nil
		default:
			return fmt.Errorf("%w: receive packet: %v", ErrEncode, err)
		}

		if err := e.writePacket(pkt); err != nil {
			return err
		}
	}
}

func (e *Encoder) writePacket(pkt ports.Packet) error {
	pkt.PTS = ports.RescaleTS(pkt.PTS, e.codecTB, e.containerTB)
	pkt.DTS = ports.RescaleTS(pkt.DTS, e.codecTB, e.containerTB)
	pkt.Duration = ports.RescaleTS(pkt.Duration, e.codecTB, e.containerTB)
	pkt.StreamIndex = 0

	if pkt.PTS < e.lastPacketPTS {
		return fmt.Errorf("%w: packet pts %d after %d", ErrInvalidTimestamp, pkt.PTS, e.lastPacketPTS)
	}

	if err := e.container.WritePacket(pkt); err != nil {
		return fmt.Errorf("%w: write packet: %v", ErrIO, err)
	}
	e.lastPacketPTS = pkt.PTS
	e.packetsWritten++
	e.bytesWritten += int64(len(pkt.Data))
	return nil
}

// Finish flushes the codec, writes the container trailer and releases all
// resources. Every step is attempted even if an earlier one fails; the
// errors are joined. After Finish every call returns ErrClosed.
func (e *Encoder) Finish() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateClosed:
		return ErrClosed
	case StateOpened, StateEncoding:
	default:
		return fmt.Errorf("%w: finish in state %s", ErrInvalidState, e.state)
	}
	e.state = StateFinishing

	var errs []error
	if err := e.codec.SendEOF(); err != nil {
		errs = append(errs, fmt.Errorf("%w: send eof: %v", ErrEncode, err))
	} else if err := e.drain(true); err != nil {
		errs = append(errs, err)
	}
	if err := e.container.WriteTrailer(); err != nil {
		errs = append(errs, fmt.Errorf("%w: write trailer: %v", ErrIO, err))
	}
	if err := e.codec.Close(); err != nil {
		errs = append(errs, fmt.Errorf("%w: close codec: %v", ErrEncode, err))
	}
	if err := e.container.Close(); err != nil {
		errs = append(errs, fmt.Errorf("%w: close output: %v", ErrIO, err))
	}

	e.state = StateClosed
	e.log.Debug("Encoder finished: %d frames, %d packets, %d bytes", e.frameCounter, e.packetsWritten, e.bytesWritten)
	return errors.Join(errs...)
}

// FrameCount returns how many frames were accepted by the codec.
func (e *Encoder) FrameCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCounter
}

// PacketsWritten returns how many packets reached the container.
func (e *Encoder) PacketsWritten() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.packetsWritten
}

// State returns the lifecycle state.
func (e *Encoder) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Width returns the stream width.
func (e *Encoder) Width() int { return e.width }

// Height returns the stream height.
func (e *Encoder) Height() int { return e.height }

// FPS returns the nominal frame rate.
func (e *Encoder) FPS() int { return e.fps }

// Path returns the output path.
func (e *Encoder) Path() string { return e.path }
