package ports

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrAgain is returned by VideoCodec.ReceivePacket when the codec needs
	// more input before it can emit another packet.
	ErrAgain = errors.New("codec: no packet available yet")

	// ErrEOF is returned by VideoCodec.ReceivePacket after SendEOF once every
	// buffered packet has been drained.
	ErrEOF = errors.New("codec: end of stream")
)

// CodecID identifies a video codec implementation.
type CodecID string

const (
	// CodecH264 is H.264/AVC.
	CodecH264 CodecID = "h264"
)

// Rational is a time base expressed as Num/Den seconds per tick.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns num/den.
func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// String returns the rational as "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Valid reports whether both terms are positive.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// RescaleTS converts a timestamp from one time base to another,
// rounding to the nearest tick (halfway cases away from zero).
func RescaleTS(v int64, from, to Rational) int64 {
	num := from.Num * to.Den
	den := from.Den * to.Num
	if den == 0 {
		return 0
	}
	p := v * num
	if (p < 0) != (den < 0) {
		return (p - den/2) / den
	}
	return (p + den/2) / den
}

// CodecConfig configures a video codec before it is opened.
type CodecConfig struct {
	Width    int
	Height   int
	TimeBase Rational // normally 1/fps
	FPS      int

	// Options holds encoder-specific settings such as "preset" or "crf".
	Options map[string]string
}

// Packet is one unit of compressed output emitted by a codec.
type Packet struct {
	Data        []byte // Annex B byte stream for H.264
	PTS         int64
	DTS         int64
	Duration    int64
	Keyframe    bool
	StreamIndex int
}

// VideoCodec abstracts a send-frame / receive-packet video encoder.
// Frames must be submitted in presentation order; implementations are not
// required to be safe for concurrent use.
type VideoCodec interface {
	// ID returns the codec identifier.
	ID() CodecID

	// Open configures and starts the codec.
	Open(cfg CodecConfig) error

	// TimeBase returns the time base of packet timestamps.
	TimeBase() Rational

	// SendFrame submits one planar 4:2:0 frame at the given presentation timestamp.
	SendFrame(frame *image.YCbCr, pts int64) error

	// SendEOF signals end of stream. Remaining packets must still be drained
	// with ReceivePacket until it returns ErrEOF.
	SendEOF() error

	// ReceivePacket returns the next available packet, ErrAgain when more input
	// is required, or ErrEOF once the stream is fully drained.
	ReceivePacket() (Packet, error)

	// Close releases codec resources. It is safe to call after a failure.
	Close() error
}

// ErrBackendUnavailable is wrapped by codec implementations whose backend
// (library, binary or hardware) is missing on this system.
var ErrBackendUnavailable = errors.New("codec: backend unavailable")
