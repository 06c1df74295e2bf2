// Package mp4mux writes a single H.264 stream into a fragmented MP4 file
// using mp4ff.
//
// The ftyp box is written by WriteHeader. The moov box needs the SPS and PPS,
// so it is deferred until the first keyframe arrives. Each GOP becomes one
// moof+mdat fragment; a sample's duration is only known once the next sample
// arrives, so the newest sample is held back until then or until WriteTrailer.
package mp4mux

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/screenrec/pkg/ports"
)

const trackID = 1

// sample is an access unit waiting for its duration.
type sample struct {
	data     []byte
	dts      int64
	duration int64
	keyframe bool
}

// Muxer implements ports.Container.
type Muxer struct {
	log ports.Logger

	buf    *bufio.Writer
	closer io.Closer

	stream    ports.StreamInfo
	timeBase  ports.Rational
	init      *mp4.InitSegment
	frag      *mp4.Fragment
	fragSeq   uint32
	pending   *sample
	lastDTS   int64
	samples   int64
	fragments int

	headerWritten  bool
	moovWritten    bool
	trailerWritten bool
	closed         bool
}

// Open creates (or truncates) the file at path.
func Open(path string, log ports.Logger) (*Muxer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	m := NewWriter(f, log)
	m.closer = f
	return m, nil
}

// Opener adapts Open to ports.ContainerOpener.
func Opener(log ports.Logger) ports.ContainerOpener {
	return func(path string) (ports.Container, error) {
		return Open(path, log)
	}
}

// NewWriter creates a muxer writing to w. Close does not close w.
func NewWriter(w io.Writer, log ports.Logger) *Muxer {
	return &Muxer{
		log:     log,
		buf:     bufio.NewWriterSize(w, 256*1024),
		lastDTS: -1,
	}
}

// TimeBase returns 1/(fps*1000), the track timescale. Valid after WriteHeader.
func (m *Muxer) TimeBase() ports.Rational {
	return m.timeBase
}

// Samples returns how many samples have been written to fragments.
func (m *Muxer) Samples() int64 {
	return m.samples
}

// WriteHeader validates the stream and writes the ftyp box.
func (m *Muxer) WriteHeader(stream ports.StreamInfo) error {
	if m.closed || m.trailerWritten {
		return ErrFinalized
	}
	if m.headerWritten {
		return ErrHeaderWritten
	}
	if stream.Codec != ports.CodecH264 {
		return fmt.Errorf("%w: %s", ErrUnsupportedCodec, stream.Codec)
	}
	if stream.Width <= 0 || stream.Height <= 0 || stream.Width > 0xFFFF || stream.Height > 0xFFFF || stream.FPS <= 0 {
		return fmt.Errorf("mp4mux: invalid stream %dx%d@%d", stream.Width, stream.Height, stream.FPS)
	}

	m.stream = stream
	m.timeBase = ports.NewRational(1, int64(stream.FPS)*1000)

	m.init = mp4.CreateEmptyInit()
	m.init.AddEmptyTrack(uint32(m.timeBase.Den), "video", "und")

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "iso6", "avc1", "mp41"})
	if err := ftyp.Encode(m.buf); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}

	m.headerWritten = true
	m.log.Debug("MP4 header written: %dx%d, timescale %d", stream.Width, stream.Height, m.timeBase.Den)
	return nil
}

// WritePacket queues one access unit. Timestamps are in TimeBase units.
func (m *Muxer) WritePacket(pkt ports.Packet) error {
	if m.closed || m.trailerWritten {
		return ErrFinalized
	}
	if !m.headerWritten {
		return ErrHeaderNotWritten
	}
	if pkt.DTS <= m.lastDTS {
		return fmt.Errorf("%w: %d after %d", ErrNonMonotonicDTS, pkt.DTS, m.lastDTS)
	}

	if !m.moovWritten {
		if err := m.writeMoov(pkt.Data); err != nil {
			return err
		}
	}

	next := &sample{
		data:     toSample(pkt.Data),
		dts:      pkt.DTS,
		duration: pkt.Duration,
		keyframe: pkt.Keyframe,
	}
	m.lastDTS = pkt.DTS

	if m.pending != nil {
		m.pending.duration = next.dts - m.pending.dts
		if err := m.addSample(m.pending); err != nil {
			return err
		}
	}
	if next.keyframe && m.frag != nil {
		if err := m.flushFragment(); err != nil {
			return err
		}
	}
	m.pending = next
	return nil
}

// writeMoov builds the sample description from the first access unit.
func (m *Muxer) writeMoov(au []byte) error {
	sps, pps := parameterSets(au)
	if sps == nil || pps == nil {
		return ErrMissingParameterSets
	}

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return fmt.Errorf("create avcC: %w", err)
	}

	trak := m.init.Moov.Trak
	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(m.stream.Width), uint16(m.stream.Height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)

	return m.encodeMoov()
}

func (m *Muxer) encodeMoov() error {
	trak := m.init.Moov.Trak
	trak.Tkhd.Width = mp4.Fixed32(m.stream.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(m.stream.Height << 16)

	if err := m.init.Moov.Encode(m.buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	m.moovWritten = true
	return nil
}

func (m *Muxer) addSample(s *sample) error {
	if m.frag == nil {
		m.fragSeq++
		frag, err := mp4.CreateFragment(m.fragSeq, trackID)
		if err != nil {
			return fmt.Errorf("create fragment: %w", err)
		}
		m.frag = frag
	}

	dur := s.duration
	if dur <= 0 {
		dur = m.timeBase.Den / int64(m.stream.FPS)
	}

	flags := mp4.NonSyncSampleFlags
	if s.keyframe {
		flags = mp4.SyncSampleFlags
	}

	m.frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Size:  uint32(len(s.data)),
			Dur:   uint32(dur),
		},
		DecodeTime: uint64(s.dts),
		Data:       s.data,
	})
	m.samples++
	return nil
}

func (m *Muxer) flushFragment() error {
	if m.frag == nil {
		return nil
	}
	if err := m.frag.Encode(m.buf); err != nil {
		return fmt.Errorf("encode fragment %d: %w", m.fragSeq, err)
	}
	m.frag = nil
	m.fragments++
	return nil
}

// WriteTrailer writes the held-back sample and the last fragment. For an
// empty stream it writes a moov without sample entries so the file still parses.
func (m *Muxer) WriteTrailer() error {
	if m.closed {
		return ErrFinalized
	}
	if !m.headerWritten {
		return ErrHeaderNotWritten
	}
	if m.trailerWritten {
		return nil
	}

	if !m.moovWritten {
		if err := m.encodeMoov(); err != nil {
			return err
		}
	}
	if m.pending != nil {
		if err := m.addSample(m.pending); err != nil {
			return err
		}
		m.pending = nil
	}
	if err := m.flushFragment(); err != nil {
		return err
	}
	if err := m.buf.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	m.trailerWritten = true
	m.log.Debug("MP4 finalized: %d samples in %d fragments", m.samples, m.fragments)
	return nil
}

// Close flushes buffered bytes and closes the file. It is idempotent and
// does not write the trailer.
func (m *Muxer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	err := m.buf.Flush()
	if m.closer != nil {
		if cerr := m.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ ports.Container = (*Muxer)(nil)
