// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"image"
	"sync"

	"github.com/user/screenrec/pkg/ports"
)

// Parameter sets of a 320x240 baseline stream. Keyframe packets produced by
// VideoCodec carry them so the output can go through a real MP4 muxer.
var (
	TestSPS = []byte{0x67, 0x42, 0xC0, 0x1E, 0xF4, 0x0A, 0x0F, 0xC8}
	TestPPS = []byte{0x68, 0xCE, 0x3C, 0x80}
)

// AccessUnit builds an Annex B access unit from NAL units, starting with a delimiter.
func AccessUnit(nalus ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 1, 0x09, 0xF0})
	for _, n := range nalus {
		buf.Write([]byte{0, 0, 0, 1})
		buf.Write(n)
	}
	return buf.Bytes()
}

// VideoCodec is a mock implementation of ports.VideoCodec. By default it
// emits one packet per frame, holding back Delay packets until SendEOF,
// with a keyframe every GOP frames (default 30).
type VideoCodec struct {
	OpenFunc          func(cfg ports.CodecConfig) error
	SendFrameFunc     func(frame *image.YCbCr, pts int64) error
	SendEOFFunc       func() error
	ReceivePacketFunc func() (ports.Packet, error)
	CloseFunc         func() error

	Delay int
	GOP   int

	mu      sync.Mutex
	queue   []ports.Packet
	eof     bool
	tb      ports.Rational
	Config  ports.CodecConfig
	Opened  bool
	SentPTS []int64
	EOFSent bool
	Closed  int
}

func (m *VideoCodec) ID() ports.CodecID {
	return ports.CodecH264
}

func (m *VideoCodec) Open(cfg ports.CodecConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenFunc != nil {
		if err := m.OpenFunc(cfg); err != nil {
			return err
		}
	}
	m.Config = cfg
	m.tb = cfg.TimeBase
	m.Opened = true
	return nil
}

func (m *VideoCodec) TimeBase() ports.Rational {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tb
}

func (m *VideoCodec) SendFrame(frame *image.YCbCr, pts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendFrameFunc != nil {
		if err := m.SendFrameFunc(frame, pts); err != nil {
			return err
		}
	}

	gop := m.GOP
	if gop <= 0 {
		gop = 30
	}
	n := len(m.SentPTS)
	key := n%gop == 0
	data := AccessUnit([]byte{0x41, 0x9A, byte(n), 0x10})
	if key {
		data = AccessUnit(TestSPS, TestPPS, []byte{0x65, 0x88, 0x84, 0x21, 0xA0})
	}

	m.SentPTS = append(m.SentPTS, pts)
	m.queue = append(m.queue, ports.Packet{Data: data, PTS: pts, DTS: pts, Duration: 1, Keyframe: key})
	return nil
}

func (m *VideoCodec) SendEOF() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EOFSent = true
	m.eof = true
	if m.SendEOFFunc != nil {
		return m.SendEOFFunc()
	}
	return nil
}

func (m *VideoCodec) ReceivePacket() (ports.Packet, error) {
	if m.ReceivePacketFunc != nil {
		return m.ReceivePacketFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) > m.Delay || (m.eof && len(m.queue) > 0) {
		pkt := m.queue[0]
		m.queue = m.queue[1:]
		return pkt, nil
	}
	if m.eof {
		return ports.Packet{}, ports.ErrEOF
	}
	return ports.Packet{}, ports.ErrAgain
}

func (m *VideoCodec) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// FramesSent returns how many frames were accepted.
func (m *VideoCodec) FramesSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentPTS)
}

var _ ports.VideoCodec = (*VideoCodec)(nil)
