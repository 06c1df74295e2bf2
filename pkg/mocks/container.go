package mocks

import (
	"sync"

	"github.com/user/screenrec/pkg/ports"
)

// Container is a mock implementation of ports.Container that records every call.
type Container struct {
	WriteHeaderFunc  func(stream ports.StreamInfo) error
	WritePacketFunc  func(pkt ports.Packet) error
	WriteTrailerFunc func() error
	CloseFunc        func() error

	// TB is returned by TimeBase; zero means "same as the stream".
	TB ports.Rational

	mu            sync.Mutex
	Path          string
	Stream        ports.StreamInfo
	HeaderWritten bool
	Packets       []ports.Packet
	TrailerCount  int
	CloseCount    int
}

// Opener returns a ports.ContainerOpener that hands out m and records the path.
func (m *Container) Opener() ports.ContainerOpener {
	return func(path string) (ports.Container, error) {
		m.mu.Lock()
		m.Path = path
		m.mu.Unlock()
		return m, nil
	}
}

func (m *Container) WriteHeader(stream ports.StreamInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteHeaderFunc != nil {
		if err := m.WriteHeaderFunc(stream); err != nil {
			return err
		}
	}
	m.Stream = stream
	m.HeaderWritten = true
	return nil
}

func (m *Container) TimeBase() ports.Rational {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TB.Valid() {
		return m.TB
	}
	return m.Stream.TimeBase
}

func (m *Container) WritePacket(pkt ports.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WritePacketFunc != nil {
		if err := m.WritePacketFunc(pkt); err != nil {
			return err
		}
	}
	m.Packets = append(m.Packets, pkt)
	return nil
}

func (m *Container) WriteTrailer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrailerCount++
	if m.WriteTrailerFunc != nil {
		return m.WriteTrailerFunc()
	}
	return nil
}

func (m *Container) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCount++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// PacketCount returns how many packets were written.
func (m *Container) PacketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Packets)
}

var _ ports.Container = (*Container)(nil)
