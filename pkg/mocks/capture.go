package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/screenrec/pkg/ports"
)

// CaptureSource is a mock implementation of ports.CaptureSource producing
// solid BGRA images every Interval. All images share one read-only buffer.
type CaptureSource struct {
	Width    uint32
	Height   uint32
	Interval time.Duration // delay between images (0 = as fast as asked)
	Limit    int64         // images to deliver before disconnecting (0 = unlimited)
	Silent   bool          // never deliver; every Receive times out

	StartFunc   func(ctx context.Context) error
	StopFunc    func() error
	ReceiveFunc func(ctx context.Context, timeout time.Duration) (ports.CapturedImage, error)

	once     sync.Once
	pixels   []byte
	next     time.Time
	mu       sync.Mutex
	started  atomic.Bool
	stopped  atomic.Bool
	received atomic.Int64
}

// NewCaptureSource creates a source of w x h images.
func NewCaptureSource(w, h uint32) *CaptureSource {
	return &CaptureSource{Width: w, Height: h}
}

func (m *CaptureSource) Start(ctx context.Context) error {
	if m.StartFunc != nil {
		if err := m.StartFunc(ctx); err != nil {
			return err
		}
	}
	m.started.Store(true)
	return nil
}

func (m *CaptureSource) Stop() error {
	m.stopped.Store(true)
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

func (m *CaptureSource) Receive(ctx context.Context, timeout time.Duration) (ports.CapturedImage, error) {
	if m.ReceiveFunc != nil {
		return m.ReceiveFunc(ctx, timeout)
	}
	if m.stopped.Load() {
		return ports.CapturedImage{}, ports.ErrSourceDisconnected
	}
	if m.Limit > 0 && m.received.Load() >= m.Limit {
		return ports.CapturedImage{}, ports.ErrSourceDisconnected
	}
	if m.Silent {
		return ports.CapturedImage{}, wait(ctx, timeout, ports.ErrCaptureTimeout)
	}

	m.mu.Lock()
	now := time.Now()
	if m.next.IsZero() {
		m.next = now
	}
	delay := m.next.Sub(now)
	if delay > timeout {
		m.mu.Unlock()
		return ports.CapturedImage{}, wait(ctx, timeout, ports.ErrCaptureTimeout)
	}
	m.next = m.next.Add(m.Interval)
	m.mu.Unlock()

	if delay > 0 {
		if err := wait(ctx, delay, nil); err != nil {
			return ports.CapturedImage{}, err
		}
	}

	m.once.Do(func() {
		m.pixels = make([]byte, int(m.Width)*int(m.Height)*4)
		for i := 0; i < len(m.pixels); i += 4 {
			m.pixels[i], m.pixels[i+1], m.pixels[i+2], m.pixels[i+3] = 0x40, 0x80, 0xC0, 0xFF
		}
	})
	m.received.Add(1)

	return ports.CapturedImage{
		Width:      m.Width,
		Height:     m.Height,
		Pixels:     m.pixels,
		CapturedAt: time.Now(),
	}, nil
}

func wait(ctx context.Context, d time.Duration, result error) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return result
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size returns the configured image size.
func (m *CaptureSource) Size() (int, int) { return int(m.Width), int(m.Height) }

// Started reports whether Start was called.
func (m *CaptureSource) Started() bool { return m.started.Load() }

// Stopped reports whether Stop was called.
func (m *CaptureSource) Stopped() bool { return m.stopped.Load() }

// Delivered returns how many images were handed out.
func (m *CaptureSource) Delivered() int64 { return m.received.Load() }

var (
	_ ports.CaptureSource = (*CaptureSource)(nil)
	_ ports.SizedSource   = (*CaptureSource)(nil)
)
