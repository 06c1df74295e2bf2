package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrChannelClosed is returned by Send after Close or Abandon, and by
	// Receive once the channel is closed and drained. It is a normal shutdown signal.
	ErrChannelClosed = errors.New("pipeline: frame channel closed")

	// ErrReceiveTimeout is returned by Receive when no frame arrived in time.
	ErrReceiveTimeout = errors.New("pipeline: receive timed out")
)

// DefaultChannelCapacity bounds the number of frames buffered between capture and encode.
const DefaultChannelCapacity = 8

// FrameChannel is a bounded FIFO hand-off of frames from one or more producers
// to a single consumer. A full channel blocks Send, throttling capture.
type FrameChannel struct {
	frames chan Frame

	mu     sync.RWMutex // held shared by senders, exclusively by Close
	closed bool

	abandoned   chan struct{}
	abandonOnce sync.Once
}

// NewFrameChannel creates a channel buffering up to capacity frames.
func NewFrameChannel(capacity int) *FrameChannel {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	return &FrameChannel{
		frames:    make(chan Frame, capacity),
		abandoned: make(chan struct{}),
	}
}

// Send enqueues a frame, blocking while the channel is full.
// It returns ErrChannelClosed if the producer side is closed or the consumer
// abandoned the channel, and ctx.Err() if the context ends first.
func (c *FrameChannel) Send(ctx context.Context, f Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrChannelClosed
	}
	select {
	case <-c.abandoned:
		return ErrChannelClosed
	default:
	}

	select {
	case c.frames <- f:
		return nil
	case <-c.abandoned:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive dequeues the next frame in FIFO order, waiting at most timeout.
// Once the producer side is closed and every buffered frame is consumed it
// returns ErrChannelClosed.
func (c *FrameChannel) Receive(ctx context.Context, timeout time.Duration) (Frame, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f, ok := <-c.frames:
		if !ok {
			return Frame{}, ErrChannelClosed
		}
		return f, nil
	case <-timer.C:
		return Frame{}, ErrReceiveTimeout
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Close closes the producer side. Buffered frames remain receivable.
// It waits for in-flight sends to finish and is safe to call more than once.
func (c *FrameChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.frames)
}

// Abandon marks the consumer as gone. Pending and future sends fail with
// ErrChannelClosed instead of blocking forever.
func (c *FrameChannel) Abandon() {
	c.abandonOnce.Do(func() {
		close(c.abandoned)
	})
}

// Abandoned is closed once the consumer has abandoned the channel.
func (c *FrameChannel) Abandoned() <-chan struct{} {
	return c.abandoned
}

// Drain discards every buffered frame until the channel is closed and empty,
// returning how many frames were discarded. It must only be called by the consumer.
func (c *FrameChannel) Drain() int64 {
	var n int64
	for range c.frames {
		n++
	}
	return n
}

// Len returns the number of buffered frames.
func (c *FrameChannel) Len() int {
	return len(c.frames)
}

// Cap returns the channel capacity.
func (c *FrameChannel) Cap() int {
	return cap(c.frames)
}
