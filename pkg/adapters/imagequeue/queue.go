// Package imagequeue buffers images pushed by a capture goroutine until
// the capture loop asks for them.
package imagequeue

import (
	"context"
	"sync"
	"time"

	"github.com/user/screenrec/pkg/ports"
)

// Queue is a small bounded buffer between a source's producer goroutine and
// ports.CaptureSource.Receive. When full, the oldest image is dropped so the
// consumer always sees the most recent screen contents.
type Queue struct {
	ch chan ports.CapturedImage

	mu      sync.Mutex
	closed  bool
	dropped int64
}

// New creates a queue holding up to size images.
func New(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan ports.CapturedImage, size)}
}

// Push adds an image, evicting the oldest one when the queue is full.
// It reports false once the queue is closed.
func (q *Queue) Push(img ports.CapturedImage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	for {
		select {
		case q.ch <- img:
			return true
		default:
		}
		select {
		case <-q.ch:
			q.dropped++
		default:
		}
	}
}

// Close marks the end of the stream. Buffered images remain receivable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Dropped returns how many images were evicted before being received.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Receive waits up to timeout for the next image.
func (q *Queue) Receive(ctx context.Context, timeout time.Duration) (ports.CapturedImage, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case img, ok := <-q.ch:
		if !ok {
			return ports.CapturedImage{}, ports.ErrSourceDisconnected
		}
		return img, nil
	case <-timer.C:
		return ports.CapturedImage{}, ports.ErrCaptureTimeout
	case <-ctx.Done():
		return ports.CapturedImage{}, ctx.Err()
	}
}
