// Package screencapture provides a capture source that grabs a physical
// display with kbinani/screenshot.
package screencapture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/user/screenrec/pkg/adapters/imagequeue"
	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/ports"
)

var (
	// ErrNoDisplay is returned when no active display is available.
	ErrNoDisplay = errors.New("screencapture: no active display")

	// ErrAlreadyStarted is returned by Start on a running source.
	ErrAlreadyStarted = errors.New("screencapture: already started")
)

// Display describes one active display.
type Display struct {
	Index   int
	Bounds  image.Rectangle
	Primary bool
}

// Displays lists the active displays.
func Displays() []Display {
	n := screenshot.NumActiveDisplays()
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		displays = append(displays, Display{
			Index:   i,
			Bounds:  screenshot.GetDisplayBounds(i),
			Primary: i == 0,
		})
	}
	return displays
}

// GrabFunc captures the given screen rectangle.
type GrabFunc func(bounds image.Rectangle) (*image.RGBA, error)

// Source polls a display at a fixed rate.
type Source struct {
	bounds   image.Rectangle
	interval time.Duration
	grab     GrabFunc
	queue    *imagequeue.Queue

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	lastErr error
}

// New creates a source for the display with the given index.
func New(display, fps int) (*Source, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("screencapture: invalid display index %d (max %d)", display, n-1)
	}
	bounds := screenshot.GetDisplayBounds(display)
	if bounds.Empty() {
		return nil, fmt.Errorf("screencapture: display %d has zero bounds", display)
	}
	return NewWithGrabber(bounds, fps, screenshot.CaptureRect), nil
}

// NewWithGrabber creates a source that captures bounds using grab.
func NewWithGrabber(bounds image.Rectangle, fps int, grab GrabFunc) *Source {
	if fps <= 0 {
		fps = 30
	}
	return &Source{
		bounds:   bounds,
		interval: time.Second / time.Duration(fps),
		grab:     grab,
		queue:    imagequeue.New(2),
	}
}

// Size returns the display size in pixels.
func (s *Source) Size() (int, int) {
	return s.bounds.Dx(), s.bounds.Dy()
}

// Start begins polling the display.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true

	go s.run(ctx)
	return nil
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)
	defer s.queue.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		rgba, err := s.grab(s.bounds)
		if err != nil {
			s.mu.Lock()
			s.lastErr = fmt.Errorf("screencapture: grab: %w", err)
			s.mu.Unlock()
		} else if !s.queue.Push(convert.FromImage(rgba, time.Now())) {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends polling and waits for the polling goroutine.
func (s *Source) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		s.queue.Close()
		return nil
	}
	cancel()
	<-done
	return nil
}

// Receive waits up to timeout for the next screen image. A failed grab is
// reported once, by the next call.
func (s *Source) Receive(ctx context.Context, timeout time.Duration) (ports.CapturedImage, error) {
	s.mu.Lock()
	err := s.lastErr
	s.lastErr = nil
	s.mu.Unlock()
	if err != nil {
		return ports.CapturedImage{}, err
	}
	return s.queue.Receive(ctx, timeout)
}

var (
	_ ports.CaptureSource = (*Source)(nil)
	_ ports.SizedSource   = (*Source)(nil)
)
