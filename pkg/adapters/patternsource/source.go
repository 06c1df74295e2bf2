// Package patternsource provides a synthetic capture source that renders a
// moving test pattern with the gg library.
package patternsource

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/user/screenrec/pkg/adapters/imagequeue"
	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/ports"
)

// ErrAlreadyStarted is returned by Start on a running source.
var ErrAlreadyStarted = errors.New("patternsource: already started")

// Options configures the pattern.
type Options struct {
	Width  int
	Height int
	FPS    int
	Limit  int64 // images to render before disconnecting (0 = unlimited)
	Label  string
}

// Source renders test frames at a fixed rate.
type Source struct {
	opts  Options
	queue *imagequeue.Queue

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a pattern source. FPS defaults to 30.
func New(opts Options) *Source {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Label == "" {
		opts.Label = "screenrec"
	}
	return &Source{opts: opts, queue: imagequeue.New(4)}
}

// Size returns the rendered image size.
func (s *Source) Size() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Start begins rendering on a background goroutine.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.opts.Width <= 0 || s.opts.Height <= 0 {
		return fmt.Errorf("patternsource: invalid size %dx%d", s.opts.Width, s.opts.Height)
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

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()

	for n := int64(0); s.opts.Limit == 0 || n < s.opts.Limit; n++ {
		img := convert.FromImage(Render(s.opts.Width, s.opts.Height, n, s.opts.Label).Image(), time.Now())
		if !s.queue.Push(img) {
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends rendering and waits for the render goroutine.
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

// Receive waits up to timeout for the next rendered image.
func (s *Source) Receive(ctx context.Context, timeout time.Duration) (ports.CapturedImage, error) {
	return s.queue.Receive(ctx, timeout)
}

// Render draws frame n of the test pattern: colour bars, a box sweeping
// across the screen and the frame number.
func Render(width, height int, n int64, label string) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{R: 24, G: 24, B: 32, A: 255})
	dc.Clear()

	bars := []color.Color{
		color.RGBA{R: 192, G: 192, B: 192, A: 255},
		color.RGBA{R: 192, G: 192, B: 0, A: 255},
		color.RGBA{R: 0, G: 192, B: 192, A: 255},
		color.RGBA{R: 0, G: 192, B: 0, A: 255},
		color.RGBA{R: 192, G: 0, B: 192, A: 255},
		color.RGBA{R: 192, G: 0, B: 0, A: 255},
		color.RGBA{R: 0, G: 0, B: 192, A: 255},
	}
	barW := float64(width) / float64(len(bars))
	barH := float64(height) * 0.6
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, 0, math.Ceil(barW), barH)
		dc.Fill()
	}

	box := float64(height) / 8
	travel := float64(width) - box
	x := 0.0
	if travel > 0 {
		x = math.Mod(float64(n)*box/4, 2*travel)
		if x > travel {
			x = 2*travel - x
		}
	}
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x, barH+box/2, box, box, box/8)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("%s  #%06d", label, n), float64(width)/2, float64(height)-box/2, 0.5, 0.5)

	return dc
}

var (
	_ ports.CaptureSource = (*Source)(nil)
	_ ports.SizedSource   = (*Source)(nil)
)
