// Package chromesource provides a capture source that records a web page
// through the Chrome DevTools screencast, using chromedp.
package chromesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/screenrec/pkg/adapters/imagequeue"
	"github.com/user/screenrec/pkg/adapters/logger"
	"github.com/user/screenrec/pkg/convert"
	"github.com/user/screenrec/pkg/ports"
)

var (
	// ErrChromeNotFound is returned when no Chrome executable can be located.
	ErrChromeNotFound = errors.New("chromesource: chrome not found: install Chrome/Chromium, set CHROME_PATH or use --chrome-path")

	// ErrAlreadyStarted is returned by Start on a running source.
	ErrAlreadyStarted = errors.New("chromesource: already started")
)

// Options configures the browser and the screencast.
type Options struct {
	URL         string
	ChromePath  string
	Headless    bool
	Width       int
	Height      int
	JPEGQuality int
	Logger      ports.Logger
}

// Source streams screencast frames of one page.
type Source struct {
	opts  Options
	log   ports.Logger
	queue *imagequeue.Queue

	mu          sync.Mutex
	allocCancel context.CancelFunc
	cancel      context.CancelFunc
	ctx         context.Context
	started     bool
	stopped     bool
	lastErr     error
}

// New creates a source for opts.URL. Width and Height default to 1280x720.
func New(opts Options) *Source {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 80
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	return &Source{
		opts:  opts,
		log:   log.WithComponent("chrome"),
		queue: imagequeue.New(4),
	}
}

// Size returns the viewport size in device pixels.
func (s *Source) Size() (int, int) {
	return s.opts.Width, s.opts.Height
}

func (s *Source) allocatorOptions(chromePath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.WindowSize(s.opts.Width, s.opts.Height),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	}
	if s.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	return opts
}

// Start launches Chrome, opens the page and starts the screencast.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.opts.URL == "" {
		return fmt.Errorf("chromesource: url is required")
	}
	chromePath := ResolveChromePath(s.opts.ChromePath)
	if chromePath == "" {
		return ErrChromeNotFound
	}
	s.started = true

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, s.allocatorOptions(chromePath)...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	s.allocCancel, s.cancel, s.ctx = allocCancel, cancel, browserCtx

	chromedp.ListenTarget(browserCtx, s.onEvent)

	s.log.Debug("Launching Chrome %s for %s", chromePath, s.opts.URL)
	err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(int64(s.opts.Width), int64(s.opts.Height), 1, false),
		chromedp.Navigate(s.opts.URL),
		page.StartScreencast().
			WithFormat(page.ScreencastFormatJpeg).
			WithQuality(int64(s.opts.JPEGQuality)).
			WithMaxWidth(int64(s.opts.Width)).
			WithMaxHeight(int64(s.opts.Height)).
			WithEveryNthFrame(1),
	)
	if err != nil {
		s.shutdown()
		return fmt.Errorf("chromesource: start screencast: %w", err)
	}
	return nil
}

func (s *Source) onEvent(ev interface{}) {
	e, ok := ev.(*page.EventScreencastFrame)
	if !ok {
		return
	}

	// Chrome pauses the screencast until every frame is acknowledged.
	go chromedp.Run(s.ctx, page.ScreencastFrameAck(e.SessionID))

	img, err := DecodeFrame(e.Data, time.Now())
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return
	}
	s.queue.Push(img)
}

// DecodeFrame turns base64 JPEG screencast data into a BGRA capture image.
func DecodeFrame(data string, capturedAt time.Time) (ports.CapturedImage, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ports.CapturedImage{}, fmt.Errorf("chromesource: decode base64: %w", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return ports.CapturedImage{}, fmt.Errorf("chromesource: decode jpeg: %w", err)
	}
	return convert.FromImage(img, capturedAt), nil
}

// Stop ends the screencast and shuts Chrome down. Frames already buffered
// remain receivable.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.ctx != nil {
		stopCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		if err := chromedp.Run(stopCtx, page.StopScreencast()); err != nil {
			s.log.Debug("Stop screencast failed: %v", err)
		}
		cancel()
	}
	s.shutdown()
	return nil
}

// shutdown must be called with s.mu held.
func (s *Source) shutdown() {
	s.queue.Close()
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// Receive waits up to timeout for the next screencast frame. Headless Chrome
// only sends frames when the page repaints, so timeouts are routine.
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
