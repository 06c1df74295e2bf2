// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/screenrec/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false; callers skip preparing debug artifacts.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(index int64, img image.Image) error {
	return nil
}

// SaveSessionJSON does nothing.
func (s *Sink) SaveSessionJSON(data []byte) error {
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
