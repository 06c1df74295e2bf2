package ports

import (
	"image"
)

// DebugSink receives intermediate artifacts of a recording for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves a captured frame, indexed by capture order.
	SaveFrame(index int64, img image.Image) error

	// SaveSessionJSON saves the final session report.
	SaveSessionJSON(data []byte) error
}
