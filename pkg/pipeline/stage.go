// Package pipeline provides the frame types, hand-off channel and stage
// abstraction shared by the capture and encode sides of a recording.
package pipeline

import (
	"context"
)

// Stage represents a long-running unit of the recording pipeline.
// Each stage takes an input and produces an output when it finishes.
type Stage[In, Out any] interface {
	// Execute runs the stage until its input is exhausted or it is told to stop.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
