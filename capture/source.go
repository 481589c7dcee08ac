// Package capture drives an asciicam.Pipeline from a frame source: it
// paces reads to a target frame rate, runs an optional segmenter to
// produce foreground masks and hands each rendered result to a sink.
package capture

import (
	"context"
	"errors"

	"github.com/wbrown/asciicam"
)

var (
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("capture: source closed")

	// ErrSourceRestarted is returned by a Source whose underlying stream
	// was reopened. The next Read returns a frame from the new stream.
	// The loop resets pipeline state when it sees this error.
	ErrSourceRestarted = errors.New("capture: source restarted")
)

// Source produces frames.
//
// Read blocks until a frame is available. It returns io.EOF when a
// finite source is exhausted. Returned buffers are owned by the caller
// and are not modified by the source afterwards.
type Source interface {
	Read(ctx context.Context) (*asciicam.PixelBuffer, error)
	Close() error
}

// Segmenter estimates a foreground confidence mask for a frame. A failed
// segmentation only costs the mask for that frame; the loop renders the
// frame unmasked.
type Segmenter interface {
	Segment(ctx context.Context, frame *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error)
}

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(ctx context.Context, frame *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error)

// Segment calls f.
func (f SegmenterFunc) Segment(ctx context.Context, frame *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error) {
	return f(ctx, frame)
}
