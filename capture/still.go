package capture

import (
	"context"
	"image"
	"io"
	"sync"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/imageutil"
)

// MaxCellWidth is the widest character cell, in source pixels, a still
// image is rendered with before it is pre-scaled.
const MaxCellWidth = 8

// StillOptions controls how a StillSource prepares its image.
type StillOptions struct {
	// Width resizes the image to this many pixels wide, keeping the aspect
	// ratio. Zero keeps the original size.
	Width int
	// GridWidth, when Width is zero, shrinks images much wider than a grid
	// of this many characters needs.
	GridWidth int
	// Mirror flips the image horizontally.
	Mirror bool
	// Frames limits how many times the image is returned before Read
	// reports io.EOF. Zero repeats forever.
	Frames int
}

// StillSource replays one image as a stream of identical frames.
type StillSource struct {
	mu     sync.Mutex
	frame  *asciicam.PixelBuffer
	limit  int
	served int
	closed bool
}

// NewStillSource prepares img once and serves it on every Read.
func NewStillSource(img image.Image, opts StillOptions) *StillSource {
	rgba := imageutil.RGBAImageFromImage(img)
	switch {
	case opts.Width > 0 && opts.Width != rgba.Width():
		rgba = imageutil.ResizeToWidth(rgba, opts.Width, imageutil.InterpolationArea)
	case opts.Width == 0 && opts.GridWidth > 0:
		rgba = imageutil.PrescaleForGrid(rgba, opts.GridWidth, MaxCellWidth)
	}
	if opts.Mirror {
		rgba = imageutil.FlipHorizontal(rgba)
	}
	return &StillSource{
		frame: asciicam.PixelBufferFromRGBA(rgba),
		limit: opts.Frames,
	}
}

// OpenStill loads an image file (PNG, JPEG, GIF or TIFF) as a StillSource.
func OpenStill(path string, opts StillOptions) (*StillSource, error) {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return NewStillSource(img, opts), nil
}

// Read returns the prepared frame. The same buffer is returned every
// time; callers must not modify it.
func (s *StillSource) Read(ctx context.Context) (*asciicam.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.limit > 0 && s.served >= s.limit {
		return nil, io.EOF
	}
	s.served++
	return s.frame, nil
}

// Close stops the source. It is safe to call more than once.
func (s *StillSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
