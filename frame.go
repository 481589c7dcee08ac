package asciicam

import (
	"fmt"
	"image"
	"time"

	"github.com/wbrown/asciicam/imageutil"
)

const (
	// BytesPerPixel is the stride of one RGBA pixel in a PixelBuffer.
	BytesPerPixel = 4

	// MaskChannel is the byte offset of the confidence value inside each
	// RGBA mask pixel. Segmentation models write the same value to R, G
	// and B, so only this one is read.
	MaskChannel = 0
)

// PixelBuffer is a width x height grid of 8-bit sRGB pixels stored as
// R,G,B,A bytes, row-major with no padding between rows. A PixelBuffer
// handed to the pipeline is treated as immutable; stages that change
// pixels return a new buffer.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a zeroed (transparent black) buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*BytesPerPixel),
	}
}

// PixelBufferFromImage copies any image.Image into a tightly packed
// PixelBuffer.
func PixelBufferFromImage(img image.Image) *PixelBuffer {
	rgba := imageutil.RGBAImageFromImage(img)
	return PixelBufferFromRGBA(rgba)
}

// PixelBufferFromRGBA wraps the pixels of an RGBAImage. When the image
// stride equals width*4 the pixel slice is shared, otherwise rows are
// copied.
func PixelBufferFromRGBA(img *imageutil.RGBAImage) *PixelBuffer {
	w, h := img.Width(), img.Height()
	if img.Stride == w*BytesPerPixel && len(img.Pix) == w*h*BytesPerPixel {
		return &PixelBuffer{Width: w, Height: h, Pix: img.Pix}
	}
	buf := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*BytesPerPixel]
		copy(buf.Pix[y*w*BytesPerPixel:], src)
	}
	return buf
}

// Len returns the number of pixels.
func (b *PixelBuffer) Len() int {
	return b.Width * b.Height
}

// Validate reports whether the dimensions and pixel slice agree.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil pixel buffer", ErrInvalidBuffer)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d",
			ErrInvalidBuffer, b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*BytesPerPixel {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrInvalidBuffer, b.Width, b.Height,
			b.Width*b.Height*BytesPerPixel, len(b.Pix))
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	clone := &PixelBuffer{Width: b.Width, Height: b.Height,
		Pix: make([]uint8, len(b.Pix))}
	copy(clone.Pix, b.Pix)
	return clone
}

// Image exposes the buffer as an *image.RGBA sharing the same pixels.
func (b *PixelBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// ConfidenceMask is a per-pixel foreground probability map produced by a
// segmentation model. It is stored in the same RGBA layout as the frame;
// the confidence (0-255) is read from MaskChannel.
type ConfidenceMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewConfidenceMaskFromGray builds a mask from a single-channel
// confidence plane of width*height bytes, replicating each value across
// R, G and B with an opaque alpha.
func NewConfidenceMaskFromGray(width, height int, conf []uint8) *ConfidenceMask {
	m := &ConfidenceMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*BytesPerPixel),
	}
	n := min(len(conf), width*height)
	for i := 0; i < n; i++ {
		o := i * BytesPerPixel
		m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3] = conf[i], conf[i], conf[i], 255
	}
	return m
}

// Len returns the number of pixels covered by the mask.
func (m *ConfidenceMask) Len() int {
	return m.Width * m.Height
}

// Confidence returns the raw confidence channel, one byte per pixel.
func (m *ConfidenceMask) Confidence() []uint8 {
	n := min(m.Len(), len(m.Pix)/BytesPerPixel)
	out := make([]uint8, n)
	for i := range out {
		out[i] = m.Pix[i*BytesPerPixel+MaskChannel]
	}
	return out
}

// PreviousMask holds the raw confidence bytes of the most recent mask seen
// by the compositor. A nil PreviousMask means no mask has been seen since
// the last reset.
type PreviousMask []uint8

// Frame is one unit of pipeline input: the captured pixels, the optional
// mask for the same instant, and the time the caller spent producing the
// mask (reported back in the PerfSnapshot).
type Frame struct {
	Pixels   *PixelBuffer
	Mask     *ConfidenceMask
	MaskTime time.Duration
}
