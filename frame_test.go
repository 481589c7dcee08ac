package asciicam

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wbrown/asciicam/imageutil"
)

func TestPixelBufferFromImageGray(t *testing.T) {
	t.Parallel()
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 77})

	buf := PixelBufferFromImage(gray)
	if err := buf.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	o := (1*3 + 2) * BytesPerPixel
	if got := buf.Pix[o : o+4]; got[0] != 77 || got[1] != 77 || got[2] != 77 || got[3] != 255 {
		t.Errorf("Expected opaque gray 77, got %v", got)
	}
}

func TestPixelBufferFromRGBASubImage(t *testing.T) {
	t.Parallel()
	full := imageutil.CreateGradientImage(16, 4)
	sub := &imageutil.RGBAImage{RGBA: full.SubImage(image.Rect(4, 1, 8, 3)).(*image.RGBA)}

	buf := PixelBufferFromRGBA(sub)
	if buf.Width != 4 || buf.Height != 2 {
		t.Fatalf("Expected 4x2, got %dx%d", buf.Width, buf.Height)
	}
	if err := buf.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Pix[0] != full.GetRGB(4, 1).R {
		t.Errorf("Expected sub-image origin pixel, got %d", buf.Pix[0])
	}
}

func TestPixelBufferValidate(t *testing.T) {
	t.Parallel()
	var nilBuf *PixelBuffer
	if err := nilBuf.Validate(); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("Expected ErrInvalidBuffer for nil, got %v", err)
	}
	short := &PixelBuffer{Width: 2, Height: 2, Pix: make([]uint8, 15)}
	if err := short.Validate(); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("Expected ErrInvalidBuffer for short slice, got %v", err)
	}
	if err := NewPixelBuffer(0, 0).Validate(); err != nil {
		t.Errorf("An empty buffer is consistent, got %v", err)
	}
}

func TestPixelBufferCloneAndImage(t *testing.T) {
	t.Parallel()
	buf := solidBuffer(2, 2, 10, 20, 30)
	clone := buf.Clone()
	clone.Pix[0] = 99
	if buf.Pix[0] != 10 {
		t.Error("Modifying a clone should not affect the original")
	}

	img := buf.Image()
	img.Pix[0] = 42
	if buf.Pix[0] != 42 {
		t.Error("Image should share pixels with the buffer")
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}

func TestConfidenceMaskFromGray(t *testing.T) {
	t.Parallel()
	conf := []uint8{0, 64, 128, 255}
	m := NewConfidenceMaskFromGray(2, 2, conf)

	if m.Len() != 4 || len(m.Pix) != 16 {
		t.Fatalf("Unexpected mask size %d / %d bytes", m.Len(), len(m.Pix))
	}
	got := m.Confidence()
	for i := range conf {
		if got[i] != conf[i] {
			t.Errorf("Pixel %d: expected %d, got %d", i, conf[i], got[i])
		}
	}
	if m.Pix[2*BytesPerPixel+MaskChannel] != 128 {
		t.Error("Confidence should be stored in the mask channel")
	}
}
