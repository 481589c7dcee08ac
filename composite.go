package asciicam

import (
	"math"

	"github.com/wbrown/asciicam/imageutil"
)

const (
	// CurrentMaskWeight and PreviousMaskWeight blend the confidence of the
	// current mask with the raw confidence of the previous one.
	CurrentMaskWeight  = 0.7
	PreviousMaskWeight = 0.3

	// MaskGamma lifts partially confident pixels so the matte edge fades
	// instead of cutting off.
	MaskGamma = 0.8

	// alphaSteps is the resolution of the alpha table. Smoothed confidence
	// is 0.7c + 0.3p, so ten times it is the integer 7c + 3p in [0, 2550].
	alphaSteps = 2550
)

// maskAlpha maps 10x the (smoothed) confidence to (c/255)^MaskGamma.
var maskAlpha [alphaSteps + 1]float64

func init() {
	for i := range maskAlpha {
		maskAlpha[i] = math.Pow(float64(i)/alphaSteps, MaskGamma)
	}
}

// Composite attenuates background pixels of a frame toward black using a
// foreground confidence mask.
//
// With no mask, or a mask whose dimensions differ from the frame, the
// pixels and previous mask are returned untouched. Otherwise each pixel's
// R, G and B are scaled by (c'/255)^0.8 where c' is the mask confidence,
// smoothed against previous when previous covers the same number of
// pixels. Alpha is kept. The returned PreviousMask is the raw confidence
// of mask, so smoothing always looks back exactly one frame.
//
// pixels is never modified; a masked frame is a new buffer.
func Composite(
	pixels *PixelBuffer,
	mask *ConfidenceMask,
	previous PreviousMask,
) (*PixelBuffer, PreviousMask) {
	if mask == nil || pixels == nil {
		return pixels, previous
	}
	if mask.Width != pixels.Width || mask.Height != pixels.Height {
		return pixels, previous
	}

	n := min(pixels.Len(), mask.Len(),
		len(pixels.Pix)/BytesPerPixel, len(mask.Pix)/BytesPerPixel)
	smooth := previous != nil && len(previous) == mask.Len()

	out := &PixelBuffer{
		Width:  pixels.Width,
		Height: pixels.Height,
		Pix:    make([]uint8, len(pixels.Pix)),
	}
	copy(out.Pix, pixels.Pix)
	raw := make(PreviousMask, mask.Len())

	for i := 0; i < n; i++ {
		o := i * BytesPerPixel
		c := int(mask.Pix[o+MaskChannel])
		raw[i] = uint8(c)

		key := 10 * c
		if smooth {
			key = 7*c + 3*int(previous[i])
		}
		a := maskAlpha[key]

		out.Pix[o] = imageutil.ClampUint8(float64(pixels.Pix[o]) * a)
		out.Pix[o+1] = imageutil.ClampUint8(float64(pixels.Pix[o+1]) * a)
		out.Pix[o+2] = imageutil.ClampUint8(float64(pixels.Pix[o+2]) * a)
	}
	return out, raw
}

// SmoothedConfidence returns the confidence Composite uses for a pixel
// with current confidence c and previous raw confidence p.
func SmoothedConfidence(c, p uint8) float64 {
	return CurrentMaskWeight*float64(c) + PreviousMaskWeight*float64(p)
}

// MaskAlpha returns the gamma-lifted alpha for a confidence in [0, 255].
func MaskAlpha(confidence float64) float64 {
	if confidence <= 0 {
		return 0
	}
	if confidence >= 255 {
		return 1
	}
	return math.Pow(confidence/255, MaskGamma)
}
