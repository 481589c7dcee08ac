package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom, the closest match to OpenCV's
	// INTER_AREA for downscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	interp.scaler().Scale(dst.RGBA, image.Rect(0, 0, width, height),
		img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeToWidth resizes an image to the specified width while maintaining
// aspect ratio.
func ResizeToWidth(img *RGBAImage, width int, interp Interpolation) *RGBAImage {
	aspectRatio := float64(img.Width()) / float64(img.Height())
	height := max(1, int(float64(width)/aspectRatio))
	return Resize(img, width, height, interp)
}

// PrescaleForGrid shrinks an image that is far larger than a grid of
// gridWidth characters needs, so that each character cell covers at most
// maxCellWidth source columns. The downscale is followed by a mild
// sharpen to recover edge contrast lost to interpolation. Images that are
// already small enough are returned as is.
func PrescaleForGrid(img *RGBAImage, gridWidth, maxCellWidth int) *RGBAImage {
	if gridWidth <= 0 || maxCellWidth <= 0 {
		return img
	}
	target := gridWidth * maxCellWidth
	if img.Width() <= target {
		return img
	}
	return Sharpen(ResizeToWidth(img, target, InterpolationArea))
}
