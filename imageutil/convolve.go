package imageutil

import "math"

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// BoxKernel returns a size x size mean filter.
func BoxKernel(size int) *Kernel {
	w := 1 / float64(size*size)
	values := make([][]float64, size)
	for y := range values {
		values[y] = make([]float64, size)
		for x := range values[y] {
			values[y][x] = w
		}
	}
	return NewKernel(values)
}

// SharpeningKernel returns a mild 3x3 sharpening kernel.
func SharpeningKernel() *Kernel {
	return NewKernel([][]float64{
		{0, -0.5, 0},
		{-0.5, 3, -0.5},
		{0, -0.5, 0},
	})
}

// BorderMode selects how a convolution treats taps outside the image.
type BorderMode int

const (
	// BorderReplicate reads the nearest edge value for out-of-range taps.
	BorderReplicate BorderMode = iota

	// BorderShrink skips out-of-range taps and renormalizes by the weight
	// of the taps that were used. For a box kernel this averages only the
	// neighbors that exist.
	BorderShrink
)

// ConvolveFloat applies a kernel to a row-major width x height plane of
// float values and returns a new plane. Values are not clamped.
func ConvolveFloat(src []float64, width, height int, kernel *Kernel, border BorderMode) []float64 {
	dst := make([]float64, len(src))
	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum, weight float64

			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sx := x + kx - halfKW
					sy := y + ky - halfKH
					k := kernel.Values[ky][kx]

					if sx < 0 || sx >= width || sy < 0 || sy >= height {
						if border == BorderShrink {
							continue
						}
						sx = clampInt(sx, 0, width-1)
						sy = clampInt(sy, 0, height-1)
					}
					sum += src[sy*width+sx] * k
					weight += k
				}
			}

			if border == BorderShrink && weight != 0 {
				sum /= weight
			}
			dst[y*width+x] = sum
		}
	}

	return dst
}

// BoxMean replaces each value of a row-major width x height plane with the
// mean of the in-bounds values within radius cells of it. Values are summed
// before dividing, so a uniform plane of integers comes back unchanged.
func BoxMean(src []float64, width, height, radius int) []float64 {
	dst := make([]float64, len(src))
	for y := 0; y < height; y++ {
		y0, y1 := max(0, y-radius), min(height-1, y+radius)
		for x := 0; x < width; x++ {
			x0, x1 := max(0, x-radius), min(width-1, x+radius)
			var sum float64
			for sy := y0; sy <= y1; sy++ {
				for sx := x0; sx <= x1; sx++ {
					sum += src[sy*width+sx]
				}
			}
			dst[y*width+x] = sum / float64((y1-y0+1)*(x1-x0+1))
		}
	}
	return dst
}

// Convolve applies a convolution kernel to an RGBA image with border
// replication. Alpha is copied from the source.
func Convolve(img *RGBAImage, kernel *Kernel) *RGBAImage {
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sumR, sumG, sumB float64

			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sx := clampInt(x+kx-halfKW, 0, width-1)
					sy := clampInt(y+ky-halfKH, 0, height-1)

					c := img.RGBAAt(sx, sy)
					k := kernel.Values[ky][kx]

					sumR += float64(c.R) * k
					sumG += float64(c.G) * k
					sumB += float64(c.B) * k
				}
			}

			o := dst.PixOffset(x, y)
			dst.Pix[o] = ClampUint8(sumR)
			dst.Pix[o+1] = ClampUint8(sumG)
			dst.Pix[o+2] = ClampUint8(sumB)
			dst.Pix[o+3] = img.RGBAAt(x, y).A
		}
	}

	return dst
}

// Sharpen applies SharpeningKernel to an RGBA image.
func Sharpen(img *RGBAImage) *RGBAImage {
	return Convolve(img, SharpeningKernel())
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampUint8 rounds a float to the nearest integer and clamps it to
// [0, 255].
func ClampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
