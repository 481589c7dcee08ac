package imageutil

import "math"

// BT.709 luma coefficients for linear-light RGB.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// CIE L* constants: the linear segment is used below Epsilon.
const (
	LStarEpsilon = 0.008856
	LStarKappa   = 903.3
)

// sRGBToLinearLUT holds the decoded value of every 8-bit sRGB level.
var sRGBToLinearLUT [256]float64

func init() {
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = SRGBToLinearFloat(float64(i) / 255)
	}
}

// SRGBToLinearFloat decodes a gamma-encoded sRGB value in [0, 1] to
// linear light.
func SRGBToLinearFloat(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// SRGBToLinear decodes an 8-bit sRGB level using a lookup table.
func SRGBToLinear(s uint8) float64 {
	return sRGBToLinearLUT[s]
}

// Luminance709 combines linear-light channels into relative luminance Y.
func Luminance709(r, g, b float64) float64 {
	return LumaR*r + LumaG*g + LumaB*b
}

// LStar converts relative luminance Y in [0, 1] to CIE lightness in
// [0, 100].
func LStar(y float64) float64 {
	if y > LStarEpsilon {
		return 116*math.Cbrt(y) - 16
	}
	return LStarKappa * y
}

// RGBLightness returns the CIE L* of an uncorrected sRGB color.
func RGBLightness(c RGB) float64 {
	return LStar(Luminance709(
		SRGBToLinear(c.R), SRGBToLinear(c.G), SRGBToLinear(c.B)))
}
