package asciicam

// Color temperature compensation constants. These are empirical tuning
// values, not derived from a colorimetric model.
const (
	// WarmRatio and CoolRatio bound the (R+G)/(B+1) mean ratio treated as
	// neutral.
	WarmRatio = 2.5
	CoolRatio = 1.5

	// TempCut and TempBoost are the channel gains applied to the red and
	// blue channels of a warm or cool scene.
	TempCut   = 0.92
	TempBoost = 1.08

	// CalibrationStride samples every Nth pixel when estimating the scene
	// means.
	CalibrationStride = 4
)

// ColorCorrection holds per-channel gains applied before lightness
// extraction: a Gray-World white balance and a coarse temperature
// correction. Corrected channel = value * Wb * Temp, clamped to 255.
type ColorCorrection struct {
	WbR, WbG, WbB       float64
	TempR, TempG, TempB float64
}

// NeutralCorrection leaves every channel unchanged.
var NeutralCorrection = ColorCorrection{
	WbR: 1, WbG: 1, WbB: 1,
	TempR: 1, TempG: 1, TempB: 1,
}

// Gains returns the combined multiplier for each channel.
func (c ColorCorrection) Gains() (r, g, b float64) {
	return c.WbR * c.TempR, c.WbG * c.TempG, c.WbB * c.TempB
}

// Calibrate estimates the color bias of a frame from every
// CalibrationStride-th pixel. It has no memory of earlier frames.
func Calibrate(pixels *PixelBuffer) ColorCorrection {
	var sumR, sumG, sumB float64
	var count int
	if pixels != nil {
		step := CalibrationStride * BytesPerPixel
		for o := 0; o+2 < len(pixels.Pix); o += step {
			sumR += float64(pixels.Pix[o])
			sumG += float64(pixels.Pix[o+1])
			sumB += float64(pixels.Pix[o+2])
			count++
		}
	}

	var meanR, meanG, meanB float64
	if count > 0 {
		meanR = sumR / float64(count)
		meanG = sumG / float64(count)
		meanB = sumB / float64(count)
	}
	gray := (meanR + meanG + meanB) / 3

	cc := ColorCorrection{
		WbR:   grayWorldGain(gray, meanR),
		WbG:   grayWorldGain(gray, meanG),
		WbB:   grayWorldGain(gray, meanB),
		TempR: 1,
		TempG: 1,
		TempB: 1,
	}

	ratio := (meanR + meanG) / (meanB + 1)
	switch {
	case ratio > WarmRatio:
		cc.TempR, cc.TempB = TempCut, TempBoost
	case ratio < CoolRatio:
		cc.TempR, cc.TempB = TempBoost, TempCut
	}
	return cc
}

func grayWorldGain(gray, mean float64) float64 {
	if mean > 0 {
		return gray / mean
	}
	return 1
}
