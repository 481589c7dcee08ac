package asciicam

import (
	"math"
	"strings"

	"github.com/wbrown/asciicam/imageutil"
)

const (
	// SharpenAmount is the unsharp-mask strength: how far each cell is
	// pushed away from its 3x3 neighborhood mean.
	SharpenAmount = 0.5

	// MaxLightness is the top of the CIE L* scale.
	MaxLightness = 100.0
)

// Sharpen applies an unsharp mask to the grid. The blur is the mean of the
// up-to-nine cells around each cell; cells on the border average only the
// neighbors that exist. Results are clamped to [0, 100].
func Sharpen(grid *LightnessGrid) *LightnessGrid {
	blurred := imageutil.BoxMean(grid.Values, grid.Width, grid.Height, 1)

	out := NewLightnessGrid(grid.Width, grid.Height)
	for i, original := range grid.Values {
		v := original + SharpenAmount*(original-blurred[i])
		out.Values[i] = math.Max(0, math.Min(MaxLightness, v))
	}
	return out
}

// RampIndex maps a lightness in [0, 100] to a position in a ramp of
// length n. Values are floored; only exactly 100 reaches the last
// character.
func RampIndex(lightness float64, n int) int {
	if n <= 1 {
		return 0
	}
	idx := int(math.Floor(lightness/MaxLightness*float64(n-1)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// RenderText sharpens the grid and maps every cell to a ramp character.
// Each row, including the last, ends with a newline.
func RenderText(grid *LightnessGrid, ramp Ramp) string {
	if grid == nil || grid.Width == 0 || grid.Height == 0 {
		return ""
	}
	if ramp.Len() == 0 {
		ramp = DefaultRamp()
	}
	sharp := Sharpen(grid)

	var sb strings.Builder
	sb.Grow(grid.Height * (grid.Width + 1) * maxRuneBytes(ramp))
	for y := 0; y < grid.Height; y++ {
		row := sharp.Values[y*grid.Width : (y+1)*grid.Width]
		for _, v := range row {
			sb.WriteRune(ramp.Chars[RampIndex(v, ramp.Len())])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func maxRuneBytes(ramp Ramp) int {
	n := 1
	for _, r := range ramp.Chars {
		n = max(n, len(string(r)))
	}
	return n
}
