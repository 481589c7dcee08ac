package asciicam

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/wbrown/asciicam/imageutil"
)

// CharAspect is the assumed height:width ratio of a terminal character
// cell. A cell covers CharAspect times as many source rows as columns.
const CharAspect = 2

// GridGeometry describes how a source image is divided into character
// cells. Pixels to the right of GridWidth*CellWidth and below
// GridHeight*CellHeight are not sampled.
type GridGeometry struct {
	CellWidth  int
	CellHeight int
	GridWidth  int
	GridHeight int
}

// ComputeGeometry derives the cell size and grid height for an image of
// width x height pixels rendered gridWidth characters wide.
func ComputeGeometry(width, height, gridWidth int) (GridGeometry, error) {
	if gridWidth <= 0 {
		return GridGeometry{}, fmt.Errorf("%w: %d", ErrInvalidGridWidth, gridWidth)
	}
	g := GridGeometry{GridWidth: gridWidth}
	g.CellWidth = width / gridWidth
	g.CellHeight = g.CellWidth * CharAspect
	if g.CellWidth == 0 || g.CellHeight == 0 {
		return GridGeometry{}, fmt.Errorf("%w: %dx%d image, grid width %d",
			ErrImageTooSmall, width, height, gridWidth)
	}
	g.GridHeight = height / g.CellHeight
	if g.GridHeight == 0 {
		return GridGeometry{}, fmt.Errorf("%w: %dx%d image, cell height %d",
			ErrImageTooSmall, width, height, g.CellHeight)
	}
	return g, nil
}

// Cells returns the number of cells in the grid.
func (g GridGeometry) Cells() int {
	return g.GridWidth * g.GridHeight
}

// LightnessGrid holds one CIE L* value (0-100) per character cell,
// row-major.
type LightnessGrid struct {
	Width  int
	Height int
	Values []float64
}

// NewLightnessGrid allocates a zeroed grid.
func NewLightnessGrid(width, height int) *LightnessGrid {
	return &LightnessGrid{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At returns the value of cell (x, y).
func (g *LightnessGrid) At(x, y int) float64 {
	return g.Values[y*g.Width+x]
}

// channelTable maps a raw 8-bit channel value to its linear-light value
// after color correction. Building three 256-entry tables per frame keeps
// math.Pow out of the per-pixel loop.
type channelTable [256]float64

func newChannelTable(wb, temp float64) *channelTable {
	var t channelTable
	for v := range t {
		corrected := min(255, float64(v)*wb*temp)
		t[v] = imageutil.SRGBToLinearFloat(corrected / 255)
	}
	return &t
}

// PixelLightness returns the CIE L* of one pixel after applying the
// correction. It is the per-pixel function ExtractLightness averages.
func PixelLightness(r, g, b uint8, cc ColorCorrection) float64 {
	lr := imageutil.SRGBToLinearFloat(min(255, float64(r)*cc.WbR*cc.TempR) / 255)
	lg := imageutil.SRGBToLinearFloat(min(255, float64(g)*cc.WbG*cc.TempG) / 255)
	lb := imageutil.SRGBToLinearFloat(min(255, float64(b)*cc.WbB*cc.TempB) / 255)
	return imageutil.LStar(imageutil.Luminance709(lr, lg, lb))
}

// ExtractLightness downsamples a frame into a grid of mean perceptual
// lightness, gridWidth cells wide. Rows of cells are split across workers
// goroutines; workers <= 0 means GOMAXPROCS. The result does not depend on
// the worker count.
func ExtractLightness(
	pixels *PixelBuffer,
	cc ColorCorrection,
	gridWidth int,
	workers int,
) (*LightnessGrid, GridGeometry, error) {
	if err := pixels.Validate(); err != nil {
		return nil, GridGeometry{}, err
	}
	geo, err := ComputeGeometry(pixels.Width, pixels.Height, gridWidth)
	if err != nil {
		return nil, GridGeometry{}, err
	}

	tables := [3]*channelTable{
		newChannelTable(cc.WbR, cc.TempR),
		newChannelTable(cc.WbG, cc.TempG),
		newChannelTable(cc.WbB, cc.TempB),
	}
	grid := NewLightnessGrid(geo.GridWidth, geo.GridHeight)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, geo.GridHeight)

	if workers == 1 {
		extractRows(pixels, geo, &tables, grid, 0, geo.GridHeight)
		return grid, geo, nil
	}

	var wg sync.WaitGroup
	band := (geo.GridHeight + workers - 1) / workers
	for start := 0; start < geo.GridHeight; start += band {
		end := min(start+band, geo.GridHeight)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			extractRows(pixels, geo, &tables, grid, start, end)
		}(start, end)
	}
	wg.Wait()

	return grid, geo, nil
}

// extractRows fills cell rows [startRow, endRow) of grid. Each call writes
// a disjoint range of grid.Values.
func extractRows(
	pixels *PixelBuffer,
	geo GridGeometry,
	tables *[3]*channelTable,
	grid *LightnessGrid,
	startRow, endRow int,
) {
	stride := pixels.Width * BytesPerPixel
	cellPixels := float64(geo.CellWidth * geo.CellHeight)
	tr, tg, tb := tables[0], tables[1], tables[2]

	for cy := startRow; cy < endRow; cy++ {
		for cx := 0; cx < geo.GridWidth; cx++ {
			var sum float64
			x0 := cx * geo.CellWidth
			y0 := cy * geo.CellHeight
			for y := y0; y < y0+geo.CellHeight; y++ {
				row := pixels.Pix[y*stride : (y+1)*stride]
				for x := x0; x < x0+geo.CellWidth; x++ {
					o := x * BytesPerPixel
					luma := imageutil.Luminance709(
						tr[row[o]], tg[row[o+1]], tb[row[o+2]])
					sum += imageutil.LStar(luma)
				}
			}
			grid.Values[cy*geo.GridWidth+cx] = sum / cellPixels
		}
	}
}
