// Package glyphs rasterizes characters with a TrueType font and measures
// how much of a terminal cell each one inks. It is used to check that a
// character ramp really runs from light to dense for a given font.
package glyphs

import (
	"fmt"
	"image"
	"math/bits"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// Options sets the cell geometry glyphs are rendered into.
type Options struct {
	Width  int     // cell width in pixels
	Height int     // cell height in pixels
	Size   float64 // font size in points at 72 DPI
}

// DefaultOptions is an 8x16 cell, the usual 1:2 terminal aspect.
var DefaultOptions = Options{Width: 8, Height: 16, Size: 13}

// Rasterizer renders single characters into a fixed-size cell.
type Rasterizer struct {
	ttf      *truetype.Font
	face     font.Face
	opts     Options
	baseline int
}

// NewRasterizer parses a TrueType font.
func NewRasterizer(ttfData []byte, opts Options) (*Rasterizer, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Size <= 0 {
		return nil, fmt.Errorf("glyphs: invalid options %+v", opts)
	}
	ttf, err := freetype.ParseFont(ttfData)
	if err != nil {
		return nil, fmt.Errorf("glyphs: parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	return &Rasterizer{
		ttf:      ttf,
		face:     face,
		opts:     opts,
		baseline: (opts.Height + ascent - descent) / 2,
	}, nil
}

// GoMono returns a rasterizer for the Go Mono font.
func GoMono(opts Options) (*Rasterizer, error) {
	return NewRasterizer(gomono.TTF, opts)
}

// LoadFont reads a .ttf file.
func LoadFont(path string, opts Options) (*Rasterizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRasterizer(data, opts)
}

// Has reports whether the font has a glyph for r. Space always counts.
func (g *Rasterizer) Has(r rune) bool {
	return r == ' ' || g.ttf.Index(r) != 0
}

// Render draws r centered in a cell and returns its coverage mask.
func (g *Rasterizer) Render(r rune) (*image.Alpha, error) {
	img := image.NewAlpha(image.Rect(0, 0, g.opts.Width, g.opts.Height))
	if r == ' ' {
		return img, nil
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(g.ttf)
	ctx.SetFontSize(g.opts.Size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	advance, _ := g.face.GlyphAdvance(r)
	pt := fixed.Point26_6{
		X: (fixed.I(g.opts.Width) - advance) / 2,
		Y: fixed.I(g.baseline),
	}
	if _, err := ctx.DrawString(string(r), pt); err != nil {
		return nil, fmt.Errorf("glyphs: draw %q: %w", r, err)
	}
	return img, nil
}

// Coverage returns the fraction of the cell inked by r, from 0 for an
// empty cell to 1 for a solid one.
func (g *Rasterizer) Coverage(r rune) (float64, error) {
	img, err := g.Render(r)
	if err != nil {
		return 0, err
	}
	var sum int
	for _, a := range img.Pix {
		sum += int(a)
	}
	return float64(sum) / float64(255*len(img.Pix)), nil
}

// Bitmap is an 8x8 thresholded glyph, one bit per pixel, row-major from
// the least significant bit.
type Bitmap uint64

// Bitmap downsamples r to 8x8 and keeps pixels whose mean coverage is
// above 25%.
func (g *Rasterizer) Bitmap(r rune) (Bitmap, error) {
	img, err := g.Render(r)
	if err != nil {
		return 0, err
	}
	w, h := g.opts.Width, g.opts.Height
	var bm Bitmap
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			x0, x1 := bx*w/8, max((bx+1)*w/8, bx*w/8+1)
			y0, y1 := by*h/8, max((by+1)*h/8, by*h/8+1)
			var sum, n int
			for y := y0; y < y1 && y < h; y++ {
				for x := x0; x < x1 && x < w; x++ {
					sum += int(img.AlphaAt(x, y).A)
					n++
				}
			}
			if n > 0 && sum > 64*n {
				bm |= 1 << (by*8 + bx)
			}
		}
	}
	return bm, nil
}

// Bit reports whether pixel (x, y) is set.
func (b Bitmap) Bit(x, y int) bool {
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return false
	}
	return b&(1<<(y*8+x)) != 0
}

// Count returns the number of set pixels.
func (b Bitmap) Count() int {
	return bits.OnesCount64(uint64(b))
}

// String draws the bitmap as eight lines of '#' and '.'.
func (b Bitmap) String() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if b.Bit(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
