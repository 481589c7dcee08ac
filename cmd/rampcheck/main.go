// Command rampcheck measures how much ink each character of a ramp puts
// in a terminal cell and reports places where the ramp gets lighter
// instead of denser.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/glyphs"
)

func main() {
	fontPath := flag.String("font", "",
		"TrueType font to measure (default: Go Mono)")
	rampName := flag.String("ramp", "all",
		"Ramp to check, or 'all'")
	chars := flag.String("chars", "",
		"Check this custom light-to-dark string instead of a named ramp")
	tolerance := flag.Float64("tolerance", 0.002,
		"Coverage drop allowed between neighbors")
	cellW := flag.Int("cellwidth", glyphs.DefaultOptions.Width,
		"Cell width in pixels")
	cellH := flag.Int("cellheight", glyphs.DefaultOptions.Height,
		"Cell height in pixels")
	size := flag.Float64("size", glyphs.DefaultOptions.Size,
		"Font size in points")
	bitmaps := flag.Bool("bitmaps", false,
		"Also print an 8x8 bitmap of each character")
	flag.Parse()

	opts := glyphs.Options{Width: *cellW, Height: *cellH, Size: *size}
	var (
		g   *glyphs.Rasterizer
		err error
	)
	if *fontPath == "" {
		g, err = glyphs.GoMono(opts)
	} else {
		g, err = glyphs.LoadFont(*fontPath, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading font: %v\n", err)
		os.Exit(1)
	}

	var ramps []asciicam.Ramp
	switch {
	case *chars != "":
		r, err := asciicam.NewRamp("custom", *chars)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		ramps = []asciicam.Ramp{r}
	case *rampName == "all":
		ramps = asciicam.Ramps()
	default:
		r, err := asciicam.LookupRamp(*rampName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		ramps = []asciicam.Ramp{r}
	}

	ok := true
	for _, ramp := range ramps {
		rep, err := glyphs.CheckRamp(g, ramp, *tolerance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking %s: %v\n", ramp.Name, err)
			os.Exit(1)
		}
		fmt.Print(rep)
		if *bitmaps {
			for _, r := range ramp.Chars {
				bm, err := g.Bitmap(r)
				if err != nil {
					continue
				}
				fmt.Printf("%q\n%s", r, bm)
			}
		}
		if rep.Monotonic() {
			fmt.Println("OK")
		} else {
			fmt.Println("NOT MONOTONIC")
			ok = false
		}
		fmt.Println()
	}
	if !ok {
		os.Exit(1)
	}
}
