package glyphs

import (
	"fmt"
	"strings"

	"github.com/wbrown/asciicam"
)

// Entry is the measured coverage of one ramp character.
type Entry struct {
	Rune     rune
	Coverage float64
	Missing  bool // the font has no glyph for Rune
}

// Inversion marks a ramp position whose character inks less than the one
// before it.
type Inversion struct {
	Index int
	Prev  Entry
	Next  Entry
}

// Report is the result of CheckRamp.
type Report struct {
	Ramp       string
	Entries    []Entry
	Inversions []Inversion
}

// Monotonic reports whether coverage never decreases along the ramp and
// every character exists in the font.
func (r Report) Monotonic() bool {
	if len(r.Inversions) > 0 {
		return false
	}
	for _, e := range r.Entries {
		if e.Missing {
			return false
		}
	}
	return true
}

// String formats the report as a table.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ramp %s (%d characters)\n", r.Ramp, len(r.Entries))
	for i, e := range r.Entries {
		flag := ""
		if e.Missing {
			flag = " missing"
		}
		fmt.Fprintf(&sb, "%3d  %q  %.4f%s\n", i, e.Rune, e.Coverage, flag)
	}
	for _, inv := range r.Inversions {
		fmt.Fprintf(&sb, "inversion at %d: %q %.4f > %q %.4f\n",
			inv.Index, inv.Prev.Rune, inv.Prev.Coverage, inv.Next.Rune, inv.Next.Coverage)
	}
	return sb.String()
}

// CheckRamp measures every character of ramp and records each place where
// coverage drops by more than tolerance from one character to the next.
func CheckRamp(g *Rasterizer, ramp asciicam.Ramp, tolerance float64) (Report, error) {
	rep := Report{Ramp: ramp.Name, Entries: make([]Entry, 0, ramp.Len())}
	for i, r := range ramp.Chars {
		e := Entry{Rune: r, Missing: !g.Has(r)}
		if !e.Missing {
			c, err := g.Coverage(r)
			if err != nil {
				return Report{}, err
			}
			e.Coverage = c
		}
		if i > 0 {
			prev := rep.Entries[i-1]
			if prev.Coverage-e.Coverage > tolerance {
				rep.Inversions = append(rep.Inversions, Inversion{Index: i, Prev: prev, Next: e})
			}
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep, nil
}
