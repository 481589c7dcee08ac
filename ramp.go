package asciicam

import (
	"fmt"
	"strings"
)

// RampName identifies one of the built-in character ramps.
type RampName int

const (
	RampDots RampName = iota
	RampMinimal
	RampStandard
	RampBlocks
)

// Ramp is an ordered run of characters from visually lightest (index 0)
// to densest (last index).
type Ramp struct {
	Name  string
	Chars []rune
}

// Len returns the number of characters in the ramp.
func (r Ramp) Len() int {
	return len(r.Chars)
}

// String returns the ramp characters in order.
func (r Ramp) String() string {
	return string(r.Chars)
}

// NewRamp builds a custom ramp from a string ordered light to dark.
func NewRamp(name, chars string) (Ramp, error) {
	if chars == "" {
		return Ramp{}, fmt.Errorf("%w: %q", ErrEmptyRamp, name)
	}
	return Ramp{Name: name, Chars: []rune(chars)}, nil
}

var ramps = [...]Ramp{
	RampDots:    {Name: "dots", Chars: []rune(".")},
	RampMinimal: {Name: "minimal", Chars: []rune(" .:-=+*#%@")},
	RampStandard: {Name: "standard", Chars: []rune(
		" .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$")},
	RampBlocks: {Name: "blocks", Chars: []rune(" ░▒▓█")},
}

// Ramp returns the registered ramp for n. Unknown values fall back to the
// standard ramp.
func (n RampName) Ramp() Ramp {
	if n < 0 || int(n) >= len(ramps) {
		return ramps[RampStandard]
	}
	return ramps[n]
}

// String returns the registry name.
func (n RampName) String() string {
	return n.Ramp().Name
}

// DefaultRamp is the ramp used when none is configured.
func DefaultRamp() Ramp {
	return ramps[RampStandard]
}

// LookupRamp resolves a registry name, ignoring case and surrounding
// whitespace.
func LookupRamp(name string) (Ramp, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range ramps {
		if r.Name == key {
			return r, nil
		}
	}
	return Ramp{}, fmt.Errorf("%w: %q (available: %s)",
		ErrUnknownRamp, name, strings.Join(RampNames(), ", "))
}

// RampNames lists the registered ramp names in registry order.
func RampNames() []string {
	names := make([]string, len(ramps))
	for i, r := range ramps {
		names[i] = r.Name
	}
	return names
}

// Ramps returns every registered ramp in registry order.
func Ramps() []Ramp {
	out := make([]Ramp, len(ramps))
	copy(out, ramps[:])
	return out
}
