package asciicam

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinRamps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   RampName
		label  string
		length int
		first  rune
		last   rune
	}{
		{RampDots, "dots", 1, '.', '.'},
		{RampMinimal, "minimal", 10, ' ', '@'},
		{RampStandard, "standard", 70, ' ', '$'},
		{RampBlocks, "blocks", 5, ' ', '█'},
	}
	for _, tt := range tests {
		r := tt.name.Ramp()
		if r.Name != tt.label || tt.name.String() != tt.label {
			t.Errorf("Expected name %q, got %q", tt.label, r.Name)
		}
		if r.Len() != tt.length {
			t.Errorf("%s: expected %d characters, got %d", tt.label, tt.length, r.Len())
		}
		if r.Chars[0] != tt.first || r.Chars[r.Len()-1] != tt.last {
			t.Errorf("%s: expected %q..%q, got %q..%q", tt.label,
				tt.first, tt.last, r.Chars[0], r.Chars[r.Len()-1])
		}
	}
}

func TestDefaultRampIsStandard(t *testing.T) {
	t.Parallel()
	if DefaultRamp().Name != "standard" {
		t.Errorf("Expected standard ramp, got %q", DefaultRamp().Name)
	}
}

func TestUnknownRampNameFallsBack(t *testing.T) {
	t.Parallel()
	if r := RampName(42).Ramp(); r.Name != "standard" {
		t.Errorf("Expected standard ramp, got %q", r.Name)
	}
}

func TestLookupRamp(t *testing.T) {
	t.Parallel()
	r, err := LookupRamp("  Blocks ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.String() != " ░▒▓█" {
		t.Errorf("Expected block ramp, got %q", r.String())
	}

	_, err = LookupRamp("braille")
	if !errors.Is(err, ErrUnknownRamp) {
		t.Fatalf("Expected ErrUnknownRamp, got %v", err)
	}
	if !strings.Contains(err.Error(), "minimal") {
		t.Errorf("Expected error to list available ramps, got %q", err)
	}
}

func TestNewRamp(t *testing.T) {
	t.Parallel()
	r, err := NewRamp("custom", " xX")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Len() != 3 || r.Name != "custom" {
		t.Errorf("Unexpected ramp %+v", r)
	}
	if _, err := NewRamp("empty", ""); !errors.Is(err, ErrEmptyRamp) {
		t.Errorf("Expected ErrEmptyRamp, got %v", err)
	}
}

func TestRampsIsACopy(t *testing.T) {
	t.Parallel()
	all := Ramps()
	if len(all) != len(RampNames()) {
		t.Fatalf("Expected %d ramps, got %d", len(RampNames()), len(all))
	}
	all[0] = Ramp{Name: "changed"}
	if RampDots.Ramp().Name != "dots" {
		t.Error("Modifying Ramps() result changed the registry")
	}
}
