package capture

import (
	"testing"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/imageutil"
)

func TestChangeDetector(t *testing.T) {
	t.Parallel()
	d := NewChangeDetector(DefaultMaxHashDistance)
	bars := asciicam.PixelBufferFromRGBA(imageutil.CreateColorBarsImage(128, 64))
	checker := asciicam.PixelBufferFromRGBA(imageutil.CreateCheckerboardImage(128, 64, 16))

	changed, _, err := d.Changed(bars)
	if err != nil || !changed {
		t.Fatalf("First frame should be changed, got %v (%v)", changed, err)
	}

	changed, dist, err := d.Changed(bars.Clone())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if changed || dist != 0 {
		t.Errorf("Identical frame should be unchanged, got changed=%v dist=%d", changed, dist)
	}

	changed, dist, err = d.Changed(checker)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !changed {
		t.Errorf("Different picture should be changed, distance %d", dist)
	}

	d.Reset()
	if changed, _, _ := d.Changed(checker); !changed {
		t.Error("First frame after Reset should be changed")
	}
}

func TestNewChangeDetectorDefault(t *testing.T) {
	t.Parallel()
	if d := NewChangeDetector(-1); d.maxDistance != DefaultMaxHashDistance {
		t.Errorf("Expected default distance, got %d", d.maxDistance)
	}
}
