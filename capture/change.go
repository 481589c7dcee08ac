package capture

import (
	"fmt"

	"github.com/corona10/goimagehash"

	"github.com/wbrown/asciicam"
)

// DefaultMaxHashDistance is the largest perceptual-hash Hamming distance
// at which two frames count as the same picture. Out of 64 bits, 3 is
// roughly 95% similarity.
const DefaultMaxHashDistance = 3

// ChangeDetector compares each frame against the last frame it reported
// as changed, using a 64-bit perceptual hash.
type ChangeDetector struct {
	maxDistance int
	lastHash    *goimagehash.ImageHash
}

// NewChangeDetector creates a detector. Frames whose hash is within
// maxDistance bits of the reference are reported unchanged; a negative
// value selects DefaultMaxHashDistance.
func NewChangeDetector(maxDistance int) *ChangeDetector {
	if maxDistance < 0 {
		maxDistance = DefaultMaxHashDistance
	}
	return &ChangeDetector{maxDistance: maxDistance}
}

// Changed reports whether frame differs visibly from the reference and
// the Hamming distance measured. The first frame is always changed. The
// reference only moves on changed frames, so a slow drift is still caught
// once it accumulates.
func (d *ChangeDetector) Changed(frame *asciicam.PixelBuffer) (bool, int, error) {
	hash, err := goimagehash.PerceptionHash(frame.Image())
	if err != nil {
		return true, 0, fmt.Errorf("perception hash: %w", err)
	}
	if d.lastHash == nil {
		d.lastHash = hash
		return true, 0, nil
	}
	dist, err := d.lastHash.Distance(hash)
	if err != nil {
		d.lastHash = hash
		return true, 0, fmt.Errorf("hash distance: %w", err)
	}
	if dist <= d.maxDistance {
		return false, dist, nil
	}
	d.lastHash = hash
	return true, dist, nil
}

// Reset forgets the reference frame.
func (d *ChangeDetector) Reset() {
	d.lastHash = nil
}
