package screen

import (
	"image"
	"log/slog"

	"github.com/corona10/goimagehash"
)

// DefaultChangeThreshold is the perceptual hash distance above which two
// frames count as different.
const DefaultChangeThreshold = 5

// ChangeTracker counts frames that differ perceptually from their predecessor.
type ChangeTracker struct {
	threshold int
	last      *goimagehash.ImageHash
	changed   int
}

// NewChangeTracker creates a tracker. threshold <= 0 uses the default.
func NewChangeTracker(threshold int) *ChangeTracker {
	if threshold <= 0 {
		threshold = DefaultChangeThreshold
	}
	return &ChangeTracker{threshold: threshold}
}

// Observe hashes img and reports whether it differs from the previous frame.
// The first frame has no predecessor and never counts.
func (t *ChangeTracker) Observe(img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		slog.Debug("perceptual hash failed", "error", err)
		return false
	}

	prev := t.last
	t.last = hash
	if prev == nil {
		return false
	}

	dist, err := prev.Distance(hash)
	if err != nil || dist <= t.threshold {
		return false
	}
	t.changed++
	return true
}

// Changed returns how many observed frames differed from their predecessor.
func (t *ChangeTracker) Changed() int { return t.changed }
