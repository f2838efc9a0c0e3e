// Package interaction turns raw pointer input into gestures: dragging and
// resizing blocks with an optimistic local overlay, and click/selection
// disambiguation. Gesture engines emit a command at gesture end; they never
// touch the authoritative store mid-gesture.
//
// All state in this package is confined to the UI event loop.
package interaction

import "github.com/slatecanvas/slate/pkg/geom"

// DragThreshold is the net displacement in world units below which a gesture
// is discarded as a pure click, producing no command and no history entry.
const DragThreshold = 1.0

// Buttons is the pressed mouse button set at the time of a pointer sample.
type Buttons uint8

const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonTertiary
)

// Pointer is one input sample, already converted to world space by the
// viewport the caller owns.
type Pointer struct {
	World   geom.Point
	Buttons Buttons
	// Touches is the number of active touch points. Two or more fingers are
	// reserved for pinch zoom and cancel block gestures.
	Touches int
}

// Coalescer retains only the newest pointer sample between animation
// frames. Raw move events call Offer; the frame callback calls Flush once,
// so per-frame geometry work stays bounded no matter the input rate.
type Coalescer struct {
	sample Pointer
	dirty  bool
}

// Offer replaces any pending sample with p.
func (c *Coalescer) Offer(p Pointer) {
	c.sample = p
	c.dirty = true
}

// Flush hands the pending sample to apply, if one arrived since the last
// flush.
func (c *Coalescer) Flush(apply func(Pointer)) {
	if !c.dirty {
		return
	}
	c.dirty = false
	apply(c.sample)
}

// Cancel drops the pending sample without applying it, used on teardown.
func (c *Coalescer) Cancel() {
	c.dirty = false
}
