package interaction

import (
	"math"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
)

// Handle names one of the eight resize grips around a selected block.
type Handle string

const (
	HandleTop         Handle = "t"
	HandleBottom      Handle = "b"
	HandleLeft        Handle = "l"
	HandleRight       Handle = "r"
	HandleTopLeft     Handle = "tl"
	HandleTopRight    Handle = "tr"
	HandleBottomLeft  Handle = "bl"
	HandleBottomRight Handle = "br"
)

// Handles lists all grips in render order.
var Handles = []Handle{
	HandleTopLeft, HandleTop, HandleTopRight,
	HandleLeft, HandleRight,
	HandleBottomLeft, HandleBottom, HandleBottomRight,
}

// horizontal reports whether the handle moves the left or right edge.
func (h Handle) horizontal() bool {
	switch h {
	case HandleLeft, HandleRight, HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return true
	}
	return false
}

// vertical reports whether the handle moves the top or bottom edge.
func (h Handle) vertical() bool {
	switch h {
	case HandleTop, HandleBottom, HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return true
	}
	return false
}

// invertX reports whether dragging this handle rightwards shrinks the block.
func (h Handle) invertX() bool {
	switch h {
	case HandleLeft, HandleTopLeft, HandleBottomLeft:
		return true
	}
	return false
}

// invertY reports whether dragging this handle downwards shrinks the block.
func (h Handle) invertY() bool {
	switch h {
	case HandleTop, HandleTopLeft, HandleTopRight:
		return true
	}
	return false
}

// ResizeOptions parameterize the geometry rules for one gesture.
type ResizeOptions struct {
	MinWidth  float64
	MinHeight float64

	// MaintainAspect derives the orthogonal dimension from AspectRatio
	// (content width / content height); Padding is chrome around the content
	// that does not scale with it.
	MaintainAspect bool
	AspectRatio    float64
	Padding        float64

	// HorizontalOnly restricts the gesture to width; height flows from
	// content and is committed from the live value, not the overlay.
	HorizontalOnly bool
}

// resizeStart snapshots everything captured at pointer down.
type resizeStart struct {
	bounds geom.Bounds
	mouse  geom.Point
}

// Resize converts handle drags into new block bounds. The opposite edge or
// corner stays anchored; sizes never drop below the configured minimums.
type Resize struct {
	active     bool
	id         string
	blockType  board.BlockType
	handle     Handle
	opts       ResizeOptions
	start      resizeStart
	local      geom.Bounds
	wasResized bool

	overlay *Overlay
	moves   Coalescer
}

// NewResize returns an idle resize engine.
func NewResize() *Resize {
	return &Resize{overlay: NewOverlay()}
}

// Overlay exposes the engine's local-bounds overlay.
func (r *Resize) Overlay() *Overlay {
	return r.overlay
}

// Active reports whether a gesture is in flight.
func (r *Resize) Active() bool {
	return r.active
}

// WasResized reports whether the current or just-ended gesture changed the
// geometry beyond the threshold.
func (r *Resize) WasResized() bool {
	return r.wasResized
}

// Begin starts resizing block by the given handle. Non-primary buttons and
// multi-touch are rejected.
func (r *Resize) Begin(p Pointer, block board.Block, handle Handle, opts ResizeOptions) bool {
	if p.Buttons != ButtonPrimary || p.Touches > 1 {
		return false
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = board.MinWidth(block.Type)
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = board.MinHeight(block.Type)
	}
	r.active = true
	r.wasResized = false
	r.id = block.ID
	r.blockType = block.Type
	r.handle = handle
	r.opts = opts
	r.start = resizeStart{bounds: block.Bounds(), mouse: p.World}
	r.local = r.start.bounds
	r.overlay.Begin()
	r.overlay.Set(r.id, r.local)
	return true
}

// Update buffers a pointer sample; geometry is recomputed once per Flush.
func (r *Resize) Update(p Pointer) {
	if r.active {
		r.moves.Offer(p)
	}
}

// Flush applies the newest buffered sample.
func (r *Resize) Flush() {
	r.moves.Flush(func(p Pointer) { r.apply(p) })
}

func (r *Resize) apply(p Pointer) {
	if !r.active {
		return
	}
	dx := p.World.X - r.start.mouse.X
	dy := p.World.Y - r.start.mouse.Y

	// Corner and left/top handles flip the relevant delta so that the shared
	// size math below always sees "positive delta grows".
	dw, dh := 0.0, 0.0
	if r.handle.horizontal() {
		dw = dx
		if r.handle.invertX() {
			dw = -dx
		}
	}
	if r.handle.vertical() && !r.opts.HorizontalOnly {
		dh = dy
		if r.handle.invertY() {
			dh = -dy
		}
	}

	w, h := r.calcSize(dw, dh)

	b := r.start.bounds
	next := geom.Rect(b.X, b.Y, w, h)
	// Anchor the opposite edge: when the left or top edge moves, the origin
	// shifts by however much the size changed.
	if r.handle.invertX() {
		next.X = b.X + (b.W - w)
	}
	if r.handle.invertY() && !r.opts.HorizontalOnly {
		next.Y = b.Y + (b.H - h)
	}

	r.local = next
	r.overlay.Set(r.id, next)

	if sizeDelta(r.start.bounds, next) > DragThreshold {
		r.wasResized = true
	}
}

// calcSize turns normalized deltas into a clamped width/height pair,
// applying the aspect lock with a single corrective pass.
func (r *Resize) calcSize(dw, dh float64) (float64, float64) {
	b := r.start.bounds
	w := math.Max(b.W+dw, r.opts.MinWidth)
	h := b.H
	if !r.opts.HorizontalOnly {
		h = math.Max(b.H+dh, r.opts.MinHeight)
	}

	if !r.opts.MaintainAspect || r.opts.AspectRatio <= 0 || r.opts.HorizontalOnly {
		return w, h
	}

	aspect := r.opts.AspectRatio
	pad := r.opts.Padding
	if r.handle.horizontal() {
		// Width drives; derive height from the content aspect.
		h = (w / aspect) + pad
		if h < r.opts.MinHeight {
			// One corrective pass: the clamped height feeds back into width.
			h = r.opts.MinHeight
			w = math.Max((h-pad)*aspect, r.opts.MinWidth)
		}
	} else {
		h = math.Max(b.H+dh, r.opts.MinHeight)
		w = (h - pad) * aspect
		if w < r.opts.MinWidth {
			w = r.opts.MinWidth
			h = math.Max(w/aspect+pad, r.opts.MinHeight)
		}
	}
	return w, h
}

// End finishes the gesture. liveHeight carries the content-driven height for
// HorizontalOnly blocks; it is ignored otherwise. A resize command is
// emitted only when the geometry moved beyond the threshold on some tracked
// dimension.
func (r *Resize) End(liveHeight float64) (*history.Resize, bool) {
	if !r.active {
		return nil, false
	}
	r.moves.Cancel()
	r.active = false

	newBounds := r.local
	oldBounds := r.start.bounds
	if r.opts.HorizontalOnly {
		// Height is not under direct manipulation; commit what the content
		// flow produced, not the overlay.
		newBounds.H = liveHeight
		oldBounds.H = r.start.bounds.H
	}

	if sizeDelta(oldBounds, newBounds) <= DragThreshold {
		r.overlay.Drop()
		return nil, false
	}

	r.overlay.Set(r.id, newBounds)
	r.overlay.Settle()
	return &history.Resize{ID: r.id, Old: oldBounds, New: newBounds}, true
}

// Cancel aborts the gesture without committing.
func (r *Resize) Cancel() {
	if !r.active {
		return
	}
	r.moves.Cancel()
	r.active = false
	r.wasResized = false
	r.overlay.Drop()
}

// sizeDelta returns the largest absolute change across the tracked
// dimensions of two bounds.
func sizeDelta(a, b geom.Bounds) float64 {
	d := math.Abs(a.X - b.X)
	if v := math.Abs(a.Y - b.Y); v > d {
		d = v
	}
	if v := math.Abs(a.W - b.W); v > d {
		d = v
	}
	if v := math.Abs(a.H - b.H); v > d {
		d = v
	}
	return d
}
