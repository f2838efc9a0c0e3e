package canvas

import "github.com/slatecanvas/slate/pkg/geom"

// Zoom limits and input sensitivity. Wheel deltas are in screen pixels.
const (
	ZoomMin = 0.1
	ZoomMax = 4.0

	// WheelZoomStep scales wheel deltaY into a zoom delta.
	WheelZoomStep = 0.002
)

// EventKind distinguishes the notifications emitted after a Flush.
type EventKind int

const (
	// ZoomChanged fires when the zoom factor changed (the offset usually
	// changes along with it to keep the anchor point stationary).
	ZoomChanged EventKind = iota
	// PanChanged fires when only the offset moved.
	PanChanged
)

// Event is delivered to viewport subscribers once per state transition,
// never per raw input event.
type Event struct {
	Kind   EventKind
	Offset geom.Point
	Zoom   float64
}

// zoomRequest is the most recent pending zoom input. Later requests within
// the same frame replace earlier ones.
type zoomRequest struct {
	target float64
	anchor geom.Point // screen position that must stay fixed
}

// Controller owns the viewport offset and zoom for one open board.
//
// Raw input events only mutate pending state; Flush applies everything
// accumulated since the previous frame as a single transition. This keeps
// the per-frame work bounded no matter how fast events arrive: pan deltas
// accumulate, and only the latest zoom request survives.
//
// Controller is confined to the UI event loop and is not goroutine safe.
type Controller struct {
	offset geom.Point
	zoom   float64

	pendingPan  geom.Point
	pendingZoom *zoomRequest

	listeners []func(Event)
}

// NewController returns a controller at the origin with 1:1 zoom.
func NewController() *Controller {
	return &Controller{zoom: 1.0}
}

// Offset returns the current world-to-screen translation.
func (c *Controller) Offset() geom.Point {
	return c.offset
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 {
	return c.zoom
}

// SetViewport replaces offset and zoom wholesale, e.g. when restoring a
// persisted board viewport. Listeners are notified as a zoom change.
func (c *Controller) SetViewport(offset geom.Point, zoom float64) {
	c.offset = offset
	c.zoom = geom.Clamp(zoom, ZoomMin, ZoomMax)
	c.pendingPan = geom.Point{}
	c.pendingZoom = nil
	c.notify(ZoomChanged)
}

// Subscribe registers a listener for viewport transitions. Used by
// virtualization/culling code that must know when the visible region moved.
func (c *Controller) Subscribe(fn func(Event)) {
	c.listeners = append(c.listeners, fn)
}

// ApplyWheel records one wheel event. With the zoom modifier held the wheel
// zooms at the cursor; otherwise it pans by the raw deltas.
func (c *Controller) ApplyWheel(pos geom.Point, deltaX, deltaY float64, zoomModifier bool) {
	if !zoomModifier {
		c.pendingPan.X -= deltaX
		c.pendingPan.Y -= deltaY
		return
	}
	base := c.zoom
	if c.pendingZoom != nil {
		base = c.pendingZoom.target
	}
	c.pendingZoom = &zoomRequest{
		target: geom.Clamp(base-deltaY*WheelZoomStep, ZoomMin, ZoomMax),
		anchor: pos,
	}
}

// ApplyPinch records a pinch update. initialZoom is the zoom captured when
// the second finger touched down, scale the ratio of current to initial
// finger distance, and center the current screen midpoint of the fingers.
func (c *Controller) ApplyPinch(initialZoom float64, center geom.Point, scale float64) {
	c.pendingZoom = &zoomRequest{
		target: geom.Clamp(initialZoom*scale, ZoomMin, ZoomMax),
		anchor: center,
	}
}

// ApplyMiddleDrag records a middle-button drag step in screen pixels.
func (c *Controller) ApplyMiddleDrag(dx, dy float64) {
	c.pendingPan.X += dx
	c.pendingPan.Y += dy
}

// Dirty reports whether a Flush would change the viewport.
func (c *Controller) Dirty() bool {
	return c.pendingZoom != nil || c.pendingPan != geom.Point{}
}

// Flush collapses all pending input into one state transition. Call once
// per animation frame.
//
// Zoom preserves its anchor exactly: the world point under the anchor
// before the transition maps back to the same screen point after it.
func (c *Controller) Flush() {
	panned := c.pendingPan != geom.Point{}
	if panned {
		c.offset = c.offset.Add(c.pendingPan)
		c.pendingPan = geom.Point{}
	}

	if req := c.pendingZoom; req != nil {
		c.pendingZoom = nil
		if req.target != c.zoom {
			world := ScreenToWorld(req.anchor.X, req.anchor.Y, c.offset, c.zoom)
			c.zoom = req.target
			// Solve offset so that world maps back onto the anchor.
			c.offset = geom.Point{
				X: req.anchor.X - world.X*c.zoom,
				Y: req.anchor.Y - world.Y*c.zoom,
			}
			c.notify(ZoomChanged)
			return
		}
	}

	if panned {
		c.notify(PanChanged)
	}
}

// CancelPending drops any input accumulated since the last Flush, used on
// teardown so no callback fires after the view unmounts.
func (c *Controller) CancelPending() {
	c.pendingPan = geom.Point{}
	c.pendingZoom = nil
}

func (c *Controller) notify(kind EventKind) {
	ev := Event{Kind: kind, Offset: c.offset, Zoom: c.zoom}
	for _, fn := range c.listeners {
		fn(ev)
	}
}
