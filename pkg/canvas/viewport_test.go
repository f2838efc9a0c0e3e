package canvas

import (
	"math"
	"testing"

	"github.com/slatecanvas/slate/pkg/geom"
)

func TestWheelZoomAnchorInvariant(t *testing.T) {
	cases := []struct {
		name   string
		offset geom.Point
		zoom   float64
		cursor geom.Point
		deltaY float64
	}{
		{"zoom in at origin", geom.Pt(0, 0), 1.0, geom.Pt(0, 0), -120},
		{"zoom in at cursor", geom.Pt(40, -60), 1.0, geom.Pt(420, 310), -120},
		{"zoom out at cursor", geom.Pt(-300, 95), 2.0, geom.Pt(99, 701), 240},
		{"deep zoom", geom.Pt(12.5, 7.75), 3.5, geom.Pt(640, 360), -60},
		{"clamped at max", geom.Pt(0, 0), 3.99, geom.Pt(100, 100), -500},
		{"clamped at min", geom.Pt(0, 0), 0.11, geom.Pt(100, 100), 800},
	}

	for _, tc := range cases {
		c := NewController()
		c.SetViewport(tc.offset, tc.zoom)

		before := ScreenToWorld(tc.cursor.X, tc.cursor.Y, c.Offset(), c.Zoom())
		c.ApplyWheel(tc.cursor, 0, tc.deltaY, true)
		c.Flush()

		after := WorldToScreen(before.X, before.Y, c.Offset(), c.Zoom())
		if !after.Near(tc.cursor, 1e-9) {
			t.Errorf("%s: anchor moved, world point now at screen %v, cursor %v", tc.name, after, tc.cursor)
		}
		if c.Zoom() < ZoomMin || c.Zoom() > ZoomMax {
			t.Errorf("%s: zoom %v escaped clamp", tc.name, c.Zoom())
		}
	}
}

func TestPinchZoomAnchorInvariant(t *testing.T) {
	c := NewController()
	c.SetViewport(geom.Pt(-80, 44), 1.25)

	center := geom.Pt(500, 300)
	before := ScreenToWorld(center.X, center.Y, c.Offset(), c.Zoom())

	c.ApplyPinch(1.25, center, 1.8)
	c.Flush()

	if got, want := c.Zoom(), 1.25*1.8; math.Abs(got-want) > geom.Eps {
		t.Fatalf("zoom = %v, want %v", got, want)
	}
	after := WorldToScreen(before.X, before.Y, c.Offset(), c.Zoom())
	if !after.Near(center, 1e-9) {
		t.Fatalf("pinch anchor moved: %v vs %v", after, center)
	}
}

func TestPlainWheelPans(t *testing.T) {
	c := NewController()
	c.ApplyWheel(geom.Pt(0, 0), 30, -12, false)
	c.ApplyWheel(geom.Pt(0, 0), 10, 8, false)
	c.Flush()

	if !c.Offset().Near(geom.Pt(-40, 4), geom.Eps) {
		t.Fatalf("offset = %v, want (-40, 4)", c.Offset())
	}
	if c.Zoom() != 1.0 {
		t.Fatalf("plain wheel changed zoom: %v", c.Zoom())
	}
}

func TestFlushCoalescesToOneNotification(t *testing.T) {
	c := NewController()
	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })

	// Many raw inputs between frames must collapse into one transition.
	for i := 0; i < 25; i++ {
		c.ApplyWheel(geom.Pt(200, 200), 0, -10, true)
		c.ApplyMiddleDrag(1, 1)
	}
	c.Flush()

	if len(events) != 1 {
		t.Fatalf("got %d notifications, want 1", len(events))
	}
	if events[0].Kind != ZoomChanged {
		t.Fatalf("event kind = %v, want ZoomChanged", events[0].Kind)
	}

	// A second Flush with nothing pending must stay silent.
	c.Flush()
	if len(events) != 1 {
		t.Fatalf("idle Flush emitted an event")
	}
}

func TestPanOnlyNotification(t *testing.T) {
	c := NewController()
	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })

	c.ApplyMiddleDrag(15, -7)
	c.Flush()

	if len(events) != 1 || events[0].Kind != PanChanged {
		t.Fatalf("events = %+v, want single PanChanged", events)
	}
	if !c.Offset().Near(geom.Pt(15, -7), geom.Eps) {
		t.Fatalf("offset = %v", c.Offset())
	}
}

func TestCancelPending(t *testing.T) {
	c := NewController()
	c.ApplyMiddleDrag(100, 100)
	c.ApplyWheel(geom.Pt(0, 0), 0, -50, true)
	c.CancelPending()
	c.Flush()

	if c.Offset() != geom.Pt(0, 0) || c.Zoom() != 1.0 {
		t.Fatalf("cancelled input still applied: offset %v zoom %v", c.Offset(), c.Zoom())
	}
}

func TestLatestZoomRequestWins(t *testing.T) {
	c := NewController()
	c.ApplyPinch(1.0, geom.Pt(0, 0), 3.0)
	c.ApplyPinch(1.0, geom.Pt(0, 0), 1.5)
	c.Flush()

	if math.Abs(c.Zoom()-1.5) > geom.Eps {
		t.Fatalf("zoom = %v, want latest request 1.5", c.Zoom())
	}
}
