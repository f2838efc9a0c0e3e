package canvas

import (
	"testing"

	"github.com/slatecanvas/slate/pkg/geom"
)

func TestScreenWorldRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		offset geom.Point
		zoom   float64
		screen geom.Point
	}{
		{"identity", geom.Pt(0, 0), 1.0, geom.Pt(100, 200)},
		{"panned", geom.Pt(-350, 120), 1.0, geom.Pt(40, 40)},
		{"zoomed in", geom.Pt(0, 0), 2.5, geom.Pt(333, 77)},
		{"zoomed out and panned", geom.Pt(512.5, -90.25), 0.25, geom.Pt(-10, 900)},
	}

	for _, tc := range cases {
		w := ScreenToWorld(tc.screen.X, tc.screen.Y, tc.offset, tc.zoom)
		back := WorldToScreen(w.X, w.Y, tc.offset, tc.zoom)
		if !back.Near(tc.screen, geom.Eps) {
			t.Errorf("%s: round trip %v -> %v -> %v", tc.name, tc.screen, w, back)
		}
	}
}

func TestScreenToWorldValues(t *testing.T) {
	w := ScreenToWorld(110, 220, geom.Pt(10, 20), 2.0)
	if !w.Near(geom.Pt(50, 100), geom.Eps) {
		t.Fatalf("ScreenToWorld = %v, want (50, 100)", w)
	}
}
