// Package canvas provides the viewport math for the whiteboard: pure
// screen/world coordinate transforms and a controller that turns wheel,
// pinch, and middle-drag input into a clamped pan/zoom state.
package canvas

import "github.com/slatecanvas/slate/pkg/geom"

// ScreenToWorld converts a screen position to world space given the viewport
// offset and zoom. The caller guarantees zoom > 0.
func ScreenToWorld(screenX, screenY float64, offset geom.Point, zoom float64) geom.Point {
	return geom.Point{
		X: (screenX - offset.X) / zoom,
		Y: (screenY - offset.Y) / zoom,
	}
}

// WorldToScreen is the inverse of ScreenToWorld.
func WorldToScreen(worldX, worldY float64, offset geom.Point, zoom float64) geom.Point {
	return geom.Point{
		X: worldX*zoom + offset.X,
		Y: worldY*zoom + offset.Y,
	}
}
