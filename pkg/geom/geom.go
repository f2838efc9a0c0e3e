package geom

import "math"

// Eps is the tolerance used when comparing coordinates that went through
// floating point transforms.
const Eps = 1e-6

// Point is a position in either world or screen space, depending on context.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Near reports whether p and q are within eps of each other on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Size is a width/height pair.
type Size struct {
	W float64
	H float64
}

// Near reports whether both dimensions agree within eps.
func (s Size) Near(t Size, eps float64) bool {
	return math.Abs(s.W-t.W) <= eps && math.Abs(s.H-t.H) <= eps
}

// Bounds is an axis-aligned rectangle with a top-left origin.
type Bounds struct {
	X float64
	Y float64
	W float64
	H float64
}

// Rect builds a Bounds from origin and size.
func Rect(x, y, w, h float64) Bounds {
	return Bounds{X: x, Y: y, W: w, H: h}
}

// Origin returns the top-left corner.
func (b Bounds) Origin() Point {
	return Point{X: b.X, Y: b.Y}
}

// Size returns the width/height pair.
func (b Bounds) Size() Size {
	return Size{W: b.W, H: b.H}
}

// Contains reports whether p lies inside b (inclusive of edges).
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Intersects reports whether b and o overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Union returns the smallest bounds covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	x0 := math.Min(b.X, o.X)
	y0 := math.Min(b.Y, o.Y)
	x1 := math.Max(b.X+b.W, o.X+o.W)
	y1 := math.Max(b.Y+b.H, o.Y+o.H)
	return Bounds{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Near reports whether both origin and size agree within eps.
func (b Bounds) Near(o Bounds, eps float64) bool {
	return b.Origin().Near(o.Origin(), eps) && b.Size().Near(o.Size(), eps)
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
