// Package geom maps coordinates between source-pixel space, normalized crop
// space and the rendering surface.
package geom

import "math"

// Point is a location in any of the three coordinate spaces.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p minus q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Empty reports whether r has no positive area.
func (r Rect) Empty() bool { return !(r.W > 0 && r.H > 0) }

// ApproxEqual reports whether a and b differ by at most eps on every field.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return math.Abs(r.X-o.X) <= eps && math.Abs(r.Y-o.Y) <= eps &&
		math.Abs(r.W-o.W) <= eps && math.Abs(r.H-o.H) <= eps
}
