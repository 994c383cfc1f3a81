// Package geom provides the coordinate model for the canvas.
//
// Two coordinate spaces exist:
//   - Screen space: pixels as delivered by the input device, origin at the
//     top-left of the visible canvas.
//   - Logical space: the infinite plane node positions live on.
//
// A Viewport maps between the two via a pan offset (screen pixels) and a
// zoom scalar. All transforms are pure functions; nothing in this package
// performs I/O or holds locks.
package geom

// Point is a position in either screen or logical space.
// Which space a point is in is a property of the call site, not the type.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside the rectangle.
// The top and left edges are inclusive, bottom and right exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}
