package geom

// Zoom bounds and wheel step factors. Zoom is clamped to [MinZoom, MaxZoom]
// on every mutation path; there is no way to observe a viewport outside the
// range.
const (
	MinZoom = 0.1
	MaxZoom = 3.0

	// One wheel tick multiplies the zoom by one of these factors.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Viewport maps between screen and logical coordinates.
//
// The mapping is
//
//	logical = (screen - Pan) / Zoom
//	screen  = logical * Zoom + Pan
//
// Pan is measured in screen pixels. Viewport state is session-local: it is
// never persisted and never leaves the process.
type Viewport struct {
	Pan    Point
	Zoom   float64
	Screen Size
}

// NewViewport returns a viewport at the origin with zoom 1 covering the
// given screen area.
func NewViewport(screen Size) *Viewport {
	return &Viewport{Zoom: 1.0, Screen: screen}
}

// ToLogical converts a screen point to logical coordinates.
func (v *Viewport) ToLogical(p Point) Point {
	return Point{
		X: (p.X - v.Pan.X) / v.Zoom,
		Y: (p.Y - v.Pan.Y) / v.Zoom,
	}
}

// ToScreen converts a logical point to screen coordinates.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{
		X: p.X*v.Zoom + v.Pan.X,
		Y: p.Y*v.Zoom + v.Pan.Y,
	}
}

// PanBy shifts the pan offset by a screen-space delta. Pan is unbounded.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// SetZoom sets the zoom scalar, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) {
	v.Zoom = clampZoom(z)
}

// ZoomBy multiplies the zoom by factor and clamps the result. The pan
// offset is left untouched: zooming is anchored at the screen origin and
// does not recenter on the pointer.
func (v *Viewport) ZoomBy(factor float64) {
	v.Zoom = clampZoom(v.Zoom * factor)
}

// ZoomStep applies wheel ticks. Positive ticks zoom in (ZoomInFactor per
// tick), negative ticks zoom out (ZoomOutFactor per tick).
func (v *Viewport) ZoomStep(ticks int) {
	for i := 0; i < ticks; i++ {
		v.ZoomBy(ZoomInFactor)
	}
	for i := 0; i > ticks; i-- {
		v.ZoomBy(ZoomOutFactor)
	}
}

// Center returns the logical point currently under the screen center.
func (v *Viewport) Center() Point {
	return v.ToLogical(Point{v.Screen.Width / 2, v.Screen.Height / 2})
}

// VisibleRect returns the logical rectangle covered by the screen.
func (v *Viewport) VisibleRect() Rect {
	tl := v.ToLogical(Point{0, 0})
	br := v.ToLogical(Point{v.Screen.Width, v.Screen.Height})
	return Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
