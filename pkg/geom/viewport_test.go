package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

func TestViewport_RoundTrip(t *testing.T) {
	viewports := []Viewport{
		{Pan: Point{0, 0}, Zoom: 1.0},
		{Pan: Point{100, -50}, Zoom: 1.0},
		{Pan: Point{-300.5, 220.25}, Zoom: 0.1},
		{Pan: Point{42, 17}, Zoom: 3.0},
		{Pan: Point{1, 1}, Zoom: 0.77},
	}
	points := []Point{
		{0, 0},
		{640, 360},
		{-1000, 2000},
		{13.37, -0.001},
	}

	for _, v := range viewports {
		for _, p := range points {
			if got := v.ToLogical(v.ToScreen(p)); !almostEqual(got, p) {
				t.Errorf("viewport %+v: ToLogical(ToScreen(%v)) = %v, want %v", v, p, got, p)
			}
			if got := v.ToScreen(v.ToLogical(p)); !almostEqual(got, p) {
				t.Errorf("viewport %+v: ToScreen(ToLogical(%v)) = %v, want %v", v, p, got, p)
			}
		}
	}
}

func TestViewport_Transform(t *testing.T) {
	v := Viewport{Pan: Point{100, 50}, Zoom: 2.0}

	got := v.ToLogical(Point{300, 250})
	want := Point{100, 100}
	if !almostEqual(got, want) {
		t.Errorf("ToLogical = %v, want %v", got, want)
	}

	got = v.ToScreen(Point{100, 100})
	want = Point{300, 250}
	if !almostEqual(got, want) {
		t.Errorf("ToScreen = %v, want %v", got, want)
	}
}

func TestViewport_ZoomClamp(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		factor float64
		want   float64
	}{
		{"within range", 1.0, 1.1, 1.1},
		{"clamped at max", 2.9, 1.1, 3.0},
		{"clamped at min", 0.11, 0.9, 0.1},
		{"already at max", 3.0, 1.1, 3.0},
		{"already at min", 0.1, 0.9, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewport{Zoom: tt.start}
			v.ZoomBy(tt.factor)
			if math.Abs(v.Zoom-tt.want) > epsilon {
				t.Errorf("Zoom = %v, want %v", v.Zoom, tt.want)
			}
		})
	}
}

func TestViewport_SetZoomClamp(t *testing.T) {
	v := Viewport{Zoom: 1.0}

	v.SetZoom(99)
	if v.Zoom != MaxZoom {
		t.Errorf("SetZoom(99): Zoom = %v, want %v", v.Zoom, MaxZoom)
	}

	v.SetZoom(0.0001)
	if v.Zoom != MinZoom {
		t.Errorf("SetZoom(0.0001): Zoom = %v, want %v", v.Zoom, MinZoom)
	}
}

func TestViewport_ZoomStep(t *testing.T) {
	v := Viewport{Zoom: 1.0}

	v.ZoomStep(1)
	if math.Abs(v.Zoom-1.1) > epsilon {
		t.Errorf("after one tick in: Zoom = %v, want 1.1", v.Zoom)
	}

	v = Viewport{Zoom: 1.0}
	v.ZoomStep(-1)
	if math.Abs(v.Zoom-0.9) > epsilon {
		t.Errorf("after one tick out: Zoom = %v, want 0.9", v.Zoom)
	}

	v = Viewport{Zoom: 1.0}
	v.ZoomStep(3)
	want := 1.1 * 1.1 * 1.1
	if math.Abs(v.Zoom-want) > epsilon {
		t.Errorf("after three ticks in: Zoom = %v, want %v", v.Zoom, want)
	}
}

// Zooming must not recenter: the pan offset stays fixed, so the logical
// point under the screen origin is invariant under zoom.
func TestViewport_ZoomDoesNotRecenter(t *testing.T) {
	v := Viewport{Pan: Point{120, -40}, Zoom: 1.0}
	originBefore := v.ToLogical(Point{0, 0})

	v.ZoomStep(4)

	if v.Pan != (Point{120, -40}) {
		t.Errorf("Pan changed under zoom: %v", v.Pan)
	}
	originAfter := v.ToLogical(Point{0, 0})
	if !almostEqual(originBefore, originAfter) {
		t.Errorf("logical origin moved under zoom: %v -> %v", originBefore, originAfter)
	}
}

func TestViewport_PanBy(t *testing.T) {
	v := Viewport{Zoom: 1.0}
	v.PanBy(10, -20)
	v.PanBy(-30, 5)
	if v.Pan != (Point{-20, -15}) {
		t.Errorf("Pan = %v, want {-20 -15}", v.Pan)
	}
}

func TestViewport_Center(t *testing.T) {
	v := Viewport{Pan: Point{0, 0}, Zoom: 1.0, Screen: Size{800, 600}}
	if got := v.Center(); !almostEqual(got, Point{400, 300}) {
		t.Errorf("Center = %v, want {400 300}", got)
	}

	v = Viewport{Pan: Point{100, 100}, Zoom: 2.0, Screen: Size{800, 600}}
	if got := v.Center(); !almostEqual(got, Point{150, 100}) {
		t.Errorf("Center = %v, want {150 100}", got)
	}
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 100, H: 50}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{50, 30}, true},
		{"top-left corner inclusive", Point{10, 10}, true},
		{"right edge exclusive", Point{110, 30}, false},
		{"bottom edge exclusive", Point{50, 60}, false},
		{"outside left", Point{9, 30}, false},
		{"outside above", Point{50, 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
