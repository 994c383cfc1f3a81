package canvas

import "github.com/matzehuels/mindgrid/pkg/geom"

// EventKind classifies a pointer event.
type EventKind int

const (
	// EventDown is a button press or touch start.
	EventDown EventKind = iota
	// EventMove is pointer motion, with or without a button held.
	EventMove
	// EventUp is a button release or touch end.
	EventUp
	// EventCancel is an abnormal end of the pointer sequence (focus loss,
	// touch cancel). It aborts the active gesture without committing.
	EventCancel
	// EventWheel is a scroll wheel step; Wheel carries the tick count.
	EventWheel
)

// Device identifies the pointing device class. Touch input has no buttons
// and gets the tap-versus-pan confirmation treatment on empty canvas.
type Device int

const (
	DeviceMouse Device = iota
	DeviceTouch
)

// Button identifies which mouse button an event refers to.
// Touch events use ButtonPrimary.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Modifiers carries the modifier keys held during the event. The two
// modifiers select between gestures at pointer-down: Pan forces a canvas
// pan regardless of what is under the pointer, Connect turns a click on a
// node into connection plumbing.
type Modifiers struct {
	Pan     bool
	Connect bool
}

// PointerEvent is one low-level input event in screen coordinates. The
// gesture engine consumes these and produces editing commits; it never
// sees device specifics beyond what is captured here.
type PointerEvent struct {
	Kind   EventKind
	Device Device
	Button Button
	At     geom.Point // screen coordinates
	Wheel  int        // zoom ticks, positive zooms in (EventWheel only)
	Mod    Modifiers
}
