package canvas

import (
	"slices"

	"github.com/matzehuels/mindgrid/pkg/geom"
)

// =============================================================================
// Pointer Subscriptions
// =============================================================================

// pointerFunc receives pointer events routed through the dispatcher.
type pointerFunc func(PointerEvent)

// subscription pairs a listener with a handle ID so it can be removed.
type subscription struct {
	id int
	fn pointerFunc
}

// dispatcher routes move and up events to the listeners of the active
// gesture session. Sessions subscribe on gesture start and must remove
// their subscriptions on teardown; a leaked subscription would keep
// receiving events for gestures it no longer owns.
type dispatcher struct {
	nextID int
	move   []subscription
	up     []subscription
}

// onMove subscribes fn to move events and returns its remove function.
// Removal is idempotent.
func (d *dispatcher) onMove(fn pointerFunc) func() {
	id := d.nextID
	d.nextID++
	d.move = append(d.move, subscription{id: id, fn: fn})
	return func() {
		d.move = slices.DeleteFunc(d.move, func(s subscription) bool { return s.id == id })
	}
}

// onUp subscribes fn to up events and returns its remove function.
// Removal is idempotent.
func (d *dispatcher) onUp(fn pointerFunc) func() {
	id := d.nextID
	d.nextID++
	d.up = append(d.up, subscription{id: id, fn: fn})
	return func() {
		d.up = slices.DeleteFunc(d.up, func(s subscription) bool { return s.id == id })
	}
}

func (d *dispatcher) emitMove(ev PointerEvent) {
	for _, s := range slices.Clone(d.move) {
		s.fn(ev)
	}
}

func (d *dispatcher) emitUp(ev PointerEvent) {
	for _, s := range slices.Clone(d.up) {
		s.fn(ev)
	}
}

// active returns the number of live subscriptions across both event kinds.
// After every gesture ends, this must be zero.
func (d *dispatcher) active() int {
	return len(d.move) + len(d.up)
}

// =============================================================================
// Gesture Session
// =============================================================================

// gestureSession is the transient state between a pointer-down and the
// matching up or cancel. The constructor (Engine.beginSession) installs the
// session's listeners; teardown removes them and runs on every exit path,
// normal or abnormal. Teardown is idempotent.
type gestureSession struct {
	state State

	nodeID     string     // node being acted on (drag, connect)
	grabOffset geom.Point // logical offset from pointer to node top-left at down
	start      geom.Point // screen position at pointer-down
	last       geom.Point // most recent screen position
	moved      bool       // a move event arrived while dragging

	removals []func()
	done     bool
}

func (s *gestureSession) addRemoval(remove func()) {
	s.removals = append(s.removals, remove)
}

func (s *gestureSession) teardown() {
	if s.done {
		return
	}
	s.done = true
	for _, remove := range s.removals {
		remove()
	}
	s.removals = nil
}
