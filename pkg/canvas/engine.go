// Package canvas contains the gesture engine: the state machine that turns
// raw pointer events into selection changes, node moves, pans, zooms, and
// connection commits against a board.
//
// The engine is strictly single-threaded. One event enters at a time, every
// state transition completes before the call returns, and there is no
// internal locking. Blocking work (persistence) happens outside: the engine
// reports committed edits through a CommitHandler and never performs I/O.
//
// Two design points shape the implementation:
//
//   - Scoped subscriptions: each gesture session installs its move/up
//     listeners when it starts and removes them on every exit path,
//     including pointer-cancel. Nothing relies on garbage collection for
//     cleanup; after any gesture the subscription count is back to zero.
//
//   - Two-layer positions: while a node is dragged, its on-screen position
//     is an ephemeral visual override. The canonical position in the board
//     is untouched until pointer-up, when exactly one move commit carries
//     the final position. Readers use NodePosition to see the effective
//     position.
package canvas

import (
	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/geom"
)

// touchPanThreshold is the Manhattan distance (in screen pixels) a touch
// pointer must travel from its down-point before an empty-canvas touch is
// treated as a pan rather than a tap. Movement of exactly the threshold is
// still a tap; one pixel more is a pan.
const touchPanThreshold = 10.0

// State is the gesture engine's current mode.
type State int

const (
	// StateIdle means no pointer gesture is in progress.
	StateIdle State = iota
	// StateDragging means a node is following the pointer; its canonical
	// position is untouched until the drag commits.
	StateDragging
	// StatePanning means pointer movement shifts the viewport pan offset.
	StatePanning
	// StateAwaitingTouchConfirm means a touch went down on empty canvas and
	// the engine is waiting to see whether it becomes a pan or stays a tap.
	StateAwaitingTouchConfirm
	// StateConnectingSource means the current press is connection plumbing:
	// arming, completing, or cancelling a pending connection source.
	StateConnectingSource
)

// String returns the state name for logs and test failures.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StatePanning:
		return "panning"
	case StateAwaitingTouchConfirm:
		return "awaiting-touch-confirm"
	case StateConnectingSource:
		return "connecting-source"
	default:
		return "unknown"
	}
}

// CommitHandler receives the edits a gesture produces. Implementations
// apply them to the board and persistence; the engine itself never writes
// to the board. Calls arrive synchronously from Engine.Handle on the single
// interaction thread.
type CommitHandler interface {
	// SelectionChanged reports the newly selected node, or "" when the
	// selection was cleared.
	SelectionChanged(nodeID string)
	// MoveCommitted reports the final logical position of a completed drag.
	// It fires at most once per drag, on pointer-up.
	MoveCommitted(nodeID string, pos geom.Point)
	// ConnectionStarted reports that a node was armed as the pending
	// connection source.
	ConnectionStarted(nodeID string)
	// ConnectionCommitted reports a completed source→target connection.
	// Self-loops never arrive here; clicking the source again cancels.
	ConnectionCommitted(fromID, toID string)
	// ConnectionCancelled reports that the pending source was discarded.
	ConnectionCancelled(nodeID string)
}

// NoopCommitHandler is a CommitHandler that ignores everything. Embed it to
// implement only the callbacks a consumer cares about.
type NoopCommitHandler struct{}

func (NoopCommitHandler) SelectionChanged(string)            {}
func (NoopCommitHandler) MoveCommitted(string, geom.Point)   {}
func (NoopCommitHandler) ConnectionStarted(string)           {}
func (NoopCommitHandler) ConnectionCommitted(string, string) {}
func (NoopCommitHandler) ConnectionCancelled(string)         {}

// Engine is the per-canvas gesture state machine. It owns the viewport
// (pan/zoom mutate directly) and the transient gesture state; the board is
// read-only from its perspective.
//
// Engine is not safe for concurrent use: the interaction model is a single
// event loop.
type Engine struct {
	board    *board.Board
	viewport *geom.Viewport
	handler  CommitHandler
	dispatch dispatcher

	session       *gestureSession
	selection     string
	pendingSource string

	overrideID  string
	overridePos geom.Point
	hasOverride bool
}

// NewEngine creates a gesture engine over the given board and viewport.
// handler must not be nil; use NoopCommitHandler to discard commits.
func NewEngine(b *board.Board, vp *geom.Viewport, handler CommitHandler) *Engine {
	return &Engine{
		board:    b,
		viewport: vp,
		handler:  handler,
	}
}

// State returns the current gesture state.
func (e *Engine) State() State {
	if e.session == nil {
		return StateIdle
	}
	return e.session.state
}

// Selection returns the selected node ID, or "" if nothing is selected.
func (e *Engine) Selection() string { return e.selection }

// PendingSource returns the armed connection source, or "" if none.
// The pending source outlives the press that armed it; it is cleared by
// completion, by clicking the source again, or by a plain click on empty
// canvas.
func (e *Engine) PendingSource() string { return e.pendingSource }

// Viewport returns the viewport the engine mutates for pan and zoom.
func (e *Engine) Viewport() *geom.Viewport { return e.viewport }

// NodePosition returns the effective top-left position of a node: the
// visual override while that node is mid-drag, the canonical board position
// otherwise. ok is false when the node does not exist.
func (e *Engine) NodePosition(id string) (geom.Point, bool) {
	if e.hasOverride && e.overrideID == id {
		return e.overridePos, true
	}
	n, ok := e.board.Node(id)
	if !ok {
		return geom.Point{}, false
	}
	return n.Position(), true
}

// ActiveSubscriptions returns the number of live pointer subscriptions.
// Outside of a gesture this is always zero.
func (e *Engine) ActiveSubscriptions() int { return e.dispatch.active() }

// Handle feeds one pointer event through the state machine.
func (e *Engine) Handle(ev PointerEvent) {
	switch ev.Kind {
	case EventWheel:
		// Zoom applies in any state and never touches the pan offset or
		// the gesture in progress.
		e.viewport.ZoomStep(ev.Wheel)
	case EventDown:
		e.handleDown(ev)
	case EventMove:
		e.dispatch.emitMove(ev)
	case EventUp:
		e.dispatch.emitUp(ev)
	case EventCancel:
		e.handleCancel()
	}
}

// =============================================================================
// Transitions out of Idle
// =============================================================================

func (e *Engine) handleDown(ev PointerEvent) {
	if e.session != nil {
		// Single-pointer model: a second down while a gesture is live is
		// dropped rather than corrupting the session.
		return
	}

	logical := e.viewport.ToLogical(ev.At)
	hit, hitOK := e.board.NodeAt(logical)

	switch {
	case ev.Button == ButtonMiddle || ev.Button == ButtonSecondary:
		e.beginPan(ev)
	case ev.Mod.Pan && ev.Button == ButtonPrimary:
		e.beginPan(ev)
	case hitOK && ev.Mod.Connect:
		e.beginConnectPress(ev, hit.ID)
	case hitOK:
		e.beginDrag(ev, hit, logical)
	case ev.Device == DeviceTouch:
		e.beginTouchConfirm(ev)
	case !ev.Mod.Connect:
		// Plain click on empty canvas: clear the selection and discard any
		// pending connection source. No session is needed.
		e.clearSelection()
		e.cancelPending()
	}
}

func (e *Engine) beginSession(state State) *gestureSession {
	s := &gestureSession{state: state}
	e.session = s
	return s
}

// endSession tears the session down and returns to Idle. Safe to call on
// every exit path; teardown is idempotent.
func (e *Engine) endSession(s *gestureSession) {
	s.teardown()
	if e.session == s {
		e.session = nil
	}
}

// =============================================================================
// Drag
// =============================================================================

func (e *Engine) beginDrag(ev PointerEvent, hit *board.Node, logical geom.Point) {
	if e.selection != hit.ID {
		e.selection = hit.ID
		e.handler.SelectionChanged(hit.ID)
	}

	s := e.beginSession(StateDragging)
	s.nodeID = hit.ID
	s.grabOffset = logical.Sub(hit.Position())
	s.start = ev.At
	s.last = ev.At

	s.addRemoval(e.dispatch.onMove(func(mv PointerEvent) {
		e.dragMove(s, mv)
	}))
	s.addRemoval(e.dispatch.onUp(func(up PointerEvent) {
		e.dragEnd(s, up)
	}))
}

func (e *Engine) dragMove(s *gestureSession, ev PointerEvent) {
	s.moved = true
	s.last = ev.At
	logical := e.viewport.ToLogical(ev.At)
	e.overrideID = s.nodeID
	e.overridePos = logical.Sub(s.grabOffset)
	e.hasOverride = true
}

func (e *Engine) dragEnd(s *gestureSession, ev PointerEvent) {
	final := e.viewport.ToLogical(ev.At).Sub(s.grabOffset)
	moved := s.moved
	nodeID := s.nodeID
	e.endSession(s)

	// Commit before dropping the override so the canonical position is
	// already reconciled when the node stops rendering from the override.
	if moved {
		e.handler.MoveCommitted(nodeID, final)
	}
	e.clearOverride()
}

func (e *Engine) clearOverride() {
	e.overrideID = ""
	e.overridePos = geom.Point{}
	e.hasOverride = false
}

// =============================================================================
// Pan
// =============================================================================

func (e *Engine) beginPan(ev PointerEvent) {
	s := e.beginSession(StatePanning)
	s.start = ev.At
	s.last = ev.At

	s.addRemoval(e.dispatch.onMove(func(mv PointerEvent) {
		e.panMove(s, mv)
	}))
	s.addRemoval(e.dispatch.onUp(func(PointerEvent) {
		e.endSession(s)
	}))
}

func (e *Engine) panMove(s *gestureSession, ev PointerEvent) {
	delta := ev.At.Sub(s.last)
	s.last = ev.At
	e.viewport.PanBy(delta.X, delta.Y)
}

// =============================================================================
// Touch Confirm
// =============================================================================

func (e *Engine) beginTouchConfirm(ev PointerEvent) {
	s := e.beginSession(StateAwaitingTouchConfirm)
	s.start = ev.At
	s.last = ev.At
	connectHeld := ev.Mod.Connect

	s.addRemoval(e.dispatch.onMove(func(mv PointerEvent) {
		e.touchConfirmMove(s, mv)
	}))
	s.addRemoval(e.dispatch.onUp(func(PointerEvent) {
		wasTap := s.state == StateAwaitingTouchConfirm
		e.endSession(s)
		if wasTap && !connectHeld {
			// Tap: no qualifying movement arrived, so plain empty-canvas
			// click semantics apply.
			e.clearSelection()
			e.cancelPending()
		}
	}))
}

func (e *Engine) touchConfirmMove(s *gestureSession, ev PointerEvent) {
	if s.state == StatePanning {
		e.panMove(s, ev)
		return
	}

	manhattan := abs(ev.At.X-s.start.X) + abs(ev.At.Y-s.start.Y)
	if manhattan <= touchPanThreshold {
		return
	}

	// Threshold crossed: this is a pan. Apply the accumulated delta so no
	// motion is lost, then continue as a normal pan.
	s.state = StatePanning
	delta := ev.At.Sub(s.start)
	s.last = ev.At
	e.viewport.PanBy(delta.X, delta.Y)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// =============================================================================
// Connect
// =============================================================================

func (e *Engine) beginConnectPress(ev PointerEvent, nodeID string) {
	s := e.beginSession(StateConnectingSource)
	s.nodeID = nodeID
	s.start = ev.At

	s.addRemoval(e.dispatch.onUp(func(PointerEvent) {
		e.endSession(s)
	}))

	switch {
	case e.pendingSource == "":
		e.pendingSource = nodeID
		e.handler.ConnectionStarted(nodeID)
	case e.pendingSource == nodeID:
		// Clicking the armed source again cancels it.
		e.cancelPending()
	default:
		from := e.pendingSource
		e.pendingSource = ""
		e.handler.ConnectionCommitted(from, nodeID)
	}
}

func (e *Engine) cancelPending() {
	if e.pendingSource == "" {
		return
	}
	cancelled := e.pendingSource
	e.pendingSource = ""
	e.handler.ConnectionCancelled(cancelled)
}

func (e *Engine) clearSelection() {
	if e.selection == "" {
		return
	}
	e.selection = ""
	e.handler.SelectionChanged("")
}

// =============================================================================
// Cancel
// =============================================================================

// handleCancel aborts the gesture in progress: subscriptions are removed,
// the drag override is dropped without committing, and the engine returns
// to Idle. The pending connection source survives; it belongs to the map
// session, not to the aborted press.
func (e *Engine) handleCancel() {
	if e.session == nil {
		return
	}
	e.endSession(e.session)
	e.clearOverride()
}
