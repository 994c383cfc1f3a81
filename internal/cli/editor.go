package cli

import (
	"context"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/canvas"
	"github.com/matzehuels/mindgrid/pkg/config"
	"github.com/matzehuels/mindgrid/pkg/geom"
	"github.com/matzehuels/mindgrid/pkg/mutation"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// editorRowPx is the screen height of one terminal row. Cells are roughly
// twice as tall as they are wide, so a row spans two screen units while a
// column spans one; logical geometry stays square across clients.
const editorRowPx = 2.0

// defaultEditorZoom fits a default-sized node into roughly 18x5 cells.
const defaultEditorZoom = 0.15

// statusRows is the screen space reserved below the canvas.
const statusRows = 2

// opTimeout bounds a single store write triggered from the editor.
const opTimeout = 10 * time.Second

// panStep is the screen distance one arrow key press pans.
const panStep = 6.0

// editorMode is the keyboard focus of the editor.
type editorMode int

const (
	modeNormal editorMode = iota
	modeInsert
)

var shapeCycle = []board.Shape{board.ShapeRectangle, board.ShapeCircle, board.ShapeHexagon}

func nextShape(s board.Shape) board.Shape {
	for i, candidate := range shapeCycle {
		if candidate == s {
			return shapeCycle[(i+1)%len(shapeCycle)]
		}
	}
	return shapeCycle[0]
}

// =============================================================================
// Commit Sink
// =============================================================================

type commitKind int

const (
	commitSelection commitKind = iota
	commitMove
	commitConnStarted
	commitConn
	commitConnCancelled
)

type commit struct {
	kind commitKind
	node string
	from string
	to   string
	pos  geom.Point
}

// commitSink queues the edits a gesture produces so they can be applied
// after Engine.Handle returns, outside the state machine's stack frame.
type commitSink struct {
	commits []commit
}

func (s *commitSink) SelectionChanged(nodeID string) {
	s.commits = append(s.commits, commit{kind: commitSelection, node: nodeID})
}

func (s *commitSink) MoveCommitted(nodeID string, pos geom.Point) {
	s.commits = append(s.commits, commit{kind: commitMove, node: nodeID, pos: pos})
}

func (s *commitSink) ConnectionStarted(nodeID string) {
	s.commits = append(s.commits, commit{kind: commitConnStarted, node: nodeID})
}

func (s *commitSink) ConnectionCommitted(fromID, toID string) {
	s.commits = append(s.commits, commit{kind: commitConn, from: fromID, to: toID})
}

func (s *commitSink) ConnectionCancelled(nodeID string) {
	s.commits = append(s.commits, commit{kind: commitConnCancelled, node: nodeID})
}

func (s *commitSink) drain() []commit {
	out := s.commits
	s.commits = nil
	return out
}

// =============================================================================
// Model
// =============================================================================

// editorState is the mutable core of the editor. The tea model is a value
// wrapping this pointer, so bubbletea's copy-on-update cycle still acts on
// one shared state.
type editorState struct {
	store  store.Store
	logger *log.Logger
	cfg    config.Config
	mapID  string

	board  *board.Board
	vp     *geom.Viewport
	engine *canvas.Engine
	coord  *mutation.Coordinator
	sink   *commitSink

	mode         editorMode
	insertTarget string
	input        []rune
	selection    string

	width, height int
	ready         bool
	loaded        bool
	centered      bool
	showOutline   bool
	showHelp      bool
	statusMsg     string
	statusErr     string
	loadErr       error
}

type editor struct {
	s *editorState
}

func newEditor(st store.Store, mapID string, cfg config.Config, logger *log.Logger) editor {
	return editor{s: &editorState{
		store:  st,
		logger: logger,
		cfg:    cfg,
		mapID:  mapID,
	}}
}

type boardLoadedMsg struct{ board *board.Board }

type loadErrMsg struct{ err error }

func (m editor) Init() tea.Cmd {
	return m.loadBoard
}

func (m editor) loadBoard() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	b, err := m.s.store.LoadBoard(ctx, m.s.mapID)
	if err != nil {
		return loadErrMsg{err}
	}
	return boardLoadedMsg{b}
}

func (m editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.s.width = msg.Width
		m.s.height = msg.Height
		m.s.ready = true
		if m.s.vp != nil {
			m.s.vp.Screen = m.canvasSize()
		}
		m.maybeCenter()
		return m, nil

	case boardLoadedMsg:
		m.attachBoard(msg.board)
		m.maybeCenter()
		return m, nil

	case loadErrMsg:
		m.s.loadErr = msg.err
		return m, tea.Quit

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m editor) attachBoard(b *board.Board) {
	s := m.s
	s.board = b
	s.vp = geom.NewViewport(m.canvasSize())
	s.vp.SetZoom(defaultEditorZoom)
	s.sink = &commitSink{}
	s.engine = canvas.NewEngine(b, s.vp, s.sink)
	s.coord = mutation.NewCoordinator(b, s.vp, s.store, s.logger)
	s.loaded = true
}

// maybeCenter centers the content once, as soon as both the board and the
// terminal size are known.
func (m editor) maybeCenter() {
	if m.s.centered || !m.s.ready || !m.s.loaded {
		return
	}
	m.s.centered = true
	m.centerContent()
}

// centerContent pans so the content's bounding box is centered on screen.
// An empty board centers the logical origin.
func (m editor) centerContent() {
	s := m.s
	var center geom.Point
	if nodes := s.board.Nodes(); len(nodes) > 0 {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, n := range nodes {
			minX = math.Min(minX, n.X)
			minY = math.Min(minY, n.Y)
			maxX = math.Max(maxX, n.X+n.Width)
			maxY = math.Max(maxY, n.Y+n.Height)
		}
		center = geom.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	}
	s.vp.Pan = geom.Point{
		X: s.vp.Screen.Width/2 - center.X*s.vp.Zoom,
		Y: s.vp.Screen.Height/2 - center.Y*s.vp.Zoom,
	}
}

func (m editor) canvasRows() int {
	rows := m.s.height - statusRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m editor) canvasSize() geom.Size {
	return geom.Size{
		Width:  float64(m.s.width),
		Height: float64(m.canvasRows()) * editorRowPx,
	}
}

// =============================================================================
// Mouse
// =============================================================================

func (m editor) handleMouse(msg tea.MouseMsg) {
	if !m.s.loaded {
		return
	}
	if msg.Action == tea.MouseActionPress && msg.Y >= m.canvasRows() {
		return // the status bar is not canvas
	}
	ev, ok := pointerEvent(msg)
	if !ok {
		return
	}
	m.s.engine.Handle(ev)
	m.applyCommits()
}

// pointerEvent translates a bubbletea mouse message into screen space.
// Columns map to X directly and rows span editorRowPx vertical units. Alt
// forces a pan, ctrl marks connection plumbing.
func pointerEvent(msg tea.MouseMsg) (canvas.PointerEvent, bool) {
	at := geom.Point{X: float64(msg.X), Y: float64(msg.Y) * editorRowPx}
	mod := canvas.Modifiers{Pan: msg.Alt, Connect: msg.Ctrl}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return canvas.PointerEvent{Kind: canvas.EventWheel, Wheel: 1, At: at, Mod: mod}, true
	case tea.MouseButtonWheelDown:
		return canvas.PointerEvent{Kind: canvas.EventWheel, Wheel: -1, At: at, Mod: mod}, true
	}

	ev := canvas.PointerEvent{Device: canvas.DeviceMouse, At: at, Mod: mod}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = canvas.EventDown
	case tea.MouseActionRelease:
		ev.Kind = canvas.EventUp
	case tea.MouseActionMotion:
		ev.Kind = canvas.EventMove
	default:
		return canvas.PointerEvent{}, false
	}

	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Button = canvas.ButtonPrimary
	case tea.MouseButtonRight:
		ev.Button = canvas.ButtonSecondary
	case tea.MouseButtonMiddle:
		ev.Button = canvas.ButtonMiddle
	default:
		ev.Button = canvas.ButtonNone
	}
	return ev, true
}

// applyCommits drains the sink and runs the store-backed mutation for each
// queued edit. The engine never blocks on I/O; this is where it happens.
func (m editor) applyCommits() {
	for _, cm := range m.s.sink.drain() {
		switch cm.kind {
		case commitSelection:
			m.s.selection = cm.node
		case commitMove:
			node, pos := cm.node, cm.pos
			m.runOp(func(ctx context.Context) error {
				return m.s.coord.MoveNode(ctx, node, pos.X, pos.Y)
			})
		case commitConnStarted:
			m.s.statusMsg = "pick a target node (ctrl+click)"
		case commitConn:
			m.s.statusMsg = ""
			from, to := cm.from, cm.to
			m.runOp(func(ctx context.Context) error {
				_, err := m.s.coord.CreateConnection(ctx, from, to)
				return err
			})
		case commitConnCancelled:
			m.s.statusMsg = ""
		}
	}
}

// runOp executes one mutation with a bounded context, recording any failure
// in the status line. Writes are synchronous: the board has already applied
// the edit optimistically, only persistence can lag.
func (m editor) runOp(op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := op(ctx); err != nil {
		m.s.statusErr = err.Error()
		return
	}
	m.s.statusErr = ""
}

// =============================================================================
// Keys
// =============================================================================

func (m editor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.s.mode == modeInsert {
		m.handleInsertKey(msg)
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n":
		if m.s.loaded {
			m.s.mode = modeInsert
			m.s.insertTarget = ""
			m.s.input = nil
		}
	case "r":
		if sel := m.selectedNode(); sel != nil {
			m.s.mode = modeInsert
			m.s.insertTarget = sel.ID
			m.s.input = []rune(sel.Text)
		}
	case "d":
		if sel := m.s.selection; sel != "" && m.s.loaded {
			m.runOp(func(ctx context.Context) error {
				return m.s.coord.DeleteNode(ctx, sel)
			})
			m.s.selection = ""
		}
	case "x":
		if sel := m.s.selection; sel != "" && m.s.loaded {
			if conns := m.s.board.Incident(sel); len(conns) > 0 {
				id := conns[0].ID
				m.runOp(func(ctx context.Context) error {
					return m.s.coord.DeleteConnection(ctx, id)
				})
			}
		}
	case "s":
		if sel := m.selectedNode(); sel != nil {
			id, next := sel.ID, nextShape(sel.Shape)
			m.runOp(func(ctx context.Context) error {
				return m.s.coord.UpdateNodeStyle(ctx, id, mutation.NodeStyle{Shape: next})
			})
		}
	case "o":
		m.s.showOutline = !m.s.showOutline
		m.s.showHelp = false
	case "?":
		m.s.showHelp = !m.s.showHelp
		m.s.showOutline = false
	case "c":
		if m.s.loaded {
			m.centerContent()
		}
	case "left":
		m.pan(panStep, 0)
	case "right":
		m.pan(-panStep, 0)
	case "up":
		m.pan(0, panStep)
	case "down":
		m.pan(0, -panStep)
	case "+", "=":
		if m.s.vp != nil {
			m.s.vp.ZoomBy(geom.ZoomInFactor)
		}
	case "-", "_":
		if m.s.vp != nil {
			m.s.vp.ZoomBy(geom.ZoomOutFactor)
		}
	case "esc":
		m.s.statusErr = ""
	}
	return m, nil
}

func (m editor) handleInsertKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitInsert()
	case tea.KeyEscape:
		m.s.mode = modeNormal
		m.s.input = nil
	case tea.KeyBackspace:
		if len(m.s.input) > 0 {
			m.s.input = m.s.input[:len(m.s.input)-1]
		}
	case tea.KeySpace:
		m.s.input = append(m.s.input, ' ')
	case tea.KeyRunes:
		m.s.input = append(m.s.input, msg.Runes...)
	}
}

// commitInsert applies the text buffer: rename when a target is set, create
// a node at the default placement otherwise. Empty input is a no-op.
func (m editor) commitInsert() {
	text := strings.TrimSpace(string(m.s.input))
	target := m.s.insertTarget
	m.s.mode = modeNormal
	m.s.input = nil
	m.s.insertTarget = ""

	if text == "" {
		return
	}
	if target != "" {
		m.runOp(func(ctx context.Context) error {
			return m.s.coord.UpdateNodeText(ctx, target, text)
		})
		return
	}
	m.runOp(func(ctx context.Context) error {
		n, err := m.s.coord.CreateNode(ctx, mutation.CreateNodeOpts{
			Text:      text,
			Shape:     board.Shape(m.s.cfg.Editor.Shape),
			Color:     m.s.cfg.Editor.NodeColor,
			TextColor: m.s.cfg.Editor.TextColor,
		})
		if err == nil {
			m.s.selection = n.ID
		}
		return err
	})
}

func (m editor) selectedNode() *board.Node {
	if !m.s.loaded || m.s.selection == "" {
		return nil
	}
	n, ok := m.s.board.Node(m.s.selection)
	if !ok {
		return nil
	}
	return n
}

func (m editor) pan(dx, dy float64) {
	if m.s.vp != nil {
		m.s.vp.PanBy(dx, dy)
	}
}
