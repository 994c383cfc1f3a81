package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/geom"
	"github.com/matzehuels/mindgrid/pkg/outline"
)

func (m editor) View() string {
	if !m.s.ready {
		return ""
	}
	if !m.s.loaded {
		return lipgloss.Place(m.s.width, m.s.height, lipgloss.Center, lipgloss.Center,
			StyleDim.Render("Loading map..."))
	}

	var body string
	switch {
	case m.s.showHelp:
		body = m.helpView()
	case m.s.showOutline:
		body = m.outlineView()
	default:
		body = m.canvasView()
	}
	return body + "\n" + m.statusView() + "\n" + m.keyLineView()
}

// =============================================================================
// Canvas
// =============================================================================

func (m editor) canvasView() string {
	g := newCellGrid(m.s.width, m.canvasRows())
	lineStyle := g.styleIndex(StyleDim)
	for _, conn := range m.s.board.Renderable() {
		m.drawConnection(g, conn, lineStyle)
	}
	for _, n := range m.s.board.Nodes() {
		m.drawNode(g, n)
	}
	return g.render()
}

// cellRect is an inclusive cell-coordinate rectangle.
type cellRect struct {
	c0, r0, c1, r1 int
}

func (r cellRect) contains(col, row int) bool {
	return col >= r.c0 && col <= r.c1 && row >= r.r0 && row <= r.r1
}

func (r cellRect) centerCol() int { return (r.c0 + r.c1) / 2 }
func (r cellRect) centerRow() int { return (r.r0 + r.r1) / 2 }

// nodeCellRect projects a node's effective bounding box onto the cell grid.
// Mid-drag the engine's visual override wins over the canonical position.
// The box is never smaller than 2x2 cells so the border stays drawable.
func (m editor) nodeCellRect(id string) (cellRect, bool) {
	n, ok := m.s.board.Node(id)
	if !ok {
		return cellRect{}, false
	}
	pos, ok := m.s.engine.NodePosition(id)
	if !ok {
		return cellRect{}, false
	}
	tl := m.s.vp.ToScreen(pos)
	br := m.s.vp.ToScreen(geom.Point{X: pos.X + n.Width, Y: pos.Y + n.Height})

	r := cellRect{
		c0: int(math.Floor(tl.X)),
		r0: int(math.Floor(tl.Y / editorRowPx)),
		c1: int(math.Ceil(br.X)) - 1,
		r1: int(math.Ceil(br.Y/editorRowPx)) - 1,
	}
	if r.c1 < r.c0+1 {
		r.c1 = r.c0 + 1
	}
	if r.r1 < r.r0+1 {
		r.r1 = r.r0 + 1
	}
	return r, true
}

func (m editor) drawConnection(g *cellGrid, conn *board.Connection, style byte) {
	if conn.From == conn.To {
		return
	}
	fromRect, ok := m.nodeCellRect(conn.From)
	if !ok {
		return
	}
	toRect, ok := m.nodeCellRect(conn.To)
	if !ok {
		return
	}

	cells := elbowCells(fromRect.centerCol(), fromRect.centerRow(), toRect.centerCol(), toRect.centerRow())
	for _, cl := range cells {
		g.set(cl.col, cl.row, cl.r, style)
	}

	// Arrow tip: the first path cell outside the target box, walking back
	// from the target center. Boxes that overlap get no tip.
	for i := len(cells) - 1; i >= 0; i-- {
		if toRect.contains(cells[i].col, cells[i].row) {
			continue
		}
		g.set(cells[i].col, cells[i].row, arrowRune(cells, i), style)
		break
	}
}

type pathCell struct {
	col, row int
	r        rune
}

// elbowCells traces a horizontal-then-vertical elbow between two cells,
// start and end inclusive.
func elbowCells(c0, r0, c1, r1 int) []pathCell {
	var cells []pathCell

	step := 1
	if c1 < c0 {
		step = -1
	}
	for c := c0; c != c1; c += step {
		cells = append(cells, pathCell{c, r0, '─'})
	}

	if r0 == r1 {
		cells = append(cells, pathCell{c1, r1, '─'})
		return cells
	}

	vstep := 1
	if r1 < r0 {
		vstep = -1
	}
	if c0 != c1 {
		cells = append(cells, pathCell{c1, r0, cornerRune(c1-c0, r1-r0)})
	} else {
		cells = append(cells, pathCell{c0, r0, '│'})
	}
	for r := r0 + vstep; r != r1; r += vstep {
		cells = append(cells, pathCell{c1, r, '│'})
	}
	cells = append(cells, pathCell{c1, r1, '│'})
	return cells
}

// cornerRune joins the horizontal approach with the vertical departure.
// dx is the horizontal travel direction, dy the vertical one.
func cornerRune(dx, dy int) rune {
	switch {
	case dx > 0 && dy > 0:
		return '┐'
	case dx > 0 && dy < 0:
		return '┘'
	case dx < 0 && dy > 0:
		return '┌'
	case dx < 0 && dy < 0:
		return '└'
	}
	return '─'
}

// arrowRune points along the travel direction leaving cells[i].
func arrowRune(cells []pathCell, i int) rune {
	var dx, dy int
	if i+1 < len(cells) {
		dx = cells[i+1].col - cells[i].col
		dy = cells[i+1].row - cells[i].row
	}
	switch {
	case dx > 0:
		return '▸'
	case dx < 0:
		return '◂'
	case dy > 0:
		return '▾'
	case dy < 0:
		return '▴'
	}
	return '▸'
}

type borderSet struct {
	tl, tr, bl, br, h, v rune
}

func borderFor(s board.Shape) borderSet {
	switch s {
	case board.ShapeCircle:
		return borderSet{'╭', '╮', '╰', '╯', '─', '│'}
	case board.ShapeHexagon:
		return borderSet{'/', '\\', '\\', '/', '─', '│'}
	default:
		return borderSet{'┌', '┐', '└', '┘', '─', '│'}
	}
}

func (m editor) drawNode(g *cellGrid, n *board.Node) {
	r, ok := m.nodeCellRect(n.ID)
	if !ok {
		return
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
	switch n.ID {
	case m.s.engine.PendingSource():
		borderStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	case m.s.selection:
		borderStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	}
	bIdx := g.styleIndex(borderStyle)
	bs := borderFor(n.Shape)

	// Interior first, clearing anything routed under the box.
	for row := r.r0; row <= r.r1; row++ {
		for col := r.c0; col <= r.c1; col++ {
			g.set(col, row, ' ', 0)
		}
	}
	for col := r.c0 + 1; col < r.c1; col++ {
		g.set(col, r.r0, bs.h, bIdx)
		g.set(col, r.r1, bs.h, bIdx)
	}
	for row := r.r0 + 1; row < r.r1; row++ {
		g.set(r.c0, row, bs.v, bIdx)
		g.set(r.c1, row, bs.v, bIdx)
	}
	g.set(r.c0, r.r0, bs.tl, bIdx)
	g.set(r.c1, r.r0, bs.tr, bIdx)
	g.set(r.c0, r.r1, bs.bl, bIdx)
	g.set(r.c1, r.r1, bs.br, bIdx)

	innerW := r.c1 - r.c0 - 1
	innerH := r.r1 - r.r0 - 1
	if innerW < 1 || innerH < 1 {
		return
	}
	lines := wrapLabel(n.Text, innerW, innerH)
	rowStart := r.r0 + 1 + (innerH-len(lines))/2
	for li, line := range lines {
		runes := []rune(line)
		colStart := r.c0 + 1 + (innerW-len(runes))/2
		for ci, ch := range runes {
			g.set(colStart+ci, rowStart+li, ch, 0)
		}
	}
}

// wrapLabel word-wraps text into at most maxLines lines of width w. The
// last line ends in an ellipsis when the text does not fit.
func wrapLabel(text string, w, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= w:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	lines = append(lines, current)

	truncated := len(lines) > maxLines
	if truncated {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > w {
			if w == 1 {
				lines[i] = "…"
			} else {
				lines[i] = string(runes[:w-1]) + "…"
			}
			truncated = false
		}
	}
	if truncated {
		last := []rune(lines[len(lines)-1])
		if len(last) < w {
			lines[len(lines)-1] += "…"
		} else {
			last[len(last)-1] = '…'
			lines[len(lines)-1] = string(last)
		}
	}
	return lines
}

// =============================================================================
// Cell Grid
// =============================================================================

// cellGrid is a rune buffer with a per-cell style index. Index 0 renders
// unstyled; higher indexes point into a frame-local palette.
type cellGrid struct {
	w, h    int
	runes   []rune
	styles  []byte
	palette []lipgloss.Style
}

func newCellGrid(w, h int) *cellGrid {
	g := &cellGrid{
		w:       w,
		h:       h,
		runes:   make([]rune, w*h),
		styles:  make([]byte, w*h),
		palette: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for i := range g.runes {
		g.runes[i] = ' '
	}
	return g
}

// styleIndex registers a style for this frame. A full palette falls back to
// unstyled rather than evicting.
func (g *cellGrid) styleIndex(st lipgloss.Style) byte {
	if len(g.palette) >= 255 {
		return 0
	}
	g.palette = append(g.palette, st)
	return byte(len(g.palette) - 1)
}

func (g *cellGrid) set(col, row int, r rune, style byte) {
	if col < 0 || col >= g.w || row < 0 || row >= g.h {
		return
	}
	i := row*g.w + col
	g.runes[i] = r
	g.styles[i] = style
}

// render flattens the grid into terminal rows. Runs of cells sharing a
// style render as one styled chunk.
func (g *cellGrid) render() string {
	var b strings.Builder
	for row := 0; row < g.h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		start := row * g.w
		col := 0
		for col < g.w {
			runStyle := g.styles[start+col]
			runEnd := col
			for runEnd < g.w && g.styles[start+runEnd] == runStyle {
				runEnd++
			}
			chunk := string(g.runes[start+col : start+runEnd])
			if runStyle == 0 {
				b.WriteString(chunk)
			} else {
				b.WriteString(g.palette[runStyle].Render(chunk))
			}
			col = runEnd
		}
	}
	return b.String()
}

// =============================================================================
// Chrome
// =============================================================================

func (m editor) statusView() string {
	s := m.s

	var left string
	errStyled := false
	switch {
	case s.mode == modeInsert && s.insertTarget == "":
		left = "new node: " + string(s.input) + "▌"
	case s.mode == modeInsert:
		left = "rename: " + string(s.input) + "▌"
	case s.statusErr != "":
		left = iconError + " " + s.statusErr
		errStyled = true
	case s.statusMsg != "":
		left = s.statusMsg
	case s.engine.PendingSource() != "":
		left = "connect: pick a target node"
	case s.selection != "":
		if n := m.selectedNode(); n != nil {
			left = "selected: " + n.Text
		}
	}

	meta := s.board.Meta()
	right := fmt.Sprintf("%s · %d nodes · %d connections · %d%%",
		meta.Title, s.board.NodeCount(), s.board.ConnectionCount(),
		int(math.Round(s.vp.Zoom*100)))

	gap := s.width - len([]rune(left)) - len([]rune(right)) - 1
	if gap < 1 {
		right = ""
		gap = s.width - len([]rune(left)) - 1
		if gap < 0 {
			gap = 0
		}
	}

	leftStyle := StyleValue
	if errStyled {
		leftStyle = lipgloss.NewStyle().Foreground(colorRed)
	}
	return " " + leftStyle.Render(left) + strings.Repeat(" ", gap) + StyleDim.Render(right)
}

func (m editor) keyLineView() string {
	keys := "n new · r rename · d delete · x cut link · s shape · o outline · ? help · q quit"
	if m.s.mode == modeInsert {
		keys = "enter save · esc cancel"
	}
	return " " + StyleDim.Render(keys)
}

func (m editor) outlineView() string {
	rows := m.canvasRows()
	var b strings.Builder
	b.WriteString(" " + StyleTitle.Render(m.s.board.Meta().Title))
	lines := 1
	for _, e := range outline.Linearize(m.s.board) {
		if lines >= rows {
			break
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", e.Depth+1))
		b.WriteString(StyleDim.Render("- "))
		b.WriteString(StyleValue.Render(e.Node.Text))
		lines++
	}
	for ; lines < rows; lines++ {
		b.WriteByte('\n')
	}
	return b.String()
}

func (m editor) helpView() string {
	rows := m.canvasRows()
	entries := [][2]string{
		{"n", "create a node, then type its text"},
		{"r", "rename the selected node"},
		{"d", "delete the selected node"},
		{"x", "delete a connection of the selected node"},
		{"s", "cycle the selected node's shape"},
		{"o", "toggle the outline view"},
		{"c", "center the content"},
		{"arrows", "pan"},
		{"+ / -", "zoom"},
		{"drag", "move a node"},
		{"alt+drag", "pan"},
		{"ctrl+click", "arm and complete a connection"},
		{"wheel", "zoom at the pointer"},
		{"q", "quit"},
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(12)
	var b strings.Builder
	b.WriteString(" " + StyleTitle.Render("Keys"))
	lines := 1
	for _, e := range entries {
		if lines >= rows {
			break
		}
		b.WriteByte('\n')
		b.WriteString("  " + keyStyle.Render(e[0]) + StyleDim.Render(e[1]))
		lines++
	}
	for ; lines < rows; lines++ {
		b.WriteByte('\n')
	}
	return b.String()
}
