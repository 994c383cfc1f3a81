package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/fonts"
	"github.com/matzehuels/mindgrid/pkg/geom"
)

const (
	// DefaultPadding is the whitespace around the content bounding box.
	DefaultPadding = 40.0

	// DefaultScale multiplies the rendered width and height attributes.
	DefaultScale = 1.0

	titleBand      = 48.0
	titleFontSize  = 20.0
	connStroke     = "#555555"
	connWidth      = 1.5
	nodeStrokeW    = 1.5
	rectCornerR    = 6.0
	selfLoopReach  = 40.0
	selfLoopSpread = 8.0

	// Frame used when the board has no nodes.
	emptyFrameW = 200.0
	emptyFrameH = 120.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding   float64
	scale     float64
	title     string
	embedFont bool
}

// WithPadding sets the whitespace around the content bounding box.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithScale multiplies the output width and height attributes. The viewBox
// is unchanged, so a scale of 2.0 doubles the display size losslessly.
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithTitle draws the given title above the board content.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithoutFont skips the embedded font data, shrinking the output at the
// cost of falling back to system fonts.
func WithoutFont() SVGOption { return func(r *svgRenderer) { r.embedFont = false } }

// RenderSVG draws the board exactly as stored: every node at its logical
// position with its shape and colors, connections as arrows clipped to the
// node borders. Connections with a missing endpoint are skipped. The
// viewBox is fitted to the content plus padding.
func RenderSVG(b *board.Board, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	frame := contentFrame(b, r.padding, r.title != "")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frame.X, frame.Y, frame.W, frame.H, frame.W*r.scale, frame.H*r.scale)

	renderDefs(&buf, r.embedFont)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="%s" font-size="%.0f" font-weight="bold" fill="#333333">%s</text>`+"\n",
			frame.X+frame.W/2, frame.Y+titleBand*0.6, fonts.Stack(), titleFontSize, EscapeXML(r.title))
	}

	for _, n := range b.Nodes() {
		renderShape(&buf, n)
	}
	for _, c := range b.Renderable() {
		renderConnection(&buf, b, c)
	}
	for _, n := range b.Nodes() {
		renderLabel(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: DefaultPadding, scale: DefaultScale, embedFont: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// contentFrame returns the viewBox: the bounding box of all nodes plus
// padding, with extra headroom when a title is drawn. An empty board gets a
// fixed frame so the artifact is still a valid image.
func contentFrame(b *board.Board, padding float64, withTitle bool) geom.Rect {
	nodes := b.Nodes()
	if len(nodes) == 0 {
		frame := geom.Rect{W: emptyFrameW, H: emptyFrameH}
		if withTitle {
			frame.H += titleBand
		}
		return frame
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}

	frame := geom.Rect{
		X: minX - padding,
		Y: minY - padding,
		W: maxX - minX + 2*padding,
		H: maxY - minY + 2*padding,
	}
	if withTitle {
		frame.Y -= titleBand
		frame.H += titleBand
	}
	return frame
}

func renderDefs(buf *bytes.Buffer, embedFont bool) {
	buf.WriteString("  <defs>\n")
	if data := fonts.WOFFBase64(); embedFont && data != "" {
		fmt.Fprintf(buf, "    <style>@font-face { font-family: '%s'; src: url(data:font/woff;base64,%s) format('woff'); }</style>\n",
			fonts.FontFamily, data)
	}
	fmt.Fprintf(buf, `    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 1 L 9 5 L 0 9 z" fill="%s"/></marker>`+"\n", connStroke)
	buf.WriteString("  </defs>\n")
}

func renderShape(buf *bytes.Buffer, n *board.Node) {
	switch n.Shape {
	case board.ShapeCircle:
		fmt.Fprintf(buf, `  <ellipse id="node-%s" class="node" cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			n.ID, n.X+n.Width/2, n.Y+n.Height/2, n.Width/2, n.Height/2, n.Color, n.TextColor, nodeStrokeW)
	case board.ShapeHexagon:
		fmt.Fprintf(buf, `  <polygon id="node-%s" class="node" points="%s" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			n.ID, hexagonPoints(n), n.Color, n.TextColor, nodeStrokeW)
	default:
		fmt.Fprintf(buf, `  <rect id="node-%s" class="node" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			n.ID, n.X, n.Y, n.Width, n.Height, rectCornerR, n.Color, n.TextColor, nodeStrokeW)
	}
}

// hexagonPoints returns the six corners of a hexagon inscribed in the
// node's bounding box, flat-topped with slanted left and right sides.
func hexagonPoints(n *board.Node) string {
	x, y, w, h := n.X, n.Y, n.Width, n.Height
	return fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f",
		x+0.25*w, y,
		x+0.75*w, y,
		x+w, y+h/2,
		x+0.75*w, y+h,
		x+0.25*w, y+h,
		x, y+h/2)
}

func renderConnection(buf *bytes.Buffer, b *board.Board, c *board.Connection) {
	// Renderable() already dropped connections with missing endpoints.
	src, _ := b.Node(c.From)
	dst, _ := b.Node(c.To)

	if c.IsSelfLoop() {
		renderSelfLoop(buf, c, src)
		return
	}

	p1 := borderPoint(src, dst.Center())
	p2 := borderPoint(dst, src.Center())
	fmt.Fprintf(buf, `  <line id="conn-%s" class="connection" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" marker-end="url(#arrow)"/>`+"\n",
		c.ID, p1.X, p1.Y, p2.X, p2.Y, connStroke, connWidth)
}

// renderSelfLoop draws a cubic curve off the node's right edge, returning
// to the edge a little lower so the arrowhead stays visible.
func renderSelfLoop(buf *bytes.Buffer, c *board.Connection, n *board.Node) {
	edgeX := n.X + n.Width
	cy := n.Y + n.Height/2
	fmt.Fprintf(buf, `  <path id="conn-%s" class="connection" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" fill="none" stroke="%s" stroke-width="%.1f" marker-end="url(#arrow)"/>`+"\n",
		c.ID, edgeX, cy-selfLoopSpread,
		edgeX+selfLoopReach, cy-2.5*selfLoopSpread,
		edgeX+selfLoopReach, cy+2.5*selfLoopSpread,
		edgeX, cy+selfLoopSpread,
		connStroke, connWidth)
}

// borderPoint returns where the segment from n's center toward p crosses
// n's bounding box. Connections attach there instead of at the center so
// arrowheads are not buried under the target shape.
func borderPoint(n *board.Node, p geom.Point) geom.Point {
	c := n.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}

	t := math.Inf(1)
	if dx != 0 {
		t = (n.Width / 2) / math.Abs(dx)
	}
	if dy != 0 {
		t = min(t, (n.Height/2)/math.Abs(dy))
	}
	return geom.Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

func renderLabel(buf *bytes.Buffer, n *board.Node) {
	label := n.DisplayText()
	fontSize := fontSizeFor(n.Width, n.Height, len(label))
	label = truncateLabel(label, n.Width, fontSize)
	center := n.Center()

	fmt.Fprintf(buf, `  <text class="node-text" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
		center.X, center.Y, fonts.Stack(), fontSize, n.TextColor, EscapeXML(label))
}
