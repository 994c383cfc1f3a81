package render

import (
	"bytes"
	"strings"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/outline"
)

const (
	// DefaultIndent is prepended once per outline depth level.
	DefaultIndent = "  "

	// DefaultBullet prefixes each outline line.
	DefaultBullet = "-"
)

type OutlineOption func(*outlineRenderer)

type outlineRenderer struct {
	indent   string
	bullet   string
	markdown bool
}

// WithIndent sets the string repeated once per depth level.
func WithIndent(s string) OutlineOption { return func(r *outlineRenderer) { r.indent = s } }

// WithBullet sets the per-line bullet prefix.
func WithBullet(s string) OutlineOption { return func(r *outlineRenderer) { r.bullet = s } }

// WithMarkdown emits the outline as a markdown document: the map title as
// a heading, then the nodes as a nested list.
func WithMarkdown() OutlineOption { return func(r *outlineRenderer) { r.markdown = true } }

// RenderOutline serializes the board's linearization as indented text, one
// node per line. The order and depths come from [outline.Linearize], so the
// output is deterministic for a given board.
func RenderOutline(b *board.Board, opts ...OutlineOption) []byte {
	r := outlineRenderer{indent: DefaultIndent, bullet: DefaultBullet}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if r.markdown {
		if title := b.Meta().Title; title != "" {
			buf.WriteString("# " + title + "\n\n")
		}
	}

	for _, e := range outline.Linearize(b) {
		buf.WriteString(strings.Repeat(r.indent, e.Depth))
		buf.WriteString(r.bullet)
		buf.WriteString(" ")
		buf.WriteString(e.Node.DisplayText())
		buf.WriteString("\n")
	}
	return buf.Bytes()
}
