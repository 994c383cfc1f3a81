package render

import (
	"testing"

	"github.com/matzehuels/mindgrid/pkg/board"
)

// outlineBoard builds the canonical example: a → b → c, a → d, and a
// disconnected e.
func outlineBoard(t *testing.T) *board.Board {
	t.Helper()
	b := testBoard(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		addNode(t, b, id, id, 0, 0, board.ShapeRectangle)
	}
	connect(t, b, "c1", "a", "b")
	connect(t, b, "c2", "b", "c")
	connect(t, b, "c3", "a", "d")
	return b
}

func TestRenderOutline(t *testing.T) {
	b := outlineBoard(t)

	got := string(RenderOutline(b))
	want := "- a\n" +
		"  - b\n" +
		"    - c\n" +
		"  - d\n" +
		"- e\n"
	if got != want {
		t.Errorf("RenderOutline() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderOutlineMarkdown(t *testing.T) {
	b := outlineBoard(t)

	got := string(RenderOutline(b, WithMarkdown()))
	want := "# test map\n\n" +
		"- a\n" +
		"  - b\n" +
		"    - c\n" +
		"  - d\n" +
		"- e\n"
	if got != want {
		t.Errorf("RenderOutline(markdown) =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderOutlineMarkdownUntitled(t *testing.T) {
	b := board.New(board.Map{ID: "m1"})
	addNode(t, b, "a", "a", 0, 0, board.ShapeRectangle)

	got := string(RenderOutline(b, WithMarkdown()))
	if got != "- a\n" {
		t.Errorf("RenderOutline(markdown, untitled) = %q, want %q", got, "- a\n")
	}
}

func TestRenderOutlineCustomIndentBullet(t *testing.T) {
	b := testBoard(t)
	addNode(t, b, "a", "a", 0, 0, board.ShapeRectangle)
	addNode(t, b, "b", "b", 0, 0, board.ShapeRectangle)
	connect(t, b, "c1", "a", "b")

	got := string(RenderOutline(b, WithIndent("\t"), WithBullet("*")))
	want := "* a\n\t* b\n"
	if got != want {
		t.Errorf("RenderOutline(custom) = %q, want %q", got, want)
	}
}

func TestRenderOutlineFallsBackToNodeID(t *testing.T) {
	b := testBoard(t)
	addNode(t, b, "n1", "", 0, 0, board.ShapeRectangle)

	got := string(RenderOutline(b))
	if got != "- n1\n" {
		t.Errorf("RenderOutline(untexted) = %q, want %q", got, "- n1\n")
	}
}

func TestRenderOutlineEmptyBoard(t *testing.T) {
	b := testBoard(t)

	if got := RenderOutline(b); len(got) != 0 {
		t.Errorf("RenderOutline(empty) = %q, want empty", got)
	}
}
