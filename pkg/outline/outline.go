// Package outline flattens a board into a deterministic, ordered outline.
//
// The outline is the text-facing view of a map: every node appears exactly
// once with an indentation depth, suitable for export to plain text or
// markdown. Because boards are free-form graphs (cycles, duplicate
// connections, multiple parents), the traversal has to make its tie-breaks
// explicit:
//
//   - Adjacency follows connection insertion order.
//   - Roots are nodes that are never a connection target, visited in node
//     insertion order.
//   - Depth-first traversal; a node reachable via several paths or part of
//     a cycle is emitted once, at the depth of its first visit.
//   - Nodes never reached (cycles with no external entry point) are appended
//     at depth 0, in node insertion order.
//
// For example, the board
//
//	a → b → c
//	a → d
//	e        (disconnected)
//
// linearizes to
//
//	a        depth 0
//	  b      depth 1
//	    c    depth 2
//	  d      depth 1
//	e        depth 0
//
// The output length always equals the node count.
package outline

import (
	"github.com/matzehuels/mindgrid/pkg/board"
)

// Entry is one line of the outline: a node and its indentation depth.
type Entry struct {
	Node  *board.Node
	Depth int
}

// Linearize flattens the board into outline entries. Connections with a
// missing endpoint are excluded before traversal; self-loops and duplicate
// parallel connections are tolerated. The result contains every node on the
// board exactly once.
func Linearize(b *board.Board) []Entry {
	conns := b.Renderable()

	children := make(map[string][]string)
	isTarget := make(map[string]bool)
	for _, c := range conns {
		children[c.From] = append(children[c.From], c.To)
		isTarget[c.To] = true
	}

	entries := make([]Entry, 0, b.NodeCount())
	visited := make(map[string]bool, b.NodeCount())

	var dfs func(id string, depth int)
	dfs = func(id string, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, _ := b.Node(id)
		entries = append(entries, Entry{Node: n, Depth: depth})
		for _, child := range children[id] {
			dfs(child, depth+1)
		}
	}

	for _, n := range b.Nodes() {
		if !isTarget[n.ID] {
			dfs(n.ID, 0)
		}
	}

	// Anything still unvisited sits on a cycle with no external entry
	// point. Those nodes surface at the top level.
	for _, n := range b.Nodes() {
		if !visited[n.ID] {
			entries = append(entries, Entry{Node: n, Depth: 0})
		}
	}

	return entries
}
