// Package board holds the in-memory model of a mind map: positioned nodes,
// directed connections between them, and the map metadata they belong to.
//
// A Board is the working copy the canvas edits. It preserves insertion order
// for both nodes and connections; that order is the tie-breaker every
// deterministic consumer (outline export, rendering, hit testing) relies on.
// Unlike a dependency graph there is no acyclicity requirement: duplicate
// parallel connections and self-loops are legal.
package board

import (
	"errors"
	"slices"

	"github.com/matzehuels/mindgrid/pkg/geom"
)

var (
	// ErrInvalidNodeID is returned by [Board.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Board.AddNode] when a node with the
	// same ID already exists on the board. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidConnectionID is returned by [Board.AddConnection] when the
	// connection ID is empty.
	ErrInvalidConnectionID = errors.New("connection ID must not be empty")

	// ErrDuplicateConnectionID is returned by [Board.AddConnection] when a
	// connection with the same ID already exists.
	ErrDuplicateConnectionID = errors.New("duplicate connection ID")

	// ErrUnknownSourceNode is returned by [Board.AddConnection] when the From
	// node does not exist on the board.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Board.AddConnection] when the To
	// node does not exist on the board.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Board is the in-memory working copy of one map: its metadata, nodes, and
// connections. Node and connection insertion order is preserved and
// observable through Nodes and Connections.
//
// The zero value is not usable - use New to create a Board.
// Board is not safe for concurrent use without external synchronization;
// the canvas interaction model is single-threaded.
type Board struct {
	meta        Map
	nodes       map[string]*Node
	order       []string // node IDs in insertion order
	connections []*Connection
	connIndex   map[string]*Connection
}

// New creates an empty board for the given map metadata.
func New(meta Map) *Board {
	return &Board{
		meta:      meta,
		nodes:     make(map[string]*Node),
		connIndex: make(map[string]*Connection),
	}
}

// Meta returns the map metadata.
func (b *Board) Meta() Map { return b.meta }

// SetTitle updates the map title.
func (b *Board) SetTitle(title string) { b.meta.Title = title }

// =============================================================================
// Nodes
// =============================================================================

// AddNode adds a node to the board. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if a node with the same ID already exists.
// The board keeps the pointer, so later mutations through it are visible.
func (b *Board) AddNode(n *Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := b.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	b.nodes[n.ID] = n
	b.order = append(b.order, n.ID)
	return nil
}

// UpsertNode adds the node or replaces an existing one with the same ID.
// Replacement keeps the node's original position in the insertion order.
func (b *Board) UpsertNode(n *Node) {
	if n.ID == "" {
		return
	}
	if _, exists := b.nodes[n.ID]; !exists {
		b.order = append(b.order, n.ID)
	}
	b.nodes[n.ID] = n
}

// RemoveNode removes a node and all connections incident to it.
// It returns the IDs of the removed connections, or nil if the node did not
// exist. Removing an absent node is a no-op.
func (b *Board) RemoveNode(id string) []string {
	if _, ok := b.nodes[id]; !ok {
		return nil
	}
	delete(b.nodes, id)
	b.order = slices.DeleteFunc(b.order, func(s string) bool { return s == id })

	var removed []string
	b.connections = slices.DeleteFunc(b.connections, func(c *Connection) bool {
		if c.From == id || c.To == id {
			removed = append(removed, c.ID)
			delete(b.connIndex, c.ID)
			return true
		}
		return false
	})
	return removed
}

// MoveNode sets a node's top-left position. Returns false if the node does
// not exist.
func (b *Board) MoveNode(id string, x, y float64) bool {
	n, ok := b.nodes[id]
	if !ok {
		return false
	}
	n.X, n.Y = x, y
	return true
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the live node, so modifications
// affect the board.
func (b *Board) Node(id string) (*Node, bool) {
	n, ok := b.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice is freshly
// allocated; the node pointers are live.
func (b *Board) Nodes() []*Node {
	nodes := make([]*Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes on the board.
func (b *Board) NodeCount() int { return len(b.nodes) }

// NodeAt returns the topmost node whose bounding box contains the logical
// point p. Topmost means last in insertion order, matching paint order.
func (b *Board) NodeAt(p geom.Point) (*Node, bool) {
	for i := len(b.order) - 1; i >= 0; i-- {
		n := b.nodes[b.order[i]]
		if n.Contains(p) {
			return n, true
		}
	}
	return nil, false
}

// =============================================================================
// Connections
// =============================================================================

// AddConnection adds a directed connection between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing. Duplicate parallel connections and self-loops are allowed; only
// the connection ID must be unique.
func (b *Board) AddConnection(c *Connection) error {
	if c.ID == "" {
		return ErrInvalidConnectionID
	}
	if _, exists := b.connIndex[c.ID]; exists {
		return ErrDuplicateConnectionID
	}
	if _, ok := b.nodes[c.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := b.nodes[c.To]; !ok {
		return ErrUnknownTargetNode
	}
	b.connections = append(b.connections, c)
	b.connIndex[c.ID] = c
	return nil
}

// restoreConnection appends a connection without endpoint checks. Used when
// loading serialized boards, which may legitimately carry connections whose
// endpoints have since been deleted.
func (b *Board) restoreConnection(c *Connection) {
	if c.ID == "" || b.connIndex[c.ID] != nil {
		return
	}
	b.connections = append(b.connections, c)
	b.connIndex[c.ID] = c
}

// RemoveConnection removes a connection by ID. Removing an absent connection
// is a no-op; it returns whether anything was removed.
func (b *Board) RemoveConnection(id string) bool {
	if _, ok := b.connIndex[id]; !ok {
		return false
	}
	delete(b.connIndex, id)
	b.connections = slices.DeleteFunc(b.connections, func(c *Connection) bool { return c.ID == id })
	return true
}

// Connection returns the connection with the given ID and true, or nil and
// false if not found.
func (b *Board) Connection(id string) (*Connection, bool) {
	c, ok := b.connIndex[id]
	return c, ok
}

// Connections returns all connections in insertion order, including ones
// with missing endpoints. The slice is freshly allocated.
func (b *Board) Connections() []*Connection {
	return slices.Clone(b.connections)
}

// Renderable returns the connections whose endpoints both exist, in
// insertion order. Connections with a missing endpoint are silently
// excluded; they stay in the data but never reach rendering, hit testing,
// or outline export.
func (b *Board) Renderable() []*Connection {
	var out []*Connection
	for _, c := range b.connections {
		if _, ok := b.nodes[c.From]; !ok {
			continue
		}
		if _, ok := b.nodes[c.To]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Incident returns the connections that start or end at the given node, in
// insertion order.
func (b *Board) Incident(nodeID string) []*Connection {
	var out []*Connection
	for _, c := range b.connections {
		if c.From == nodeID || c.To == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionCount returns the number of connections, including dangling ones.
func (b *Board) ConnectionCount() int { return len(b.connections) }
