package board

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/geom"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Shape names a node's outline form.
type Shape string

// Supported node shapes.
const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
	ShapeHexagon   Shape = "hexagon"
)

// Valid reports whether s is one of the supported shapes.
func (s Shape) Valid() bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeHexagon:
		return true
	}
	return false
}

// Default visual attributes applied to nodes with unset fields.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 60.0
	DefaultNodeColor  = "#ffffff"
	DefaultTextColor  = "#000000"
	DefaultShape      = ShapeRectangle
)

// NewID returns a fresh identifier for maps, nodes, and connections.
func NewID() string { return uuid.NewString() }

// =============================================================================
// Map - Top-Level Document Metadata
// =============================================================================

// Map is the metadata of a mind map. The nodes and connections belonging to
// a map are kept separately (see Board) so that stores can persist them as
// individual records.
type Map struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// =============================================================================
// Node - Positioned Canvas Element
// =============================================================================

// Node is a single element on the canvas. X and Y are the top-left corner of
// the node's bounding box in logical coordinates; Width and Height complete
// the box. Colors are #rrggbb strings.
type Node struct {
	ID        string    `json:"id" bson:"_id"`
	MapID     string    `json:"map_id" bson:"map_id"`
	Text      string    `json:"text" bson:"text"`
	X         float64   `json:"x" bson:"x"`
	Y         float64   `json:"y" bson:"y"`
	Width     float64   `json:"width" bson:"width"`
	Height    float64   `json:"height" bson:"height"`
	Shape     Shape     `json:"shape" bson:"shape"`
	Color     string    `json:"color" bson:"color"`
	TextColor string    `json:"text_color" bson:"text_color"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ApplyDefaults fills unset visual attributes with the package defaults.
func (n *Node) ApplyDefaults() {
	if n.Width == 0 {
		n.Width = DefaultNodeWidth
	}
	if n.Height == 0 {
		n.Height = DefaultNodeHeight
	}
	if n.Shape == "" {
		n.Shape = DefaultShape
	}
	if n.Color == "" {
		n.Color = DefaultNodeColor
	}
	if n.TextColor == "" {
		n.TextColor = DefaultTextColor
	}
}

// Validate checks the node's identifier, shape, and colors.
func (n *Node) Validate() error {
	if err := errors.ValidateID(n.ID); err != nil {
		return err
	}
	if !n.Shape.Valid() {
		return errors.New(errors.ErrCodeInvalidShape, "unknown shape %q", n.Shape)
	}
	if err := errors.ValidateHexColor(n.Color); err != nil {
		return err
	}
	if err := errors.ValidateHexColor(n.TextColor); err != nil {
		return err
	}
	if n.Width <= 0 || n.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "node size must be positive, got %gx%g", n.Width, n.Height)
	}
	return nil
}

// Rect returns the node's bounding box in logical coordinates.
func (n *Node) Rect() geom.Rect {
	return geom.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

// Contains reports whether the logical point p falls inside the node.
func (n *Node) Contains(p geom.Point) bool { return n.Rect().Contains(p) }

// Center returns the node's midpoint in logical coordinates.
func (n *Node) Center() geom.Point { return n.Rect().Center() }

// Position returns the node's top-left corner.
func (n *Node) Position() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// DisplayText returns the text if set, otherwise a short form of the ID.
func (n *Node) DisplayText() string {
	if n.Text != "" {
		return n.Text
	}
	if len(n.ID) > 8 {
		return n.ID[:8]
	}
	return n.ID
}

// =============================================================================
// Connection - Directed Link Between Nodes
// =============================================================================

// Connection is a directed link from one node to another. Parallel duplicate
// connections and self-loops are valid: the canvas does not deduplicate and
// the graph may contain cycles.
type Connection struct {
	ID        string    `json:"id" bson:"_id"`
	MapID     string    `json:"map_id" bson:"map_id"`
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// IsSelfLoop reports whether the connection starts and ends on the same node.
func (c *Connection) IsSelfLoop() bool { return c.From == c.To }
