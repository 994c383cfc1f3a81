// Package mutation coordinates board edits with their persistence.
//
// The Coordinator sits between the canvas, which produces committed edits,
// and a store.Store, which persists them. Creates, deletes, and updates are
// persist-then-apply: the store write happens first and the in-memory board
// changes only after it succeeds, so a failed write never leaves phantom
// state on the canvas. Moves are the one exception: the local position is
// applied first and kept even when the write fails; the failure surfaces
// through the error return and the mutation hooks. The concurrency stance is
// last-write-wins throughout.
//
// The Coordinator carries its map id and collaborators explicitly. Nothing
// in this package reads global state except the observability hook registry.
package mutation

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/geom"
	"github.com/matzehuels/mindgrid/pkg/observability"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// New nodes without an explicit position land on a 3-wide grid around the
// viewport's logical center, filled in creation order. Placement never goes
// below placementMin on either axis.
const (
	placementCols  = 3
	placementCellW = 160.0
	placementCellH = 120.0
	placementMin   = 20.0
)

// Coordinator applies edits to a board and persists them through a Store.
//
// It is bound to a single map for its lifetime. Like the board itself it is
// not safe for concurrent use; the interaction model is single-threaded and
// blocks only inside store calls, which take a context.
type Coordinator struct {
	board    *board.Board
	viewport *geom.Viewport
	store    store.Store
	logger   *log.Logger
	mapID    string
}

// NewCoordinator creates a coordinator for the given board and store.
// viewport may be nil, in which case default placement centers on the
// logical origin. If logger is nil, log.Default() is used.
func NewCoordinator(b *board.Board, vp *geom.Viewport, st store.Store, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		board:    b,
		viewport: vp,
		store:    st,
		logger:   logger,
		mapID:    b.Meta().ID,
	}
}

// Board returns the board this coordinator edits.
func (c *Coordinator) Board() *board.Board { return c.board }

// MapID returns the id of the map this coordinator is bound to.
func (c *Coordinator) MapID() string { return c.mapID }

// track fires the mutation start hook and returns the completion callback.
func (c *Coordinator) track(ctx context.Context, op string) func(error) {
	observability.Mutation().OnMutationStart(ctx, op, c.mapID)
	start := time.Now()
	return func(err error) {
		observability.Mutation().OnMutationComplete(ctx, op, c.mapID, time.Since(start), err)
	}
}

// =============================================================================
// Nodes
// =============================================================================

// CreateNodeOpts describes a node to create. All fields are optional: an
// unset Position triggers default placement, and unset visual attributes
// fall back to the board package defaults.
type CreateNodeOpts struct {
	Text      string
	Position  *geom.Point
	Width     float64
	Height    float64
	Shape     board.Shape
	Color     string
	TextColor string
}

// CreateNode places a new node and persists it. When opts.Position is nil
// the node is placed relative to the viewport's logical center:
//
//	x = center.X + (i mod 3)*160 - 160
//	y = center.Y + (i div 3)*120 - 60
//
// where i is the number of nodes already on the board, with both
// coordinates clamped to a minimum of 20. The board is only modified after
// the store write succeeds.
func (c *Coordinator) CreateNode(ctx context.Context, opts CreateNodeOpts) (node *board.Node, err error) {
	done := c.track(ctx, "create_node")
	defer func() { done(err) }()

	pos := c.defaultPlacement()
	if opts.Position != nil {
		pos = *opts.Position
	}

	now := time.Now().UTC()
	n := &board.Node{
		ID:        board.NewID(),
		MapID:     c.mapID,
		Text:      opts.Text,
		X:         pos.X,
		Y:         pos.Y,
		Width:     opts.Width,
		Height:    opts.Height,
		Shape:     opts.Shape,
		Color:     opts.Color,
		TextColor: opts.TextColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	n.ApplyDefaults()
	if err = n.Validate(); err != nil {
		return nil, err
	}

	if err = c.store.PutNode(ctx, n); err != nil {
		return nil, err
	}
	c.board.UpsertNode(n)

	c.logger.Debug("created node", "node", n.ID, "x", n.X, "y", n.Y)
	return n, nil
}

// defaultPlacement computes the position for the next node without an
// explicit position. The three grid columns straddle the center; rows grow
// downward starting half a cell above it.
func (c *Coordinator) defaultPlacement() geom.Point {
	var center geom.Point
	if c.viewport != nil {
		center = c.viewport.Center()
	}
	i := c.board.NodeCount()
	p := geom.Point{
		X: center.X + float64(i%placementCols)*placementCellW - placementCellW,
		Y: center.Y + float64(i/placementCols)*placementCellH - placementCellH/2,
	}
	if p.X < placementMin {
		p.X = placementMin
	}
	if p.Y < placementMin {
		p.Y = placementMin
	}
	return p
}

// MoveNode sets a node's position. The move applies to the local board
// first; on store failure the moved position is kept and the error is
// returned without rollback.
func (c *Coordinator) MoveNode(ctx context.Context, id string, x, y float64) (err error) {
	done := c.track(ctx, "move_node")
	defer func() { done(err) }()

	n, ok := c.board.Node(id)
	if !ok {
		err = errors.New(errors.ErrCodeNodeNotFound, "cannot move unknown node %s", id)
		return err
	}

	n.X, n.Y = x, y
	n.UpdatedAt = time.Now().UTC()

	if err = c.store.PutNode(ctx, n); err != nil {
		c.logger.Warn("node move not persisted", "node", id, "err", err)
		return err
	}
	return nil
}

// DeleteNode removes a node and its incident connections from the store and
// then from the board. Deleting an absent id succeeds.
func (c *Coordinator) DeleteNode(ctx context.Context, id string) (err error) {
	done := c.track(ctx, "delete_node")
	defer func() { done(err) }()

	if err = c.store.DeleteNode(ctx, c.mapID, id); err != nil {
		return err
	}
	removed := c.board.RemoveNode(id)
	if len(removed) > 0 {
		c.logger.Debug("removed incident connections", "node", id, "count", len(removed))
	}
	return nil
}

// UpdateNodeText changes a node's label. Persist-then-apply: the board keeps
// the old text when the store write fails.
func (c *Coordinator) UpdateNodeText(ctx context.Context, id, text string) (err error) {
	done := c.track(ctx, "update_node")
	defer func() { done(err) }()

	n, ok := c.board.Node(id)
	if !ok {
		err = errors.New(errors.ErrCodeNodeNotFound, "cannot update unknown node %s", id)
		return err
	}

	updated := *n
	updated.Text = text
	updated.UpdatedAt = time.Now().UTC()

	if err = c.store.PutNode(ctx, &updated); err != nil {
		return err
	}
	*n = updated
	return nil
}

// NodeStyle describes a partial style update. Zero-valued fields keep the
// node's current attribute.
type NodeStyle struct {
	Shape     board.Shape
	Color     string
	TextColor string
	Width     float64
	Height    float64
}

// UpdateNodeStyle changes a node's shape, colors, or size. Unset fields are
// left as they are; the merged result is validated before it is persisted.
func (c *Coordinator) UpdateNodeStyle(ctx context.Context, id string, style NodeStyle) (err error) {
	done := c.track(ctx, "update_node")
	defer func() { done(err) }()

	n, ok := c.board.Node(id)
	if !ok {
		err = errors.New(errors.ErrCodeNodeNotFound, "cannot update unknown node %s", id)
		return err
	}

	updated := *n
	if style.Shape != "" {
		updated.Shape = style.Shape
	}
	if style.Color != "" {
		updated.Color = style.Color
	}
	if style.TextColor != "" {
		updated.TextColor = style.TextColor
	}
	if style.Width > 0 {
		updated.Width = style.Width
	}
	if style.Height > 0 {
		updated.Height = style.Height
	}
	updated.UpdatedAt = time.Now().UTC()
	if err = updated.Validate(); err != nil {
		return err
	}

	if err = c.store.PutNode(ctx, &updated); err != nil {
		return err
	}
	*n = updated
	return nil
}

// =============================================================================
// Connections
// =============================================================================

// CreateConnection links two existing nodes and persists the connection.
// Both endpoints must exist on the board; duplicate parallel connections and
// self-loops are permitted. The board is only modified after the store write
// succeeds.
func (c *Coordinator) CreateConnection(ctx context.Context, from, to string) (conn *board.Connection, err error) {
	done := c.track(ctx, "create_connection")
	defer func() { done(err) }()

	if _, ok := c.board.Node(from); !ok {
		err = errors.New(errors.ErrCodeNodeNotFound, "source node not found: %s", from)
		return nil, err
	}
	if _, ok := c.board.Node(to); !ok {
		err = errors.New(errors.ErrCodeNodeNotFound, "target node not found: %s", to)
		return nil, err
	}

	conn = &board.Connection{
		ID:        board.NewID(),
		MapID:     c.mapID,
		From:      from,
		To:        to,
		CreatedAt: time.Now().UTC(),
	}

	if err = c.store.PutConnection(ctx, conn); err != nil {
		return nil, err
	}
	// Endpoints were verified above and the board is single-threaded.
	_ = c.board.AddConnection(conn)

	c.logger.Debug("created connection", "from", from, "to", to)
	return conn, nil
}

// DeleteConnection removes a connection from the store and then from the
// board. Deleting an absent id succeeds.
func (c *Coordinator) DeleteConnection(ctx context.Context, id string) (err error) {
	done := c.track(ctx, "delete_connection")
	defer func() { done(err) }()

	if err = c.store.DeleteConnection(ctx, c.mapID, id); err != nil {
		return err
	}
	c.board.RemoveConnection(id)
	return nil
}
