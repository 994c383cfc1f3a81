// Package store defines persistence for maps, nodes, and connections, with
// interchangeable backends: in-memory (tests, demos), JSON files (local
// editing), MongoDB (server deployments), and an HTTP client speaking the
// serve API. CachedStore decorates any backend with board caching.
//
// All operations are context-first and return structured errors from
// pkg/errors. The contract every backend honors:
//
//   - Deletes are idempotent: deleting an absent id succeeds.
//   - PutNode and PutConnection are upserts.
//   - Deleting a node cascades deletion of its incident connections.
//   - A connection may outlive an endpoint (dangling connections are stored;
//     consumers filter them at render time).
package store

import (
	"context"

	"github.com/matzehuels/mindgrid/pkg/board"
)

// Store persists maps and their contents.
type Store interface {
	// CreateMap persists a new map. The caller provides the ID (use
	// board.NewID); zero timestamps are filled in.
	CreateMap(ctx context.Context, m *board.Map) error

	// GetMap returns map metadata. Unknown ids yield a map-not-found error.
	GetMap(ctx context.Context, id string) (*board.Map, error)

	// ListMaps returns all maps ordered by creation time.
	ListMaps(ctx context.Context) ([]board.Map, error)

	// RenameMap updates a map's title.
	RenameMap(ctx context.Context, id, title string) error

	// DeleteMap removes a map and everything in it. Idempotent.
	DeleteMap(ctx context.Context, id string) error

	// LoadBoard assembles the full board for a map: metadata plus nodes and
	// connections in creation order.
	LoadBoard(ctx context.Context, mapID string) (*board.Board, error)

	// PutNode inserts or replaces a node. The map must exist.
	PutNode(ctx context.Context, n *board.Node) error

	// DeleteNode removes a node and its incident connections. Idempotent.
	DeleteNode(ctx context.Context, mapID, nodeID string) error

	// PutConnection inserts or replaces a connection. The map must exist;
	// endpoints are not checked (the coordinator validates them).
	PutConnection(ctx context.Context, c *board.Connection) error

	// DeleteConnection removes a connection. Idempotent.
	DeleteConnection(ctx context.Context, mapID, connID string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
