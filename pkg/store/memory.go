package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// MemoryStore is an in-memory Store. It is the reference implementation for
// the Store contract and the default backend for tests and `mindgrid serve`
// without a database.
type MemoryStore struct {
	mu sync.RWMutex

	maps map[string]board.Map

	// Per-map contents, with explicit insertion order so LoadBoard preserves
	// creation order.
	nodes     map[string]map[string]board.Node
	nodeOrder map[string][]string
	conns     map[string]map[string]board.Connection
	connOrder map[string][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		maps:      make(map[string]board.Map),
		nodes:     make(map[string]map[string]board.Node),
		nodeOrder: make(map[string][]string),
		conns:     make(map[string]map[string]board.Connection),
		connOrder: make(map[string][]string),
	}
}

// CreateMap persists a new map.
func (s *MemoryStore) CreateMap(ctx context.Context, m *board.Map) error {
	if err := errors.ValidateID(m.ID); err != nil {
		return err
	}
	if err := errors.ValidateTitle(m.Title); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.maps[m.ID]; exists {
		return errors.New(errors.ErrCodeInvalidInput, "map already exists: "+m.ID)
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	s.maps[m.ID] = *m
	s.nodes[m.ID] = make(map[string]board.Node)
	s.conns[m.ID] = make(map[string]board.Connection)
	return nil
}

// GetMap returns map metadata.
func (s *MemoryStore) GetMap(ctx context.Context, id string) (*board.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map not found: "+id)
	}
	return &m, nil
}

// ListMaps returns all maps ordered by creation time.
func (s *MemoryStore) ListMaps(ctx context.Context) ([]board.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]board.Map, 0, len(s.maps))
	for _, m := range s.maps {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// RenameMap updates a map's title.
func (s *MemoryStore) RenameMap(ctx context.Context, id, title string) error {
	if err := errors.ValidateTitle(title); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.maps[id]
	if !ok {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+id)
	}
	m.Title = title
	m.UpdatedAt = time.Now().UTC()
	s.maps[id] = m
	return nil
}

// DeleteMap removes a map and everything in it.
func (s *MemoryStore) DeleteMap(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.maps, id)
	delete(s.nodes, id)
	delete(s.nodeOrder, id)
	delete(s.conns, id)
	delete(s.connOrder, id)
	return nil
}

// LoadBoard assembles the full board for a map.
func (s *MemoryStore) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[mapID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map not found: "+mapID)
	}

	doc := board.Document{Version: board.DocumentVersion, Map: m}
	for _, id := range s.nodeOrder[mapID] {
		doc.Nodes = append(doc.Nodes, s.nodes[mapID][id])
	}
	for _, id := range s.connOrder[mapID] {
		doc.Connections = append(doc.Connections, s.conns[mapID][id])
	}
	return board.ToBoard(doc)
}

// PutNode inserts or replaces a node.
func (s *MemoryStore) PutNode(ctx context.Context, n *board.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[n.MapID]; !ok {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+n.MapID)
	}

	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	if _, exists := s.nodes[n.MapID][n.ID]; !exists {
		s.nodeOrder[n.MapID] = append(s.nodeOrder[n.MapID], n.ID)
	}
	s.nodes[n.MapID][n.ID] = *n
	s.touchLocked(n.MapID, now)
	return nil
}

// DeleteNode removes a node and its incident connections.
func (s *MemoryStore) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[mapID]; !ok {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+mapID)
	}
	if _, exists := s.nodes[mapID][nodeID]; !exists {
		return nil
	}

	delete(s.nodes[mapID], nodeID)
	s.nodeOrder[mapID] = slices.DeleteFunc(s.nodeOrder[mapID], func(id string) bool {
		return id == nodeID
	})

	// Cascade incident connections.
	for id, c := range s.conns[mapID] {
		if c.From == nodeID || c.To == nodeID {
			delete(s.conns[mapID], id)
		}
	}
	s.connOrder[mapID] = slices.DeleteFunc(s.connOrder[mapID], func(id string) bool {
		_, kept := s.conns[mapID][id]
		return !kept
	})

	s.touchLocked(mapID, time.Now().UTC())
	return nil
}

// PutConnection inserts or replaces a connection.
func (s *MemoryStore) PutConnection(ctx context.Context, c *board.Connection) error {
	if err := errors.ValidateID(c.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[c.MapID]; !ok {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+c.MapID)
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if _, exists := s.conns[c.MapID][c.ID]; !exists {
		s.connOrder[c.MapID] = append(s.connOrder[c.MapID], c.ID)
	}
	s.conns[c.MapID][c.ID] = *c
	s.touchLocked(c.MapID, now)
	return nil
}

// DeleteConnection removes a connection.
func (s *MemoryStore) DeleteConnection(ctx context.Context, mapID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[mapID]; !ok {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+mapID)
	}
	if _, exists := s.conns[mapID][connID]; !exists {
		return nil
	}

	delete(s.conns[mapID], connID)
	s.connOrder[mapID] = slices.DeleteFunc(s.connOrder[mapID], func(id string) bool {
		return id == connID
	})
	s.touchLocked(mapID, time.Now().UTC())
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// touchLocked bumps the map's UpdatedAt. Caller holds the write lock.
func (s *MemoryStore) touchLocked(mapID string, now time.Time) {
	m := s.maps[mapID]
	m.UpdatedAt = now
	s.maps[mapID] = m
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
