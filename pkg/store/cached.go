package store

import (
	"context"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/observability"
)

// CachedStore decorates a Store with read-through board caching. LoadBoard
// results are stored as serialized documents; any mutation on a map
// invalidates that map's entry, so readers never see a board older than the
// last write through this process. Typically backed by cache.RedisCache in
// server deployments and cache.FileCache locally.
type CachedStore struct {
	inner Store
	cache cache.Cache
	keyer cache.Keyer
}

// NewCachedStore wraps inner with board caching. A nil cache disables
// caching (NullCache); a nil keyer uses the default.
func NewCachedStore(inner Store, c cache.Cache, keyer cache.Keyer) *CachedStore {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedStore{inner: inner, cache: c, keyer: keyer}
}

func (s *CachedStore) boardKey(mapID string) string {
	return s.keyer.BoardKey(mapID, cache.BoardKeyOpts{})
}

func (s *CachedStore) invalidate(ctx context.Context, mapID string) {
	_ = s.cache.Delete(ctx, s.boardKey(mapID))
}

// LoadBoard returns the cached board when fresh, loading and caching it
// otherwise.
func (s *CachedStore) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	key := s.boardKey(mapID)

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		doc, err := board.UnmarshalDocument(data)
		if err == nil {
			if b, err := board.ToBoard(doc); err == nil {
				observability.Cache().OnCacheHit(ctx, "board")
				return b, nil
			}
		}
		// Undecodable entry: drop it and reload.
		_ = s.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "board")

	b, err := s.inner.LoadBoard(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if data, err := board.MarshalDocument(board.FromBoard(b)); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLBoard); err == nil {
			observability.Cache().OnCacheSet(ctx, "board", len(data))
		}
	}
	return b, nil
}

// CreateMap passes through to the inner store.
func (s *CachedStore) CreateMap(ctx context.Context, m *board.Map) error {
	return s.inner.CreateMap(ctx, m)
}

// GetMap passes through to the inner store.
func (s *CachedStore) GetMap(ctx context.Context, id string) (*board.Map, error) {
	return s.inner.GetMap(ctx, id)
}

// ListMaps passes through to the inner store.
func (s *CachedStore) ListMaps(ctx context.Context) ([]board.Map, error) {
	return s.inner.ListMaps(ctx)
}

// RenameMap invalidates the map's cached board after renaming.
func (s *CachedStore) RenameMap(ctx context.Context, id, title string) error {
	if err := s.inner.RenameMap(ctx, id, title); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// DeleteMap invalidates the map's cached board after deletion.
func (s *CachedStore) DeleteMap(ctx context.Context, id string) error {
	if err := s.inner.DeleteMap(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// PutNode invalidates the map's cached board after the write.
func (s *CachedStore) PutNode(ctx context.Context, n *board.Node) error {
	if err := s.inner.PutNode(ctx, n); err != nil {
		return err
	}
	s.invalidate(ctx, n.MapID)
	return nil
}

// DeleteNode invalidates the map's cached board after the delete.
func (s *CachedStore) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	if err := s.inner.DeleteNode(ctx, mapID, nodeID); err != nil {
		return err
	}
	s.invalidate(ctx, mapID)
	return nil
}

// PutConnection invalidates the map's cached board after the write.
func (s *CachedStore) PutConnection(ctx context.Context, c *board.Connection) error {
	if err := s.inner.PutConnection(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx, c.MapID)
	return nil
}

// DeleteConnection invalidates the map's cached board after the delete.
func (s *CachedStore) DeleteConnection(ctx context.Context, mapID, connID string) error {
	if err := s.inner.DeleteConnection(ctx, mapID, connID); err != nil {
		return err
	}
	s.invalidate(ctx, mapID)
	return nil
}

// Close closes the cache, then the inner store.
func (s *CachedStore) Close(ctx context.Context) error {
	cacheErr := s.cache.Close()
	if err := s.inner.Close(ctx); err != nil {
		return err
	}
	return cacheErr
}

// Ensure CachedStore implements Store.
var _ Store = (*CachedStore)(nil)
