package store

import (
	"context"
	"testing"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// countingStore wraps a Store and counts LoadBoard calls that reach it.
type countingStore struct {
	Store
	loads int
}

func (c *countingStore) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	c.loads++
	return c.Store.LoadBoard(ctx, mapID)
}

func newCachedFixture(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()
	inner := &countingStore{Store: NewMemoryStore()}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewCachedStore(inner, fc, nil), inner
}

func TestCachedStore_LoadBoardReadThrough(t *testing.T) {
	ctx := context.Background()
	s, inner := newCachedFixture(t)

	mustCreateMap(t, s, "m1", "Cached")
	mustPutNode(t, s, "m1", "a", "a")

	if _, err := s.LoadBoard(ctx, "m1"); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	if _, err := s.LoadBoard(ctx, "m1"); err != nil {
		t.Fatalf("LoadBoard (cached): %v", err)
	}
	if inner.loads != 1 {
		t.Errorf("inner loads = %d, want 1 (second read from cache)", inner.loads)
	}
}

func TestCachedStore_MutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	s, inner := newCachedFixture(t)

	mustCreateMap(t, s, "m1", "Cached")
	mustPutNode(t, s, "m1", "a", "a")

	if _, err := s.LoadBoard(ctx, "m1"); err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	// A write through the decorator drops the cached board.
	mustPutNode(t, s, "m1", "b", "b")

	b, err := s.LoadBoard(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadBoard after write: %v", err)
	}
	if inner.loads != 2 {
		t.Errorf("inner loads = %d, want 2 (cache invalidated)", inner.loads)
	}
	if _, ok := b.Node("b"); !ok {
		t.Error("new node missing from reloaded board")
	}

	if err := s.DeleteNode(ctx, "m1", "b"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	b, _ = s.LoadBoard(ctx, "m1")
	if _, ok := b.Node("b"); ok {
		t.Error("deleted node still visible through cache")
	}
}

func TestCachedStore_NotFoundPassesThrough(t *testing.T) {
	s, _ := newCachedFixture(t)
	if _, err := s.LoadBoard(context.Background(), "ghost"); !errors.IsNotFound(err) {
		t.Errorf("LoadBoard unknown = %v, want not-found", err)
	}
}

func TestCachedStore_NilCacheDisablesCaching(t *testing.T) {
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachedStore(inner, nil, nil)

	mustCreateMap(t, s, "m1", "Null")
	ctx := context.Background()
	_, _ = s.LoadBoard(ctx, "m1")
	_, _ = s.LoadBoard(ctx, "m1")
	if inner.loads != 2 {
		t.Errorf("inner loads = %d, want 2 with NullCache", inner.loads)
	}
}
