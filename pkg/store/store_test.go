package store

import (
	"context"
	"testing"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// backends returns every local Store implementation under test. Both must
// satisfy the same contract; the tests below run against each.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func mustCreateMap(t *testing.T, s Store, id, title string) {
	t.Helper()
	if err := s.CreateMap(context.Background(), &board.Map{ID: id, Title: title}); err != nil {
		t.Fatalf("CreateMap(%s): %v", id, err)
	}
}

func mustPutNode(t *testing.T, s Store, mapID, nodeID, text string) {
	t.Helper()
	n := &board.Node{ID: nodeID, MapID: mapID, Text: text}
	n.ApplyDefaults()
	if err := s.PutNode(context.Background(), n); err != nil {
		t.Fatalf("PutNode(%s): %v", nodeID, err)
	}
}

func mustPutConn(t *testing.T, s Store, mapID, connID, from, to string) {
	t.Helper()
	c := &board.Connection{ID: connID, MapID: mapID, From: from, To: to}
	if err := s.PutConnection(context.Background(), c); err != nil {
		t.Fatalf("PutConnection(%s): %v", connID, err)
	}
}

func TestStore_MapLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			mustCreateMap(t, s, "m1", "Roadmap")

			m, err := s.GetMap(ctx, "m1")
			if err != nil {
				t.Fatalf("GetMap: %v", err)
			}
			if m.Title != "Roadmap" {
				t.Errorf("Title = %q, want Roadmap", m.Title)
			}
			if m.CreatedAt.IsZero() || m.UpdatedAt.IsZero() {
				t.Error("timestamps not filled on create")
			}

			maps, err := s.ListMaps(ctx)
			if err != nil || len(maps) != 1 {
				t.Fatalf("ListMaps = %v, %v; want one map", maps, err)
			}

			if err := s.RenameMap(ctx, "m1", "Roadmap 2026"); err != nil {
				t.Fatalf("RenameMap: %v", err)
			}
			m, _ = s.GetMap(ctx, "m1")
			if m.Title != "Roadmap 2026" {
				t.Errorf("Title after rename = %q", m.Title)
			}

			if err := s.DeleteMap(ctx, "m1"); err != nil {
				t.Fatalf("DeleteMap: %v", err)
			}
			if _, err := s.GetMap(ctx, "m1"); !errors.IsNotFound(err) {
				t.Errorf("GetMap after delete = %v, want not-found", err)
			}
			// Idempotent
			if err := s.DeleteMap(ctx, "m1"); err != nil {
				t.Errorf("second DeleteMap = %v, want nil", err)
			}
		})
	}
}

func TestStore_CreateMapDuplicate(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			mustCreateMap(t, s, "m1", "One")
			err := s.CreateMap(context.Background(), &board.Map{ID: "m1", Title: "Two"})
			if err == nil {
				t.Fatal("duplicate CreateMap should fail")
			}
		})
	}
}

func TestStore_RenameUnknownMap(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.RenameMap(context.Background(), "nope", "Title")
			if !errors.IsNotFound(err) {
				t.Errorf("RenameMap unknown = %v, want not-found", err)
			}
		})
	}
}

func TestStore_NodeOrderPreserved(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustCreateMap(t, s, "m1", "Order")
			for _, id := range []string{"a", "b", "c"} {
				mustPutNode(t, s, "m1", id, id)
			}

			// Upserting an existing node keeps its slot.
			n := &board.Node{ID: "b", MapID: "m1", Text: "b2"}
			n.ApplyDefaults()
			if err := s.PutNode(ctx, n); err != nil {
				t.Fatalf("upsert: %v", err)
			}

			b, err := s.LoadBoard(ctx, "m1")
			if err != nil {
				t.Fatalf("LoadBoard: %v", err)
			}
			nodes := b.Nodes()
			if len(nodes) != 3 {
				t.Fatalf("NodeCount = %d, want 3", len(nodes))
			}
			for i, want := range []string{"a", "b", "c"} {
				if nodes[i].ID != want {
					t.Errorf("nodes[%d] = %s, want %s", i, nodes[i].ID, want)
				}
			}
			if got, _ := b.Node("b"); got.Text != "b2" {
				t.Errorf("upserted text = %q, want b2", got.Text)
			}
		})
	}
}

func TestStore_PutNodeUnknownMap(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			n := &board.Node{ID: "a", MapID: "ghost"}
			n.ApplyDefaults()
			if err := s.PutNode(context.Background(), n); !errors.IsNotFound(err) {
				t.Errorf("PutNode unknown map = %v, want not-found", err)
			}
		})
	}
}

func TestStore_DeleteNodeCascades(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustCreateMap(t, s, "m1", "Cascade")
			mustPutNode(t, s, "m1", "a", "a")
			mustPutNode(t, s, "m1", "b", "b")
			mustPutConn(t, s, "m1", "ab", "a", "b")
			mustPutConn(t, s, "m1", "bb", "b", "b")
			mustPutConn(t, s, "m1", "aa", "a", "a")

			if err := s.DeleteNode(ctx, "m1", "b"); err != nil {
				t.Fatalf("DeleteNode: %v", err)
			}

			brd, err := s.LoadBoard(ctx, "m1")
			if err != nil {
				t.Fatalf("LoadBoard: %v", err)
			}
			if brd.NodeCount() != 1 {
				t.Errorf("NodeCount = %d, want 1", brd.NodeCount())
			}
			conns := brd.Connections()
			if len(conns) != 1 || conns[0].ID != "aa" {
				t.Errorf("connections after cascade = %v, want only aa", conns)
			}

			// Idempotent
			if err := s.DeleteNode(ctx, "m1", "b"); err != nil {
				t.Errorf("second DeleteNode = %v, want nil", err)
			}
		})
	}
}

func TestStore_ConnectionsAllowDuplicatesAndSelfLoops(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustCreateMap(t, s, "m1", "Dups")
			mustPutNode(t, s, "m1", "a", "a")
			mustPutNode(t, s, "m1", "b", "b")
			mustPutConn(t, s, "m1", "c1", "a", "b")
			mustPutConn(t, s, "m1", "c2", "a", "b")
			mustPutConn(t, s, "m1", "c3", "a", "a")

			b, err := s.LoadBoard(ctx, "m1")
			if err != nil {
				t.Fatalf("LoadBoard: %v", err)
			}
			if b.ConnectionCount() != 3 {
				t.Errorf("ConnectionCount = %d, want 3", b.ConnectionCount())
			}

			if err := s.DeleteConnection(ctx, "m1", "c2"); err != nil {
				t.Fatalf("DeleteConnection: %v", err)
			}
			if err := s.DeleteConnection(ctx, "m1", "c2"); err != nil {
				t.Errorf("second DeleteConnection = %v, want nil", err)
			}

			b, _ = s.LoadBoard(ctx, "m1")
			if b.ConnectionCount() != 2 {
				t.Errorf("ConnectionCount after delete = %d, want 2", b.ConnectionCount())
			}
		})
	}
}

func TestStore_LoadBoardUnknownMap(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.LoadBoard(context.Background(), "ghost"); !errors.IsNotFound(err) {
				t.Errorf("LoadBoard unknown = %v, want not-found", err)
			}
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	mustCreateMap(t, s1, "m1", "Persisted")
	mustPutNode(t, s1, "m1", "a", "hello")

	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore (reopen): %v", err)
	}
	b, err := s2.LoadBoard(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadBoard from second instance: %v", err)
	}
	n, ok := b.Node("a")
	if !ok || n.Text != "hello" {
		t.Errorf("node after reopen = %+v, want text hello", n)
	}
}

func TestFileStore_RejectsPathEscapingIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, id := range []string{"../evil", "a/b", `a\b`} {
		if _, err := s.GetMap(context.Background(), id); errors.GetCode(err) != errors.ErrCodeInvalidID {
			t.Errorf("GetMap(%q) = %v, want invalid-id error", id, err)
		}
	}
}
