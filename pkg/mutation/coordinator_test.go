package mutation

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/geom"
	"github.com/matzehuels/mindgrid/pkg/observability"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// flakyStore wraps a Store and fails selected write operations on demand.
type flakyStore struct {
	store.Store
	failPutNode bool
	failPutConn bool
	failDeletes bool

	putNodeCalls int
}

func (s *flakyStore) PutNode(ctx context.Context, n *board.Node) error {
	s.putNodeCalls++
	if s.failPutNode {
		return errors.New(errors.ErrCodeInternal, "injected put failure")
	}
	return s.Store.PutNode(ctx, n)
}

func (s *flakyStore) PutConnection(ctx context.Context, c *board.Connection) error {
	if s.failPutConn {
		return errors.New(errors.ErrCodeInternal, "injected put failure")
	}
	return s.Store.PutConnection(ctx, c)
}

func (s *flakyStore) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	if s.failDeletes {
		return errors.New(errors.ErrCodeInternal, "injected delete failure")
	}
	return s.Store.DeleteNode(ctx, mapID, nodeID)
}

func (s *flakyStore) DeleteConnection(ctx context.Context, mapID, connID string) error {
	if s.failDeletes {
		return errors.New(errors.ErrCodeInternal, "injected delete failure")
	}
	return s.Store.DeleteConnection(ctx, mapID, connID)
}

// newTestCoordinator builds a coordinator over an empty map "m1" with an
// 800x600 viewport at zoom 1, so the logical center is (400, 300).
func newTestCoordinator(t *testing.T) (*Coordinator, *flakyStore) {
	t.Helper()
	st := &flakyStore{Store: store.NewMemoryStore()}
	meta := &board.Map{ID: "m1", Title: "test map"}
	if err := st.CreateMap(context.Background(), meta); err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	b := board.New(*meta)
	vp := geom.NewViewport(geom.Size{Width: 800, Height: 600})
	return NewCoordinator(b, vp, st, nil), st
}

// loadPersisted reads the map back through the store, bypassing the local
// board, so tests can tell local and persisted state apart.
func loadPersisted(t *testing.T, st *flakyStore) *board.Board {
	t.Helper()
	b, err := st.Store.LoadBoard(context.Background(), "m1")
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	return b
}

// =============================================================================
// CreateNode
// =============================================================================

func TestCreateNodeDefaultPlacement(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	// Around center (400, 300): three columns, then the next row.
	want := []geom.Point{
		{X: 240, Y: 240},
		{X: 400, Y: 240},
		{X: 560, Y: 240},
		{X: 240, Y: 360},
		{X: 400, Y: 360},
	}
	for i, w := range want {
		n, err := c.CreateNode(ctx, CreateNodeOpts{})
		if err != nil {
			t.Fatalf("CreateNode %d: %v", i, err)
		}
		if n.X != w.X || n.Y != w.Y {
			t.Errorf("node %d placed at (%g, %g), want (%g, %g)", i, n.X, n.Y, w.X, w.Y)
		}
	}
}

func TestCreateNodePlacementTracksNodeCount(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	if _, err := c.CreateNode(ctx, CreateNodeOpts{}); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if err := c.DeleteNode(ctx, a.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	// One node remains, so the next one takes the second grid slot.
	n, err := c.CreateNode(ctx, CreateNodeOpts{})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if n.X != 400 || n.Y != 240 {
		t.Errorf("node placed at (%g, %g), want (400, 240)", n.X, n.Y)
	}
}

func TestCreateNodePlacementClamp(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.viewport.PanBy(400, 300) // logical center moves to (0, 0)

	n, err := c.CreateNode(context.Background(), CreateNodeOpts{})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if n.X != 20 || n.Y != 20 {
		t.Errorf("node placed at (%g, %g), want clamped (20, 20)", n.X, n.Y)
	}
}

func TestCreateNodeExplicitPosition(t *testing.T) {
	c, _ := newTestCoordinator(t)

	n, err := c.CreateNode(context.Background(), CreateNodeOpts{
		Position: &geom.Point{X: 5, Y: 7},
	})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	// Explicit positions are taken verbatim, without clamping.
	if n.X != 5 || n.Y != 7 {
		t.Errorf("node placed at (%g, %g), want (5, 7)", n.X, n.Y)
	}
}

func TestCreateNodeDefaultsAndPersistence(t *testing.T) {
	c, st := newTestCoordinator(t)

	n, err := c.CreateNode(context.Background(), CreateNodeOpts{Text: "idea"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if n.ID == "" || n.MapID != "m1" {
		t.Errorf("identity = (%q, %q), want fresh id on map m1", n.ID, n.MapID)
	}
	if n.Width != 120 || n.Height != 60 {
		t.Errorf("size = %gx%g, want 120x60", n.Width, n.Height)
	}
	if n.Shape != board.ShapeRectangle {
		t.Errorf("shape = %q, want rectangle", n.Shape)
	}
	if n.Color != "#ffffff" || n.TextColor != "#000000" {
		t.Errorf("colors = (%q, %q), want (#ffffff, #000000)", n.Color, n.TextColor)
	}

	persisted := loadPersisted(t, st)
	pn, ok := persisted.Node(n.ID)
	if !ok {
		t.Fatal("created node missing from store")
	}
	if pn.Text != "idea" {
		t.Errorf("persisted text = %q, want %q", pn.Text, "idea")
	}
}

func TestCreateNodeStoreFailureLeavesBoardUnchanged(t *testing.T) {
	c, st := newTestCoordinator(t)
	st.failPutNode = true

	n, err := c.CreateNode(context.Background(), CreateNodeOpts{})
	if err == nil {
		t.Fatal("CreateNode succeeded, want store failure")
	}
	if n != nil {
		t.Errorf("node = %+v, want nil on failure", n)
	}
	if c.Board().NodeCount() != 0 {
		t.Errorf("board has %d nodes after failed create, want 0", c.Board().NodeCount())
	}
}

func TestCreateNodeInvalidColorRejectedBeforeStore(t *testing.T) {
	c, st := newTestCoordinator(t)

	_, err := c.CreateNode(context.Background(), CreateNodeOpts{Color: "red"})
	if !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Fatalf("error = %v, want INVALID_COLOR", err)
	}
	if st.putNodeCalls != 0 {
		t.Errorf("store received %d puts for an invalid node, want 0", st.putNodeCalls)
	}
	if c.Board().NodeCount() != 0 {
		t.Errorf("board has %d nodes, want 0", c.Board().NodeCount())
	}
}

// =============================================================================
// MoveNode
// =============================================================================

func TestMoveNode(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, err := c.CreateNode(ctx, CreateNodeOpts{})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if err := c.MoveNode(ctx, n.ID, 500, 120); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}

	got, _ := c.Board().Node(n.ID)
	if got.X != 500 || got.Y != 120 {
		t.Errorf("local position = (%g, %g), want (500, 120)", got.X, got.Y)
	}
	pn, _ := loadPersisted(t, st).Node(n.ID)
	if pn.X != 500 || pn.Y != 120 {
		t.Errorf("persisted position = (%g, %g), want (500, 120)", pn.X, pn.Y)
	}
}

func TestMoveNodeKeepsPositionOnStoreFailure(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, err := c.CreateNode(ctx, CreateNodeOpts{Position: &geom.Point{X: 100, Y: 100}})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	st.failPutNode = true
	if err := c.MoveNode(ctx, n.ID, 300, 320); err == nil {
		t.Fatal("MoveNode succeeded, want store failure")
	}

	// No rollback: the optimistic position stays even though the store kept
	// the old one.
	got, _ := c.Board().Node(n.ID)
	if got.X != 300 || got.Y != 320 {
		t.Errorf("local position = (%g, %g), want optimistic (300, 320)", got.X, got.Y)
	}
	pn, _ := loadPersisted(t, st).Node(n.ID)
	if pn.X != 100 || pn.Y != 100 {
		t.Errorf("persisted position = (%g, %g), want untouched (100, 100)", pn.X, pn.Y)
	}
}

func TestMoveNodeUnknown(t *testing.T) {
	c, _ := newTestCoordinator(t)

	err := c.MoveNode(context.Background(), "ghost", 1, 2)
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
}

// =============================================================================
// Connections
// =============================================================================

func TestCreateConnection(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	b, _ := c.CreateNode(ctx, CreateNodeOpts{})

	conn, err := c.CreateConnection(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}
	if conn.From != a.ID || conn.To != b.ID {
		t.Errorf("connection = %s->%s, want %s->%s", conn.From, conn.To, a.ID, b.ID)
	}
	if c.Board().ConnectionCount() != 1 {
		t.Errorf("board has %d connections, want 1", c.Board().ConnectionCount())
	}
	if _, ok := loadPersisted(t, st).Connection(conn.ID); !ok {
		t.Error("connection missing from store")
	}
}

func TestCreateConnectionAllowsDuplicatesAndSelfLoops(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	b, _ := c.CreateNode(ctx, CreateNodeOpts{})

	if _, err := c.CreateConnection(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("first connection: %v", err)
	}
	if _, err := c.CreateConnection(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("duplicate parallel connection: %v", err)
	}
	loop, err := c.CreateConnection(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatalf("self-loop: %v", err)
	}
	if !loop.IsSelfLoop() {
		t.Error("IsSelfLoop() = false for a->a")
	}
	if c.Board().ConnectionCount() != 3 {
		t.Errorf("board has %d connections, want 3", c.Board().ConnectionCount())
	}
}

func TestCreateConnectionUnknownEndpoint(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})

	for _, tt := range []struct {
		name     string
		from, to string
	}{
		{"unknown source", "ghost", a.ID},
		{"unknown target", a.ID, "ghost"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateConnection(ctx, tt.from, tt.to)
			if !errors.Is(err, errors.ErrCodeNodeNotFound) {
				t.Errorf("error = %v, want NODE_NOT_FOUND", err)
			}
		})
	}

	if c.Board().ConnectionCount() != 0 {
		t.Errorf("board has %d connections, want 0", c.Board().ConnectionCount())
	}
	if got := loadPersisted(t, st).ConnectionCount(); got != 0 {
		t.Errorf("store has %d connections, want 0", got)
	}
}

func TestCreateConnectionStoreFailureLeavesBoardUnchanged(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	b, _ := c.CreateNode(ctx, CreateNodeOpts{})

	st.failPutConn = true
	if _, err := c.CreateConnection(ctx, a.ID, b.ID); err == nil {
		t.Fatal("CreateConnection succeeded, want store failure")
	}
	if c.Board().ConnectionCount() != 0 {
		t.Errorf("board has %d connections after failed create, want 0", c.Board().ConnectionCount())
	}
}

func TestDeleteConnection(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	conn, err := c.CreateConnection(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}

	if err := c.DeleteConnection(ctx, conn.ID); err != nil {
		t.Fatalf("DeleteConnection: %v", err)
	}
	if c.Board().ConnectionCount() != 0 {
		t.Errorf("board has %d connections, want 0", c.Board().ConnectionCount())
	}
	if got := loadPersisted(t, st).ConnectionCount(); got != 0 {
		t.Errorf("store has %d connections, want 0", got)
	}

	// Idempotent.
	if err := c.DeleteConnection(ctx, conn.ID); err != nil {
		t.Errorf("second delete: %v, want nil", err)
	}
}

// =============================================================================
// DeleteNode
// =============================================================================

func TestDeleteNodeCascades(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	// a -> b, b -> b, a -> a. Deleting b must leave only a -> a.
	a, _ := c.CreateNode(ctx, CreateNodeOpts{})
	b, _ := c.CreateNode(ctx, CreateNodeOpts{})
	if _, err := c.CreateConnection(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("connect a->b: %v", err)
	}
	if _, err := c.CreateConnection(ctx, b.ID, b.ID); err != nil {
		t.Fatalf("connect b->b: %v", err)
	}
	aa, err := c.CreateConnection(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatalf("connect a->a: %v", err)
	}

	if err := c.DeleteNode(ctx, b.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	if _, ok := c.Board().Node(b.ID); ok {
		t.Error("deleted node still on board")
	}
	conns := c.Board().Connections()
	if len(conns) != 1 || conns[0].ID != aa.ID {
		t.Errorf("surviving connections = %v, want only a->a", conns)
	}

	persisted := loadPersisted(t, st)
	if _, ok := persisted.Node(b.ID); ok {
		t.Error("deleted node still in store")
	}
	pconns := persisted.Connections()
	if len(pconns) != 1 || pconns[0].ID != aa.ID {
		t.Errorf("persisted connections = %v, want only a->a", pconns)
	}
}

func TestDeleteNodeIdempotent(t *testing.T) {
	c, _ := newTestCoordinator(t)

	if err := c.DeleteNode(context.Background(), "never-existed"); err != nil {
		t.Errorf("DeleteNode(absent) = %v, want nil", err)
	}
}

func TestDeleteNodeStoreFailureKeepsNode(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, _ := c.CreateNode(ctx, CreateNodeOpts{})
	st.failDeletes = true

	if err := c.DeleteNode(ctx, n.ID); err == nil {
		t.Fatal("DeleteNode succeeded, want store failure")
	}
	if _, ok := c.Board().Node(n.ID); !ok {
		t.Error("node removed from board despite failed store delete")
	}
}

// =============================================================================
// Updates
// =============================================================================

func TestUpdateNodeText(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, _ := c.CreateNode(ctx, CreateNodeOpts{Text: "draft"})
	if err := c.UpdateNodeText(ctx, n.ID, "final"); err != nil {
		t.Fatalf("UpdateNodeText: %v", err)
	}

	got, _ := c.Board().Node(n.ID)
	if got.Text != "final" {
		t.Errorf("local text = %q, want %q", got.Text, "final")
	}
	pn, _ := loadPersisted(t, st).Node(n.ID)
	if pn.Text != "final" {
		t.Errorf("persisted text = %q, want %q", pn.Text, "final")
	}

	if err := c.UpdateNodeText(ctx, "ghost", "x"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestUpdateNodeTextStoreFailureKeepsOldText(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, _ := c.CreateNode(ctx, CreateNodeOpts{Text: "draft"})
	st.failPutNode = true

	if err := c.UpdateNodeText(ctx, n.ID, "final"); err == nil {
		t.Fatal("UpdateNodeText succeeded, want store failure")
	}
	got, _ := c.Board().Node(n.ID)
	if got.Text != "draft" {
		t.Errorf("local text = %q after failed update, want %q", got.Text, "draft")
	}
}

func TestUpdateNodeStylePartial(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, _ := c.CreateNode(ctx, CreateNodeOpts{})
	if err := c.UpdateNodeStyle(ctx, n.ID, NodeStyle{Color: "#ff0000"}); err != nil {
		t.Fatalf("UpdateNodeStyle: %v", err)
	}

	got, _ := c.Board().Node(n.ID)
	if got.Color != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", got.Color)
	}
	// Unset fields keep their values.
	if got.Shape != board.ShapeRectangle || got.Width != 120 || got.TextColor != "#000000" {
		t.Errorf("unset style fields changed: shape=%q width=%g text=%q", got.Shape, got.Width, got.TextColor)
	}
	pn, _ := loadPersisted(t, st).Node(n.ID)
	if pn.Color != "#ff0000" {
		t.Errorf("persisted color = %q, want #ff0000", pn.Color)
	}
}

func TestUpdateNodeStyleValidatesMergedResult(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, _ := c.CreateNode(ctx, CreateNodeOpts{})
	puts := st.putNodeCalls

	err := c.UpdateNodeStyle(ctx, n.ID, NodeStyle{Shape: "triangle"})
	if !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Fatalf("error = %v, want INVALID_SHAPE", err)
	}
	if st.putNodeCalls != puts {
		t.Error("store received a put for an invalid style update")
	}
	got, _ := c.Board().Node(n.ID)
	if got.Shape != board.ShapeRectangle {
		t.Errorf("shape = %q after rejected update, want rectangle", got.Shape)
	}
}

// =============================================================================
// Observability
// =============================================================================

type recordingMutationHooks struct {
	started   []string
	completed []string
	mapIDs    []string
	errs      []error
}

func (h *recordingMutationHooks) OnMutationStart(_ context.Context, op, mapID string) {
	h.started = append(h.started, op)
	h.mapIDs = append(h.mapIDs, mapID)
}

func (h *recordingMutationHooks) OnMutationComplete(_ context.Context, op, _ string, _ time.Duration, err error) {
	h.completed = append(h.completed, op)
	h.errs = append(h.errs, err)
}

func TestMutationHooksFire(t *testing.T) {
	hooks := &recordingMutationHooks{}
	observability.SetMutationHooks(hooks)
	t.Cleanup(observability.Reset)

	c, st := newTestCoordinator(t)
	ctx := context.Background()

	n, err := c.CreateNode(ctx, CreateNodeOpts{})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if err := c.MoveNode(ctx, n.ID, 10, 10); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	st.failDeletes = true
	if err := c.DeleteNode(ctx, n.ID); err == nil {
		t.Fatal("DeleteNode succeeded, want store failure")
	}

	wantOps := []string{"create_node", "move_node", "delete_node"}
	if !slices.Equal(hooks.started, wantOps) {
		t.Errorf("started ops = %v, want %v", hooks.started, wantOps)
	}
	if !slices.Equal(hooks.completed, wantOps) {
		t.Errorf("completed ops = %v, want %v", hooks.completed, wantOps)
	}
	for i, id := range hooks.mapIDs {
		if id != "m1" {
			t.Errorf("hook %d saw map %q, want m1", i, id)
		}
	}
	if hooks.errs[0] != nil || hooks.errs[1] != nil {
		t.Errorf("successful ops reported errors: %v", hooks.errs[:2])
	}
	if hooks.errs[2] == nil {
		t.Error("failed delete not reported to hooks")
	}
}
