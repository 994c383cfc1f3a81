package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Mutation hooks
	m := NoopMutationHooks{}
	m.OnMutationStart(ctx, "create_node", "map-1")
	m.OnMutationComplete(ctx, "create_node", "map-1", time.Second, nil)

	// Render hooks
	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "svg", 12)
	r.OnRenderComplete(ctx, "svg", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "board")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost", "/api/maps")
	h.OnResponse(ctx, "GET", "localhost", "/api/maps", 200, time.Second)
	h.OnError(ctx, "GET", "localhost", "/api/maps", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Mutation().(NoopMutationHooks); !ok {
		t.Error("Mutation() should return NoopMutationHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customMutation := &testMutationHooks{}
	SetMutationHooks(customMutation)
	if Mutation() != customMutation {
		t.Error("SetMutationHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Mutation().(NoopMutationHooks); !ok {
		t.Error("Reset() should restore NoopMutationHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testMutationHooks{}
	SetMutationHooks(custom)

	// Setting nil should be ignored
	SetMutationHooks(nil)

	if Mutation() != custom {
		t.Error("SetMutationHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testMutationHooks struct{ NoopMutationHooks }
type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
