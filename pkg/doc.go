// Package pkg provides the core libraries for Mindgrid mind mapping.
//
// # Overview
//
// Mindgrid keeps a mind map as a flat board of positioned nodes and directed
// connections, edits it interactively, and exports it to shareable formats.
// The pkg directory is organized into four main areas:
//
//  1. [board] - Domain model (maps, nodes, connections, hit testing)
//  2. [canvas] / [mutation] - Interaction (pointer gestures, validated writes)
//  3. [render] / [export] - Artifacts (SVG, outlines, Graphviz, conversion)
//  4. [store] / [cache] - Persistence (file, MongoDB, remote HTTP, Redis)
//
// # Architecture
//
// The typical data flow through Mindgrid:
//
//	Store (file / memory / MongoDB / remote)
//	         ↓
//	    [board] package (domain model + invariants)
//	         ↓
//	    [canvas] + [mutation] (editing)   or   [outline] + [render] (export)
//	         ↓
//	    persisted board                        SVG/PNG/PDF/DOT/JSON/outline
//
// # Quick Start
//
// Load a map from a local store and render it as SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mindgrid/pkg/render"
//	    "github.com/matzehuels/mindgrid/pkg/store"
//	)
//
//	// 1. Open the store
//	st, _ := store.NewFileStore("maps")
//	defer st.Close(context.Background())
//
//	// 2. Load the board
//	b, _ := st.LoadBoard(context.Background(), mapID)
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(b, render.WithPadding(40))
//
// # Main Packages
//
// ## Domain Model
//
// [board] - The map itself: nodes with positions, sizes, shapes, and colors,
// plus directed connections between them. Enforces referential integrity
// (connections cascade with their endpoints) and provides topmost-wins hit
// testing for the canvas.
//
// [geom] - Points, sizes, rectangles, and the pan/zoom [geom.Viewport] that
// maps between screen and logical coordinates. All interaction math lives on
// logical coordinates so behavior is identical across frontends.
//
// [outline] - Deterministic linearization of a board into a depth-annotated
// sequence. Roots come before children, cycles break at the revisit, and
// every node appears exactly once, so text exports are stable.
//
// ## Interaction
//
// [canvas] - The pointer state machine behind the editor: press, drag, and
// release become selection, node moves, viewport pans, and connection
// gestures. The engine never writes to the board; it reports committed edits
// through a [canvas.CommitHandler].
//
// [mutation] - The write path. A [mutation.Coordinator] validates each edit,
// persists it, and applies it to the in-memory board, keeping both sides
// consistent when the store fails.
//
// ## Artifacts
//
// [render] - Export sinks: exact-geometry SVG of the canvas, plain-text and
// markdown outlines, Graphviz DOT plus auto-layout SVG, and SVG to PDF/PNG
// conversion.
//
// [export] - The export pipeline used by CLI and server. Loads a board,
// renders the requested formats, and caches artifacts keyed by content hash
// so unchanged maps never re-render.
//
// ## Persistence
//
// [store] - The [store.Store] interface with four backends: MemoryStore
// (testing), FileStore (one JSON document per map), MongoStore (server
// deployments), and Client (remote HTTP API). CachedStore wraps any of them
// with read-through caching.
//
// [cache] - Content-addressed caching behind the [cache.Cache] interface:
// FileCache for the CLI, RedisCache for servers, NullCache to disable, and
// ScopedKeyer for namespace isolation.
//
// [session] - CLI login sessions for remote servers: file-backed tokens with
// expiry under the user config directory.
//
// ## Support
//
// [config] - TOML configuration with editor, export, and server sections,
// merged over defaults.
//
// [errors] - Coded errors that travel from the domain layer to HTTP
// responses and CLI messages without losing their cause.
//
// [httputil] - HTTP client plumbing shared by the remote store client:
// retry with backoff and response caching.
//
// [observability] - Redis and MongoDB command logging hooks for debugging
// server deployments.
//
// # Common Workflows
//
// Edit a board programmatically:
//
//	coord := mutation.NewCoordinator(b, vp, st, logger)
//	n, _ := coord.CreateNode(ctx, mutation.CreateNodeOpts{Text: "Idea"})
//	_, _ = coord.CreateConnection(ctx, rootID, n.ID)
//
// Export every format with caching:
//
//	runner := export.NewRunner(st, cache.NewFileCache(dir), cache.NewDefaultKeyer(), logger)
//	defer runner.Close()
//	res, _ := runner.Execute(ctx, mapID, export.Options{Formats: []string{"svg", "md"}})
//
// Serialize a board for the wire:
//
//	doc := board.FromBoard(b)
//	data, _ := json.Marshal(doc)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/canvas/...             # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [board]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/board
// [geom]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/geom
// [outline]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/outline
// [canvas]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/canvas
// [mutation]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/mutation
// [render]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/render
// [export]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/export
// [store]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/observability
package pkg
