// Package export runs the load → render → cache pipeline for a map.
//
// This package implements the export path shared by the CLI and the server.
// By centralizing this logic, both entry points render the same artifacts
// for the same options, and both benefit from artifact caching.
//
// # Architecture
//
// An export run has two stages:
//
//  1. Load: Fetch the board from any store.Store (memory, file, Mongo, or
//     the HTTP client store).
//  2. Render: Produce each requested format, consulting the artifact cache
//     first. Artifacts are content-addressed by the hash of the serialized
//     board plus the render options, so a stale cache entry is impossible:
//     any board change changes the key.
//
// # Usage
//
// Create a Runner and execute the export:
//
//	runner := export.NewRunner(st, fileCache, nil, logger)
//	opts := export.Options{Formats: []string{"svg", "outline"}}
//	result, err := runner.Execute(ctx, mapID, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package export

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/observability"
	"github.com/matzehuels/mindgrid/pkg/render"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// Runner encapsulates export execution with artifact caching.
//
// The Runner is stateless except for its collaborators - it doesn't store
// export results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner reading boards from st.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → render pipeline for one map.
func (r *Runner) Execute(ctx context.Context, mapID string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{ArtifactHits: make(map[string]bool)},
	}

	// Stage 1: Load
	loadStart := time.Now()
	b, err := r.Store.LoadBoard(ctx, mapID)
	if err != nil {
		return nil, err
	}
	result.Board = b
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = b.NodeCount()
	result.Stats.ConnectionCount = b.ConnectionCount()

	boardData, err := board.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize board for cache key")
	}
	result.BoardHash = cache.Hash(boardData)

	r.Logger.Info("loaded board",
		"map", mapID,
		"nodes", result.Stats.NodeCount,
		"connections", result.Stats.ConnectionCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Render
	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, hit, err := r.renderWithCache(ctx, b, boardData, result.BoardHash, format, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
		result.CacheInfo.ArtifactHits[format] = hit
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// renderWithCache produces one format, consulting the artifact cache first,
// and reports whether the artifact came from cache.
func (r *Runner) renderWithCache(ctx context.Context, b *board.Board, boardData []byte, boardHash, format string, opts Options) ([]byte, bool, error) {
	cacheKey := r.Keyer.ArtifactKey(boardHash, opts.ArtifactKeyOpts(format))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, format, b.NodeCount())
	data, err := r.renderFormat(b, boardData, format, opts)
	observability.Render().OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))

	return data, false, nil
}

// renderFormat dispatches to the sink for one format.
func (r *Runner) renderFormat(b *board.Board, boardData []byte, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatOutline:
		return render.RenderOutline(b, render.WithIndent(opts.Indent), render.WithBullet(opts.Bullet)), nil

	case FormatMarkdown:
		return render.RenderOutline(b, render.WithIndent(opts.Indent), render.WithBullet(opts.Bullet), render.WithMarkdown()), nil

	case FormatSVG:
		return render.RenderSVG(b, r.svgOptions(opts, true)...), nil

	case FormatPNG:
		// rsvg-convert applies the scale itself, so the base SVG stays at
		// 1x and the two factors do not compound.
		svg := render.RenderSVG(b, r.svgOptions(opts, false)...)
		return render.ToPNG(svg, opts.Scale)

	case FormatPDF:
		svg := render.RenderSVG(b, r.svgOptions(opts, false)...)
		return render.ToPDF(svg)

	case FormatDOT:
		return []byte(render.ToDOT(b)), nil

	case FormatJSON:
		return boardData, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}

func (r *Runner) svgOptions(opts Options, scaled bool) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithPadding(opts.Padding)}
	if scaled {
		svgOpts = append(svgOpts, render.WithScale(opts.Scale))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	return svgOpts
}

// Close releases resources held by the runner (primarily the cache).
// The store is owned by the caller and stays open.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
