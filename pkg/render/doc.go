// Package render turns boards into export artifacts.
//
// # Overview
//
// This package contains the sinks that transform a [board.Board] into
// shareable outputs:
//
//   - Exact-geometry SVG of the canvas ([RenderSVG])
//   - Plain-text and markdown outlines ([RenderOutline])
//   - Graphviz DOT and auto-layout SVG ([ToDOT], [RenderDOTSVG])
//   - Generic format conversion, SVG to PDF/PNG ([ToPDF], [ToPNG])
//
// # Exact-Geometry SVG
//
// [RenderSVG] draws the board as the editor shows it: every node at its
// stored position with its stored shape and colors, connections as arrows
// between shape borders. The viewBox is fitted to the content. Options
// follow the functional pattern:
//
//	svg := render.RenderSVG(b, render.WithPadding(60), render.WithTitle("Roadmap"))
//
// # Outlines
//
// [RenderOutline] serializes the deterministic linearization from
// [outline.Linearize] as indented text, one node per line. The markdown
// flavor adds the map title as a heading.
//
// # Graphviz
//
// [ToDOT] emits the board as a DOT digraph, one statement per node and
// connection. [RenderDOTSVG] runs Graphviz layout over it, producing an
// alternative auto-arranged view that ignores stored positions.
//
//	dot := render.ToDOT(b)
//	svg, err := render.RenderDOTSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg). They work on both exact-geometry and
// Graphviz SVGs.
package render
