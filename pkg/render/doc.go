// Package render groups the Graphviz-backed renderers for mapwright canvases.
//
// # Overview
//
// The text exporters in pkg/io cover formats that are plain text. Raster and
// laid-out vector output needs a layout engine; the [nodelink] subpackage
// provides it through Graphviz:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Directed: true, Styled: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Caching
//
// Rendering is deterministic in the DOT source, so [nodelink.Renderer]
// stores artifacts in a cache.Cache keyed by the hash of the DOT text and
// the output format:
//
//	r := nodelink.NewRenderer(fileCache, cache.NewDefaultKeyer(), logger)
//	svg, err := r.Render(ctx, dot, nodelink.FormatSVG)
//
// [nodelink]: github.com/matzehuels/mapwright/pkg/render/nodelink
package render
