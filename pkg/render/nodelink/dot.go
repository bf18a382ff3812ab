// Package nodelink renders canvases as Graphviz node-link diagrams.
//
// [ToDOT] produces DOT source with a left-to-right layout and rounded box
// nodes. The source can be saved for external Graphviz tools or rendered in
// process with [RenderSVG] and [RenderPNG], which use
// [github.com/goccy/go-graphviz] and need no system Graphviz install.
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Directed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Renderer] adds a content-addressed artifact cache in front of rendering.
package nodelink

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mapwright/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Directed selects a digraph with "->" edges; otherwise a graph with
	// "--" edges.
	Directed bool

	// Styled copies node fill and border colors and edge colors into the
	// DOT attributes.
	Styled bool
}

// ToDOT converts a canvas snapshot to Graphviz DOT source.
//
// Each node becomes "id" [label="..."]; each edge becomes "from" -> "to"
// (or --) with a label attribute when the edge has a label. Ids and labels
// are always quoted and escaped.
func ToDOT(snap graph.Snapshot, opts Options) string {
	keyword, op := "graph", "--"
	if opts.Directed {
		keyword, op = "digraph", "->"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s G {\n", keyword)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	b.WriteString("\n")

	for _, n := range snap.Nodes {
		attrs := []string{"label=" + Quote(n.DisplayLabel())}
		if opts.Styled {
			attrs = appendColor(attrs, "fillcolor", n.Style.Fill)
			attrs = appendColor(attrs, "color", n.Style.Border)
		}
		fmt.Fprintf(&b, "  %s [%s];\n", Quote(n.ID), strings.Join(attrs, ", "))
	}

	if len(snap.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range snap.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, "label="+Quote(e.Label))
		}
		if opts.Styled {
			attrs = appendColor(attrs, "color", e.Style.Color)
		}
		fmt.Fprintf(&b, "  %s %s %s", Quote(e.From), op, Quote(e.To))
		if len(attrs) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(attrs, ", "))
		}
		b.WriteString(";\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func appendColor(attrs []string, name, color string) []string {
	if color == "" {
		return attrs
	}
	return append(attrs, name+"="+Quote(color))
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// Quote returns s as a DOT double-quoted string.
func Quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
