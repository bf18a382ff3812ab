package io

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mapwright/pkg/config"
	"github.com/matzehuels/mapwright/pkg/graph"
)

// ExportMarkdown renders snap as a Markdown document with a Mermaid block.
//
// The block grammar follows the diagram type:
//
//   - mindmap: a root named after the title, then one flat line per node
//     that has children (no recursive nesting)
//   - tree: "graph TD" with one labeled edge line per edge
//   - graph, timeline: "graph LR" edge lines without edge labels
//
// Edges whose endpoints are not in snap are skipped. A node section and a
// relation list follow the block.
func ExportMarkdown(snap graph.Snapshot) string {
	title := snap.Title
	if title == "" {
		title = config.DefaultTitle
	}
	nodes := snap.NodeIndex()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if snap.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", snap.Description)
	}

	b.WriteString("```mermaid\n")
	switch snap.Type {
	case graph.TypeMindmap:
		writeMindmap(&b, title, snap.Nodes)
	case graph.TypeTree:
		writeFlowchart(&b, "TD", snap.Edges, nodes, newAliases(snap), true)
	default:
		writeFlowchart(&b, "LR", snap.Edges, nodes, newAliases(snap), false)
	}
	b.WriteString("```\n")

	if len(snap.Nodes) > 0 {
		b.WriteString("\n## Nodes\n")
		for _, n := range snap.Nodes {
			fmt.Fprintf(&b, "\n### %s\n", oneLine(n.DisplayLabel()))
			if n.Description != "" {
				fmt.Fprintf(&b, "\n%s\n", n.Description)
			}
		}
	}

	var relations []string
	for _, e := range snap.Edges {
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		line := fmt.Sprintf("- %s → %s", oneLine(from.DisplayLabel()), oneLine(to.DisplayLabel()))
		if e.Label != "" {
			line += fmt.Sprintf(" (%s)", oneLine(e.Label))
		}
		relations = append(relations, line)
	}
	if len(relations) > 0 {
		b.WriteString("\n## Relations\n\n")
		b.WriteString(strings.Join(relations, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func writeMindmap(b *strings.Builder, title string, nodes []graph.Node) {
	b.WriteString("mindmap\n")
	fmt.Fprintf(b, "  root((%s))\n", mindmapText(title))
	for _, n := range nodes {
		if len(n.Children) == 0 {
			continue
		}
		fmt.Fprintf(b, "    %s\n", mindmapText(n.DisplayLabel()))
	}
}

func writeFlowchart(b *strings.Builder, dir string, edges []graph.Edge, nodes map[string]*graph.Node, ids aliases, labels bool) {
	fmt.Fprintf(b, "graph %s\n", dir)
	for _, e := range edges {
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		arrow := "-->"
		if labels && e.Label != "" {
			arrow = fmt.Sprintf("-->|%s|", mermaidText(e.Label))
		}
		fmt.Fprintf(b, "    %s %s %s\n", mermaidNode(ids, from), arrow, mermaidNode(ids, to))
	}
}

func mermaidNode(ids aliases, n *graph.Node) string {
	return fmt.Sprintf("%s[\"%s\"]", ids[n.ID], mermaidText(n.DisplayLabel()))
}

// aliases maps entity ids onto distinct identifiers that Mermaid and
// PlantUML accept unquoted.
type aliases map[string]string

// newAliases builds the alias table for every node id and edge endpoint in
// snap. Ids that are already valid identifiers keep their spelling. Others
// are sanitized and, when that collides, numbered: "a-b" next to "a_b"
// becomes "a_b_2".
func newAliases(snap graph.Snapshot) aliases {
	ids := make([]string, 0, len(snap.Nodes)+2*len(snap.Edges))
	for _, n := range snap.Nodes {
		ids = append(ids, n.ID)
	}
	for _, e := range snap.Edges {
		ids = append(ids, e.From, e.To)
	}

	a := make(aliases, len(ids))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && sanitizeID(id) == id {
			a[id] = id
			taken[id] = true
		}
	}
	for _, id := range ids {
		if _, ok := a[id]; ok {
			continue
		}
		base := sanitizeID(id)
		if base == "" {
			base = "n"
		}
		alias := base
		for i := 2; taken[alias]; i++ {
			alias = fmt.Sprintf("%s_%d", base, i)
		}
		a[id] = alias
		taken[alias] = true
	}
	return a
}

// sanitizeID replaces every character outside [A-Za-z0-9_] with '_'.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

var mermaidEscaper = strings.NewReplacer(`"`, "#quot;", "|", "#124;", "\r\n", "<br/>", "\n", "<br/>")

func mermaidText(s string) string { return mermaidEscaper.Replace(s) }

// mindmapText strips the shape delimiters Mermaid mindmaps parse.
func mindmapText(s string) string {
	return strings.NewReplacer("(", "", ")", "", "[", "", "]", "", "{", "", "}", "").Replace(oneLine(s))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
