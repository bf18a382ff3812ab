package io

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/render/nodelink"
)

// GeneratePlantUML renders snap as a PlantUML deployment-style diagram.
// Group nodes become packages; other nodes become aliased node elements.
func GeneratePlantUML(snap graph.Snapshot) string {
	ids := newAliases(snap)
	var b strings.Builder
	b.WriteString("@startuml\n")
	for _, n := range snap.Nodes {
		if n.IsGroup() {
			fmt.Fprintf(&b, "package \"%s\" {}\n", plantText(n.DisplayLabel()))
			continue
		}
		fmt.Fprintf(&b, "node \"%s\" as %s\n", plantText(n.DisplayLabel()), ids[n.ID])
	}
	for _, e := range snap.Edges {
		fmt.Fprintf(&b, "%s --> %s", ids[e.From], ids[e.To])
		if e.Label != "" {
			fmt.Fprintf(&b, " : %s", oneLine(e.Label))
		}
		b.WriteString("\n")
	}
	b.WriteString("@enduml\n")
	return b.String()
}

// PlantUML string literals have no escape for double quotes.
func plantText(s string) string {
	return strings.ReplaceAll(oneLine(s), `"`, "'")
}

// GenerateDOT renders snap as Graphviz DOT source.
func GenerateDOT(snap graph.Snapshot, directed bool) string {
	return nodelink.ToDOT(snap, nodelink.Options{Directed: directed})
}
