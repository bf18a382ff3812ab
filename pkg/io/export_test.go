package io

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mapwright/pkg/engine"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/observability"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// fixedIDs hands out ids in order; the first goes to the canvas.
func fixedIDs(ids ...string) engine.IDGenerator {
	i := 0
	return func() string {
		id := ids[i]
		i++
		return id
	}
}

// twoNodes builds A at (0,0) and B at (100,0) joined by an edge.
func twoNodes(t *testing.T, typ graph.DiagramType, label string) graph.Snapshot {
	t.Helper()
	e := engine.New(engine.WithIDGenerator(fixedIDs("canvas", "A", "B", "e1")))
	if err := e.SetDiagramType(typ); err != nil {
		t.Fatal(err)
	}
	a := e.CreateNode("A", 0, 0, nil)
	b := e.CreateNode("B", 100, 0, nil)
	if _, err := e.CreateEdge(a.ID, b.ID, graph.EdgeOptions{Label: label}); err != nil {
		t.Fatal(err)
	}
	return e.Snapshot()
}

// =============================================================================
// Markdown
// =============================================================================

func TestExportMarkdownTree(t *testing.T) {
	md := ExportMarkdown(twoNodes(t, graph.TypeTree, ""))

	for _, want := range []string{
		"# Untitled\n",
		"```mermaid\ngraph TD\n",
		`    A["A"] --> B["B"]` + "\n",
		"## Nodes",
		"### A",
		"- A → B\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownEdgeLabels(t *testing.T) {
	tests := []struct {
		typ  graph.DiagramType
		want string
		not  string
	}{
		{graph.TypeTree, `A["A"] -->|uses| B["B"]`, ""},
		{graph.TypeGraph, `A["A"] --> B["B"]`, "|uses|"},
		{graph.TypeTimeline, "graph LR", "|uses|"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			md := ExportMarkdown(twoNodes(t, tt.typ, "uses"))
			if !strings.Contains(md, tt.want) {
				t.Errorf("missing %q:\n%s", tt.want, md)
			}
			if tt.not != "" && strings.Contains(md, tt.not) {
				t.Errorf("unexpected %q:\n%s", tt.not, md)
			}
			if !strings.Contains(md, "- A → B (uses)") {
				t.Errorf("relation list missing label:\n%s", md)
			}
		})
	}
}

func TestExportMarkdownMindmap(t *testing.T) {
	snap := graph.Snapshot{
		Canvas: graph.Canvas{Type: graph.TypeMindmap, Title: "Plan (v2)"},
		Nodes: []graph.Node{
			{ID: "root", Label: "Goals", Children: []string{"a"}},
			{ID: "a", Label: "Leaf"},
		},
	}
	md := ExportMarkdown(snap)
	if !strings.Contains(md, "mindmap\n  root((Plan v2))\n    Goals\n```") {
		t.Errorf("unexpected mindmap block:\n%s", md)
	}
}

func TestExportMarkdownEscapes(t *testing.T) {
	snap := graph.Snapshot{
		Canvas: graph.Canvas{Type: graph.TypeTree, Title: "T", Description: "About"},
		Nodes: []graph.Node{
			{ID: "a-1", Label: `say "hi"`, Description: "first"},
			{ID: "b.2", Label: "two\nlines"},
		},
		Edges: []graph.Edge{
			{ID: "e", From: "a-1", To: "b.2"},
			{ID: "dangling", From: "a-1", To: "gone"},
		},
	}
	md := ExportMarkdown(snap)
	for _, want := range []string{
		"# T\n\nAbout\n",
		`a_1["say #quot;hi#quot;"] --> b_2["two<br/>lines"]`,
		"### two lines\n",
		"\nfirst\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "gone") {
		t.Errorf("dangling edge exported:\n%s", md)
	}
}

func TestDiagramAliasesStayDistinct(t *testing.T) {
	snap := graph.Snapshot{
		Canvas: graph.Canvas{Type: graph.TypeTree, Title: "T"},
		Nodes: []graph.Node{
			{ID: "a-b", Label: "One"},
			{ID: "a_b", Label: "Two"},
			{ID: "a.b", Label: "Three"},
			{ID: "a_b_2", Label: "Four"},
			{ID: "c", Label: "C"},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: "a-b", To: "c"},
			{ID: "e2", From: "a_b", To: "c"},
			{ID: "e3", From: "a.b", To: "a_b_2"},
		},
	}

	ids := newAliases(snap)
	seen := map[string]string{}
	for _, n := range snap.Nodes {
		alias := ids[n.ID]
		if prev, ok := seen[alias]; ok {
			t.Errorf("%q and %q share alias %q", prev, n.ID, alias)
		}
		seen[alias] = n.ID
	}
	if ids["a_b"] != "a_b" || ids["a_b_2"] != "a_b_2" || ids["c"] != "c" {
		t.Errorf("valid ids renamed: %v", ids)
	}

	md := ExportMarkdown(snap)
	for _, want := range []string{
		`a_b_3["One"] --> c["C"]`,
		`a_b["Two"] --> c["C"]`,
		`a_b_4["Three"] --> a_b_2["Four"]`,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	puml := GeneratePlantUML(snap)
	for _, want := range []string{
		`node "One" as a_b_3`,
		`node "Two" as a_b`,
		"a_b_3 --> c\n",
		"a_b --> c\n",
	} {
		if !strings.Contains(puml, want) {
			t.Errorf("plantuml missing %q:\n%s", want, puml)
		}
	}
}

// =============================================================================
// SVG
// =============================================================================

func TestExportSVGElements(t *testing.T) {
	snap := graph.Snapshot{
		Canvas: graph.Canvas{Background: "#fafafa", Viewport: viewport.Viewport{Zoom: 3, OffsetX: 10, OffsetY: 20}},
		Nodes: []graph.Node{
			{ID: "a", Label: "<a&b>", Size: graph.Size{Width: 120, Height: 60}},
			{ID: "b", Position: graph.Point{X: 200}, Size: graph.Size{Width: 120, Height: 60}},
		},
		Edges: []graph.Edge{
			{ID: "e", From: "a", To: "b", Style: graph.EdgeStyle{Color: "#f00", Width: 2}, Arrow: graph.Arrow{Visible: true, Kind: graph.ArrowTriangle}},
		},
	}
	svg := ExportSVG(snap, 400, 300)

	for _, want := range []string{
		`width="400" height="300"`,
		`<rect x="0" y="0" width="400" height="300" fill="#fafafa"/>`,
		// Centers (60,30) and (260,30) shifted by the offset, not zoomed.
		`<line x1="70" y1="50" x2="270" y2="50" stroke="#f00" stroke-width="2"/>`,
		// Tip on the left border of b, wings at ±30°.
		`<polygon points="210,50 201.34,55 201.34,45" fill="#f00"/>`,
		`<rect x="10" y="20" width="120" height="60"`,
		`>&lt;a&amp;b&gt;</text>`,
		`>b</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q:\n%s", want, svg)
		}
	}
	for _, banned := range []string{"<path", "<g", "<marker"} {
		if strings.Contains(svg, banned) {
			t.Errorf("svg contains %s", banned)
		}
	}
}

func TestExportSVGHiddenArrow(t *testing.T) {
	snap := twoNodes(t, graph.TypeGraph, "")
	snap.Edges[0].Arrow.Visible = false
	if svg := ExportSVG(snap, 100, 100); strings.Contains(svg, "<polygon") {
		t.Errorf("hidden arrow drawn:\n%s", svg)
	}
}

// =============================================================================
// PlantUML / DOT
// =============================================================================

func TestGeneratePlantUML(t *testing.T) {
	snap := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "g", Label: "Backend", Metadata: graph.Metadata{graph.MetaType: graph.NodeTypeGroup}},
			{ID: "api-1", Label: `The "API"`},
			{ID: "db"},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: "api-1", To: "db", Label: "reads"},
			{ID: "e2", From: "db", To: "api-1"},
		},
	}
	want := `@startuml
package "Backend" {}
node "The 'API'" as api_1
node "db" as db
api_1 --> db : reads
db --> api_1
@enduml
`
	if got := GeneratePlantUML(snap); got != want {
		t.Errorf("GeneratePlantUML =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateDOT(t *testing.T) {
	snap := twoNodes(t, graph.TypeGraph, `say "x"`)
	tests := []struct {
		directed bool
		want     []string
	}{
		{true, []string{"digraph G {", "rankdir=LR;", `"A" [label="A"];`, `"A" -> "B" [label="say \"x\""];`}},
		{false, []string{"graph G {", `"A" -- "B"`}},
	}
	for _, tt := range tests {
		got := GenerateDOT(snap, tt.directed)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("GenerateDOT(directed=%v) missing %q:\n%s", tt.directed, w, got)
			}
		}
	}
}

// =============================================================================
// Dispatch
// =============================================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"MD", FormatMarkdown, false},
		{".svg", FormatSVG, false},
		{"puml", FormatPlantUML, false},
		{"gv", FormatDOT, false},
		{" csv ", FormatCSV, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type exportSpy struct {
	observability.NoopExportHooks
	started, completed []string
	size               int
}

func (s *exportSpy) OnExportStart(_ context.Context, format string, _ int) {
	s.started = append(s.started, format)
}

func (s *exportSpy) OnExportComplete(_ context.Context, format string, size int, _ time.Duration, _ error) {
	s.completed = append(s.completed, format)
	s.size = size
}

func TestExportDispatch(t *testing.T) {
	spy := &exportSpy{}
	observability.SetExportHooks(spy)
	t.Cleanup(observability.Reset)

	snap := twoNodes(t, graph.TypeGraph, "")
	for _, f := range Formats {
		arts, err := Export(context.Background(), snap, f, Options{})
		if err != nil {
			t.Fatalf("Export(%s): %v", f, err)
		}
		want := 1
		if f == FormatCSV {
			want = 2
		}
		if len(arts) != want {
			t.Fatalf("Export(%s) produced %d artifacts, want %d", f, len(arts), want)
		}
		for _, a := range arts {
			if len(a.Data) == 0 {
				t.Errorf("Export(%s) artifact %s is empty", f, a.Suffix)
			}
		}
	}
	if len(spy.started) != len(Formats) || len(spy.completed) != len(Formats) {
		t.Errorf("hooks started=%v completed=%v", spy.started, spy.completed)
	}
	if spy.size == 0 {
		t.Error("OnExportComplete reported zero size")
	}

	if _, err := Export(context.Background(), snap, "xlsx", Options{}); err == nil {
		t.Error("Export(xlsx) succeeded")
	}
}

func TestExportSVGDefaultsSize(t *testing.T) {
	arts, err := Export(context.Background(), graph.Snapshot{}, FormatSVG, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(arts[0].Data), `width="800" height="600"`) {
		t.Errorf("default size not applied:\n%s", arts[0].Data)
	}
}
