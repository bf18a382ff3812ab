package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/mapwright/pkg/viewport"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// DiagramType selects the Markdown export grammar and default layout intent.
type DiagramType string

// Diagram types.
const (
	TypeMindmap  DiagramType = "mindmap"
	TypeTree     DiagramType = "tree"
	TypeGraph    DiagramType = "graph"
	TypeTimeline DiagramType = "timeline"
)

// ParseDiagramType converts a user-supplied string to a DiagramType.
// Matching is case-insensitive; an empty string yields TypeGraph.
func ParseDiagramType(s string) (DiagramType, error) {
	switch t := DiagramType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeGraph, nil
	case TypeMindmap, TypeTree, TypeGraph, TypeTimeline:
		return t, nil
	default:
		return "", fmt.Errorf("unknown diagram type %q", s)
	}
}

// EdgeKind is the drawing style of an edge.
type EdgeKind string

// Edge kinds.
const (
	EdgeCurve    EdgeKind = "curve"
	EdgeStraight EdgeKind = "straight"
	EdgeStep     EdgeKind = "step"
)

// Arrow kinds.
const (
	ArrowTriangle = "triangle"
	ArrowNone     = "none"
)

// Node types stored under MetaType.
const (
	NodeTypeDefault = "node"
	NodeTypeGroup   = "group"
)

// MetaType is the metadata key holding a node's type.
const MetaType = "type"

// =============================================================================
// Node
// =============================================================================

// Point is a canvas position.
type Point = viewport.Point

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeStyle controls how a node box is drawn.
type NodeStyle struct {
	Fill        string  `json:"fill"`
	Border      string  `json:"border"`
	BorderWidth float64 `json:"borderWidth"`
}

// Node is a positioned, sized, labeled graph vertex.
type Node struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Position    Point     `json:"position"`
	Size        Size      `json:"size"`
	Style       NodeStyle `json:"style"`
	FontSize    float64   `json:"fontSize"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	Description string    `json:"description,omitempty"`
	Children    []string  `json:"children,omitempty"` // Used by mindmap export only
}

// Type returns the node type from metadata, or NodeTypeDefault.
func (n *Node) Type() string {
	if s, ok := n.Metadata[MetaType].(string); ok && s != "" {
		return s
	}
	return NodeTypeDefault
}

// IsGroup reports whether the node is a group container.
func (n *Node) IsGroup() bool { return n.Type() == NodeTypeGroup }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Rect returns the node's bounding rectangle.
func (n *Node) Rect() viewport.Rect {
	return viewport.Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.Width, Height: n.Size.Height}
}

// Center returns the center of the node's rectangle.
func (n *Node) Center() Point { return n.Rect().Center() }

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Metadata = n.Metadata.Clone()
	if n.Children != nil {
		n.Children = append([]string(nil), n.Children...)
	}
	return n
}

// =============================================================================
// Edge
// =============================================================================

// EdgeStyle controls how an edge line is drawn.
type EdgeStyle struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Arrow controls the arrowhead at the target end of an edge.
type Arrow struct {
	Visible bool   `json:"visible"`
	Kind    string `json:"kind,omitempty"`
}

// Edge is a typed, directed connection between two node ids.
type Edge struct {
	ID    string    `json:"id"`
	Kind  EdgeKind  `json:"kind"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label,omitempty"`
	Style EdgeStyle `json:"style"`
	Arrow Arrow     `json:"arrow"`
}

// Touches reports whether either endpoint of the edge is nodeID.
func (e *Edge) Touches(nodeID string) bool {
	return e.From == nodeID || e.To == nodeID
}

// Clone returns a copy of the edge. Edges hold no reference types, so this
// is a plain value copy; it exists for symmetry with [Node.Clone].
func (e Edge) Clone() Edge { return e }

// EdgeOptions are the optional fields accepted when creating an edge.
// Zero values are replaced with theme defaults.
type EdgeOptions struct {
	Kind  EdgeKind
	Label string
	Style EdgeStyle
	Arrow *Arrow // nil means the default visible triangle
}

// =============================================================================
// Canvas
// =============================================================================

// Grid configures the background grid and position snapping.
type Grid struct {
	Enabled bool    `json:"enabled" toml:"enabled"`
	Snap    bool    `json:"snap" toml:"snap"`
	Size    float64 `json:"size" toml:"size"`
}

// SnapPoint rounds p to the nearest grid intersection when the grid is
// enabled with snapping on.
func (g Grid) SnapPoint(p Point) Point {
	if !g.Enabled || !g.Snap || g.Size <= 0 {
		return p
	}
	return Point{X: snap(p.X, g.Size), Y: snap(p.Y, g.Size)}
}

func snap(v, size float64) float64 {
	// +0 turns -0 into 0.
	return math.Round(v/size)*size + 0
}

// Canvas holds the document-level fields of a diagram.
type Canvas struct {
	ID           string            `json:"id"`
	Type         DiagramType       `json:"type"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Theme        string            `json:"theme,omitempty"`
	Background   string            `json:"background,omitempty"`
	Grid         Grid              `json:"grid"`
	Viewport     viewport.Viewport `json:"viewport"`
	SelectedNode string            `json:"selectedNode,omitempty"`
	SelectedEdge string            `json:"selectedEdge,omitempty"`
}
