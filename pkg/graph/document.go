package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidID is returned by [Document.InsertNode] and
	// [Document.InsertEdge] when the id is empty.
	ErrInvalidID = errors.New("id must not be empty")

	// ErrDuplicateID is returned when an entity with the same id already
	// exists. Node and edge ids share no namespace; uniqueness is per
	// collection.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownSourceNode is returned by [Document.InsertEdge] and
	// [Document.ReplaceEdge] when the From node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Document.InsertEdge] and
	// [Document.ReplaceEdge] when the To node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Document holds the node and edge collections of a canvas.
//
// Lookups are O(1) by id; listing preserves insertion order so exports are
// deterministic. Every value going in or out is cloned.
//
// The zero value is not usable - use NewDocument.
type Document struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// InsertNode adds a copy of n.
func (d *Document) InsertNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateID
	}
	c := n.Clone()
	d.nodes[n.ID] = &c
	d.nodeOrder = append(d.nodeOrder, n.ID)
	return nil
}

// ReplaceNode overwrites the stored node with a copy of n, keeping its
// position in the listing order. Returns false if n.ID is unknown.
func (d *Document) ReplaceNode(n Node) bool {
	if _, ok := d.nodes[n.ID]; !ok {
		return false
	}
	c := n.Clone()
	d.nodes[n.ID] = &c
	return true
}

// RemoveNode deletes the node only. Incident edges are left in place;
// callers cascade with [Document.IncidentEdges] and [Document.RemoveEdge].
func (d *Document) RemoveNode(id string) (Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	delete(d.nodes, id)
	d.nodeOrder = slices.DeleteFunc(d.nodeOrder, func(s string) bool { return s == id })
	return *n, true
}

// HasNode reports whether a node with id exists.
func (d *Document) HasNode(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// Node returns a copy of the node with id.
func (d *Document) Node(id string) (Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (d *Document) Nodes() []Node {
	out := make([]Node, 0, len(d.nodeOrder))
	for _, id := range d.nodeOrder {
		out = append(out, d.nodes[id].Clone())
	}
	return out
}

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int { return len(d.nodes) }

// =============================================================================
// Edges
// =============================================================================

// InsertEdge adds a copy of e. Both endpoints must exist.
func (d *Document) InsertEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidID
	}
	if _, exists := d.edges[e.ID]; exists {
		return ErrDuplicateID
	}
	if err := d.checkEndpoints(e); err != nil {
		return err
	}
	c := e.Clone()
	d.edges[e.ID] = &c
	d.edgeOrder = append(d.edgeOrder, e.ID)
	return nil
}

// ReplaceEdge overwrites the stored edge with a copy of e. Both endpoints
// must exist. Returns false with a nil error if e.ID is unknown.
func (d *Document) ReplaceEdge(e Edge) (bool, error) {
	if _, ok := d.edges[e.ID]; !ok {
		return false, nil
	}
	if err := d.checkEndpoints(e); err != nil {
		return false, err
	}
	c := e.Clone()
	d.edges[e.ID] = &c
	return true, nil
}

func (d *Document) checkEndpoints(e Edge) error {
	if !d.HasNode(e.From) {
		return ErrUnknownSourceNode
	}
	if !d.HasNode(e.To) {
		return ErrUnknownTargetNode
	}
	return nil
}

// RemoveEdge deletes the edge with id.
func (d *Document) RemoveEdge(id string) (Edge, bool) {
	e, ok := d.edges[id]
	if !ok {
		return Edge{}, false
	}
	delete(d.edges, id)
	d.edgeOrder = slices.DeleteFunc(d.edgeOrder, func(s string) bool { return s == id })
	return *e, true
}

// HasEdge reports whether an edge with id exists.
func (d *Document) HasEdge(id string) bool {
	_, ok := d.edges[id]
	return ok
}

// Edge returns a copy of the edge with id.
func (d *Document) Edge(id string) (Edge, bool) {
	e, ok := d.edges[id]
	if !ok {
		return Edge{}, false
	}
	return e.Clone(), true
}

// Edges returns copies of all edges in insertion order.
func (d *Document) Edges() []Edge {
	out := make([]Edge, 0, len(d.edgeOrder))
	for _, id := range d.edgeOrder {
		out = append(out, d.edges[id].Clone())
	}
	return out
}

// EdgeCount returns the number of edges.
func (d *Document) EdgeCount() int { return len(d.edges) }

// IncidentEdges returns copies of every edge whose From or To is nodeID,
// in insertion order.
func (d *Document) IncidentEdges(nodeID string) []Edge {
	var out []Edge
	for _, id := range d.edgeOrder {
		if e := d.edges[id]; e.Touches(nodeID) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Clear removes all nodes and edges.
func (d *Document) Clear() {
	clear(d.nodes)
	clear(d.edges)
	d.nodeOrder = nil
	d.edgeOrder = nil
}
