package graph

import "fmt"

// Snapshot is an isolated copy of a canvas at one point in time.
// Exporters read snapshots; importers produce them.
type Snapshot struct {
	Canvas
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewSnapshot deep-copies the canvas fields and document contents.
func NewSnapshot(c Canvas, d *Document) Snapshot {
	return Snapshot{Canvas: c, Nodes: d.Nodes(), Edges: d.Edges()}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Canvas: s.Canvas}
	if s.Nodes != nil {
		out.Nodes = make([]Node, len(s.Nodes))
		for i, n := range s.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	if s.Edges != nil {
		out.Edges = make([]Edge, len(s.Edges))
		copy(out.Edges, s.Edges)
	}
	return out
}

// NodeIndex maps node ids to their position in s.Nodes.
func (s Snapshot) NodeIndex() map[string]*Node {
	idx := make(map[string]*Node, len(s.Nodes))
	for i := range s.Nodes {
		idx[s.Nodes[i].ID] = &s.Nodes[i]
	}
	return idx
}

// Document builds a fresh document from the snapshot, enforcing id
// uniqueness and edge references. Selection ids that no longer resolve are
// the caller's concern.
func (s Snapshot) Document() (*Document, error) {
	d := NewDocument()
	for _, n := range s.Nodes {
		if err := d.InsertNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := d.InsertEdge(e); err != nil {
			return nil, fmt.Errorf("edge %q (%s→%s): %w", e.ID, e.From, e.To, err)
		}
	}
	return d, nil
}
