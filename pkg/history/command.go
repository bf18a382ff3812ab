package history

import (
	"fmt"

	"github.com/matzehuels/mapwright/pkg/graph"
)

// Target is the set of document primitives commands replay against.
// [graph.Document] implements it.
type Target interface {
	Node(id string) (graph.Node, bool)
	InsertNode(n graph.Node) error
	ReplaceNode(n graph.Node) bool
	RemoveNode(id string) (graph.Node, bool)
	IncidentEdges(nodeID string) []graph.Edge

	Edge(id string) (graph.Edge, bool)
	InsertEdge(e graph.Edge) error
	ReplaceEdge(e graph.Edge) (bool, error)
	RemoveEdge(id string) (graph.Edge, bool)
}

// Kind names a command variant.
type Kind string

const (
	KindCreateNode Kind = "create-node"
	KindUpdateNode Kind = "update-node"
	KindDeleteNode Kind = "delete-node"
	KindCreateEdge Kind = "create-edge"
	KindUpdateEdge Kind = "update-edge"
	KindDeleteEdge Kind = "delete-edge"
)

// Command is one invertible document mutation.
//
// Every variant holds deep copies taken when it was built, never a reference
// to the live document.
type Command interface {
	Kind() Kind
	// Undo reverts the mutation.
	Undo(t Target) error
	// Redo re-applies the mutation after an Undo.
	Redo(t Target) error
}

// =============================================================================
// Node Commands
// =============================================================================

// CreateNode records a node insertion.
type CreateNode struct {
	Node graph.Node
}

// NewCreateNode captures n.
func NewCreateNode(n graph.Node) *CreateNode { return &CreateNode{Node: n.Clone()} }

func (c *CreateNode) Kind() Kind { return KindCreateNode }

func (c *CreateNode) Undo(t Target) error {
	if _, ok := t.RemoveNode(c.Node.ID); !ok {
		return fmt.Errorf("undo %s: node %q not found", c.Kind(), c.Node.ID)
	}
	return nil
}

func (c *CreateNode) Redo(t Target) error {
	if err := t.InsertNode(c.Node); err != nil {
		return fmt.Errorf("redo %s: %w", c.Kind(), err)
	}
	return nil
}

// UpdateNode records a patch applied to a node.
//
// Redo re-applies Patch to whatever the node looks like at redo time rather
// than restoring a captured "after" state: last writer wins.
type UpdateNode struct {
	Before graph.Node
	Patch  graph.NodePatch
}

// NewUpdateNode captures the node state before the patch and the patch itself.
func NewUpdateNode(before graph.Node, patch graph.NodePatch) *UpdateNode {
	return &UpdateNode{Before: before.Clone(), Patch: patch.Clone()}
}

func (c *UpdateNode) Kind() Kind { return KindUpdateNode }

func (c *UpdateNode) Undo(t Target) error {
	if !t.ReplaceNode(c.Before) {
		return fmt.Errorf("undo %s: node %q not found", c.Kind(), c.Before.ID)
	}
	return nil
}

func (c *UpdateNode) Redo(t Target) error {
	n, ok := t.Node(c.Before.ID)
	if !ok {
		return fmt.Errorf("redo %s: node %q not found", c.Kind(), c.Before.ID)
	}
	c.Patch.Apply(&n)
	t.ReplaceNode(n)
	return nil
}

// DeleteNode records a node removal together with the exact set of edges
// that were cascaded away with it.
type DeleteNode struct {
	Node  graph.Node
	Edges []graph.Edge
}

// NewDeleteNode captures the removed node and its removed edges.
func NewDeleteNode(n graph.Node, edges []graph.Edge) *DeleteNode {
	return &DeleteNode{Node: n.Clone(), Edges: cloneEdges(edges)}
}

func (c *DeleteNode) Kind() Kind { return KindDeleteNode }

// Undo re-inserts the node first, then exactly the captured edges.
func (c *DeleteNode) Undo(t Target) error {
	if err := t.InsertNode(c.Node); err != nil {
		return fmt.Errorf("undo %s: %w", c.Kind(), err)
	}
	for _, e := range c.Edges {
		if err := t.InsertEdge(e); err != nil {
			return fmt.Errorf("undo %s: edge %q: %w", c.Kind(), e.ID, err)
		}
	}
	return nil
}

// Redo cascades again and re-captures the removed edges so a following Undo
// restores what this Redo removed.
func (c *DeleteNode) Redo(t Target) error {
	removed := CascadeDelete(t, c.Node.ID)
	if removed == nil {
		return fmt.Errorf("redo %s: node %q not found", c.Kind(), c.Node.ID)
	}
	c.Edges = removed.Edges
	return nil
}

// CascadeDelete removes a node and every edge incident to it. It returns nil
// if the node does not exist.
func CascadeDelete(t Target, nodeID string) *DeleteNode {
	if _, ok := t.Node(nodeID); !ok {
		return nil
	}
	incident := t.IncidentEdges(nodeID)
	for _, e := range incident {
		t.RemoveEdge(e.ID)
	}
	n, _ := t.RemoveNode(nodeID)
	return &DeleteNode{Node: n, Edges: incident}
}

// =============================================================================
// Edge Commands
// =============================================================================

// CreateEdge records an edge insertion.
type CreateEdge struct {
	Edge graph.Edge
}

// NewCreateEdge captures e.
func NewCreateEdge(e graph.Edge) *CreateEdge { return &CreateEdge{Edge: e.Clone()} }

func (c *CreateEdge) Kind() Kind { return KindCreateEdge }

func (c *CreateEdge) Undo(t Target) error {
	if _, ok := t.RemoveEdge(c.Edge.ID); !ok {
		return fmt.Errorf("undo %s: edge %q not found", c.Kind(), c.Edge.ID)
	}
	return nil
}

func (c *CreateEdge) Redo(t Target) error {
	if err := t.InsertEdge(c.Edge); err != nil {
		return fmt.Errorf("redo %s: %w", c.Kind(), err)
	}
	return nil
}

// UpdateEdge records a patch applied to an edge. Redo replays the patch.
type UpdateEdge struct {
	Before graph.Edge
	Patch  graph.EdgePatch
}

// NewUpdateEdge captures the edge state before the patch and the patch itself.
func NewUpdateEdge(before graph.Edge, patch graph.EdgePatch) *UpdateEdge {
	return &UpdateEdge{Before: before.Clone(), Patch: patch.Clone()}
}

func (c *UpdateEdge) Kind() Kind { return KindUpdateEdge }

func (c *UpdateEdge) Undo(t Target) error {
	ok, err := t.ReplaceEdge(c.Before)
	if err != nil {
		return fmt.Errorf("undo %s: %w", c.Kind(), err)
	}
	if !ok {
		return fmt.Errorf("undo %s: edge %q not found", c.Kind(), c.Before.ID)
	}
	return nil
}

func (c *UpdateEdge) Redo(t Target) error {
	e, ok := t.Edge(c.Before.ID)
	if !ok {
		return fmt.Errorf("redo %s: edge %q not found", c.Kind(), c.Before.ID)
	}
	c.Patch.Apply(&e)
	if _, err := t.ReplaceEdge(e); err != nil {
		return fmt.Errorf("redo %s: %w", c.Kind(), err)
	}
	return nil
}

// DeleteEdge records an edge removal.
type DeleteEdge struct {
	Edge graph.Edge
}

// NewDeleteEdge captures the removed edge.
func NewDeleteEdge(e graph.Edge) *DeleteEdge { return &DeleteEdge{Edge: e.Clone()} }

func (c *DeleteEdge) Kind() Kind { return KindDeleteEdge }

func (c *DeleteEdge) Undo(t Target) error {
	if err := t.InsertEdge(c.Edge); err != nil {
		return fmt.Errorf("undo %s: %w", c.Kind(), err)
	}
	return nil
}

func (c *DeleteEdge) Redo(t Target) error {
	if _, ok := t.RemoveEdge(c.Edge.ID); !ok {
		return fmt.Errorf("redo %s: edge %q not found", c.Kind(), c.Edge.ID)
	}
	return nil
}

func cloneEdges(edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return nil
	}
	out := make([]graph.Edge, len(edges))
	copy(out, edges)
	return out
}
