package engine

import (
	"errors"

	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/event"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/history"
	"github.com/matzehuels/mapwright/pkg/observability"
)

// =============================================================================
// Nodes
// =============================================================================

// CreateNode adds a node at (x, y) with size, colors and font from the
// active theme. The position is snapped when the grid has snapping on.
// meta is deep-copied; nil is allowed.
//
// CreateNode returns a copy of the stored node, or nil if the id generator
// produced an id that is already taken.
func (e *Engine) CreateNode(label string, x, y float64, meta graph.Metadata) *graph.Node {
	return e.CreateNodeWith(label, x, y, meta, graph.NodePatch{})
}

// CreateNodeWith is CreateNode with theme defaults overridden by patch
// before the node is stored. The creation is a single history entry.
func (e *Engine) CreateNodeWith(label string, x, y float64, meta graph.Metadata, patch graph.NodePatch) *graph.Node {
	th := e.theme()
	n := graph.Node{
		ID:       e.newID(),
		Label:    label,
		Position: graph.Point{X: x, Y: y},
		Size:     th.NodeSize(),
		Style:    th.NodeStyle(),
		FontSize: th.FontSize,
		Metadata: meta.Clone(),
	}
	patch.Apply(&n)
	n.Position = e.canvas.Grid.SnapPoint(n.Position)
	if err := e.doc.InsertNode(n); err != nil {
		e.logger.Error("create node", "id", n.ID, "err", err)
		return nil
	}

	e.record(history.NewCreateNode(n), n.ID)
	e.publish(event.NodeCreate, n.Clone())
	return &n
}

// UpdateNode merges patch into the node with id. Unknown ids are a no-op
// returning false. A patched position is snapped like a new one.
func (e *Engine) UpdateNode(id string, patch graph.NodePatch) bool {
	before, ok := e.doc.Node(id)
	if !ok {
		return false
	}

	patch = patch.Clone()
	if patch.Position != nil {
		p := e.canvas.Grid.SnapPoint(*patch.Position)
		patch.Position = &p
	}

	after := before.Clone()
	patch.Apply(&after)
	e.doc.ReplaceNode(after)

	e.record(history.NewUpdateNode(before, patch), id)
	e.publish(event.NodeUpdate, after)
	return true
}

// DeleteNode removes the node with id and every edge touching it.
// Unknown ids are a no-op returning false.
func (e *Engine) DeleteNode(id string) bool {
	cmd := history.CascadeDelete(e.doc, id)
	if cmd == nil {
		return false
	}

	e.record(cmd, id)
	for _, edge := range cmd.Edges {
		e.publish(event.EdgeDelete, edge.Clone())
	}
	e.publish(event.NodeDelete, cmd.Node.Clone())
	e.revalidateSelection()
	return true
}

// Node returns a copy of the node with id.
func (e *Engine) Node(id string) (graph.Node, bool) { return e.doc.Node(id) }

// Nodes returns copies of all nodes in creation order.
func (e *Engine) Nodes() []graph.Node { return e.doc.Nodes() }

// =============================================================================
// Edges
// =============================================================================

// CreateEdge connects two existing nodes. Zero-valued options fall back to
// a curved edge with theme colors and a visible triangle arrow.
// A missing endpoint fails with ErrCodeInvalidReference.
func (e *Engine) CreateEdge(from, to string, opts graph.EdgeOptions) (*graph.Edge, error) {
	th := e.theme()
	edge := graph.Edge{
		ID:    e.newID(),
		Kind:  opts.Kind,
		From:  from,
		To:    to,
		Label: opts.Label,
		Style: opts.Style,
		Arrow: graph.Arrow{Visible: true, Kind: graph.ArrowTriangle},
	}
	if edge.Kind == "" {
		edge.Kind = graph.EdgeCurve
	}
	if edge.Style.Color == "" {
		edge.Style.Color = th.EdgeColor
	}
	if edge.Style.Width == 0 {
		edge.Style.Width = th.EdgeWidth
	}
	if opts.Arrow != nil {
		edge.Arrow = *opts.Arrow
	}

	if err := e.doc.InsertEdge(edge); err != nil {
		return nil, edgeError(err, "create edge %s→%s", from, to)
	}

	e.record(history.NewCreateEdge(edge), edge.ID)
	e.publish(event.EdgeCreate, edge)
	return &edge, nil
}

// UpdateEdge merges patch into the edge with id. Unknown ids are a no-op
// returning false and a nil error. If the patched edge would point at a
// missing node it fails with ErrCodeInvalidReference and nothing changes.
func (e *Engine) UpdateEdge(id string, patch graph.EdgePatch) (bool, error) {
	before, ok := e.doc.Edge(id)
	if !ok {
		return false, nil
	}

	patch = patch.Clone()
	after := before
	patch.Apply(&after)
	if _, err := e.doc.ReplaceEdge(after); err != nil {
		return false, edgeError(err, "update edge %q", id)
	}

	e.record(history.NewUpdateEdge(before, patch), id)
	e.publish(event.EdgeUpdate, after)
	return true, nil
}

// DeleteEdge removes the edge with id. Unknown ids are a no-op returning
// false.
func (e *Engine) DeleteEdge(id string) bool {
	edge, ok := e.doc.RemoveEdge(id)
	if !ok {
		return false
	}

	e.record(history.NewDeleteEdge(edge), id)
	e.publish(event.EdgeDelete, edge)
	e.revalidateSelection()
	return true
}

// Edge returns a copy of the edge with id.
func (e *Engine) Edge(id string) (graph.Edge, bool) { return e.doc.Edge(id) }

// Edges returns copies of all edges in creation order.
func (e *Engine) Edges() []graph.Edge { return e.doc.Edges() }

func edgeError(err error, format string, args ...any) error {
	if errors.Is(err, graph.ErrUnknownSourceNode) || errors.Is(err, graph.ErrUnknownTargetNode) {
		return apperrors.Wrap(apperrors.ErrCodeInvalidReference, err, format, args...)
	}
	return apperrors.Wrap(apperrors.ErrCodeInternal, err, format, args...)
}

func (e *Engine) record(c history.Command, id string) {
	e.history.Record(c)
	e.logger.Debug("mutation", "op", c.Kind(), "id", id)
	observability.Engine().OnMutation(string(c.Kind()), id)
}
