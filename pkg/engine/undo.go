package engine

import (
	"github.com/matzehuels/mapwright/pkg/event"
	"github.com/matzehuels/mapwright/pkg/history"
	"github.com/matzehuels/mapwright/pkg/observability"
)

// CanUndo reports whether Undo would do anything.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Undo reverts the most recent recorded mutation and publishes the events
// describing the reversal. It returns false when there is nothing to undo
// or the command could no longer be applied; such a command is dropped.
func (e *Engine) Undo() bool {
	c, err := e.history.Undo(e.doc)
	return e.replayed("undo", c, err, true)
}

// Redo re-applies the most recently undone mutation.
func (e *Engine) Redo() bool {
	c, err := e.history.Redo(e.doc)
	return e.replayed("redo", c, err, false)
}

func (e *Engine) replayed(action string, c history.Command, err error, undo bool) bool {
	if err != nil {
		e.logger.Warn(action+" failed, command dropped", "err", err)
		observability.Engine().OnHistory(action, "", err)
		return false
	}
	if c == nil {
		return false
	}

	e.logger.Debug(action, "op", c.Kind())
	observability.Engine().OnHistory(action, string(c.Kind()), nil)

	switch c := c.(type) {
	case *history.CreateNode:
		if undo {
			e.publish(event.NodeDelete, c.Node.Clone())
		} else {
			e.publish(event.NodeCreate, c.Node.Clone())
		}
	case *history.UpdateNode:
		if n, ok := e.doc.Node(c.Before.ID); ok {
			e.publish(event.NodeUpdate, n)
		}
	case *history.DeleteNode:
		if undo {
			e.publish(event.NodeCreate, c.Node.Clone())
			for _, edge := range c.Edges {
				e.publish(event.EdgeCreate, edge)
			}
		} else {
			for _, edge := range c.Edges {
				e.publish(event.EdgeDelete, edge)
			}
			e.publish(event.NodeDelete, c.Node.Clone())
		}
	case *history.CreateEdge:
		if undo {
			e.publish(event.EdgeDelete, c.Edge)
		} else {
			e.publish(event.EdgeCreate, c.Edge)
		}
	case *history.UpdateEdge:
		if edge, ok := e.doc.Edge(c.Before.ID); ok {
			e.publish(event.EdgeUpdate, edge)
		}
	case *history.DeleteEdge:
		if undo {
			e.publish(event.EdgeCreate, c.Edge)
		} else {
			e.publish(event.EdgeDelete, c.Edge)
		}
	}

	e.revalidateSelection()
	return true
}
