// Package history implements undo and redo over document mutations.
//
// Each mutation is recorded as a [Command] carrying just enough deep-copied
// state to invert it. [History] keeps two stacks:
//
//   - undo: bounded by a capacity; recording past the capacity evicts the
//     oldest command.
//   - redo: filled by Undo and emptied by any newly recorded command
//     (branch invalidation). It can never outgrow the undo capacity.
//
// Recording can be switched off. A disabled history drops every command, so
// undo and redo stay unavailable until it is enabled again.
package history

// DefaultCapacity is the default undo stack size.
const DefaultCapacity = 100

// History is a bounded undo/redo log. It is not safe for concurrent use.
type History struct {
	undo     []Command
	redo     []Command
	capacity int
	enabled  bool
}

// New creates an enabled history. A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity, enabled: true}
}

// Record pushes c onto the undo stack and clears the redo stack.
// It returns false, and records nothing, when the history is disabled.
func (h *History) Record(c Command) bool {
	if !h.enabled || c == nil {
		return false
	}
	h.undo = append(h.undo, c)
	if over := len(h.undo) - h.capacity; over > 0 {
		clear(h.undo[:over])
		h.undo = h.undo[over:]
	}
	clear(h.redo)
	h.redo = h.redo[:0]
	return true
}

// Undo pops the newest command, reverts it on t and moves it to the redo
// stack. It returns nil, nil when there is nothing to undo.
//
// A command whose Undo fails is discarded and the error is returned; the
// stacks stay consistent with the document.
func (h *History) Undo(t Target) (Command, error) {
	if len(h.undo) == 0 {
		return nil, nil
	}
	c := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]

	if err := c.Undo(t); err != nil {
		return nil, err
	}
	h.redo = append(h.redo, c)
	return c, nil
}

// Redo pops the newest undone command, re-applies it on t and moves it back
// to the undo stack. It returns nil, nil when there is nothing to redo.
func (h *History) Redo(t Target) (Command, error) {
	if len(h.redo) == 0 {
		return nil, nil
	}
	c := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]

	if err := c.Redo(t); err != nil {
		return nil, err
	}
	h.undo = append(h.undo, c)
	return c, nil
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undoable commands.
func (h *History) Len() int { return len(h.undo) }

// RedoLen returns the number of redoable commands.
func (h *History) RedoLen() int { return len(h.redo) }

// Capacity returns the undo stack bound.
func (h *History) Capacity() int { return h.capacity }

// Enabled reports whether commands are being recorded.
func (h *History) Enabled() bool { return h.enabled }

// SetEnabled switches recording on or off. Disabling also drops both stacks.
func (h *History) SetEnabled(on bool) {
	h.enabled = on
	if !on {
		h.Reset()
	}
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
