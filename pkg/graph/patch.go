package graph

// NodePatch is a shallow field merge applied to a node.
//
// A nil pointer means "leave unchanged". Metadata and Children follow the
// same rule with nil; pass an empty, non-nil value to clear them. A supplied
// Metadata map replaces the node's map as a whole.
type NodePatch struct {
	Label       *string
	Position    *Point
	Size        *Size
	Style       *NodeStyle
	FontSize    *float64
	Metadata    Metadata
	Description *string
	Children    []string
}

// IsEmpty reports whether the patch changes nothing.
func (p NodePatch) IsEmpty() bool {
	return p.Label == nil && p.Position == nil && p.Size == nil && p.Style == nil &&
		p.FontSize == nil && p.Metadata == nil && p.Description == nil && p.Children == nil
}

// Apply merges the patch into n. Reference values are copied so n never
// aliases the patch.
func (p NodePatch) Apply(n *Node) {
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Size != nil {
		n.Size = *p.Size
	}
	if p.Style != nil {
		n.Style = *p.Style
	}
	if p.FontSize != nil {
		n.FontSize = *p.FontSize
	}
	if p.Metadata != nil {
		n.Metadata = p.Metadata.Clone()
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Children != nil {
		n.Children = append([]string{}, p.Children...)
	}
}

// Clone returns a deep copy of the patch.
func (p NodePatch) Clone() NodePatch {
	return NodePatch{
		Label:       clonePtr(p.Label),
		Position:    clonePtr(p.Position),
		Size:        clonePtr(p.Size),
		Style:       clonePtr(p.Style),
		FontSize:    clonePtr(p.FontSize),
		Metadata:    p.Metadata.Clone(),
		Description: clonePtr(p.Description),
		Children:    cloneStrings(p.Children),
	}
}

// EdgePatch is a shallow field merge applied to an edge.
// A nil pointer means "leave unchanged".
type EdgePatch struct {
	Kind  *EdgeKind
	From  *string
	To    *string
	Label *string
	Style *EdgeStyle
	Arrow *Arrow
}

// IsEmpty reports whether the patch changes nothing.
func (p EdgePatch) IsEmpty() bool {
	return p.Kind == nil && p.From == nil && p.To == nil && p.Label == nil && p.Style == nil && p.Arrow == nil
}

// Apply merges the patch into e.
func (p EdgePatch) Apply(e *Edge) {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.From != nil {
		e.From = *p.From
	}
	if p.To != nil {
		e.To = *p.To
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Style != nil {
		e.Style = *p.Style
	}
	if p.Arrow != nil {
		e.Arrow = *p.Arrow
	}
}

// Clone returns a deep copy of the patch.
func (p EdgePatch) Clone() EdgePatch {
	return EdgePatch{
		Kind:  clonePtr(p.Kind),
		From:  clonePtr(p.From),
		To:    clonePtr(p.To),
		Label: clonePtr(p.Label),
		Style: clonePtr(p.Style),
		Arrow: clonePtr(p.Arrow),
	}
}

// Ptr returns a pointer to v. It keeps patch literals short:
//
//	graph.NodePatch{Label: graph.Ptr("Renamed")}
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
