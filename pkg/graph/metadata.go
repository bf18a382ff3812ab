package graph

// Metadata stores arbitrary key-value pairs attached to a node.
// Values decoded from JSON are scalars, []any or map[string]any.
type Metadata map[string]any

// Clone returns a deep copy of m. Nested maps and slices are copied
// recursively so the result shares no mutable state with m.
// A nil map clones to nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case Metadata:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, vv := range t {
			out[k] = vv
		}
		return out
	default:
		return v
	}
}
