// Package theme supplies the visual defaults applied to newly created nodes
// and edges.
//
// Only a small built-in set ships with the engine. Additional themes are
// registered from configuration.
package theme

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/mapwright/pkg/graph"
)

// Built-in theme names.
const (
	Default = "default"
	Dark    = "dark"
)

// Theme is a named set of defaults.
type Theme struct {
	Name            string  `toml:"name"`
	Background      string  `toml:"background"`
	NodeFill        string  `toml:"node_fill"`
	NodeBorder      string  `toml:"node_border"`
	NodeBorderWidth float64 `toml:"node_border_width"`
	NodeWidth       float64 `toml:"node_width"`
	NodeHeight      float64 `toml:"node_height"`
	FontSize        float64 `toml:"font_size"`
	EdgeColor       string  `toml:"edge_color"`
	EdgeWidth       float64 `toml:"edge_width"`
}

// NodeStyle returns the node style for this theme.
func (t Theme) NodeStyle() graph.NodeStyle {
	return graph.NodeStyle{Fill: t.NodeFill, Border: t.NodeBorder, BorderWidth: t.NodeBorderWidth}
}

// NodeSize returns the default node size for this theme.
func (t Theme) NodeSize() graph.Size {
	return graph.Size{Width: t.NodeWidth, Height: t.NodeHeight}
}

// EdgeStyle returns the edge style for this theme.
func (t Theme) EdgeStyle() graph.EdgeStyle {
	return graph.EdgeStyle{Color: t.EdgeColor, Width: t.EdgeWidth}
}

// WithDefaults fills zero fields of t from base.
func (t Theme) WithDefaults(base Theme) Theme {
	if t.Background == "" {
		t.Background = base.Background
	}
	if t.NodeFill == "" {
		t.NodeFill = base.NodeFill
	}
	if t.NodeBorder == "" {
		t.NodeBorder = base.NodeBorder
	}
	if t.NodeBorderWidth == 0 {
		t.NodeBorderWidth = base.NodeBorderWidth
	}
	if t.NodeWidth == 0 {
		t.NodeWidth = base.NodeWidth
	}
	if t.NodeHeight == 0 {
		t.NodeHeight = base.NodeHeight
	}
	if t.FontSize == 0 {
		t.FontSize = base.FontSize
	}
	if t.EdgeColor == "" {
		t.EdgeColor = base.EdgeColor
	}
	if t.EdgeWidth == 0 {
		t.EdgeWidth = base.EdgeWidth
	}
	return t
}

var builtin = map[string]Theme{
	Default: {
		Name:            Default,
		Background:      "#ffffff",
		NodeFill:        "#e3f2fd",
		NodeBorder:      "#1976d2",
		NodeBorderWidth: 2,
		NodeWidth:       120,
		NodeHeight:      60,
		FontSize:        14,
		EdgeColor:       "#666666",
		EdgeWidth:       2,
	},
	Dark: {
		Name:            Dark,
		Background:      "#1e1e1e",
		NodeFill:        "#2d2d30",
		NodeBorder:      "#569cd6",
		NodeBorderWidth: 2,
		NodeWidth:       120,
		NodeHeight:      60,
		FontSize:        14,
		EdgeColor:       "#cccccc",
		EdgeWidth:       2,
	},
}

// Registry resolves theme names. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	themes map[string]Theme
}

// NewRegistry returns a registry holding the built-in themes.
func NewRegistry() *Registry {
	return &Registry{themes: maps.Clone(builtin)}
}

// Register adds or replaces a theme. Missing fields are filled from the
// default theme.
func (r *Registry) Register(t Theme) error {
	if t.Name == "" {
		return fmt.Errorf("theme name must not be empty")
	}
	r.themes[t.Name] = t.WithDefaults(builtin[Default])
	return nil
}

// Lookup returns the named theme.
func (r *Registry) Lookup(name string) (Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

// Resolve returns the named theme or the default theme when unknown.
func (r *Registry) Resolve(name string) Theme {
	if t, ok := r.themes[name]; ok {
		return t
	}
	return r.themes[Default]
}

// Names returns the registered theme names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.themes))
}
