// Package config loads engine settings from TOML.
//
// A configuration file overrides any subset of the defaults:
//
//	[canvas]
//	type  = "mindmap"
//	title = "Roadmap"
//	theme = "forest"
//
//	[viewport]
//	min_zoom = 0.25
//	max_zoom = 4.0
//
//	[history]
//	enabled  = true
//	capacity = 200
//
//	[grid]
//	enabled = true
//	snap    = true
//	size    = 20
//
//	[[themes]]
//	name      = "forest"
//	node_fill = "#e8f5e9"
//
// Unknown keys are rejected so typos surface instead of silently falling
// back to defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/history"
	"github.com/matzehuels/mapwright/pkg/theme"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTitle is used for new canvases and for imports without a title.
	DefaultTitle = "Untitled"

	// DefaultGridSize is the grid spacing in canvas units.
	DefaultGridSize = 20.0
)

// CanvasConfig holds the initial document-level fields.
type CanvasConfig struct {
	Type  string `toml:"type"`
	Title string `toml:"title"`
	Theme string `toml:"theme"`
}

// HistoryConfig controls undo/redo recording.
type HistoryConfig struct {
	Enabled  bool `toml:"enabled"`
	Capacity int  `toml:"capacity"`
}

// Config is the complete engine configuration.
type Config struct {
	Canvas   CanvasConfig    `toml:"canvas"`
	Viewport viewport.Limits `toml:"viewport"`
	History  HistoryConfig   `toml:"history"`
	Grid     graph.Grid      `toml:"grid"`
	Themes   []theme.Theme   `toml:"themes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{
			Type:  string(graph.TypeGraph),
			Title: DefaultTitle,
			Theme: theme.Default,
		},
		Viewport: viewport.DefaultLimits(),
		History: HistoryConfig{
			Enabled:  true,
			Capacity: history.DefaultCapacity,
		},
		Grid: graph.Grid{Size: DefaultGridSize},
	}
}

// Load reads and validates a TOML file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges, names and colors.
func (c Config) Validate() error {
	if _, err := graph.ParseDiagramType(c.Canvas.Type); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "canvas.type")
	}
	if !c.Viewport.Valid() {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"viewport: need 0 < min_zoom <= max_zoom, got [%g, %g]", c.Viewport.Min, c.Viewport.Max)
	}
	if c.History.Capacity < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "history.capacity must not be negative")
	}
	if c.Grid.Size < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "grid.size must not be negative")
	}

	for i, t := range c.Themes {
		if t.Name == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "themes[%d]: name must not be empty", i)
		}
		for field, color := range map[string]string{
			"background":  t.Background,
			"node_fill":   t.NodeFill,
			"node_border": t.NodeBorder,
			"edge_color":  t.EdgeColor,
		} {
			if color == "" {
				continue
			}
			if err := apperrors.ValidateColor(color); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "themes[%d].%s", i, field)
			}
		}
	}

	if _, ok := c.ThemeRegistry().Lookup(c.Canvas.Theme); !ok {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "canvas.theme: unknown theme %q", c.Canvas.Theme)
	}
	return nil
}

// DiagramType returns the parsed canvas type, falling back to graph.
func (c Config) DiagramType() graph.DiagramType {
	t, err := graph.ParseDiagramType(c.Canvas.Type)
	if err != nil {
		return graph.TypeGraph
	}
	return t
}

// ThemeRegistry returns the built-in themes plus those from the config.
func (c Config) ThemeRegistry() *theme.Registry {
	r := theme.NewRegistry()
	for _, t := range c.Themes {
		if t.Name != "" {
			_ = r.Register(t)
		}
	}
	return r
}
