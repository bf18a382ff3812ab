// Package engine is the mutable diagram document and the single entry point
// for editing it.
//
// An [Engine] owns one canvas: its nodes and edges, document-level fields,
// selection and viewport. Every node or edge mutation goes through the
// engine, which applies it to the document, records an invertible command
// in the undo history and publishes an event on its bus:
//
//	e := engine.New(engine.WithLogger(logger))
//	a := e.CreateNode("A", 0, 0, nil)
//	b := e.CreateNode("B", 100, 0, nil)
//	if _, err := e.CreateEdge(a.ID, b.ID, graph.EdgeOptions{}); err != nil {
//	    return err
//	}
//	e.Undo() // removes the edge
//
// Canvas fields, selection and viewport changes are applied directly and
// are never recorded in history.
//
// An Engine is not safe for concurrent use. Snapshots are deep copies and
// may be handed to other goroutines.
package engine

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mapwright/pkg/config"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/event"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/history"
	"github.com/matzehuels/mapwright/pkg/theme"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// IDGenerator produces unique ids for canvases, nodes and edges.
type IDGenerator func() string

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for mutation and event diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator replaces the default UUID generator. Tests use it for
// deterministic ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.newID = g
		}
	}
}

// WithConfig applies canvas defaults, zoom limits, history and grid settings
// and registers the configured themes.
func WithConfig(c config.Config) Option {
	return func(e *Engine) { e.cfg = c }
}

// Engine is the diagram document plus its edit history.
type Engine struct {
	cfg     config.Config
	logger  *log.Logger
	newID   IDGenerator
	themes  *theme.Registry
	limits  viewport.Limits
	canvas  graph.Canvas
	doc     *graph.Document
	history *history.History
	bus     *event.Bus
}

// New creates an engine holding an empty canvas.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:    config.Default(),
		logger: log.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.themes = e.cfg.ThemeRegistry()
	e.limits = e.cfg.Viewport
	if !e.limits.Valid() {
		e.limits = viewport.DefaultLimits()
	}
	e.history = history.New(e.cfg.History.Capacity)
	e.history.SetEnabled(e.cfg.History.Enabled)
	e.bus = event.NewBus(e.logger)
	e.doc = graph.NewDocument()

	th := e.themes.Resolve(e.cfg.Canvas.Theme)
	e.canvas = graph.Canvas{
		ID:         e.newID(),
		Type:       e.cfg.DiagramType(),
		Title:      e.cfg.Canvas.Title,
		Theme:      th.Name,
		Background: th.Background,
		Grid:       e.cfg.Grid,
		Viewport:   viewport.New(),
	}
	return e
}

// Events returns the bus the engine publishes on.
func (e *Engine) Events() *event.Bus { return e.bus }

// History returns the undo log. Callers may inspect it or toggle recording
// with SetEnabled; mutating it directly bypasses event publication.
func (e *Engine) History() *history.History { return e.history }

// Themes returns the theme registry used for new nodes and edges.
func (e *Engine) Themes() *theme.Registry { return e.themes }

// Limits returns the zoom limits.
func (e *Engine) Limits() viewport.Limits { return e.limits }

func (e *Engine) theme() theme.Theme { return e.themes.Resolve(e.canvas.Theme) }

func (e *Engine) publish(kind event.Kind, data any) {
	e.bus.Publish(event.Event{Kind: kind, Data: data})
}

// =============================================================================
// Canvas Fields
// =============================================================================

// Canvas returns a copy of the document-level fields.
func (e *Engine) Canvas() graph.Canvas { return e.canvas }

// SetTitle sets the canvas title.
func (e *Engine) SetTitle(title string) { e.canvas.Title = title }

// SetDescription sets the canvas description.
func (e *Engine) SetDescription(desc string) { e.canvas.Description = desc }

// SetDiagramType sets the diagram type used by the Markdown exporter.
func (e *Engine) SetDiagramType(t graph.DiagramType) error {
	parsed, err := graph.ParseDiagramType(string(t))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "set diagram type")
	}
	e.canvas.Type = parsed
	return nil
}

// SetTheme switches the theme for nodes and edges created from now on.
// Existing entities keep their styles. Unknown names are rejected.
func (e *Engine) SetTheme(name string) error {
	th, ok := e.themes.Lookup(name)
	if !ok {
		return apperrors.New(apperrors.ErrCodeNotFound, "unknown theme %q", name)
	}
	e.canvas.Theme = th.Name
	e.canvas.Background = th.Background
	return nil
}

// SetBackground overrides the canvas background color.
func (e *Engine) SetBackground(color string) { e.canvas.Background = color }

// SetGrid replaces the grid settings. Existing positions are not re-snapped.
func (e *Engine) SetGrid(g graph.Grid) { e.canvas.Grid = g }

// =============================================================================
// Selection
// =============================================================================

// Selection returns the selected node and edge ids.
func (e *Engine) Selection() event.Selection {
	return event.Selection{NodeID: e.canvas.SelectedNode, EdgeID: e.canvas.SelectedEdge}
}

// SelectNode selects the node with id and clears any edge selection.
// An empty id clears the node selection. Unknown ids are ignored and
// SelectNode returns false.
func (e *Engine) SelectNode(id string) bool {
	if id != "" && !e.doc.HasNode(id) {
		return false
	}
	e.canvas.SelectedNode = id
	if id != "" {
		e.canvas.SelectedEdge = ""
	}
	e.publish(event.NodeSelect, e.Selection())
	return true
}

// SelectEdge selects the edge with id and clears any node selection.
// An empty id clears the edge selection. Unknown ids are ignored and
// SelectEdge returns false.
func (e *Engine) SelectEdge(id string) bool {
	if id != "" && !e.doc.HasEdge(id) {
		return false
	}
	e.canvas.SelectedEdge = id
	if id != "" {
		e.canvas.SelectedNode = ""
	}
	e.publish(event.NodeSelect, e.Selection())
	return true
}

// ClearSelection deselects everything.
func (e *Engine) ClearSelection() {
	if e.canvas.SelectedNode == "" && e.canvas.SelectedEdge == "" {
		return
	}
	e.canvas.SelectedNode = ""
	e.canvas.SelectedEdge = ""
	e.publish(event.NodeSelect, e.Selection())
}

// revalidateSelection drops selection ids whose entity no longer exists.
func (e *Engine) revalidateSelection() {
	changed := false
	if id := e.canvas.SelectedNode; id != "" && !e.doc.HasNode(id) {
		e.canvas.SelectedNode = ""
		changed = true
	}
	if id := e.canvas.SelectedEdge; id != "" && !e.doc.HasEdge(id) {
		e.canvas.SelectedEdge = ""
		changed = true
	}
	if changed {
		e.publish(event.NodeSelect, e.Selection())
	}
}

// =============================================================================
// Document
// =============================================================================

// Clear removes every node and edge and the selection. It is not recorded;
// the undo history is dropped with the contents it referred to. A selection
// that was set is announced as cleared.
func (e *Engine) Clear() {
	e.doc.Clear()
	e.history.Reset()
	e.ClearSelection()
	e.logger.Debug("canvas cleared", "canvas", e.canvas.ID)
}

// Snapshot returns a deep copy of the canvas and its contents.
func (e *Engine) Snapshot() graph.Snapshot {
	return graph.NewSnapshot(e.canvas, e.doc)
}

// Load replaces the whole canvas with snap, typically the result of an
// import. Ids must be unique and edges must reference existing nodes.
// On success the undo history is reset; on error the engine is unchanged.
func (e *Engine) Load(snap graph.Snapshot) error {
	doc, err := snap.Document()
	if err != nil {
		return loadError(err)
	}

	c := snap.Canvas
	if c.ID == "" {
		c.ID = e.newID()
	}
	if t, err := graph.ParseDiagramType(string(c.Type)); err == nil {
		c.Type = t
	} else {
		c.Type = graph.TypeGraph
	}
	if c.Title == "" {
		c.Title = config.DefaultTitle
	}
	if c.Theme == "" {
		c.Theme = e.canvas.Theme
	}
	if c.Viewport.Zoom == 0 {
		c.Viewport.Zoom = 1
	}
	c.Viewport.Zoom = e.limits.Clamp(c.Viewport.Zoom)

	e.canvas = c
	e.doc = doc
	e.history.Reset()
	e.revalidateSelection()

	e.logger.Debug("canvas loaded", "canvas", c.ID, "nodes", doc.NodeCount(), "edges", doc.EdgeCount())
	return nil
}

func loadError(err error) error {
	if errors.Is(err, graph.ErrUnknownSourceNode) || errors.Is(err, graph.ErrUnknownTargetNode) {
		return apperrors.Wrap(apperrors.ErrCodeInvalidReference, err, "load canvas")
	}
	return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "load canvas")
}
