package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/mapwright/pkg/config"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// FormatVersion is written to the "version" field of JSON exports.
const FormatVersion = "1.0"

// now is replaced in tests.
var now = time.Now

// Envelope is the JSON document layout. Only version, exportedAt, title,
// nodes and edges are required; the rest carries canvas settings so an
// import restores more than the graph.
type Envelope struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exportedAt"`
	Title       string             `json:"title"`
	Type        graph.DiagramType  `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Theme       string             `json:"theme,omitempty"`
	Background  string             `json:"background,omitempty"`
	Grid        *graph.Grid        `json:"grid,omitempty"`
	Viewport    *viewport.Viewport `json:"viewport,omitempty"`
	Nodes       []graph.Node       `json:"nodes"`
	Edges       []graph.Edge       `json:"edges"`
}

// WriteJSON encodes snap as an indented envelope and writes it to w.
func WriteJSON(snap graph.Snapshot, w io.Writer) error {
	grid, vp := snap.Grid, snap.Viewport
	env := Envelope{
		Version:     FormatVersion,
		ExportedAt:  now().UTC(),
		Title:       snap.Title,
		Type:        snap.Type,
		Description: snap.Description,
		Theme:       snap.Theme,
		Background:  snap.Background,
		Grid:        &grid,
		Viewport:    &vp,
		Nodes:       snap.Nodes,
		Edges:       snap.Edges,
	}
	if env.Nodes == nil {
		env.Nodes = []graph.Node{}
	}
	if env.Edges == nil {
		env.Edges = []graph.Edge{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON returns the JSON envelope for snap.
func ExportJSON(snap graph.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(snap, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON decodes an envelope from r.
//
// Missing nodes or edges decode as empty collections and a missing title
// becomes "Untitled". Input that is not a JSON object of the expected shape
// fails with ErrCodeInvalidFormat. References between nodes and edges are
// not checked here; engine.Load does that.
func ReadJSON(r io.Reader) (graph.Snapshot, error) {
	var env Envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return graph.Snapshot{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode canvas JSON")
	}
	switch _, err := dec.Token(); {
	case err == nil:
		return graph.Snapshot{}, apperrors.New(apperrors.ErrCodeInvalidFormat, "decode canvas JSON: data after the canvas object")
	case !errors.Is(err, io.EOF):
		return graph.Snapshot{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode canvas JSON")
	}

	snap := graph.Snapshot{
		Canvas: graph.Canvas{
			Type:        env.Type,
			Title:       env.Title,
			Description: env.Description,
			Theme:       env.Theme,
			Background:  env.Background,
			Viewport:    viewport.New(),
		},
		Nodes: env.Nodes,
		Edges: env.Edges,
	}
	if snap.Title == "" {
		snap.Title = config.DefaultTitle
	}
	if snap.Type == "" {
		snap.Type = graph.TypeGraph
	}
	if env.Grid != nil {
		snap.Grid = *env.Grid
	}
	if env.Viewport != nil {
		snap.Viewport = *env.Viewport
	}
	if snap.Nodes == nil {
		snap.Nodes = []graph.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []graph.Edge{}
	}
	return snap, nil
}

// ImportJSON decodes an envelope from data. See [ReadJSON].
func ImportJSON(data []byte) (graph.Snapshot, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSONFile reads and decodes the envelope stored at path.
func ImportJSONFile(path string) (graph.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
