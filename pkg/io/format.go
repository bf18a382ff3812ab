package io

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/mapwright/pkg/config"
	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
	"github.com/matzehuels/mapwright/pkg/observability"
	"github.com/matzehuels/mapwright/pkg/viewport"
)

// Format identifies an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatSVG      Format = "svg"
	FormatCSV      Format = "csv"
	FormatPlantUML Format = "plantuml"
	FormatDOT      Format = "dot"
)

// Formats lists every export format.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatSVG, FormatCSV, FormatPlantUML, FormatDOT}

var formatAliases = map[string]Format{
	"md":   FormatMarkdown,
	"puml": FormatPlantUML,
	"gv":   FormatDOT,
}

// ParseFormat converts a user-supplied name or common file extension to a
// Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f, ok := formatAliases[s]; ok {
		return f, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension for the format, with leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatPlantUML:
		return ".puml"
	default:
		return "." + string(f)
	}
}

// Options tunes formats that need more than the snapshot.
type Options struct {
	Width    float64 // SVG width, default DefaultSVGWidth
	Height   float64 // SVG height, default DefaultSVGHeight
	Directed bool    // DOT digraph instead of graph
}

// Artifact is one exported file. CSV produces two.
type Artifact struct {
	Suffix string // file name suffix including extension, e.g. ".nodes.csv"
	Data   []byte
}

// Export renders snap in format f.
func Export(ctx context.Context, snap graph.Snapshot, f Format, opts Options) ([]Artifact, error) {
	hooks := observability.Export()
	hooks.OnExportStart(ctx, string(f), len(snap.Nodes))
	start := time.Now()

	arts, err := export(snap, f, opts)

	size := 0
	for _, a := range arts {
		size += len(a.Data)
	}
	hooks.OnExportComplete(ctx, string(f), size, time.Since(start), err)
	return arts, err
}

func export(snap graph.Snapshot, f Format, opts Options) ([]Artifact, error) {
	single := func(s string) []Artifact {
		return []Artifact{{Suffix: f.Extension(), Data: []byte(s)}}
	}

	switch f {
	case FormatJSON:
		data, err := ExportJSON(snap)
		if err != nil {
			return nil, err
		}
		return []Artifact{{Suffix: f.Extension(), Data: data}}, nil
	case FormatMarkdown:
		return single(ExportMarkdown(snap)), nil
	case FormatSVG:
		w, h := opts.Width, opts.Height
		if w <= 0 {
			w = DefaultSVGWidth
		}
		if h <= 0 {
			h = DefaultSVGHeight
		}
		return single(ExportSVG(snap, w, h)), nil
	case FormatCSV:
		nodes, edges := ExportCSV(snap)
		return []Artifact{
			{Suffix: ".nodes.csv", Data: []byte(nodes)},
			{Suffix: ".edges.csv", Data: []byte(edges)},
		}, nil
	case FormatPlantUML:
		return single(GeneratePlantUML(snap)), nil
	case FormatDOT:
		return single(GenerateDOT(snap, opts.Directed)), nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "unknown format %q", f)
	}
}

// ImportResult is a decoded snapshot plus the CSV rows dropped on the way.
type ImportResult struct {
	Snapshot graph.Snapshot
	Dropped  int
	Errors   []*apperrors.RowError
}

// Import decodes data in format f. JSON reads the envelope; CSV reads a
// nodes table and, if edges is non-empty, an edges table. Other formats are
// export-only and fail with ErrCodeUnsupported.
func Import(ctx context.Context, f Format, data, edges []byte) (ImportResult, error) {
	res, err := importSnapshot(f, data, edges)
	observability.Export().OnImport(ctx, string(f), len(res.Snapshot.Nodes), res.Dropped, err)
	return res, err
}

func importSnapshot(f Format, data, edges []byte) (ImportResult, error) {
	switch f {
	case FormatJSON:
		snap, err := ImportJSON(data)
		return ImportResult{Snapshot: snap}, err
	case FormatCSV:
		nodes := ImportNodesFromCSV(string(data))
		res := ImportResult{
			Snapshot: graph.Snapshot{
				Canvas: graph.Canvas{Type: graph.TypeGraph, Title: config.DefaultTitle, Viewport: viewport.New()},
				Nodes:  nodes.Items,
				Edges:  []graph.Edge{},
			},
			Dropped: nodes.Dropped,
			Errors:  nodes.Errors,
		}
		if len(edges) > 0 {
			es := ImportEdgesFromCSV(string(edges))
			res.Snapshot.Edges = es.Items
			res.Dropped += es.Dropped
			res.Errors = append(res.Errors, es.Errors...)
		}
		return res, nil
	default:
		return ImportResult{}, apperrors.New(apperrors.ErrCodeUnsupported, "import from %s is not supported", f)
	}
}
