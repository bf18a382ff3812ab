package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/mapwright/pkg/errors"
	"github.com/matzehuels/mapwright/pkg/graph"
)

// CSV headers, in column order.
var (
	NodeColumns = []string{"ID", "Name", "Description", "Type", "X", "Y", "Width", "Height", "Color", "BorderColor"}
	EdgeColumns = []string{"SourceID", "TargetID", "Label", "Type", "Color", "LineWidth"}
)

// =============================================================================
// Export
// =============================================================================

// ExportCSV returns the nodes table and the edges table of snap.
// String fields are always quoted; numbers never are.
func ExportCSV(snap graph.Snapshot) (nodes, edges string) {
	var nb strings.Builder
	nb.WriteString(strings.Join(NodeColumns, ",") + "\n")
	for _, n := range snap.Nodes {
		writeRow(&nb,
			quote(n.ID), quote(n.Label), quote(n.Description), quote(n.Type()),
			csvNum(n.Position.X), csvNum(n.Position.Y), csvNum(n.Size.Width), csvNum(n.Size.Height),
			quote(n.Style.Fill), quote(n.Style.Border),
		)
	}

	var eb strings.Builder
	eb.WriteString(strings.Join(EdgeColumns, ",") + "\n")
	for _, e := range snap.Edges {
		writeRow(&eb,
			quote(e.From), quote(e.To), quote(e.Label), quote(string(e.Kind)),
			quote(e.Style.Color), csvNum(e.Style.Width),
		)
	}
	return nb.String(), eb.String()
}

func writeRow(b *strings.Builder, fields ...string) {
	b.WriteString(strings.Join(fields, ","))
	b.WriteString("\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Import
// =============================================================================

// CSVResult holds the rows an import accepted and a report of the rows it
// dropped.
type CSVResult[T any] struct {
	Items   []T
	Dropped int
	Errors  []*apperrors.RowError
}

func (r *CSVResult[T]) drop(line, columns int, format string, args ...any) {
	r.Dropped++
	r.Errors = append(r.Errors, &apperrors.RowError{
		Line:    line,
		Columns: columns,
		Reason:  fmt.Sprintf(format, args...),
	})
}

// ImportNodesFromCSV parses a nodes table. The first row is a header and is
// skipped. Rows with fewer than ten columns, an invalid id or label, or
// unparsable numbers are dropped and reported; the import never fails as a
// whole.
//
// A Type other than "node" is stored as the node's "type" metadata.
func ImportNodesFromCSV(text string) CSVResult[graph.Node] {
	res := CSVResult[graph.Node]{Items: []graph.Node{}}
	eachRecord(text, func(line int, rec []string, err error) {
		if err != nil {
			res.drop(line, len(rec), "%v", err)
			return
		}
		if len(rec) < len(NodeColumns) {
			res.drop(line, len(rec), "expected %d columns, got %d", len(NodeColumns), len(rec))
			return
		}
		n, err := parseNode(rec)
		if err != nil {
			res.drop(line, len(rec), "%s", apperrors.UserMessage(err))
			return
		}
		res.Items = append(res.Items, n)
	})
	return res
}

func parseNode(rec []string) (graph.Node, error) {
	id := strings.TrimSpace(rec[0])
	if err := apperrors.ValidateID(id); err != nil {
		return graph.Node{}, err
	}
	if err := apperrors.ValidateLabel(rec[1]); err != nil {
		return graph.Node{}, err
	}
	nums, err := parseNums(rec[4:8], NodeColumns[4:8])
	if err != nil {
		return graph.Node{}, err
	}

	n := graph.Node{
		ID:          id,
		Label:       rec[1],
		Description: rec[2],
		Position:    graph.Point{X: nums[0], Y: nums[1]},
		Size:        graph.Size{Width: nums[2], Height: nums[3]},
		Style:       graph.NodeStyle{Fill: rec[8], Border: rec[9]},
	}
	if t := strings.TrimSpace(rec[3]); t != "" && t != graph.NodeTypeDefault {
		n.Metadata = graph.Metadata{graph.MetaType: t}
	}
	return n, nil
}

// ImportEdgesFromCSV parses an edges table with the same reporting as
// [ImportNodesFromCSV]. Rows need six columns. Edges are assigned ids
// "edge-1", "edge-2", ... in row order and get a visible triangle arrow.
// Endpoints are not resolved here; engine.Load rejects dangling edges.
func ImportEdgesFromCSV(text string) CSVResult[graph.Edge] {
	res := CSVResult[graph.Edge]{Items: []graph.Edge{}}
	eachRecord(text, func(line int, rec []string, err error) {
		if err != nil {
			res.drop(line, len(rec), "%v", err)
			return
		}
		if len(rec) < len(EdgeColumns) {
			res.drop(line, len(rec), "expected %d columns, got %d", len(EdgeColumns), len(rec))
			return
		}
		e, err := parseEdge(rec)
		if err != nil {
			res.drop(line, len(rec), "%s", apperrors.UserMessage(err))
			return
		}
		e.ID = fmt.Sprintf("edge-%d", len(res.Items)+1)
		res.Items = append(res.Items, e)
	})
	return res
}

func parseEdge(rec []string) (graph.Edge, error) {
	from, to := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
	for _, id := range []string{from, to} {
		if err := apperrors.ValidateID(id); err != nil {
			return graph.Edge{}, err
		}
	}
	if err := apperrors.ValidateLabel(rec[2]); err != nil {
		return graph.Edge{}, err
	}
	nums, err := parseNums(rec[5:6], EdgeColumns[5:6])
	if err != nil {
		return graph.Edge{}, err
	}

	kind := graph.EdgeKind(strings.ToLower(strings.TrimSpace(rec[3])))
	if kind == "" {
		kind = graph.EdgeCurve
	}
	return graph.Edge{
		Kind:  kind,
		From:  from,
		To:    to,
		Label: rec[2],
		Style: graph.EdgeStyle{Color: rec[4], Width: nums[0]},
		Arrow: graph.Arrow{Visible: true, Kind: graph.ArrowTriangle},
	}, nil
}

func parseNums(fields, names []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrCodeValidation, "invalid %s %q", names[i], f)
		}
		out[i] = v
	}
	return out, nil
}

// eachRecord calls fn for every line after the header, numbered from 1.
// Each line is tokenized on its own, so a broken quote costs only its own
// row. Quoted fields may hold commas and doubled quotes but not line
// breaks. Blank lines are skipped; the first non-blank line is the header.
func eachRecord(text string, fn func(line int, rec []string, err error)) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	header := true
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		rec, err := tokenize(l)
		fn(i+1, rec, err)
	}
}

// tokenize splits one CSV line into fields.
func tokenize(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return rec, pe.Err
	}
	return rec, err
}
