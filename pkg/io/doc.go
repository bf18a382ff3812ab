// Package io converts canvas snapshots to and from text formats.
//
// # Export
//
// Every exporter reads a [graph.Snapshot], an isolated deep copy of a
// canvas, so exports never observe later edits:
//
//   - [ExportJSON]: the round-trippable envelope
//     {version, exportedAt, title, nodes, edges}
//   - [ExportMarkdown]: a Mermaid code block whose grammar follows the
//     diagram type, plus node and relation sections
//   - [ExportSVG]: a static image built from rect, line, polygon and text
//     elements only
//   - [ExportCSV]: separate node and edge tables
//   - [GeneratePlantUML] and [GenerateDOT]: graph description languages
//
// [Export] dispatches by [Format] and reports to the export hooks in
// pkg/observability.
//
// # Import
//
// [ImportJSON] reads the JSON envelope back. Structurally unparsable input
// fails with errors.ErrCodeInvalidFormat. [ImportNodesFromCSV] and
// [ImportEdgesFromCSV] accept the tables written by ExportCSV; malformed
// rows are dropped and reported in the [CSVResult] rather than failing the
// whole import.
//
// # CSV Columns
//
//	nodes: ID,Name,Description,Type,X,Y,Width,Height,Color,BorderColor
//	edges: SourceID,TargetID,Label,Type,Color,LineWidth
//
// String fields are always quoted with embedded quotes doubled; numeric
// fields are never quoted.
package io
