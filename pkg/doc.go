// Package pkg holds the libraries behind mapwright, an editing engine for
// node-and-edge diagrams.
//
// # Overview
//
// A canvas is a document of positioned nodes and directed edges plus view
// state. The packages split along the life of that document:
//
//  1. [graph] - Node, edge and canvas types, the id-indexed document store
//  2. [history] - Invertible commands and the bounded undo/redo log
//  3. [event] - Synchronous publish/subscribe for change notifications
//  4. [viewport] - Zoom, pan and fit geometry
//  5. [engine] - The single entry point tying the above together
//  6. [io] - JSON, Markdown, SVG, CSV, PlantUML and DOT export and import
//  7. [render] - Graphviz rendering with an artifact [cache]
//
// # Architecture
//
//	caller ──► engine ──► graph.Document
//	             │  └───► history (inverse command)
//	             └──────► event.Bus ──► subscribers
//
//	engine.Snapshot() ──► io.Export / render/nodelink
//	io.Import ──► engine.Load
//
// Viewport, selection and canvas fields bypass history. Exporters work on
// snapshots, which are deep copies, so an export never changes after the
// fact.
//
// # Supporting Packages
//
//   - [config]: TOML configuration with defaults and validation
//   - [theme]: named color and size presets for new nodes and edges
//   - [errors]: coded errors shared by the engine, CLI and HTTP service
//   - [observability]: no-op-by-default hooks for metrics and tracing
//   - [buildinfo]: version reporting
package pkg
