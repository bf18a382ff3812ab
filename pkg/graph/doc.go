// Package graph defines the diagram data model and the keyed collections
// that hold it.
//
// This package is the single source of truth for the document shape shared
// by the engine, the undo history, the exporters and the importers.
//
// # Core Types
//
//   - [Node]: positioned, sized, labeled vertex
//   - [Edge]: typed, directed connection between two node ids
//   - [Canvas]: document-level fields (title, type, theme, viewport, selection)
//   - [Document]: insertion-ordered, id-indexed node and edge collections
//   - [Snapshot]: isolated deep copy of a canvas and its document
//
// # Diagram Types
//
//	graph.TypeMindmap   // "mindmap"
//	graph.TypeTree      // "tree"
//	graph.TypeGraph     // "graph"
//	graph.TypeTimeline  // "timeline"
//
// # Isolation
//
// Node metadata is an open key/value map and may contain nested maps and
// slices. [Metadata.Clone] copies recursively, and every [Document] accessor
// returns clones, so nothing a caller holds aliases document state.
//
// # Concurrency
//
// Document is not safe for concurrent use. Snapshots are independent values
// and can be handed to other goroutines.
package graph
