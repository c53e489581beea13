// Package domain defines the core business entities for ragline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A window of extracted document text, one embedding unit
//   - IndexedRecord: A stored (text, vector, metadata) tuple
//   - SearchResult: A ranked nearest-neighbour hit
//   - SourceDescriptor: One document to ingest (URL, path or upload)
//   - IngestionItem / IngestionReport: Per-document progress and batch outcome
//   - DocumentRecord: Document-level metadata kept by the record store
//   - Prompt: An answer-generation prompt template
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
