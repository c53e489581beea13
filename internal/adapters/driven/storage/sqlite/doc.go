// Package sqlite provides the persistent implementations of the record,
// prompt and vector index ports on a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One Store hands out:
//
//   - RecordStore: document-level records
//   - PromptStore: answer prompts and the active prompt slot
//   - Index: a brute-force vector index with vectors stored as little-endian float32 blobs
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ragline/data/ragline.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Multi-row writes run in a
// transaction and SQLite runs in WAL mode.
package sqlite
