// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("embedding.model") and written back
// as nested TOML tables, so the file stays hand-editable:
//
//	[embedding]
//	model = "text-embedding-3-small"
package file
