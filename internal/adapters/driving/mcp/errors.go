// Package mcp provides an MCP (Model Context Protocol) server adapter for ragline.
// It lets AI assistants ingest documents and query the local index.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
