package mcp

import (
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Retrieval provides search and answers.
	Retrieval driving.RetrievalService

	// Ingestion adds documents. The ingest tool is not registered when nil.
	Ingestion driving.IngestionService

	// Document exposes stored document records.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
