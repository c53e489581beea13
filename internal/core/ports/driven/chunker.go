package driven

import "github.com/custodia-labs/ragline/internal/core/domain"

// Chunker splits extracted text into ordered, overlapping chunks.
// Implementations are pure: identical input yields identical output.
type Chunker interface {
	// Split returns the chunks of text. Empty text yields no chunks.
	Split(text string) ([]domain.Chunk, error)
}
