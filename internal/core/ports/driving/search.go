package driving

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// RetrievalService answers queries against the indexed chunks.
type RetrievalService interface {
	// Search returns the k chunks most similar to the query.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// Answer retrieves k chunks and generates an answer grounded on them.
	Answer(ctx context.Context, query string, k int) (*domain.Answer, error)
}
