package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// VectorIndex stores (text, vector, metadata) tuples and answers
// nearest-neighbour queries under a fixed similarity metric.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Upsert inserts records and returns their assigned IDs in input order.
	// The write is all-or-nothing: a vector whose dimension differs from the
	// established dimension fails the whole call with domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, records []domain.RecordInput) ([]string, error)

	// Search returns at most k results by descending similarity.
	// Ties are broken by insertion order. An empty index yields an empty slice.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if the ID does not exist.
	Get(ctx context.Context, id string) (*domain.IndexedRecord, error)

	// Delete removes records. Unknown IDs are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Dimension returns the established vector dimension, or 0 if none yet.
	Dimension() int

	// Metric returns the similarity metric.
	Metric() domain.Metric

	// Close releases resources.
	Close() error
}
