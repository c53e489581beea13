package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// RecordStore persists document-level metadata records.
type RecordStore interface {
	// Create stores a new record. Returns domain.ErrAlreadyExists on ID collision.
	Create(ctx context.Context, doc *domain.DocumentRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if the ID does not exist.
	Get(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Update replaces an existing record.
	// Returns domain.ErrNotFound if the ID does not exist.
	Update(ctx context.Context, doc *domain.DocumentRecord) error

	// Delete removes a record.
	// Returns domain.ErrNotFound if the ID does not exist.
	Delete(ctx context.Context, id string) error

	// FindBySource returns records ingested from the given source, newest first.
	FindBySource(ctx context.Context, source string) ([]domain.DocumentRecord, error)
}
