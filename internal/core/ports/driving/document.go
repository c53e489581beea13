package driving

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// DocumentService manages ingested document records.
type DocumentService interface {
	// List returns all document records, newest first.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Get retrieves a document record by ID.
	Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// GetContent returns the stored chunk texts of a document in chunk order.
	GetContent(ctx context.Context, documentID string) ([]string, error)

	// UpdateTitle renames a document record.
	UpdateTitle(ctx context.Context, documentID, title string) (*domain.DocumentRecord, error)

	// Delete removes a document's vectors and then its record.
	Delete(ctx context.Context, documentID string) error
}
