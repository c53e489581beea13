package driving

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// IngestionService turns source documents into indexed chunk records.
type IngestionService interface {
	// IngestSingle processes one document. On failure it returns the failed
	// item together with an error wrapping the failure kind.
	IngestSingle(ctx context.Context, src domain.SourceDescriptor) (*domain.IngestionItem, error)

	// IngestBatch processes documents in input order, isolating failures per item.
	// The error is non-nil only for structurally invalid requests (empty batch).
	IngestBatch(ctx context.Context, srcs []domain.SourceDescriptor) (domain.IngestionReport, error)
}
