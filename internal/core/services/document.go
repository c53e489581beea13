package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested document records.
type DocumentService struct {
	records driven.RecordStore
	index   driven.VectorIndex
}

// NewDocumentService creates a new document service.
func NewDocumentService(records driven.RecordStore, index driven.VectorIndex) *DocumentService {
	return &DocumentService{
		records: records,
		index:   index,
	}
}

// List returns all document records, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.records.List(ctx)
}

// Get retrieves a document record by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	return s.records.Get(ctx, documentID)
}

// GetContent returns the stored chunk texts of a document in chunk order.
// Chunks missing from the index are skipped.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) ([]string, error) {
	doc, err := s.records.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	texts := make([]string, 0, len(doc.RecordIDs))
	for _, id := range doc.RecordIDs {
		rec, err := s.index.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get chunk %s: %w", id, err)
		}
		texts = append(texts, rec.Text)
	}
	return texts, nil
}

// UpdateTitle renames a document record.
func (s *DocumentService) UpdateTitle(ctx context.Context, documentID, title string) (*domain.DocumentRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is empty", domain.ErrInvalidInput)
	}

	doc, err := s.records.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc.Title = title
	doc.UpdatedAt = time.Now().UTC()
	if err := s.records.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

// Delete removes a document's vectors and then its record.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.records.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if s.index != nil && len(doc.RecordIDs) > 0 {
		if err := s.index.Delete(ctx, doc.RecordIDs...); err != nil {
			return fmt.Errorf("delete vectors: %w", err)
		}
	}
	if err := s.records.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
