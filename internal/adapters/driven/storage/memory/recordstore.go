package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.DocumentRecord),
	}
}

// Create stores a new record.
func (s *RecordStore) Create(_ context.Context, doc *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[doc.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.records[doc.ID] = cloneRecord(*doc)
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(_ context.Context, id string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = cloneRecord(doc)
	return &doc, nil
}

// List returns all records, newest first.
func (s *RecordStore) List(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(domain.DocumentRecord) bool { return true }), nil
}

// Update replaces an existing record.
func (s *RecordStore) Update(_ context.Context, doc *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	s.records[doc.ID] = cloneRecord(*doc)
	return nil
}

// Delete removes a record.
func (s *RecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// FindBySource returns records ingested from source, newest first.
func (s *RecordStore) FindBySource(_ context.Context, source string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(d domain.DocumentRecord) bool { return d.Source == source }), nil
}

// sorted must be called with the read lock held.
func (s *RecordStore) sorted(keep func(domain.DocumentRecord) bool) []domain.DocumentRecord {
	out := make([]domain.DocumentRecord, 0, len(s.records))
	for _, doc := range s.records {
		if keep(doc) {
			out = append(out, cloneRecord(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneRecord(doc domain.DocumentRecord) domain.DocumentRecord {
	doc.RecordIDs = append([]string(nil), doc.RecordIDs...)
	doc.Metadata = domain.CopyMetadata(doc.Metadata)
	return doc
}
