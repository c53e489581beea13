package mcp

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.SearchResult
	answer  *domain.Answer
	err     error

	gotQuery string
	gotK     int
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.gotQuery, m.gotK = query, k
	return m.results, m.err
}

func (m *mockRetrievalService) Answer(_ context.Context, query string, k int) (*domain.Answer, error) {
	m.gotQuery, m.gotK = query, k
	return m.answer, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	item *domain.IngestionItem
	err  error

	got domain.SourceDescriptor
}

func (m *mockIngestionService) IngestSingle(
	_ context.Context,
	src domain.SourceDescriptor,
) (*domain.IngestionItem, error) {
	m.got = src
	return m.item, m.err
}

func (m *mockIngestionService) IngestBatch(
	_ context.Context,
	_ []domain.SourceDescriptor,
) (domain.IngestionReport, error) {
	return domain.IngestionReport{}, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentRecord
	document  *domain.DocumentRecord
	content   []string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DocumentRecord, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.DocumentRecord, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) ([]string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) UpdateTitle(_ context.Context, _, _ string) (*domain.DocumentRecord, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
