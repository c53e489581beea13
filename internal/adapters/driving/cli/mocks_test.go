package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mockIngestionService struct {
	item   *domain.IngestionItem
	report domain.IngestionReport
	err    error

	gotSingle domain.SourceDescriptor
	gotBatch  []domain.SourceDescriptor
}

func (m *mockIngestionService) IngestSingle(
	_ context.Context,
	src domain.SourceDescriptor,
) (*domain.IngestionItem, error) {
	m.gotSingle = src
	return m.item, m.err
}

func (m *mockIngestionService) IngestBatch(
	_ context.Context,
	srcs []domain.SourceDescriptor,
) (domain.IngestionReport, error) {
	m.gotBatch = srcs
	return m.report, m.err
}

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

type mockDocumentService struct {
	documents []domain.DocumentRecord
	content   []string
	err       error

	deleted string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DocumentRecord, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.DocumentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			doc := m.documents[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) ([]string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) UpdateTitle(ctx context.Context, id, title string) (*domain.DocumentRecord, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Title = title
	return doc, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

type mockPromptService struct {
	prompts  []domain.Prompt
	active   *domain.Prompt
	template string
	created  bool
	err      error

	activated   string
	deactivated bool
	gotName     string
	gotContent  string
}

func (m *mockPromptService) Create(_ context.Context, name, content, description string) (*domain.Prompt, error) {
	m.gotName, m.gotContent = name, content
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Prompt{ID: "p-new", Name: name, Content: content, Description: description, Version: "1"}, nil
}

func (m *mockPromptService) Get(_ context.Context, id string) (*domain.Prompt, error) {
	for i := range m.prompts {
		if m.prompts[i].ID == id {
			p := m.prompts[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPromptService) List(_ context.Context) ([]domain.Prompt, error) {
	return m.prompts, m.err
}

func (m *mockPromptService) Update(_ context.Context, id, name, content, _ string) (*domain.Prompt, error) {
	m.gotName, m.gotContent = name, content
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Prompt{ID: id, Name: name, Content: content, Version: "2"}, nil
}

func (m *mockPromptService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockPromptService) Activate(_ context.Context, id string) error {
	m.activated = id
	return m.err
}

func (m *mockPromptService) Deactivate(_ context.Context) error {
	m.deactivated = true
	return m.err
}

func (m *mockPromptService) Active(_ context.Context) (*domain.Prompt, error) {
	if m.active == nil {
		return nil, domain.ErrNotFound
	}
	return m.active, nil
}

func (m *mockPromptService) Template(_ context.Context) (string, error) {
	return m.template, nil
}

func (m *mockPromptService) Seed(_ context.Context) (*domain.Prompt, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if m.active != nil {
		return m.active, false, nil
	}
	return &domain.Prompt{ID: "p-default", Name: "default", Active: true}, true, nil
}

type mockSettingsService struct {
	settings domain.Settings
	path     string
	err      error
	pingErr  error

	values map[string]string
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrConfiguration
	}
	return v, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"chunk.size", "chunk.overlap"}
}

func (m *mockSettingsService) Path() string {
	return m.path
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) ValidateProviders() error {
	return m.pingErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingestion *mockIngestionService
	retrieval *mockRetrievalService
	document  *mockDocumentService
	prompt    *mockPromptService
	settings  *mockSettingsService
}

func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingestion: &mockIngestionService{},
		retrieval: &mockRetrievalService{},
		document: &mockDocumentService{
			documents: []domain.DocumentRecord{
				{
					ID:          "doc-1",
					Source:      "https://example.com/paper.pdf",
					Title:       "Test Document 1",
					ContentType: "application/pdf",
					ChunkCount:  3,
					Metadata:    map[string]string{"team": "ml", "year": "2024"},
					CreatedAt:   testTime,
					UpdatedAt:   testTime,
				},
				{
					ID:         "doc-2",
					Source:     "/notes/meeting.md",
					Title:      "Test Document 2",
					ChunkCount: 1,
					CreatedAt:  testTime,
					UpdatedAt:  testTime,
				},
			},
			content: []string{"first chunk", "second chunk"},
		},
		prompt: &mockPromptService{template: "Context: {{context}} Question: {{query}}"},
		settings: &mockSettingsService{
			settings: domain.DefaultSettings(),
			path:     "/tmp/ragline/config.toml",
			values:   map[string]string{"chunk.size": "1000"},
		},
	}

	SetServices(Services{
		Ingestion: ts.ingestion,
		Retrieval: ts.retrieval,
		Document:  ts.document,
		Prompt:    ts.prompt,
		Settings:  ts.settings,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	ingestTitle, ingestContentType, ingestFilename = "", "", ""
	ingestMeta, batchMeta, watchMeta = nil, nil, nil
	ingestJSON, batchJSON = false, false
	searchK, askK = 0, 0
	searchJSON, askJSON = false, false
	askShowSources = true
	documentListJSON, documentGetJSON = false, false
	promptName, promptContent, promptFile, promptDescription = "", "", "", ""
	promptActivate, promptListJSON = false, false
	configShowJSON, configValidatePings = false, false
	mcpPort, mcpAutoPort = 0, false
	verbose, logLevel = false, ""
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
