package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService with testify/mock
// so tests can assert call counts.
type mockEmbeddingService struct {
	mock.Mock
	dims int
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if fn, ok := args.Get(0).(func(string) []float32); ok {
		return fn(text), args.Error(1)
	}
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// textVector derives a deterministic 4-dimensional vector from text.
func textVector(text string) []float32 {
	vec := []float32{1, 0, 0, 0}
	for i, r := range text {
		vec[1+i%3] += float32(r%17) / 17
	}
	return vec
}

// funcEmbeddingService implements driven.EmbeddingService with a plain function.
type funcEmbeddingService struct {
	fn    func(ctx context.Context, text string) ([]float32, error)
	dims  int
	calls atomic.Int64
}

func (f *funcEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	return f.fn(ctx, text)
}

func (f *funcEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *funcEmbeddingService) Dimensions() int              { return f.dims }
func (f *funcEmbeddingService) ModelName() string            { return "func-embed" }
func (f *funcEmbeddingService) Ping(_ context.Context) error { return nil }
func (f *funcEmbeddingService) Close() error                 { return nil }

// mockGenerationService implements driven.GenerationService for testing.
type mockGenerationService struct {
	answer  string
	err     error
	prompts []string
}

func (m *mockGenerationService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockGenerationService) ModelName() string            { return "mock-llm" }
func (m *mockGenerationService) Ping(_ context.Context) error { return nil }
func (m *mockGenerationService) Close() error                 { return nil }

// fakeResponse is a canned fetch result.
type fakeResponse struct {
	contentType string
	body        string
	err         error
}

// fakeFetcher implements driven.DocumentFetcher by spooling canned bodies to temp files.
type fakeFetcher struct {
	dir       string
	responses map[string]fakeResponse

	mu    sync.Mutex
	paths []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*driven.Download, error) {
	resp, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s returned status 404", domain.ErrDownload, url)
	}
	if resp.err != nil {
		return nil, resp.err
	}

	file, err := os.CreateTemp(f.dir, "download-*")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := file.WriteString(resp.body); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.paths = append(f.paths, file.Name())
	f.mu.Unlock()

	return &driven.Download{
		URL:         url,
		ContentType: resp.contentType,
		Path:        file.Name(),
		Size:        int64(len(resp.body)),
	}, nil
}

func (f *fakeFetcher) spooled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// fakeExtractors implements driven.ExtractorRegistry with per-type functions.
type fakeExtractors struct {
	byType map[string]func([]byte) (string, error)
}

func newFakeExtractors() *fakeExtractors {
	passthrough := func(b []byte) (string, error) { return string(b), nil }
	return &fakeExtractors{byType: map[string]func([]byte) (string, error){
		"application/pdf": passthrough,
		"text/plain":      passthrough,
	}}
}

func (f *fakeExtractors) Register(_ driven.TextExtractor) {}

func (f *fakeExtractors) Supports(mimeType string) bool {
	_, ok := f.byType[mimeType]
	return ok
}

func (f *fakeExtractors) Extract(_ context.Context, raw *domain.RawDocument) (string, error) {
	fn, ok := f.byType[raw.MIMEType]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrFormat, raw.MIMEType)
	}
	return fn(raw.Content)
}

func (f *fakeExtractors) SupportedMIMETypes() []string {
	types := make([]string, 0, len(f.byType))
	for t := range f.byType {
		types = append(types, t)
	}
	return types
}

// failingRecordStore wraps a RecordStore and fails Create.
type failingRecordStore struct {
	driven.RecordStore
}

func (f *failingRecordStore) Create(_ context.Context, _ *domain.DocumentRecord) error {
	return errors.New("disk full")
}
