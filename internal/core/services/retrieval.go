package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller passes k <= 0.
const DefaultTopK = 5

// ContextBuilder assembles the generator context from ranked results.
type ContextBuilder func(results []domain.SearchResult) string

// TemplateSource supplies the answer prompt template.
type TemplateSource interface {
	Template(ctx context.Context) (string, error)
}

// RetrievalConfig tunes retrieval and answer generation.
type RetrievalConfig struct {
	// TopK is the default number of results.
	TopK int

	// Delimiter separates chunk texts in the default context builder.
	Delimiter string

	// PromptTemplate is used when no TemplateSource is configured.
	PromptTemplate string

	// Generate is passed through to the generation service.
	Generate driven.GenerateOptions
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:           DefaultTopK,
		Delimiter:      domain.DefaultContextDelimiter,
		PromptTemplate: domain.DefaultPromptTemplate,
	}
}

// RetrievalOption configures a RetrievalService.
type RetrievalOption func(*RetrievalService)

// WithContextBuilder replaces the delimiter-joined context builder.
func WithContextBuilder(cb ContextBuilder) RetrievalOption {
	return func(s *RetrievalService) {
		if cb != nil {
			s.buildContext = cb
		}
	}
}

// RetrievalService embeds queries, searches the vector index and
// generates answers grounded on the retrieved chunks.
type RetrievalService struct {
	embedder     *EmbeddingOrchestrator
	index        driven.VectorIndex
	generator    driven.GenerationService
	prompts      TemplateSource
	cfg          RetrievalConfig
	buildContext ContextBuilder
}

// NewRetrievalService creates a retrieval service.
// The generator and prompts parameters are optional (can be nil).
func NewRetrievalService(
	embedder *EmbeddingOrchestrator,
	index driven.VectorIndex,
	generator driven.GenerationService,
	prompts TemplateSource,
	cfg RetrievalConfig,
	opts ...RetrievalOption,
) *RetrievalService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = domain.DefaultContextDelimiter
	}
	if strings.TrimSpace(cfg.PromptTemplate) == "" {
		cfg.PromptTemplate = domain.DefaultPromptTemplate
	}

	s := &RetrievalService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		prompts:   prompts,
		cfg:       cfg,
	}
	delimiter := cfg.Delimiter
	s.buildContext = func(results []domain.SearchResult) string {
		return domain.BuildContext(results, delimiter)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the k chunks most similar to the query.
// A k of zero or less uses the configured default.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if k <= 0 {
		k = s.cfg.TopK
	}
	logger.Debug("Query: %q, k: %d", query, k)

	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryEmbedding, err)
	}

	results, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search vector index: %w", err)
	}
	logger.Debug("Retrieved %d results", len(results))
	return results, nil
}

// Answer retrieves k chunks and asks the generator to answer from them.
// The generator is called even when nothing is retrieved.
func (s *RetrievalService) Answer(ctx context.Context, query string, k int) (*domain.Answer, error) {
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	results, err := s.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	contextText := s.buildContext(results)
	template := s.template(ctx)
	prompt := domain.RenderPrompt(template, contextText, query)

	logger.Debug("Generating answer with %s from %d results", s.generator.ModelName(), len(results))
	out, err := s.generator.Generate(ctx, prompt, s.cfg.Generate)
	if err != nil {
		if !errors.Is(err, domain.ErrService) {
			err = fmt.Errorf("%w: %w", domain.ErrService, err)
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Query:   query,
		Results: results,
		Context: contextText,
		Answer:  out,
	}, nil
}

// template returns the active prompt, falling back to the configured default.
func (s *RetrievalService) template(ctx context.Context) string {
	if s.prompts == nil {
		return s.cfg.PromptTemplate
	}
	tmpl, err := s.prompts.Template(ctx)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Warn("Failed to load prompt template, using default: %v", err)
		}
		return s.cfg.PromptTemplate
	}
	return tmpl
}
