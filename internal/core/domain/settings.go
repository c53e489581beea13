package domain

import (
	"fmt"
	"strings"
	"time"
)

// AIProvider identifies an embedding or generation backend.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderOllama    AIProvider = "ollama"
	ProviderAnthropic AIProvider = "anthropic"
)

// String returns the provider name.
func (p AIProvider) String() string {
	return string(p)
}

// RequiresAPIKey reports whether the provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// DefaultOllamaURL is the local Ollama endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// Index backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ChunkSettings configures the chunker.
type ChunkSettings struct {
	Size    int `json:"size"`
	Overlap int `json:"overlap"`
}

// EmbeddingSettings configures the embedding service and orchestrator.
type EmbeddingSettings struct {
	Provider       AIProvider `json:"provider"`
	Model          string     `json:"model"`
	BaseURL        string     `json:"base_url,omitempty"`
	Dimensions     int        `json:"dimensions"`
	MaxConcurrency int        `json:"max_concurrency"`
	MaxRetries     int        `json:"max_retries"`
	RateLimit      float64    `json:"rate_limit"`
	APIKey         string     `json:"-"`
}

// IsConfigured reports whether the provider can be reached.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" || e.Model == "" {
		return false
	}
	return !e.Provider.RequiresAPIKey() || e.APIKey != ""
}

// GenerationSettings configures the answer generation service.
type GenerationSettings struct {
	Provider    AIProvider `json:"provider"`
	Model       string     `json:"model"`
	BaseURL     string     `json:"base_url,omitempty"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature"`
	APIKey      string     `json:"-"`
}

// IsConfigured reports whether the provider can be reached.
func (g GenerationSettings) IsConfigured() bool {
	if g.Provider == "" || g.Model == "" {
		return false
	}
	return !g.Provider.RequiresAPIKey() || g.APIKey != ""
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	Backend string `json:"backend"`
	Metric  Metric `json:"metric"`
}

// IngestSettings configures the ingestion controller.
type IngestSettings struct {
	ExpectedContentTypes []string      `json:"expected_content_types"`
	ItemTimeout          time.Duration `json:"item_timeout"`
	ReplaceExisting      bool          `json:"replace_existing"`
}

// RetrievalSettings configures search and answers.
type RetrievalSettings struct {
	TopK           int    `json:"top_k"`
	Delimiter      string `json:"delimiter"`
	PromptTemplate string `json:"prompt_template,omitempty"`
}

// Settings is the typed application configuration.
type Settings struct {
	DataDir    string             `json:"data_dir"`
	Chunk      ChunkSettings      `json:"chunk"`
	Embedding  EmbeddingSettings  `json:"embedding"`
	Generation GenerationSettings `json:"generation"`
	Index      IndexSettings      `json:"index"`
	Ingest     IngestSettings     `json:"ingest"`
	Retrieval  RetrievalSettings  `json:"retrieval"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Chunk: ChunkSettings{Size: 1000, Overlap: 200},
		Embedding: EmbeddingSettings{
			Provider:       ProviderOpenAI,
			Model:          DefaultEmbeddingModel(ProviderOpenAI),
			Dimensions:     DefaultEmbeddingDimensions(ProviderOpenAI),
			MaxConcurrency: 8,
			MaxRetries:     2,
		},
		Generation: GenerationSettings{
			Provider:  ProviderOpenAI,
			Model:     DefaultGenerationModel(ProviderOpenAI),
			MaxTokens: 1024,
		},
		Index: IndexSettings{Backend: BackendSQLite, Metric: MetricCosine},
		Ingest: IngestSettings{
			ExpectedContentTypes: []string{"application/pdf"},
			ItemTimeout:          2 * time.Minute,
			ReplaceExisting:      true,
		},
		Retrieval: RetrievalSettings{TopK: 5, Delimiter: DefaultContextDelimiter},
	}
}

// DefaultEmbeddingModel returns the default embedding model of a provider.
func DefaultEmbeddingModel(p AIProvider) string {
	switch p {
	case ProviderOllama:
		return "nomic-embed-text"
	case ProviderOpenAI:
		return "text-embedding-3-small"
	default:
		return ""
	}
}

// DefaultEmbeddingDimensions returns the vector size of a provider's default model.
func DefaultEmbeddingDimensions(p AIProvider) int {
	switch p {
	case ProviderOllama:
		return 768
	case ProviderOpenAI:
		return 1536
	default:
		return 0
	}
}

// DefaultGenerationModel returns the default answer model of a provider.
func DefaultGenerationModel(p AIProvider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return ""
	}
}

// Validate checks the settings for values the pipeline cannot run with.
func (s *Settings) Validate() error {
	var problems []string

	if s.Chunk.Size <= 0 {
		problems = append(problems, "chunk.size must be positive")
	}
	if s.Chunk.Overlap < 0 || s.Chunk.Overlap >= s.Chunk.Size {
		problems = append(problems, "chunk.overlap must be at least 0 and smaller than chunk.size")
	}
	switch s.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		problems = append(problems, fmt.Sprintf("embedding.provider %q is not supported", s.Embedding.Provider))
	}
	if s.Embedding.Dimensions < 0 {
		problems = append(problems, "embedding.dimensions must not be negative")
	}
	if s.Embedding.MaxConcurrency <= 0 {
		problems = append(problems, "embedding.max_concurrency must be positive")
	}
	if s.Embedding.MaxRetries < 0 {
		problems = append(problems, "embedding.max_retries must not be negative")
	}
	switch s.Generation.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic:
	default:
		problems = append(problems, fmt.Sprintf("generation.provider %q is not supported", s.Generation.Provider))
	}
	switch s.Index.Backend {
	case BackendSQLite, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("index.backend %q is not supported", s.Index.Backend))
	}
	if _, err := ParseMetric(string(s.Index.Metric)); err != nil {
		problems = append(problems, fmt.Sprintf("index.metric %q is not supported", s.Index.Metric))
	}
	if s.Ingest.ItemTimeout <= 0 {
		problems = append(problems, "ingest.item_timeout must be positive")
	}
	if s.Retrieval.TopK <= 0 {
		problems = append(problems, "retrieval.top_k must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
