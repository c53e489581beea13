package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDataDir              = "data_dir"
	KeyChunkSize            = "chunk.size"
	KeyChunkOverlap         = "chunk.overlap"
	KeyEmbedProvider        = "embedding.provider"
	KeyEmbedModel           = "embedding.model"
	KeyEmbedBaseURL         = "embedding.base_url"
	KeyEmbedDimensions      = "embedding.dimensions"
	KeyEmbedConcurrency     = "embedding.max_concurrency"
	KeyEmbedRetries         = "embedding.max_retries"
	KeyEmbedRateLimit       = "embedding.rate_limit"
	KeyGenProvider          = "generation.provider"
	KeyGenModel             = "generation.model"
	KeyGenBaseURL           = "generation.base_url"
	KeyGenMaxTokens         = "generation.max_tokens"
	KeyGenTemperature       = "generation.temperature"
	KeyIndexMetric          = "index.metric"
	KeyIndexBackend         = "index.backend"
	KeyIngestContentTypes   = "ingest.expected_content_types"
	KeyIngestItemTimeout    = "ingest.item_timeout"
	KeyIngestReplace        = "ingest.replace_existing"
	KeyRetrievalTopK        = "retrieval.top_k"
	KeyRetrievalDelimiter   = "retrieval.delimiter"
	KeyRetrievalPromptTempl = "retrieval.prompt_template"
)

// Environment variables holding provider secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
)

// SettingKeys returns every supported config key, sorted.
func SettingKeys() []string {
	keys := []string{
		KeyDataDir, KeyChunkSize, KeyChunkOverlap,
		KeyEmbedProvider, KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedDimensions,
		KeyEmbedConcurrency, KeyEmbedRetries, KeyEmbedRateLimit,
		KeyGenProvider, KeyGenModel, KeyGenBaseURL, KeyGenMaxTokens, KeyGenTemperature,
		KeyIndexMetric, KeyIndexBackend,
		KeyIngestContentTypes, KeyIngestItemTimeout, KeyIngestReplace,
		KeyRetrievalTopK, KeyRetrievalDelimiter, KeyRetrievalPromptTempl,
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup used for secrets.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	if getenv != nil {
		s.getenv = getenv
	}
}

// Get retrieves current application settings with defaults applied.
// API keys come from the environment, never from the config file.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	embedProvider := domain.AIProvider(s.getString(KeyEmbedProvider, d.Embedding.Provider.String()))
	embedModel := s.getString(KeyEmbedModel, domain.DefaultEmbeddingModel(embedProvider))
	embedDims := 0
	if embedModel == domain.DefaultEmbeddingModel(embedProvider) {
		embedDims = domain.DefaultEmbeddingDimensions(embedProvider)
	}
	genProvider := domain.AIProvider(s.getString(KeyGenProvider, d.Generation.Provider.String()))

	timeout, err := s.getDuration(KeyIngestItemTimeout, d.Ingest.ItemTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		DataDir: s.getString(KeyDataDir, d.DataDir),
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(KeyChunkSize, d.Chunk.Size),
			Overlap: s.getInt(KeyChunkOverlap, d.Chunk.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:       embedProvider,
			Model:          embedModel,
			BaseURL:        s.getString(KeyEmbedBaseURL, s.defaultBaseURL(embedProvider)),
			Dimensions:     s.getInt(KeyEmbedDimensions, embedDims),
			MaxConcurrency: s.getInt(KeyEmbedConcurrency, d.Embedding.MaxConcurrency),
			MaxRetries:     s.getInt(KeyEmbedRetries, d.Embedding.MaxRetries),
			RateLimit:      s.getFloat(KeyEmbedRateLimit, d.Embedding.RateLimit),
			APIKey:         s.apiKey(embedProvider),
		},
		Generation: domain.GenerationSettings{
			Provider:    genProvider,
			Model:       s.getString(KeyGenModel, domain.DefaultGenerationModel(genProvider)),
			BaseURL:     s.getString(KeyGenBaseURL, s.defaultBaseURL(genProvider)),
			MaxTokens:   s.getInt(KeyGenMaxTokens, d.Generation.MaxTokens),
			Temperature: s.getFloat(KeyGenTemperature, d.Generation.Temperature),
			APIKey:      s.apiKey(genProvider),
		},
		Index: domain.IndexSettings{
			Backend: s.getString(KeyIndexBackend, d.Index.Backend),
			Metric:  domain.Metric(s.getString(KeyIndexMetric, string(d.Index.Metric))),
		},
		Ingest: domain.IngestSettings{
			ExpectedContentTypes: s.getStringSlice(KeyIngestContentTypes, d.Ingest.ExpectedContentTypes),
			ItemTimeout:          timeout,
			ReplaceExisting:      s.getBool(KeyIngestReplace, d.Ingest.ReplaceExisting),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:           s.getInt(KeyRetrievalTopK, d.Retrieval.TopK),
			Delimiter:      s.getString(KeyRetrievalDelimiter, d.Retrieval.Delimiter),
			PromptTemplate: s.configStore.GetString(KeyRetrievalPromptTempl),
		},
	}
	if m, err := domain.ParseMetric(string(settings.Index.Metric)); err == nil {
		settings.Index.Metric = m
	}

	return settings, nil
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	typed, err := applySetting(settings, key, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Value returns the effective value of one key, formatted for display.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}
	return settingValue(settings, key)
}

// Keys returns every supported config key, sorted.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Validate checks the stored settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// ValidateProviders pings the configured providers.
// Returns nil when no validator is configured.
func (s *SettingsService) ValidateProviders() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return errors.Join(
		s.aiValidator.ValidateEmbedding(&settings.Embedding),
		s.aiValidator.ValidateGeneration(&settings.Generation),
	)
}

// applySetting writes value into settings and returns the typed value to persist.
//
//nolint:gocyclo // One case per config key
func applySetting(st *domain.Settings, key, value string) (any, error) {
	var err error
	switch key {
	case KeyDataDir:
		st.DataDir = value
		return value, nil
	case KeyChunkSize:
		st.Chunk.Size, err = parseInt(key, value)
		return st.Chunk.Size, err
	case KeyChunkOverlap:
		st.Chunk.Overlap, err = parseInt(key, value)
		return st.Chunk.Overlap, err
	case KeyEmbedProvider:
		st.Embedding.Provider = domain.AIProvider(strings.ToLower(value))
		return value, nil
	case KeyEmbedModel:
		st.Embedding.Model = value
		return value, nil
	case KeyEmbedBaseURL:
		st.Embedding.BaseURL = value
		return value, nil
	case KeyEmbedDimensions:
		st.Embedding.Dimensions, err = parseInt(key, value)
		return st.Embedding.Dimensions, err
	case KeyEmbedConcurrency:
		st.Embedding.MaxConcurrency, err = parseInt(key, value)
		return st.Embedding.MaxConcurrency, err
	case KeyEmbedRetries:
		st.Embedding.MaxRetries, err = parseInt(key, value)
		return st.Embedding.MaxRetries, err
	case KeyEmbedRateLimit:
		st.Embedding.RateLimit, err = parseFloat(key, value)
		return st.Embedding.RateLimit, err
	case KeyGenProvider:
		st.Generation.Provider = domain.AIProvider(strings.ToLower(value))
		return value, nil
	case KeyGenModel:
		st.Generation.Model = value
		return value, nil
	case KeyGenBaseURL:
		st.Generation.BaseURL = value
		return value, nil
	case KeyGenMaxTokens:
		st.Generation.MaxTokens, err = parseInt(key, value)
		return st.Generation.MaxTokens, err
	case KeyGenTemperature:
		st.Generation.Temperature, err = parseFloat(key, value)
		return st.Generation.Temperature, err
	case KeyIndexMetric:
		st.Index.Metric, err = domain.ParseMetric(value)
		return string(st.Index.Metric), err
	case KeyIndexBackend:
		st.Index.Backend = strings.ToLower(value)
		return st.Index.Backend, nil
	case KeyIngestContentTypes:
		st.Ingest.ExpectedContentTypes = splitList(value)
		return st.Ingest.ExpectedContentTypes, nil
	case KeyIngestItemTimeout:
		st.Ingest.ItemTimeout, err = time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
		}
		return value, nil
	case KeyIngestReplace:
		st.Ingest.ReplaceExisting, err = strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
		}
		return st.Ingest.ReplaceExisting, nil
	case KeyRetrievalTopK:
		st.Retrieval.TopK, err = parseInt(key, value)
		return st.Retrieval.TopK, err
	case KeyRetrievalDelimiter:
		st.Retrieval.Delimiter = value
		return value, nil
	case KeyRetrievalPromptTempl:
		st.Retrieval.PromptTemplate = value
		return value, nil
	default:
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrConfiguration, key)
	}
}

// settingValue is the read side of applySetting.
//
//nolint:gocyclo // One case per config key
func settingValue(st *domain.Settings, key string) (string, error) {
	switch key {
	case KeyDataDir:
		return st.DataDir, nil
	case KeyChunkSize:
		return strconv.Itoa(st.Chunk.Size), nil
	case KeyChunkOverlap:
		return strconv.Itoa(st.Chunk.Overlap), nil
	case KeyEmbedProvider:
		return st.Embedding.Provider.String(), nil
	case KeyEmbedModel:
		return st.Embedding.Model, nil
	case KeyEmbedBaseURL:
		return st.Embedding.BaseURL, nil
	case KeyEmbedDimensions:
		return strconv.Itoa(st.Embedding.Dimensions), nil
	case KeyEmbedConcurrency:
		return strconv.Itoa(st.Embedding.MaxConcurrency), nil
	case KeyEmbedRetries:
		return strconv.Itoa(st.Embedding.MaxRetries), nil
	case KeyEmbedRateLimit:
		return strconv.FormatFloat(st.Embedding.RateLimit, 'g', -1, 64), nil
	case KeyGenProvider:
		return st.Generation.Provider.String(), nil
	case KeyGenModel:
		return st.Generation.Model, nil
	case KeyGenBaseURL:
		return st.Generation.BaseURL, nil
	case KeyGenMaxTokens:
		return strconv.Itoa(st.Generation.MaxTokens), nil
	case KeyGenTemperature:
		return strconv.FormatFloat(st.Generation.Temperature, 'g', -1, 64), nil
	case KeyIndexMetric:
		return string(st.Index.Metric), nil
	case KeyIndexBackend:
		return st.Index.Backend, nil
	case KeyIngestContentTypes:
		return strings.Join(st.Ingest.ExpectedContentTypes, ","), nil
	case KeyIngestItemTimeout:
		return st.Ingest.ItemTimeout.String(), nil
	case KeyIngestReplace:
		return strconv.FormatBool(st.Ingest.ReplaceExisting), nil
	case KeyRetrievalTopK:
		return strconv.Itoa(st.Retrieval.TopK), nil
	case KeyRetrievalDelimiter:
		return st.Retrieval.Delimiter, nil
	case KeyRetrievalPromptTempl:
		return st.Retrieval.PromptTemplate, nil
	default:
		return "", fmt.Errorf("%w: unknown config key %q", domain.ErrConfiguration, key)
	}
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrConfiguration, key)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrConfiguration, key)
	}
	return f, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *SettingsService) apiKey(p domain.AIProvider) string {
	switch p {
	case domain.ProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.ProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

func (s *SettingsService) defaultBaseURL(p domain.AIProvider) string {
	if p != domain.ProviderOllama {
		return ""
	}
	if host := s.getenv(EnvOllamaHost); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		return host
	}
	return domain.DefaultOllamaURL
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
		}
		return d, nil
	default:
		// Bare numbers are seconds.
		return time.Duration(s.configStore.GetInt(key)) * time.Second, nil
	}
}
