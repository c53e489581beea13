package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragline/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragline/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/ragline/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragline/internal/adapters/driven/storage/sqlite"
	memindex "github.com/custodia-labs/ragline/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/ragline/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/services"
	"github.com/custodia-labs/ragline/internal/extractors"
	"github.com/custodia-labs/ragline/internal/logger"
	"github.com/custodia-labs/ragline/internal/postprocessors/chunker"
)

// application owns the adapters behind the CLI services.
type application struct {
	Services cli.Services
	closers  []func() error
}

// Close releases adapters in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
}

// wire builds every service from settings. Storage, documents and prompts
// work without model providers; ingestion and retrieval are left nil with
// the reason recorded in Services.Unavailable.
func wire(settingsService *services.SettingsService, configDir string) (*application, error) {
	app := &application{}
	app.Services.Settings = settingsService

	settings, err := settingsService.Get()
	if err != nil {
		app.Services.Unavailable = err
		return app, nil
	}
	if err := settings.Validate(); err != nil {
		app.Services.Unavailable = err
		return app, nil
	}

	ctx := context.Background()

	var (
		index   driven.VectorIndex
		records driven.RecordStore
		prompts driven.PromptStore
	)
	switch settings.Index.Backend {
	case domain.BackendMemory:
		index = memindex.New(settings.Index.Metric, settings.Embedding.Dimensions)
		records = memory.NewRecordStore()
		prompts = memory.NewPromptStore()
	default:
		dataDir := settings.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		app.closers = append(app.closers, store.Close)

		idx, err := store.VectorIndex(ctx, settings.Index.Metric, settings.Embedding.Dimensions)
		if err != nil {
			app.Close()
			return nil, err
		}
		index, records, prompts = idx, store.RecordStore(), store.PromptStore()
		logger.Debug("storage: %s", store.Path())
	}

	promptService := services.NewPromptService(prompts, settings.Retrieval.PromptTemplate)
	app.Services.Prompt = promptService
	app.Services.Document = services.NewDocumentService(records, index)

	models, err := ai.Init(&settings.Embedding, &settings.Generation)
	if err != nil {
		app.Services.Unavailable = err
		return app, nil
	}
	app.closers = append(app.closers, func() error {
		models.Close()
		return nil
	})
	for _, w := range models.Warnings {
		logger.Warn("%s", w)
	}

	orchestrator := services.NewEmbeddingOrchestrator(models.Embedding, orchestratorOptions(settings)...)

	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.Chunk.Size),
		chunker.WithOverlap(settings.Chunk.Overlap),
	)
	if err != nil {
		app.Services.Unavailable = err
		return app, nil
	}

	ingestion, err := services.NewIngestionService(
		services.IngestionDeps{
			Fetcher:    fetcher.New(fetcher.Config{Timeout: settings.Ingest.ItemTimeout}),
			Extractors: extractors.NewDefaultRegistry(),
			Chunker:    chunks,
			Embedder:   orchestrator,
			Index:      index,
			Records:    records,
		},
		services.IngestionConfig{
			ExpectedContentTypes: settings.Ingest.ExpectedContentTypes,
			ItemTimeout:          settings.Ingest.ItemTimeout,
			ReplaceExisting:      settings.Ingest.ReplaceExisting,
		},
		services.WithProgress(func(item domain.IngestionItem) {
			logger.Debug("%s: %s", item.Source, item.Status)
		}),
	)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Services.Ingestion = ingestion

	app.Services.Retrieval = services.NewRetrievalService(
		orchestrator,
		index,
		models.Generation,
		promptService,
		services.RetrievalConfig{
			TopK:           settings.Retrieval.TopK,
			Delimiter:      settings.Retrieval.Delimiter,
			PromptTemplate: settings.Retrieval.PromptTemplate,
			Generate: driven.GenerateOptions{
				MaxTokens:   settings.Generation.MaxTokens,
				Temperature: settings.Generation.Temperature,
			},
		},
	)
	return app, nil
}

func orchestratorOptions(s *domain.Settings) []services.OrchestratorOption {
	opts := []services.OrchestratorOption{
		services.WithMaxConcurrency(s.Embedding.MaxConcurrency),
		services.WithMaxRetries(s.Embedding.MaxRetries),
	}
	if s.Embedding.RateLimit > 0 {
		burst := max(int(s.Embedding.RateLimit), 1)
		opts = append(opts, services.WithRateLimit(s.Embedding.RateLimit, burst))
	}
	return opts
}
