package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultItemTimeout bounds each external call made for one item.
const DefaultItemTimeout = 2 * time.Minute

// IngestionDeps are the collaborators of an IngestionService.
type IngestionDeps struct {
	Fetcher    driven.DocumentFetcher
	Extractors driven.ExtractorRegistry
	Chunker    driven.Chunker
	Embedder   *EmbeddingOrchestrator
	Index      driven.VectorIndex
	Records    driven.RecordStore
}

// IngestionConfig tunes ingestion behaviour.
type IngestionConfig struct {
	// ExpectedContentTypes are the media types accepted from URL sources.
	ExpectedContentTypes []string

	// ItemTimeout bounds each external call (fetch, extract, store) of one item.
	ItemTimeout time.Duration

	// ReplaceExisting deletes older documents with the same source once the
	// new one is stored.
	ReplaceExisting bool
}

// DefaultIngestionConfig returns the default ingestion configuration.
func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		ExpectedContentTypes: []string{"application/pdf"},
		ItemTimeout:          DefaultItemTimeout,
		ReplaceExisting:      true,
	}
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithProgress registers a hook called on every item state change.
func WithProgress(fn func(domain.IngestionItem)) IngestionOption {
	return func(s *IngestionService) {
		s.progress = fn
	}
}

// IngestionService turns source documents into indexed chunk records.
// Documents are processed one at a time; the embedding orchestrator fans
// out within a document.
type IngestionService struct {
	fetcher    driven.DocumentFetcher
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   *EmbeddingOrchestrator
	index      driven.VectorIndex
	records    driven.RecordStore

	expected        map[string]bool
	itemTimeout     time.Duration
	replaceExisting bool
	progress        func(domain.IngestionItem)
}

// NewIngestionService creates an ingestion service.
// Returns domain.ErrConfiguration if a required collaborator is missing.
func NewIngestionService(deps IngestionDeps, cfg IngestionConfig, opts ...IngestionOption) (*IngestionService, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, fmt.Errorf("%w: document fetcher is required", domain.ErrConfiguration)
	case deps.Extractors == nil:
		return nil, fmt.Errorf("%w: extractor registry is required", domain.ErrConfiguration)
	case deps.Chunker == nil:
		return nil, fmt.Errorf("%w: chunker is required", domain.ErrConfiguration)
	case deps.Embedder == nil:
		return nil, fmt.Errorf("%w: embedding orchestrator is required", domain.ErrConfiguration)
	case deps.Index == nil:
		return nil, fmt.Errorf("%w: vector index is required", domain.ErrConfiguration)
	case deps.Records == nil:
		return nil, fmt.Errorf("%w: record store is required", domain.ErrConfiguration)
	}

	s := &IngestionService{
		fetcher:         deps.Fetcher,
		extractors:      deps.Extractors,
		chunker:         deps.Chunker,
		embedder:        deps.Embedder,
		index:           deps.Index,
		records:         deps.Records,
		expected:        make(map[string]bool, len(cfg.ExpectedContentTypes)),
		itemTimeout:     cfg.ItemTimeout,
		replaceExisting: cfg.ReplaceExisting,
	}
	for _, ct := range cfg.ExpectedContentTypes {
		if mt := normaliseMediaType(ct); mt != "" {
			s.expected[mt] = true
		}
	}
	if s.itemTimeout <= 0 {
		s.itemTimeout = DefaultItemTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IngestSingle processes one document.
// On failure the failed item is returned together with the error.
func (s *IngestionService) IngestSingle(ctx context.Context, src domain.SourceDescriptor) (*domain.IngestionItem, error) {
	item, err := s.process(ctx, src)
	return &item, err
}

// IngestBatch processes documents sequentially in input order.
// A failing item never stops the batch; its error is captured in the report.
// If ctx is cancelled, the remaining items are reported as failed.
func (s *IngestionService) IngestBatch(
	ctx context.Context, srcs []domain.SourceDescriptor,
) (domain.IngestionReport, error) {
	if len(srcs) == 0 {
		return domain.NewIngestionReport(nil), fmt.Errorf("%w: batch contains no documents", domain.ErrInvalidInput)
	}

	logger.Section("Batch Ingestion")
	logger.Info("Ingesting %d documents", len(srcs))

	items := make([]domain.IngestionItem, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			run := newItemRun(src, s.progress)
			run.fail(fmt.Errorf("batch aborted: %w", err))
			items = append(items, run.item)
			continue
		}
		item, _ := s.process(ctx, src)
		items = append(items, item)
	}

	report := domain.NewIngestionReport(items)
	logger.Info("Batch complete: %d succeeded, %d failed", len(report.Succeeded), len(report.Failed))
	return report, nil
}

// itemRun tracks one item through the state machine.
type itemRun struct {
	item     domain.IngestionItem
	progress func(domain.IngestionItem)
}

func newItemRun(src domain.SourceDescriptor, progress func(domain.IngestionItem)) *itemRun {
	return &itemRun{
		item: domain.IngestionItem{
			Source: src.Identifier(),
			Title:  src.DisplayTitle(),
			Status: domain.StatePending,
		},
		progress: progress,
	}
}

// advance moves the item to next, rejecting illegal transitions.
func (r *itemRun) advance(next domain.ItemState) error {
	if !r.item.Status.CanTransition(next) {
		return fmt.Errorf("illegal item transition %s -> %s", r.item.Status, next)
	}
	r.item.Status = next
	logger.Debug("%s: %s", r.item.Source, next)
	r.notify()
	return nil
}

// fail records err against the current stage. Terminal items are left alone.
func (r *itemRun) fail(err error) {
	if r.item.Status.IsTerminal() {
		return
	}
	r.item.Error = domain.NewErrorDetail(r.item.Status, err)
	r.item.Status = domain.StateFailed
	r.notify()
}

func (r *itemRun) notify() {
	if r.progress != nil {
		r.progress(r.item)
	}
}

func (s *IngestionService) process(ctx context.Context, src domain.SourceDescriptor) (domain.IngestionItem, error) {
	run := newItemRun(src, s.progress)
	if err := s.run(ctx, run, src); err != nil {
		run.fail(err)
		logger.Warn("Ingest %s failed at %s: %v", run.item.Source, run.item.Error.Stage, err)
		return run.item, err
	}
	logger.Info("Ingested %s (%d chunks)", run.item.Source, run.item.ChunkCount)
	return run.item, nil
}

//nolint:gocyclo // Sequential pipeline stages with a gate after each
func (s *IngestionService) run(ctx context.Context, run *itemRun, src domain.SourceDescriptor) error {
	if err := src.Validate(); err != nil {
		return err
	}

	if err := run.advance(domain.StateDownloading); err != nil {
		return err
	}
	raw, release, err := s.obtain(ctx, src)
	if err != nil {
		return err
	}
	// Temporary files are released on every exit path.
	defer release()

	if err := run.advance(domain.StateExtracting); err != nil {
		return err
	}
	text, err := s.extract(ctx, raw)
	if err != nil {
		return err
	}

	if err := run.advance(domain.StateChunking); err != nil {
		return err
	}
	body := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := utf8.RuneCountInString(text) - utf8.RuneCountInString(body)
	chunks, err := s.chunker.Split(strings.TrimRightFunc(body, unicode.IsSpace))
	if err != nil {
		return fmt.Errorf("split text: %w", err)
	}
	// Offsets index the extracted text, not the trimmed body.
	for i := range chunks {
		chunks[i].Offset += lead
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEmptyContent, run.item.Source)
	}

	if err := run.advance(domain.StateEmbedding); err != nil {
		return err
	}
	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return err
	}

	if err := run.advance(domain.StateStoring); err != nil {
		return err
	}
	doc, err := s.store(ctx, src, run.item, raw.MIMEType, chunks, vectors)
	if err != nil {
		return err
	}

	run.item.DocumentID = doc.ID
	run.item.ChunkCount = doc.ChunkCount
	return run.advance(domain.StateSucceeded)
}

// obtain returns the raw document and a release func that must always be called.
func (s *IngestionService) obtain(
	ctx context.Context, src domain.SourceDescriptor,
) (*domain.RawDocument, func(), error) {
	noop := func() {}

	switch {
	case src.URL != "":
		return s.download(ctx, src.URL)

	case src.Path != "":
		content, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: read %s: %w", domain.ErrDownload, src.Path, err)
		}
		raw, err := s.localDocument(src.Path, src.ContentType, content)
		return raw, noop, err

	default:
		raw, err := s.localDocument(src.Identifier(), src.ContentType, src.Content)
		return raw, noop, err
	}
}

func (s *IngestionService) download(ctx context.Context, url string) (*domain.RawDocument, func(), error) {
	noop := func() {}

	fetchCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	dl, err := s.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		if !errors.Is(err, domain.ErrDownload) {
			err = fmt.Errorf("%w: %w", domain.ErrDownload, err)
		}
		return nil, noop, err
	}
	release := func() {
		if cerr := dl.Close(); cerr != nil {
			logger.Warn("Failed to remove download of %s: %v", url, cerr)
		}
	}

	mediaType := normaliseMediaType(dl.ContentType)
	if !s.acceptsRemote(mediaType) {
		release()
		return nil, noop, fmt.Errorf("%w: %s has content type %q", domain.ErrFormat, url, dl.ContentType)
	}

	content, err := dl.ReadAll()
	if err != nil {
		release()
		return nil, noop, fmt.Errorf("%w: read download: %w", domain.ErrDownload, err)
	}
	return &domain.RawDocument{URI: url, MIMEType: mediaType, Content: content}, release, nil
}

// localDocument resolves the media type of a file or uploaded content.
func (s *IngestionService) localDocument(name, declared string, content []byte) (*domain.RawDocument, error) {
	mediaType := detectMediaType(name, declared, content)
	if !s.extractors.Supports(mediaType) {
		return nil, fmt.Errorf("%w: no extractor for %q (%s)", domain.ErrFormat, mediaType, name)
	}
	return &domain.RawDocument{URI: name, MIMEType: mediaType, Content: content}, nil
}

func (s *IngestionService) acceptsRemote(mediaType string) bool {
	if len(s.expected) == 0 {
		return s.extractors.Supports(mediaType)
	}
	return s.expected[mediaType]
}

func (s *IngestionService) extract(ctx context.Context, raw *domain.RawDocument) (string, error) {
	extractCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	text, err := s.extractors.Extract(extractCtx, raw)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) && !errors.Is(err, domain.ErrFormat) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return "", err
	}
	return text, nil
}

// embed returns one vector per chunk or fails the whole item.
func (s *IngestionService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	results := s.embedder.EmbedMany(ctx, texts)

	vectors := make([][]float32, len(results))
	var failed []error
	for i, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Err)
			continue
		}
		vectors[i] = r.Vector
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("%d of %d chunks failed: %w", len(failed), len(chunks), failed[0])
	}
	return vectors, nil
}

// store writes every chunk in one upsert, then the document record.
// If the record cannot be written the upserted vectors are removed again.
func (s *IngestionService) store(
	ctx context.Context,
	src domain.SourceDescriptor,
	item domain.IngestionItem,
	mediaType string,
	chunks []domain.Chunk,
	vectors [][]float32,
) (*domain.DocumentRecord, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	docID := uuid.New().String()
	inputs := make([]domain.RecordInput, len(chunks))
	for i, c := range chunks {
		meta := domain.CopyMetadata(src.Metadata)
		if meta == nil {
			meta = make(map[string]string, 5)
		}
		meta[domain.MetaDocumentID] = docID
		meta[domain.MetaSource] = item.Source
		meta[domain.MetaTitle] = item.Title
		meta[domain.MetaChunkIndex] = strconv.Itoa(c.Index)
		meta[domain.MetaOffset] = strconv.Itoa(c.Offset)
		inputs[i] = domain.RecordInput{Text: c.Text, Vector: vectors[i], Metadata: meta}
	}

	ids, err := s.index.Upsert(storeCtx, inputs)
	if err != nil {
		return nil, fmt.Errorf("upsert vectors: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.DocumentRecord{
		ID:          docID,
		Source:      item.Source,
		Title:       item.Title,
		ContentType: mediaType,
		ChunkCount:  len(ids),
		RecordIDs:   ids,
		Metadata:    domain.CopyMetadata(src.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.records.Create(storeCtx, doc); err != nil {
		if derr := s.index.Delete(context.WithoutCancel(ctx), ids...); derr != nil {
			logger.Error("Failed to remove vectors of %s after record error: %v", item.Source, derr)
		}
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if s.replaceExisting && (src.URL != "" || src.Path != "") {
		s.replacePrevious(storeCtx, doc)
	}
	return doc, nil
}

// replacePrevious removes older documents ingested from the same source.
// Failures are logged; the new document is already stored.
func (s *IngestionService) replacePrevious(ctx context.Context, doc *domain.DocumentRecord) {
	existing, err := s.records.FindBySource(ctx, doc.Source)
	if err != nil {
		logger.Warn("Failed to look up previous versions of %s: %v", doc.Source, err)
		return
	}
	for _, old := range existing {
		if old.ID == doc.ID {
			continue
		}
		if err := s.index.Delete(ctx, old.RecordIDs...); err != nil {
			logger.Warn("Failed to delete vectors of %s: %v", old.ID, err)
			continue
		}
		if err := s.records.Delete(ctx, old.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to delete record %s: %v", old.ID, err)
			continue
		}
		logger.Debug("Replaced previous version %s of %s", old.ID, doc.Source)
	}
}

// extensionTypes covers text formats missing from some system MIME tables.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".eml":      "message/rfc822",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectMediaType picks the declared type, then the extension, then sniffs content.
func detectMediaType(name, declared string, content []byte) string {
	if mt := normaliseMediaType(declared); mt != "" {
		return mt
	}
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if mt := normaliseMediaType(mime.TypeByExtension(ext)); mt != "" {
		return mt
	}
	return normaliseMediaType(http.DetectContentType(content))
}

// normaliseMediaType strips parameters and lower-cases a Content-Type value.
func normaliseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
