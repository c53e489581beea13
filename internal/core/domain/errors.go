package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Pipeline Errors.

	// ErrValidation indicates a source descriptor is malformed (bad URL, missing fields).
	// Items failing validation are never retried.
	ErrValidation = errors.New("validation failed")

	// ErrDownload indicates a remote document could not be fetched.
	ErrDownload = errors.New("download failed")

	// ErrFormat indicates the document type is not the expected one.
	ErrFormat = errors.New("unexpected document format")

	// ErrExtraction indicates no readable text could be extracted.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyContent indicates extraction produced zero chunks.
	ErrEmptyContent = errors.New("document has no content")

	// ErrEmbedding indicates a single text could not be embedded.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrQueryEmbedding indicates the query text could not be embedded.
	ErrQueryEmbedding = errors.New("query embedding failed")

	// ErrService indicates a generic external capability failure.
	// Callers may retry these according to their retry policy.
	ErrService = errors.New("external service error")

	// ErrConfiguration indicates invalid configuration (e.g. overlap >= chunk size).
	ErrConfiguration = errors.New("invalid configuration")
)

// ErrorKind is the closed set of failure kinds callers can branch on.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindDownload          ErrorKind = "download"
	KindFormat            ErrorKind = "format"
	KindExtraction        ErrorKind = "extraction"
	KindEmptyContent      ErrorKind = "empty_content"
	KindEmbedding         ErrorKind = "embedding"
	KindDimensionMismatch ErrorKind = "dimension_mismatch"
	KindQueryEmbedding    ErrorKind = "query_embedding"
	KindService           ErrorKind = "service"
	KindConfiguration     ErrorKind = "configuration"
	KindNotFound          ErrorKind = "not_found"
	KindInternal          ErrorKind = "internal"
)

// kindOrder lists sentinel errors from most to least specific.
// An embedding failure may wrap a service failure or a dimension mismatch,
// so ErrEmbedding is checked before both.
var kindOrder = []struct {
	err  error
	kind ErrorKind
}{
	{ErrValidation, KindValidation},
	{ErrFormat, KindFormat},
	{ErrDownload, KindDownload},
	{ErrExtraction, KindExtraction},
	{ErrEmptyContent, KindEmptyContent},
	{ErrQueryEmbedding, KindQueryEmbedding},
	{ErrEmbedding, KindEmbedding},
	{ErrDimensionMismatch, KindDimensionMismatch},
	{ErrConfiguration, KindConfiguration},
	{ErrNotFound, KindNotFound},
	{ErrService, KindService},
}

// KindOf classifies an error into its ErrorKind.
// Returns an empty kind for nil and KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// ErrorDetail describes why an ingestion item failed.
type ErrorDetail struct {
	// Kind is the failure classification.
	Kind ErrorKind `json:"kind"`

	// Stage is the pipeline state the item was in when it failed.
	Stage ItemState `json:"stage"`

	// Message is the human-readable error text.
	Message string `json:"message"`
}

// NewErrorDetail builds an ErrorDetail from an error raised at the given stage.
func NewErrorDetail(stage ItemState, err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	return &ErrorDetail{
		Kind:    KindOf(err),
		Stage:   stage,
		Message: err.Error(),
	}
}
