package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// TextExtractor turns document bytes of a given media type into plain text.
// Each extractor handles specific MIME types (e.g., PDF, HTML).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the readable text of the document.
	// Failures are wrapped with domain.ErrExtraction.
	Extract(ctx context.Context, content []byte, mimeType string) (string, error)
}

// ExtractorRegistry dispatches documents to the extractor for their MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor. Later registrations win for shared MIME types.
	Register(extractor TextExtractor)

	// Supports reports whether an extractor exists for the MIME type.
	Supports(mimeType string) bool

	// Extract runs the matching extractor on the raw document.
	// Returns domain.ErrFormat when no extractor handles the MIME type.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)

	// SupportedMIMETypes returns all MIME types that can be extracted, sorted.
	SupportedMIMETypes() []string
}
