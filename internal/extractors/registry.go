package extractors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/extractors/docx"
	"github.com/custodia-labs/ragline/internal/extractors/eml"
	"github.com/custodia-labs/ragline/internal/extractors/html"
	"github.com/custodia-labs/ragline/internal/extractors/markdown"
	"github.com/custodia-labs/ragline/internal/extractors/pdf"
	"github.com/custodia-labs/ragline/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to extractors.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string]driven.TextExtractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(eml.New())
	return r
}

// Register adds an extractor. Later registrations win for shared MIME types.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range extractor.SupportedMIMETypes() {
		r.byType[strings.ToLower(mt)] = extractor
	}
}

// Supports reports whether an extractor exists for the MIME type.
func (r *Registry) Supports(mimeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[strings.ToLower(mimeType)]
	return ok
}

// Extract runs the extractor registered for raw.MIMEType.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	r.mu.RLock()
	extractor, ok := r.byType[strings.ToLower(raw.MIMEType)]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: no extractor for %q", domain.ErrFormat, raw.MIMEType)
	}

	text, err := extractor.Extract(ctx, raw.Content, raw.MIMEType)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, raw.URI, err)
	}
	return text, nil
}

// SupportedMIMETypes returns all MIME types that can be extracted, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for mt := range r.byType {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}
