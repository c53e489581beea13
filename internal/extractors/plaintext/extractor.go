// Package plaintext extracts text from plain text and other text-like formats.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"text/toml",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// Extract returns the content as text with a UTF-8 byte order mark removed.
// Content that is not valid UTF-8 is rejected as binary.
func (e *Extractor) Extract(_ context.Context, content []byte, mimeType string) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s content is not valid UTF-8", domain.ErrExtraction, mimeType)
	}
	text := strings.TrimPrefix(string(content), "\ufeff")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
