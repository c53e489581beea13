package domain

import (
	"strings"
	"time"
)

// Prompt template placeholders.
const (
	PlaceholderContext = "{{context}}"
	PlaceholderQuery   = "{{query}}"
)

// DefaultPromptTemplate is used when no prompt is active.
const DefaultPromptTemplate = `You are a research assistant that answers questions using only the
documents provided below. Do not use outside knowledge. If the documents do
not contain the answer, say that no indexed document addresses the question.

Documents:
{{context}}

Question: {{query}}

Answer:`

// Prompt is a stored answer-generation template.
// At most one prompt is active at a time.
type Prompt struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RenderPrompt substitutes the context and query placeholders in one pass,
// so placeholder text inside the context is never expanded.
// A template missing a placeholder gets that value appended.
func RenderPrompt(template, context, query string) string {
	if !strings.Contains(template, PlaceholderContext) {
		template += "\n\n" + PlaceholderContext
	}
	if !strings.Contains(template, PlaceholderQuery) {
		template += "\n\n" + PlaceholderQuery
	}
	r := strings.NewReplacer(PlaceholderContext, context, PlaceholderQuery, query)
	return r.Replace(template)
}
