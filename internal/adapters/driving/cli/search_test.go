package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			ID:    "doc-1#0",
			Text:  "Transformers rely   entirely on\nattention.",
			Score: 0.912,
			Rank:  1,
			Metadata: map[string]string{
				domain.MetaTitle:  "Attention Is All You Need",
				domain.MetaSource: "https://example.com/attention.pdf",
			},
		},
		{ID: "doc-2#3", Text: "Recurrent models", Score: 0.5, Rank: 2},
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.results = sampleResults()

	out, err := execute("search", "what", "is", "attention")

	require.NoError(t, err)
	assert.Equal(t, "what is attention", ts.retrieval.gotQuery)
	assert.Equal(t, 0, ts.retrieval.gotK)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "(0.912)")
	assert.Contains(t, out, "Source: https://example.com/attention.pdf")
	assert.Contains(t, out, "Transformers rely entirely on attention.")
	assert.Contains(t, out, "doc-2#3")
}

func TestSearchCmd_KFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "query", "-k", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, ts.retrieval.gotK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.results = sampleResults()

	out, err := execute("search", "attention", "--json")

	require.NoError(t, err)
	var got []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, sampleResults(), got)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.err = domain.ErrQueryEmbedding

	_, err := execute("search", "attention")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQueryEmbedding)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute("search", "attention")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.answer = &domain.Answer{
		Query:   "what is attention",
		Answer:  "  Attention weighs tokens.  ",
		Results: sampleResults(),
	}

	out, err := execute("ask", "what", "is", "attention", "--k", "2")

	require.NoError(t, err)
	assert.Equal(t, "what is attention", ts.retrieval.gotQuery)
	assert.Equal(t, 2, ts.retrieval.gotK)
	assert.Contains(t, out, "Attention weighs tokens.")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "Attention Is All You Need")
}

func TestAskCmd_HideSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.answer = &domain.Answer{Answer: "Yes.", Results: sampleResults()}

	out, err := execute("ask", "is it?", "--sources=false")

	require.NoError(t, err)
	assert.Contains(t, out, "Yes.")
	assert.NotContains(t, out, "Attention Is All You Need")
}

func TestAskCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.answer = &domain.Answer{Query: "q", Answer: "a", Context: "ctx"}

	out, err := execute("ask", "q", "--json")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "a", got["answer"])
	assert.NotContains(t, got, "context")
}

func TestAskCmd_GenerationUnavailable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.err = domain.ErrGenerationUnavailable

	_, err := execute("ask", "q")

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAskCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.err = errors.New("boom")

	_, err := execute("ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer failed")
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"collapses whitespace", "a  b\n\tc", 10, "a b c"},
		{"truncates", "abcdefghij", 6, "abc..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snippet(tt.in, tt.maxLen))
		})
	}
}
