package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the natural-language query"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of chunks to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	Source     string  `json:"source,omitempty"`
	Text       string  `json:"text"`
}

// AnswerInput is the input schema for the answer tool.
type AnswerInput struct {
	Query string `json:"query" jsonschema:"the question to answer from indexed documents"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks used as context (default from settings)"`
}

// AnswerOutput is the output schema for the answer tool.
type AnswerOutput struct {
	Answer  string               `json:"answer"`
	Sources []SearchResultOutput `json:"sources"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	URL      string            `json:"url,omitempty" jsonschema:"remote document URL"`
	Path     string            `json:"path,omitempty" jsonschema:"local file path"`
	Title    string            `json:"title,omitempty" jsonschema:"document title override"`
	Metadata map[string]string `json:"metadata,omitempty" jsonschema:"key-value pairs stored with every chunk"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id,omitempty"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of documents (default all)"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises a stored document record.
type DocumentOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the indexed chunks most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer",
		Description: "Answer a question using only the indexed documents",
	}, s.handleAnswer)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Download or read a document, chunk and embed it into the index",
		}, s.handleIngest)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested documents, newest first",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.K)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}
	return nil, output, nil
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Retrieval.Answer(ctx, input.Query, input.K)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{
		Answer:  answer.Answer,
		Sources: toResultOutputs(answer.Results),
	}, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	src := domain.SourceDescriptor{
		URL:      input.URL,
		Path:     input.Path,
		Title:    input.Title,
		Metadata: input.Metadata,
	}

	item, err := s.ports.Ingestion.IngestSingle(ctx, src)
	if item == nil {
		return nil, IngestOutput{}, fmt.Errorf("ingesting %s: %w", src.Identifier(), err)
	}

	output := IngestOutput{
		DocumentID: item.DocumentID,
		Title:      item.Title,
		Status:     string(item.Status),
		ChunkCount: item.ChunkCount,
	}
	if item.Error != nil {
		output.Error = item.Error.Message
	}
	if err != nil {
		return nil, output, fmt.Errorf("ingesting %s: %w", src.Identifier(), err)
	}
	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if input.Limit > 0 && len(docs) > input.Limit {
		docs = docs[:input.Limit]
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Title:      docs[i].Title,
			Source:     docs[i].Source,
			ChunkCount: docs[i].ChunkCount,
			CreatedAt:  docs[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return nil, output, nil
}

func toResultOutputs(results []domain.SearchResult) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = SearchResultOutput{
			Rank:       results[i].Rank,
			Score:      results[i].Score,
			DocumentID: results[i].Metadata[domain.MetaDocumentID],
			Title:      results[i].Metadata[domain.MetaTitle],
			Source:     results[i].Metadata[domain.MetaSource],
			Text:       results[i].Text,
		}
	}
	return out
}
