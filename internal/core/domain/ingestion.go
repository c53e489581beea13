package domain

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ItemState is a stage of one document's progress through the pipeline.
type ItemState string

const (
	StatePending     ItemState = "pending"
	StateDownloading ItemState = "downloading"
	StateExtracting  ItemState = "extracting"
	StateChunking    ItemState = "chunking"
	StateEmbedding   ItemState = "embedding"
	StateStoring     ItemState = "storing"
	StateSucceeded   ItemState = "succeeded"
	StateFailed      ItemState = "failed"
)

// IsTerminal reports whether no further transitions may occur.
func (s ItemState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// stateOrder is the forward path of a successful item.
var stateOrder = map[ItemState]int{
	StatePending:     0,
	StateDownloading: 1,
	StateExtracting:  2,
	StateChunking:    3,
	StateEmbedding:   4,
	StateStoring:     5,
	StateSucceeded:   6,
}

// CanTransition reports whether moving from s to next is allowed.
// Any non-terminal state may fail; otherwise the item only moves forward.
func (s ItemState) CanTransition(next ItemState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	from, ok := stateOrder[s]
	if !ok {
		return false
	}
	to, ok := stateOrder[next]
	return ok && to > from
}

// SourceDescriptor identifies one document to ingest.
// Exactly one of URL, Path and Content must be set.
type SourceDescriptor struct {
	// URL is a remote document location.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// Path is a local file path.
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`

	// Content is directly uploaded document bytes.
	Content []byte `json:"-" yaml:"-" toml:"-"`

	// Filename names uploaded content.
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty" toml:"filename,omitempty"`

	// Title overrides the derived document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// ContentType declares the media type of Path or Content sources.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty" toml:"content_type,omitempty"`

	// Metadata is copied onto every stored chunk record.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// Identifier returns the URL, path or filename identifying the source.
func (d SourceDescriptor) Identifier() string {
	switch {
	case d.URL != "":
		return d.URL
	case d.Path != "":
		return d.Path
	case d.Filename != "":
		return d.Filename
	default:
		return "upload"
	}
}

// Validate checks the descriptor shape before any network or compute work.
func (d SourceDescriptor) Validate() error {
	set := 0
	if d.URL != "" {
		set++
	}
	if d.Path != "" {
		set++
	}
	if d.Content != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one of url, path or content is required", ErrValidation)
	}
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return fmt.Errorf("%w: parse url: %w", ErrValidation, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: url %q must have a scheme and host", ErrValidation, d.URL)
		}
	}
	return nil
}

// DisplayTitle returns the explicit title or one derived from the identifier.
func (d SourceDescriptor) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	id := d.Identifier()
	if d.URL != "" {
		if u, err := url.Parse(d.URL); err == nil && u.Path != "" && u.Path != "/" {
			id = u.Path
		}
	}
	return TitleFromPath(id)
}

// TitleFromPath extracts a human-readable title from a path or URI.
func TitleFromPath(p string) string {
	filename := filepath.Base(p)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// IngestionItem tracks one document through the pipeline.
type IngestionItem struct {
	// Source is the URL, path or filename of the document.
	Source string `json:"source"`

	// Title is the document title.
	Title string `json:"title"`

	// Status is the current (or final) state.
	Status ItemState `json:"status"`

	// ChunkCount is the number of chunks stored on success.
	ChunkCount int `json:"chunk_count"`

	// DocumentID is the record store ID on success.
	DocumentID string `json:"document_id,omitempty"`

	// Error is set when Status is StateFailed.
	Error *ErrorDetail `json:"error,omitempty"`
}

// IngestionReport separates the succeeded and failed items of one batch.
// It is a response value built once per call.
type IngestionReport struct {
	Succeeded []IngestionItem `json:"succeeded"`
	Failed    []IngestionItem `json:"failed"`
}

// NewIngestionReport partitions items by final status, preserving input order.
func NewIngestionReport(items []IngestionItem) IngestionReport {
	report := IngestionReport{
		Succeeded: make([]IngestionItem, 0, len(items)),
		Failed:    make([]IngestionItem, 0),
	}
	for _, item := range items {
		if item.Error != nil {
			item.Error = &ErrorDetail{Kind: item.Error.Kind, Stage: item.Error.Stage, Message: item.Error.Message}
		}
		if item.Status == StateSucceeded {
			report.Succeeded = append(report.Succeeded, item)
		} else {
			report.Failed = append(report.Failed, item)
		}
	}
	return report
}

// Total returns the number of items in the report.
func (r IngestionReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// AllFailed reports whether the batch had items and none succeeded.
func (r IngestionReport) AllFailed() bool {
	return len(r.Succeeded) == 0 && len(r.Failed) > 0
}
