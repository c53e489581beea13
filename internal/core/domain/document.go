package domain

import "time"

// Chunk is a contiguous window of a document's extracted text.
// Chunks of one document form an overlap-respecting cover of the text.
type Chunk struct {
	// Index is the ordinal position within the document, starting at 0.
	Index int

	// Text is the chunk content.
	Text string

	// Offset is the starting character (rune) position in the source text.
	Offset int
}

// End returns the character position one past the chunk's last character.
func (c Chunk) End() int {
	return c.Offset + len([]rune(c.Text))
}

// DocumentRecord is the document-level metadata kept by the record store.
// One document maps to many IndexedRecords in the vector index.
type DocumentRecord struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// Source is the URL, file path or upload filename the document came from.
	Source string `json:"source"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// ContentType is the media type the text was extracted from.
	ContentType string `json:"content_type"`

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int `json:"chunk_count"`

	// RecordIDs are the vector index IDs of the document's chunks, in chunk order.
	RecordIDs []string `json:"record_ids,omitempty"`

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the document record was last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known metadata keys attached to every indexed chunk record.
const (
	MetaDocumentID = "document_id"
	MetaSource     = "source"
	MetaTitle      = "title"
	MetaChunkIndex = "chunk_index"
	MetaOffset     = "offset"
)
