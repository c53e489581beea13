package domain

import (
	"fmt"
	"strings"
)

// Metric is the similarity function used by a vector index.
type Metric string

const (
	// MetricCosine scores by the cosine of the angle between vectors.
	MetricCosine Metric = "cosine"

	// MetricDotProduct scores by the raw inner product.
	MetricDotProduct Metric = "dot_product"
)

// ParseMetric converts a configuration string to a Metric.
// Empty input defaults to cosine.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cosine":
		return MetricCosine, nil
	case "dot_product", "dotproduct", "dot":
		return MetricDotProduct, nil
	default:
		return "", fmt.Errorf("%w: unknown similarity metric %q", ErrConfiguration, s)
	}
}

// EmbeddingVector is the embedding of one chunk.
type EmbeddingVector struct {
	// ChunkIndex refers to the chunk the vector was produced for.
	ChunkIndex int

	// Values are the vector components.
	Values []float32
}

// Dimension returns the vector length.
func (v EmbeddingVector) Dimension() int {
	return len(v.Values)
}

// EmbeddingResult is one slot of an index-aligned batch embedding call.
// Exactly one of Vector and Err is set.
type EmbeddingResult struct {
	Vector []float32
	Err    error
}

// OK reports whether the slot holds a vector.
func (r EmbeddingResult) OK() bool {
	return r.Err == nil && r.Vector != nil
}

// RecordInput is a tuple submitted to the vector index.
type RecordInput struct {
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// IndexedRecord is a tuple stored in the vector index.
// Metadata is opaque to the index and returned verbatim on search hits.
type IndexedRecord struct {
	// ID is assigned by the index on insert.
	ID string `json:"id"`

	// Text is the chunk text.
	Text string `json:"text"`

	// Vector is the chunk embedding.
	Vector []float32 `json:"-"`

	// Metadata contains document-level and chunk-level key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a single nearest-neighbour hit.
// Rank starts at 1 and increases with decreasing similarity.
type SearchResult struct {
	// ID is the matched record.
	ID string `json:"id"`

	// Text is the matched chunk text.
	Text string `json:"text"`

	// Metadata is returned verbatim from the stored record.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Score is the similarity under the index metric (higher is closer).
	Score float64 `json:"score"`

	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`
}

// CopyMetadata returns a shallow copy of a metadata map.
func CopyMetadata(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
