// Package memory provides an in-memory brute-force vector index.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	record domain.IndexedRecord
	seq    int64
}

// Index is an in-memory implementation of driven.VectorIndex.
// Search scans every record, so it suits tests and small ephemeral corpora.
type Index struct {
	mu        sync.RWMutex
	metric    domain.Metric
	dimension int
	entries   map[string]entry
	nextSeq   int64
}

// New creates an in-memory index.
// A dimension of 0 is established by the first successful upsert.
func New(metric domain.Metric, dimension int) *Index {
	if metric == "" {
		metric = domain.MetricCosine
	}
	return &Index{
		metric:    metric,
		dimension: dimension,
		entries:   make(map[string]entry),
	}
}

// Upsert inserts records as one all-or-nothing write.
func (x *Index) Upsert(_ context.Context, records []domain.RecordInput) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	for i, r := range records {
		if len(r.Vector) == 0 {
			return nil, fmt.Errorf("%w: record %d has an empty vector", domain.ErrInvalidInput, i)
		}
		if dim == 0 {
			dim = len(r.Vector)
		}
		if len(r.Vector) != dim {
			return nil, fmt.Errorf("%w: record %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), dim)
		}
	}

	ids := make([]string, len(records))
	for i, r := range records {
		id := uuid.New().String()
		x.nextSeq++
		x.entries[id] = entry{
			record: domain.IndexedRecord{
				ID:       id,
				Text:     r.Text,
				Vector:   append([]float32(nil), r.Vector...),
				Metadata: domain.CopyMetadata(r.Metadata),
			},
			seq: x.nextSeq,
		}
		ids[i] = id
	}
	x.dimension = dim
	return ids, nil
}

// Search returns at most k records by descending similarity.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dimension)
	}

	candidates := make([]domain.Scored, 0, len(x.entries))
	for _, e := range x.entries {
		candidates = append(candidates, domain.Scored{
			Record: e.record,
			Score:  domain.Score(x.metric, query, e.record.Vector),
			Seq:    e.seq,
		})
	}
	return domain.RankTopK(candidates, k), nil
}

// Get retrieves a record by ID.
func (x *Index) Get(_ context.Context, id string) (*domain.IndexedRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec := e.record
	rec.Vector = append([]float32(nil), rec.Vector...)
	rec.Metadata = domain.CopyMetadata(rec.Metadata)
	return &rec, nil
}

// Delete removes records. Unknown IDs are ignored.
func (x *Index) Delete(_ context.Context, ids ...string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		delete(x.entries, id)
	}
	return nil
}

// Count returns the number of stored records.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Dimension returns the established vector dimension.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Metric returns the similarity metric.
func (x *Index) Metric() domain.Metric {
	return x.metric
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}
