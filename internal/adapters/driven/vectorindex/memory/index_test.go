package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func input(text string, vec ...float32) domain.RecordInput {
	return domain.RecordInput{Text: text, Vector: vec, Metadata: map[string]string{"text": text}}
}

func TestIndex_RoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricCosine, 0)

	ids, err := idx.Upsert(ctx, []domain.RecordInput{input("alpha", 1, 2, 3)})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	got, err := idx.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)
	assert.Equal(t, "alpha", got.Text)
	assert.Equal(t, []float32{1, 2, 3}, got.Vector)
	assert.Equal(t, map[string]string{"text": "alpha"}, got.Metadata)
	assert.Equal(t, 3, idx.Dimension())
}

func TestIndex_EmptySearch(t *testing.T) {
	idx := New(domain.MetricCosine, 4)
	results, err := idx.Search(context.Background(), []float32{1, 0, 0, 0}, 3)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestIndex_InvalidK(t *testing.T) {
	idx := New(domain.MetricCosine, 0)
	_, err := idx.Search(context.Background(), []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_DimensionMismatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricCosine, 0)

	_, err := idx.Upsert(ctx, []domain.RecordInput{input("a", 1, 0)})
	require.NoError(t, err)

	_, err = idx.Upsert(ctx, []domain.RecordInput{input("b", 0, 1), input("c", 1, 1, 1)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "no record of a rejected batch may be stored")

	_, err = idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_FixedDimension(t *testing.T) {
	idx := New(domain.MetricCosine, 3)
	_, err := idx.Upsert(context.Background(), []domain.RecordInput{input("a", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_EmptyVectorRejected(t *testing.T) {
	idx := New(domain.MetricCosine, 0)
	_, err := idx.Upsert(context.Background(), []domain.RecordInput{{Text: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricCosine, 0)

	_, err := idx.Upsert(ctx, []domain.RecordInput{
		input("orthogonal", 0, 1),
		input("exact", 1, 0),
		input("diagonal", 1, 1),
		input("exact-later", 2, 0),
	})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Cosine ignores length, so the tie between the exact matches is broken by insertion order.
	assert.Equal(t, "exact", results[0].Text)
	assert.Equal(t, "exact-later", results[1].Text)
	assert.Equal(t, "diagonal", results[2].Text)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		assert.Equal(t, i+1, results[i].Rank)
	}
	assert.Equal(t, map[string]string{"text": "exact"}, results[0].Metadata)
}

func TestIndex_DotProduct(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricDotProduct, 0)
	assert.Equal(t, domain.MetricDotProduct, idx.Metric())

	_, err := idx.Upsert(ctx, []domain.RecordInput{input("short", 1, 0), input("long", 3, 0)})
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "long", results[0].Text)
	assert.InDelta(t, 3.0, results[0].Score, 1e-9)
}

func TestIndex_Delete(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricCosine, 0)
	ids, err := idx.Upsert(ctx, []domain.RecordInput{input("a", 1), input("b", 1)})
	require.NoError(t, err)

	require.NoError(t, idx.Delete(ctx, ids[0], "unknown"))

	_, err = idx.Get(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	idx := New(domain.MetricCosine, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := idx.Upsert(ctx, []domain.RecordInput{input("x", 1, 2), input("y", 2, 1)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, count)
}
