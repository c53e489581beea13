package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Cosine(t *testing.T) {
	assert.InDelta(t, 1.0, Score(MetricCosine, []float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Score(MetricCosine, []float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, Score(MetricCosine, []float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Equal(t, 0.0, Score(MetricCosine, []float32{0, 0}, []float32{1, 1}))
}

func TestScore_DotProduct(t *testing.T) {
	assert.InDelta(t, 11.0, Score(MetricDotProduct, []float32{1, 2}, []float32{3, 4}), 1e-9)
	// Dot product is not length-normalised.
	assert.InDelta(t, 4.0, Score(MetricDotProduct, []float32{1, 0}, []float32{4, 0}), 1e-9)
}

func TestScore_IsSymmetric(t *testing.T) {
	a := []float32{0.3, -0.2, 0.9}
	b := []float32{0.1, 0.4, -0.5}
	for _, m := range []Metric{MetricCosine, MetricDotProduct} {
		assert.InDelta(t, Score(m, a, b), Score(m, b, a), 1e-12)
	}
}

func TestRankTopK(t *testing.T) {
	candidates := []Scored{
		{Record: IndexedRecord{ID: "low"}, Score: 0.1, Seq: 1},
		{Record: IndexedRecord{ID: "tie-late"}, Score: 0.5, Seq: 4},
		{Record: IndexedRecord{ID: "high"}, Score: 0.9, Seq: 3},
		{Record: IndexedRecord{ID: "tie-early"}, Score: 0.5, Seq: 2},
	}

	results := RankTopK(candidates, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "high", results[0].ID)
	assert.Equal(t, "tie-early", results[1].ID)
	assert.Equal(t, "tie-late", results[2].ID)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankTopK_KLargerThanCandidates(t *testing.T) {
	results := RankTopK([]Scored{{Record: IndexedRecord{ID: "only"}, Score: 1}}, 10)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Rank)
}

func TestRankTopK_Empty(t *testing.T) {
	results := RankTopK(nil, 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
