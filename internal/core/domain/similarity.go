package domain

import (
	"math"
	"sort"
)

// Score computes the similarity of two equal-length vectors under the metric.
// The score depends only on the two vectors and the metric.
func Score(metric Metric, a, b []float32) float64 {
	switch metric {
	case MetricDotProduct:
		return dot(a, b)
	default:
		return cosine(a, b)
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// cosine returns 0 when either vector has zero norm.
func cosine(a, b []float32) float64 {
	var normA, normB float64
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot(a, b) / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scored pairs a candidate with its score and insertion sequence.
type Scored struct {
	Record IndexedRecord
	Score  float64
	Seq    int64
}

// RankTopK sorts candidates by descending score, breaking ties by insertion
// sequence, and returns at most k ranked results.
func RankTopK(candidates []Scored, k int) []SearchResult {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Seq < candidates[j].Seq
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{
			ID:       c.Record.ID,
			Text:     c.Record.Text,
			Metadata: CopyMetadata(c.Record.Metadata),
			Score:    c.Score,
			Rank:     i + 1,
		}
	}
	return results
}
