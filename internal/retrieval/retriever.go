// Package retrieval ranks stored chunks against a query embedding by cosine
// similarity over a full corpus scan.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"multimodal-knowledge-assistant/internal/model"
)

// DefaultTopK is the number of chunks handed to answer generation when the
// caller does not specify one.
const DefaultTopK = 5

// ErrDimensionMismatch reports a stored embedding whose dimensionality
// differs from the query's. This means the embedding provider changed
// dimension mid-corpus; truncating or padding would silently corrupt
// ranking, so the whole query fails instead.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ChunkSource is the single read path over the stored corpus.
type ChunkSource interface {
	ScanAll(ctx context.Context) ([]model.Chunk, error)
}

// Result is one ranked chunk.
type Result struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Retriever answers queries by brute-force scan: every stored chunk is
// scored on every query. Acceptable at the targeted corpus size; an ANN
// index is out of scope.
type Retriever struct {
	source ChunkSource
}

func NewRetriever(source ChunkSource) *Retriever {
	return &Retriever{source: source}
}

// Search loads the full corpus, scores each chunk by cosine similarity
// against query, and returns the topK best in descending score order. Ties
// keep original scan order. A zero-norm vector scores negative infinity and
// is ranked last rather than raising; if no chunk produces a finite score
// the result is empty. topK <= 0 returns an empty result. Store read errors
// and dimension mismatches fail the query.
func (r *Retriever) Search(ctx context.Context, query []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrDimensionMismatch)
	}

	chunks, err := r.source.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus failed: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(chunks))
	anyFinite := false
	for i := range chunks {
		vec := chunks[i].EmbeddingVector()
		score, err := cosineSimilarity(query, vec)
		if err != nil {
			return nil, fmt.Errorf("chunk %s/%d: %w", chunks[i].DocumentID, chunks[i].ChunkIndex, err)
		}
		if !math.IsInf(score, -1) {
			anyFinite = true
		}
		results = append(results, Result{
			DocumentID: chunks[i].DocumentID,
			ChunkIndex: chunks[i].ChunkIndex,
			Text:       chunks[i].TextChunk,
			Score:      score,
		})
	}
	if !anyFinite {
		return nil, nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// cosineSimilarity returns dot(a,b) / (||a|| * ||b||) in float64. A missing
// or zero-norm chunk vector yields -Inf so it sorts last without dividing by
// zero. A non-empty vector of different length is a dimension mismatch.
func cosineSimilarity(query, vec []float32) (float64, error) {
	if len(vec) == 0 {
		return math.Inf(-1), nil
	}
	if len(vec) != len(query) {
		return 0, fmt.Errorf("%w: query %d, stored %d", ErrDimensionMismatch, len(query), len(vec))
	}
	var dot, normQ, normV float64
	for i := range query {
		q := float64(query[i])
		v := float64(vec[i])
		dot += q * v
		normQ += q * q
		normV += v * v
	}
	if normQ == 0 || normV == 0 {
		return math.Inf(-1), nil
	}
	return dot / (math.Sqrt(normQ) * math.Sqrt(normV)), nil
}
