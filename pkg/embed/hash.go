package embed

import (
	"context"

	"github.com/hazalci/textcompare/pkg/lexical"
)

// HashEmbedder is a deterministic embedder that needs no model file.
// Each token is mapped to a pseudo-random unit-range vector seeded by its
// hash, and the text embedding is the mean of its token vectors. Texts
// sharing words therefore produce correlated vectors, which makes the
// embedder usable for tests and smoke runs, though it carries no
// semantic knowledge.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder with the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{dim: dim}
}

// Embed generates a deterministic vector for the given text.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	pooled := make([]float32, h.dim)
	tokens := lexical.Normalize(text)
	for _, token := range tokens {
		seed := uint32(2166136261)
		for _, c := range token {
			seed = (seed ^ uint32(c)) * 16777619
		}
		for i := range pooled {
			// LCG walk from the token seed, scaled into [-1, 1).
			seed = seed*1664525 + 1013904223
			pooled[i] += float32(int32(seed)) / float32(0x80000000)
		}
	}

	if len(tokens) > 1 {
		inv := 1 / float32(len(tokens))
		for i := range pooled {
			pooled[i] *= inv
		}
	}
	return pooled, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedAll(ctx, h, texts)
}

// Dim returns the embedding dimension.
func (h *HashEmbedder) Dim() int {
	return h.dim
}
