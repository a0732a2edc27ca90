// Package embed provides text-to-vector embedders.
//
// The Embedder interface is the seam between text comparison and the
// underlying language model. The built-in WordVecEmbedder loads pretrained
// word vectors from disk; HashEmbedder needs no model file and is useful
// for tests and smoke runs; CachedEmbedder memoizes any other embedder.
package embed

import (
	"context"
	"errors"
)

// Embedder defines the interface for text-to-vector embedding.
// Implementations wrap a language model of some kind: pretrained word
// vectors, a remote embedding API, or a deterministic stand-in.
type Embedder interface {
	// Embed converts a single text string into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into vectors in a single call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dim returns the dimension of vectors produced by this embedder.
	Dim() int
}

// Errors related to embedder operations
var (
	// ErrEmptyText is returned when an empty text string is provided.
	ErrEmptyText = errors.New("embed: empty text provided")

	// ErrInvalidModel is returned when a model file cannot be parsed.
	ErrInvalidModel = errors.New("embed: invalid model data")
)

// embedAll is the serial EmbedBatch shared by the local embedders.
// Local embedding is CPU-bound and cheap per text, so there is nothing
// to gain from fanning out here; callers that want concurrency batch at
// a higher level.
func embedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}
