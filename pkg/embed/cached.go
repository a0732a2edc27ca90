package embed

import (
	"context"
	"sync"
)

// CachedEmbedder wraps another embedder and caches results in memory.
// Safe for concurrent use.
type CachedEmbedder struct {
	embedder Embedder
	mu       sync.RWMutex
	cache    map[string][]float32
}

// NewCachedEmbedder creates a new cached embedder.
func NewCachedEmbedder(embedder Embedder) *CachedEmbedder {
	return &CachedEmbedder{
		embedder: embedder,
		cache:    make(map[string][]float32),
	}
}

// Embed returns a cached embedding if available, otherwise computes and
// caches it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.RLock()
	vec, ok := c.cache[text]
	c.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[text] = vec
	c.mu.Unlock()
	return vec, nil
}

// EmbedBatch embeds multiple texts, using the cache where available.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []int

	c.mu.RLock()
	for i, text := range texts {
		if vec, ok := c.cache[text]; ok {
			vectors[i] = vec
		} else {
			missing = append(missing, i)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return vectors, nil
	}

	uncached := make([]string, len(missing))
	for i, idx := range missing {
		uncached[i] = texts[idx]
	}

	fresh, err := c.embedder.EmbedBatch(ctx, uncached)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, idx := range missing {
		vectors[idx] = fresh[i]
		c.cache[texts[idx]] = fresh[i]
	}
	c.mu.Unlock()
	return vectors, nil
}

// Dim returns the embedding dimension of the wrapped embedder.
func (c *CachedEmbedder) Dim() int {
	return c.embedder.Dim()
}

// CacheSize returns the number of cached embeddings.
func (c *CachedEmbedder) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// ClearCache drops all cached embeddings.
func (c *CachedEmbedder) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string][]float32)
	c.mu.Unlock()
}
