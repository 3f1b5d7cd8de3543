package services

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure CachedEmbedder implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedder)(nil)

// DefaultEmbedCacheSize bounds the query-embedding cache.
const DefaultEmbedCacheSize = 512

// CachedEmbedder wraps an EmbeddingService with a bounded LRU cache
// keyed by input text. Repeated queries skip the embedding round-trip.
// Batch embedding during ingestion bypasses the cache: document chunks
// rarely repeat and would only churn it.
type CachedEmbedder struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU of the given capacity.
// Non-positive capacity takes DefaultEmbedCacheSize.
func NewCachedEmbedder(inner driven.EmbeddingService, capacity int) (*CachedEmbedder, error) {
	if capacity <= 0 {
		capacity = DefaultEmbedCacheSize
	}

	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}

	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached embedding for text, or delegates and caches.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.cache.Get(text); ok {
		logger.Debug("Embedding cache hit (%d entries)", c.cache.Len())
		return cached, nil
	}

	embedding, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(text, embedding)
	return embedding, nil
}

// EmbedBatch delegates directly; batches are not cached.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

// Dimensions reports the wrapped service's embedding size.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName reports the wrapped service's model name.
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Ping delegates to the wrapped service.
func (c *CachedEmbedder) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// Close purges the cache and closes the wrapped service.
func (c *CachedEmbedder) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
