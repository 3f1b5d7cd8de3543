package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEmbedder_HitSkipsProvider(t *testing.T) {
	inner := &mockEmbeddingService{embedding: []float32{1, 2, 3}}
	c, err := NewCachedEmbedder(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.Embed(ctx, "same query")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "same query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	calls, _ := inner.calls()
	assert.Equal(t, 1, calls)
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	inner := &mockEmbeddingService{embedErr: errors.New("down")}
	c, err := NewCachedEmbedder(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Embed(ctx, "query")
	require.Error(t, err)

	// Provider recovers; the failure must not have been cached.
	inner.embedErr = nil
	inner.embedding = []float32{4, 5}
	got, err := c.Embed(ctx, "query")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5}, got)
}

func TestCachedEmbedder_CapacityEvicts(t *testing.T) {
	inner := &mockEmbeddingService{embedding: []float32{1}}
	c, err := NewCachedEmbedder(inner, 2)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "a")
	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts "a"
	_, _ = c.Embed(ctx, "a") // miss again

	calls, _ := inner.calls()
	assert.Equal(t, 4, calls)
}

func TestCachedEmbedder_BatchBypassesCache(t *testing.T) {
	inner := &mockEmbeddingService{embedding: []float32{1}}
	c, err := NewCachedEmbedder(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	_, err = c.Embed(ctx, "a")
	require.NoError(t, err)

	calls, batches := inner.calls()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, batches)
}

func TestCachedEmbedder_Passthroughs(t *testing.T) {
	inner := &mockEmbeddingService{dims: 16}
	c, err := NewCachedEmbedder(inner, 0)
	require.NoError(t, err)

	assert.Equal(t, 16, c.Dimensions())
	assert.Equal(t, "mock-embed", c.ModelName())
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
