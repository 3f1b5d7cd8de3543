package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/logger"
)

// pingTimeout bounds each connectivity check at startup.
const pingTimeout = 5 * time.Second

// ValidateStartup checks that both AI services answer and that the
// embedding model's dimension matches what the chunk store already
// holds. A mismatch means the store was built with a different model
// and every similarity computation would be garbage, so it is fatal.
func ValidateStartup(
	ctx context.Context,
	embedder driven.EmbeddingService,
	completion driven.CompletionService,
	store driven.ChunkStore,
) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := embedder.Ping(pingCtx); err != nil {
		return fmt.Errorf("embedding service (%s): %w", embedder.ModelName(), err)
	}
	if err := completion.Ping(pingCtx); err != nil {
		return fmt.Errorf("completion service (%s): %w", completion.ModelName(), err)
	}

	stored, err := store.Dimensions(ctx)
	if err != nil {
		return fmt.Errorf("probe stored embedding dimension: %w", err)
	}
	if stored > 0 {
		probe, err := embedder.Embed(ctx, "dimension probe")
		if err != nil {
			return fmt.Errorf("probe embedding dimension: %w", err)
		}
		if len(probe) != stored {
			return fmt.Errorf(
				"store holds %d-dimensional embeddings but model %s produces %d: %w",
				stored, embedder.ModelName(), len(probe), domain.ErrDimensionMismatch)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored chunks: %w", err)
	}

	logger.Info("embedding model: %s", embedder.ModelName())
	logger.Info("completion model: %s", completion.ModelName())
	logger.Info("chunk store: %d chunks, dimension %d", count, stored)
	return nil
}
