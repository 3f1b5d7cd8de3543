package driven

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// VectorIndex provides semantic similarity search over stored embeddings.
type VectorIndex interface {
	// Nearest finds the k chunks closest to the query vector, ordered by
	// ascending cosine distance (0 identical, 2 opposite). Each candidate
	// carries its content and a non-nil Distance. An empty store yields
	// empty results, not an error.
	Nearest(ctx context.Context, query []float32, k int) ([]domain.SearchCandidate, error)
}
