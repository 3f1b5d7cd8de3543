package driving

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// SearchService exposes hybrid retrieval directly, without generation.
// The chat orchestrator drives it for the retrieval stage.
type SearchService interface {
	// Retrieve runs the hybrid vector + lexical search and returns the
	// fused ranking. A failed leg degrades to the other; both legs
	// failing yields an empty result.
	Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalResult, error)
}
