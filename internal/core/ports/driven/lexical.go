package driven

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// LexicalIndex provides trigram similarity search over stored content.
type LexicalIndex interface {
	// Similar finds up to limit chunks by trigram similarity to the query
	// text, ordered by descending similarity in [0,1]. Each candidate
	// carries its content and a non-nil Similarity. An empty store yields
	// empty results, not an error.
	Similar(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error)
}
