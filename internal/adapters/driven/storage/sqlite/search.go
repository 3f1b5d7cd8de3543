package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
)

var (
	_ driven.VectorIndex  = (*Store)(nil)
	_ driven.LexicalIndex = (*Store)(nil)
)

// Nearest finds the k chunks closest to the query vector by cosine
// distance. Distances are computed in Go over a full scan of the stored
// embeddings. An empty store yields empty results.
func (s *Store) Nearest(ctx context.Context, query []float32, k int) ([]domain.SearchCandidate, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query vector: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, file_name, chunk_index, content, embedding FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var candidates []domain.SearchCandidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.SearchCandidate
		var blob []byte
		if err := rows.Scan(&c.ChunkID, &c.FileName, &c.ChunkIndex, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}

		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			return nil, fmt.Errorf("chunk %s has %d dimensions, query has %d: %w",
				c.ChunkID, len(embedding), len(query), domain.ErrDimensionMismatch)
		}

		c.Distance = domain.Float64Ptr(cosineDistance(query, embedding))
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if *candidates[i].Distance != *candidates[j].Distance {
			return *candidates[i].Distance < *candidates[j].Distance
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Similar finds up to limit chunks by trigram similarity to the query
// text, descending. Chunks with zero similarity are omitted. An empty
// store yields empty results.
func (s *Store) Similar(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error) {
	if limit <= 0 {
		return nil, nil
	}

	queryTrigrams := trigramSet(query)
	if len(queryTrigrams) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, file_name, chunk_index, content FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	defer rows.Close()

	var candidates []domain.SearchCandidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.SearchCandidate
		if err := rows.Scan(&c.ChunkID, &c.FileName, &c.ChunkIndex, &c.Content); err != nil {
			return nil, fmt.Errorf("scanning content row: %w", err)
		}

		similarity := trigramSimilarity(queryTrigrams, trigramSet(c.Content))
		if similarity <= 0 {
			continue
		}
		c.Similarity = domain.Float64Ptr(similarity)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if *candidates[i].Similarity != *candidates[j].Similarity {
			return *candidates[i].Similarity > *candidates[j].Similarity
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// cosineDistance is 1 - cosine similarity, in [0,2]. A zero-magnitude
// vector has maximal distance to everything.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// trigramSet extracts the word-padded trigram set of s the way pg_trgm
// does: lowercase, words of letters and digits, each word padded with
// two leading spaces and one trailing space.
func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, word := range splitWords(strings.ToLower(s)) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// trigramSimilarity is |a∩b| / |a∪b|.
func trigramSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// splitWords extracts runs of letters and digits.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r > 127: // multibyte letters count as word runes, as in pg_trgm
		return true
	default:
		return false
	}
}
