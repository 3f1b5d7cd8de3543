package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/fusion"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.SearchService = (*Retriever)(nil)

// Retrieval defaults, overridable through RetrieverConfig.
const (
	// DefaultTopK is how many candidates each leg requests.
	DefaultTopK = 2

	// DefaultAlpha weights the vector leg in fusion.
	DefaultAlpha = 0.6

	// DefaultRelevanceThreshold is the cosine distance within which a
	// vector hit counts as strong.
	DefaultRelevanceThreshold = 0.4
)

// RetrieverConfig tunes the hybrid retrieval pass. Zero values take the
// package defaults.
type RetrieverConfig struct {
	TopK               int
	Alpha              float64
	RelevanceThreshold float64
}

// Retriever performs hybrid retrieval: a vector leg and a lexical leg
// run in parallel and their rankings fuse into one scored list.
type Retriever struct {
	embedder driven.EmbeddingService
	vector   driven.VectorIndex
	lexical  driven.LexicalIndex
	chunks   driven.ChunkStore

	topK               int
	alpha              float64
	relevanceThreshold float64
}

// NewRetriever creates a hybrid retriever. chunks backs the substring
// fallback when the lexical index is unusable.
func NewRetriever(
	embedder driven.EmbeddingService,
	vector driven.VectorIndex,
	lexical driven.LexicalIndex,
	chunks driven.ChunkStore,
	cfg RetrieverConfig,
) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = DefaultRelevanceThreshold
	}

	return &Retriever{
		embedder:           embedder,
		vector:             vector,
		lexical:            lexical,
		chunks:             chunks,
		topK:               cfg.TopK,
		alpha:              cfg.Alpha,
		relevanceThreshold: cfg.RelevanceThreshold,
	}
}

// Retrieve runs both search legs in parallel and fuses their results.
// One failing leg degrades to the other; both failing degrades to an
// empty result rather than an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalResult, error) {
	logger.Section("Hybrid Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return domain.RetrievalResult{}, nil
	}

	if topK <= 0 {
		topK = r.topK
	}
	logger.Debug("TopK: %d, alpha: %.2f", topK, r.alpha)

	var (
		vectorHits, lexicalHits []domain.SearchCandidate
		vectorErr, lexicalErr   error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		vectorHits, vectorErr = r.vectorLeg(ctx, query, topK)
	}()

	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = r.lexicalLeg(ctx, query, topK)
	}()

	wg.Wait()

	if vectorErr != nil && lexicalErr != nil {
		logger.Warn("Retrieval: both legs failed (vector=%v, lexical=%v), degrading to empty",
			vectorErr, lexicalErr)
		return domain.RetrievalResult{}, nil
	}
	if vectorErr != nil {
		logger.Warn("Retrieval: vector leg failed, using lexical results only: %v", vectorErr)
	}
	if lexicalErr != nil {
		logger.Warn("Retrieval: lexical leg failed, using vector results only: %v", lexicalErr)
	}

	logger.Debug("Fusing %d vector + %d lexical results", len(vectorHits), len(lexicalHits))
	ranked, strong := fusion.Fuse(vectorHits, lexicalHits, r.alpha, r.relevanceThreshold)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	logger.Info("Retrieval: %d candidates, strong vector match: %t", len(ranked), strong)

	return domain.RetrievalResult{
		Candidates:           ranked,
		HasStrongVectorMatch: strong,
	}, nil
}

// vectorLeg embeds the query and searches the vector index.
func (r *Retriever) vectorLeg(ctx context.Context, query string, k int) ([]domain.SearchCandidate, error) {
	if r.embedder == nil || r.vector == nil {
		return nil, fmt.Errorf("vector leg: %w", domain.ErrServiceUnavailable)
	}

	logger.Debug("Vector leg: generating query embedding")
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Vector leg: embedding has %d dimensions", len(embedding))

	hits, err := r.vector.Nearest(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Vector leg: %d hits", len(hits))
	return hits, nil
}

// lexicalLeg searches the trigram index, falling back to substring
// containment over the chunk store when the index is unusable.
func (r *Retriever) lexicalLeg(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error) {
	if r.lexical != nil {
		hits, err := r.lexical.Similar(ctx, query, limit)
		if err == nil {
			logger.Debug("Lexical leg: %d trigram hits", len(hits))
			return hits, nil
		}
		logger.Warn("Lexical leg: trigram search failed, falling back to substring scan: %v", err)
	}

	if r.chunks == nil {
		return nil, fmt.Errorf("lexical leg: %w", domain.ErrLexicalUnavailable)
	}

	hits, err := r.chunks.ScanContent(ctx, "", query, limit)
	if err != nil {
		return nil, fmt.Errorf("substring scan: %w", err)
	}

	// Fallback matches have no graded similarity; every hit counts as a
	// full match in match order.
	for i := range hits {
		hits[i].Similarity = domain.Float64Ptr(1.0)
	}

	logger.Debug("Lexical leg: %d substring hits", len(hits))
	return hits, nil
}
