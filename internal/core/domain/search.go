package domain

// SearchCandidate is a transient retrieval result derived from a Chunk.
// It lives for one request only and is never persisted.
type SearchCandidate struct {
	// ChunkID identifies the underlying chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// FileName is the owning file of the chunk.
	FileName string

	// ChunkIndex is the chunk's position within its file.
	ChunkIndex int

	// Distance is the cosine distance from the query vector
	// (0 = identical). Nil for lexical-only hits.
	Distance *float64

	// Similarity is the trigram similarity to the query text in [0,1].
	// Nil for vector-only hits.
	Similarity *float64

	// Score is the fused relevance score in [0,1], set by the fusion
	// engine. Higher is better.
	Score float64
}

// RetrievalResult is the outcome of one hybrid retrieval pass.
type RetrievalResult struct {
	// Candidates is the fused, ranked candidate list.
	Candidates []SearchCandidate

	// HasStrongVectorMatch is true when at least one vector hit fell
	// inside the configured relevance threshold. Downstream stages use
	// it as a trust signal independent of fusion weighting.
	HasStrongVectorMatch bool
}

// Float64Ptr returns a pointer to v. Convenience for building candidates.
func Float64Ptr(v float64) *float64 {
	return &v
}
