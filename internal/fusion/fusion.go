// Package fusion merges vector and lexical retrieval results into one
// ranked candidate list with a single score.
//
// Vector distances convert to similarities, both result sets min-max
// normalise independently, and the union is ranked by the alpha-weighted
// sum. The ordering is fully deterministic: ties break by vector rank,
// then lexical rank, then chunk id.
package fusion

import (
	"sort"

	"github.com/raglite/raglite/internal/core/domain"
)

// DefaultAlpha is the vector weight used when the caller passes an
// out-of-range alpha.
const DefaultAlpha = 0.6

// unranked marks a candidate absent from one of the two result lists.
const unranked = int(^uint(0) >> 1)

// entry accumulates per-chunk state across both result lists.
type entry struct {
	candidate   domain.SearchCandidate
	vecSim      float64
	lexSim      float64
	normVec     float64
	normLex     float64
	hasVec      bool
	hasLex      bool
	vectorRank  int
	lexicalRank int
}

// Fuse combines a vector result list (ascending distance) and a lexical
// result list (descending similarity) into a single list ranked
// descending by fused score. alpha weights the vector side; (1-alpha)
// weights the lexical side.
//
// The second return value reports whether any vector candidate's raw
// distance was within relevanceThreshold.
func Fuse(
	vector, lexical []domain.SearchCandidate,
	alpha, relevanceThreshold float64,
) ([]domain.SearchCandidate, bool) {
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	entries := make(map[string]*entry)
	strongVector := false

	get := func(c domain.SearchCandidate) *entry {
		e, ok := entries[c.ChunkID]
		if !ok {
			e = &entry{
				candidate:   c,
				vectorRank:  unranked,
				lexicalRank: unranked,
			}
			entries[c.ChunkID] = e
		}
		return e
	}

	vecSims := make([]float64, 0, len(vector))
	for rank, c := range vector {
		dist := 0.0
		if c.Distance != nil {
			dist = *c.Distance
		}
		if dist <= relevanceThreshold {
			strongVector = true
		}

		sim := 1 - dist
		if sim < 0 {
			sim = 0
		}

		e := get(c)
		e.vecSim = sim
		e.hasVec = true
		e.vectorRank = rank
		e.candidate.Distance = c.Distance
		vecSims = append(vecSims, sim)
	}

	lexSims := make([]float64, 0, len(lexical))
	for rank, c := range lexical {
		sim := 0.0
		if c.Similarity != nil {
			sim = *c.Similarity
		}

		e := get(c)
		e.lexSim = sim
		e.hasLex = true
		e.lexicalRank = rank
		e.candidate.Similarity = c.Similarity
		if e.candidate.Content == "" {
			e.candidate.Content = c.Content
		}
		lexSims = append(lexSims, sim)
	}

	vecMin, vecMax := minMax(vecSims)
	lexMin, lexMax := minMax(lexSims)

	ranked := make([]*entry, 0, len(entries))
	for _, e := range entries {
		if e.hasVec {
			e.normVec = normalize(e.vecSim, vecMin, vecMax)
		}
		if e.hasLex {
			e.normLex = normalize(e.lexSim, lexMin, lexMax)
		}
		e.candidate.Score = alpha*e.normVec + (1-alpha)*e.normLex
		ranked = append(ranked, e)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.candidate.Score != b.candidate.Score {
			return a.candidate.Score > b.candidate.Score
		}
		if a.vectorRank != b.vectorRank {
			return a.vectorRank < b.vectorRank
		}
		if a.lexicalRank != b.lexicalRank {
			return a.lexicalRank < b.lexicalRank
		}
		return a.candidate.ChunkID < b.candidate.ChunkID
	})

	results := make([]domain.SearchCandidate, len(ranked))
	for i, e := range ranked {
		results[i] = e.candidate
	}

	return results, strongVector
}

// minMax returns the extrema of values. Zero values for an empty slice.
func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// normalize maps v into [0,1] by min-max scaling. A degenerate range
// (all values equal, including a singleton set) maps to 1.0 so a lone
// strong hit is never zeroed out by its own normalisation.
func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 1.0
	}
	return (v - lo) / (hi - lo)
}
