package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglite/raglite/internal/core/domain"
)

func vecCand(id string, distance float64) domain.SearchCandidate {
	return domain.SearchCandidate{
		ChunkID:  id,
		Content:  "content-" + id,
		Distance: domain.Float64Ptr(distance),
	}
}

func lexCand(id string, similarity float64) domain.SearchCandidate {
	return domain.SearchCandidate{
		ChunkID:    id,
		Content:    "content-" + id,
		Similarity: domain.Float64Ptr(similarity),
	}
}

func TestFuse_Empty(t *testing.T) {
	ranked, strong := Fuse(nil, nil, 0.6, 0.4)

	assert.Empty(t, ranked)
	assert.False(t, strong)
}

func TestFuse_MinMaxNormalisation(t *testing.T) {
	// Distances 0.2 and 0.8 become similarities 0.8 and 0.2, which
	// normalise to exactly 1.0 and 0.0.
	vector := []domain.SearchCandidate{
		vecCand("a", 0.2),
		vecCand("b", 0.8),
	}

	ranked, strong := Fuse(vector, nil, 0.6, 0.4)

	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ChunkID)
	assert.InDelta(t, 0.6, ranked[0].Score, 1e-12) // 0.6*1.0 + 0.4*0
	assert.Equal(t, "b", ranked[1].ChunkID)
	assert.InDelta(t, 0.0, ranked[1].Score, 1e-12)
	assert.True(t, strong)
}

func TestFuse_DegenerateRangeMapsToOne(t *testing.T) {
	t.Run("singleton", func(t *testing.T) {
		ranked, _ := Fuse([]domain.SearchCandidate{vecCand("a", 0.3)}, nil, 0.6, 0.4)

		require.Len(t, ranked, 1)
		assert.InDelta(t, 0.6, ranked[0].Score, 1e-12)
	})

	t.Run("all equal", func(t *testing.T) {
		vector := []domain.SearchCandidate{
			vecCand("a", 0.5),
			vecCand("b", 0.5),
			vecCand("c", 0.5),
		}
		ranked, _ := Fuse(vector, nil, 0.6, 0.4)

		require.Len(t, ranked, 3)
		for _, c := range ranked {
			assert.InDelta(t, 0.6, c.Score, 1e-12)
		}
	})
}

func TestFuse_CombinesBothLegs(t *testing.T) {
	vector := []domain.SearchCandidate{
		vecCand("a", 0.1),
		vecCand("b", 0.5),
	}
	lexical := []domain.SearchCandidate{
		lexCand("b", 0.9),
		lexCand("c", 0.3),
	}

	ranked, strong := Fuse(vector, lexical, 0.6, 0.4)

	require.Len(t, ranked, 3)
	assert.True(t, strong)

	byID := make(map[string]domain.SearchCandidate)
	for _, c := range ranked {
		byID[c.ChunkID] = c
	}

	// a: vector only. normVec=1.0, normLex=0 -> 0.6.
	assert.InDelta(t, 0.6, byID["a"].Score, 1e-12)
	// b: normVec=0.0, normLex=1.0 -> 0.4.
	assert.InDelta(t, 0.4, byID["b"].Score, 1e-12)
	// c: lexical only. normLex=0.0 -> 0.
	assert.InDelta(t, 0.0, byID["c"].Score, 1e-12)

	assert.Equal(t, "a", ranked[0].ChunkID)
	assert.Equal(t, "b", ranked[1].ChunkID)
	assert.Equal(t, "c", ranked[2].ChunkID)

	// A candidate present in both legs carries both raw measures.
	require.NotNil(t, byID["b"].Distance)
	require.NotNil(t, byID["b"].Similarity)
	assert.Equal(t, 0.5, *byID["b"].Distance)
	assert.Equal(t, 0.9, *byID["b"].Similarity)
}

func TestFuse_AlphaWeighting(t *testing.T) {
	vector := []domain.SearchCandidate{vecCand("a", 0.2), vecCand("b", 0.8)}
	lexical := []domain.SearchCandidate{lexCand("b", 0.9), lexCand("a", 0.1)}

	// alpha=1 means lexical contributes nothing.
	ranked, _ := Fuse(vector, lexical, 1.0, 0.4)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ChunkID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-12)

	// alpha=0 means vector contributes nothing.
	ranked, _ = Fuse(vector, lexical, 0.0, 0.4)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].ChunkID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-12)
}

func TestFuse_InvalidAlphaFallsBackToDefault(t *testing.T) {
	vector := []domain.SearchCandidate{vecCand("a", 0.3)}

	ranked, _ := Fuse(vector, nil, -1, 0.4)
	require.Len(t, ranked, 1)
	assert.InDelta(t, DefaultAlpha, ranked[0].Score, 1e-12)

	ranked, _ = Fuse(vector, nil, 1.5, 0.4)
	require.Len(t, ranked, 1)
	assert.InDelta(t, DefaultAlpha, ranked[0].Score, 1e-12)
}

func TestFuse_TieBreaks(t *testing.T) {
	t.Run("vector rank wins", func(t *testing.T) {
		// Equal distances yield equal scores; the earlier vector entry
		// sorts first.
		vector := []domain.SearchCandidate{
			vecCand("zed", 0.5),
			vecCand("arc", 0.5),
		}
		ranked, _ := Fuse(vector, nil, 0.6, 0.4)

		require.Len(t, ranked, 2)
		assert.Equal(t, "zed", ranked[0].ChunkID)
		assert.Equal(t, "arc", ranked[1].ChunkID)
	})

	t.Run("lexical rank breaks vector-absent ties", func(t *testing.T) {
		lexical := []domain.SearchCandidate{
			lexCand("zed", 0.5),
			lexCand("arc", 0.5),
		}
		ranked, _ := Fuse(nil, lexical, 0.6, 0.4)

		require.Len(t, ranked, 2)
		assert.Equal(t, "zed", ranked[0].ChunkID)
		assert.Equal(t, "arc", ranked[1].ChunkID)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		vector := []domain.SearchCandidate{
			vecCand("a", 0.4), vecCand("b", 0.4), vecCand("c", 0.4),
		}
		lexical := []domain.SearchCandidate{
			lexCand("c", 0.7), lexCand("d", 0.7),
		}

		first, _ := Fuse(vector, lexical, 0.6, 0.4)
		for range 20 {
			again, _ := Fuse(vector, lexical, 0.6, 0.4)
			assert.Equal(t, first, again)
		}
	})
}

func TestFuse_StrongVectorThreshold(t *testing.T) {
	t.Run("within threshold", func(t *testing.T) {
		_, strong := Fuse([]domain.SearchCandidate{vecCand("a", 0.4)}, nil, 0.6, 0.4)
		assert.True(t, strong)
	})

	t.Run("beyond threshold", func(t *testing.T) {
		_, strong := Fuse([]domain.SearchCandidate{vecCand("a", 0.41)}, nil, 0.6, 0.4)
		assert.False(t, strong)
	})

	t.Run("lexical never triggers it", func(t *testing.T) {
		_, strong := Fuse(nil, []domain.SearchCandidate{lexCand("a", 1.0)}, 0.6, 0.4)
		assert.False(t, strong)
	})
}

func TestFuse_NegativeSimilarityClamped(t *testing.T) {
	// Cosine distance above 1 would give a negative similarity; it is
	// clamped to zero before normalisation.
	vector := []domain.SearchCandidate{
		vecCand("a", 1.4),
		vecCand("b", 0.2),
	}

	ranked, _ := Fuse(vector, nil, 1.0, 0.4)

	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].ChunkID)
	assert.InDelta(t, 0.0, ranked[1].Score, 1e-12)
}
