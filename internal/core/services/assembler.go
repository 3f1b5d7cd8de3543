package services

import (
	"strings"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/logger"
)

// Assembly defaults, overridable through AssembleOptions.
const (
	// DefaultDistanceThreshold is the cosine distance beyond which a
	// vector-scored candidate is dropped from the context.
	DefaultDistanceThreshold = 0.4

	// DefaultMaxContextChars caps the assembled context length in runes.
	DefaultMaxContextChars = 1200

	// DefaultContextTopN is how many surviving candidates join the context.
	DefaultContextTopN = 2
)

// AssembleOptions tunes context assembly. Zero values take the package
// defaults.
type AssembleOptions struct {
	DistanceThreshold float64
	MaxContextChars   int
	TopN              int
}

// Assemble builds the generation context from ranked candidates:
// vector-scored candidates beyond the distance threshold are dropped,
// lexical-only candidates (no vector distance) are always kept, the top
// N survivors join in fused order separated by blank lines, and the
// result is prefix-truncated to MaxContextChars without splitting a
// rune. No survivors yields "".
func Assemble(candidates []domain.SearchCandidate, opts AssembleOptions) string {
	if opts.DistanceThreshold <= 0 {
		opts.DistanceThreshold = DefaultDistanceThreshold
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultContextTopN
	}

	var parts []string
	for _, c := range candidates {
		if c.Distance != nil && *c.Distance > opts.DistanceThreshold {
			logger.Debug("Assembly: dropping %s (distance %.3f beyond threshold)",
				c.ChunkID, *c.Distance)
			continue
		}
		parts = append(parts, c.Content)
		if len(parts) == opts.TopN {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}

	context := strings.Join(parts, "\n\n")

	runes := []rune(context)
	if len(runes) > opts.MaxContextChars {
		logger.Debug("Assembly: truncating context from %d to %d chars",
			len(runes), opts.MaxContextChars)
		context = string(runes[:opts.MaxContextChars])
	}

	return context
}
