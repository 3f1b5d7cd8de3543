package chunker

import "unicode/utf8"

// EstimateTokens approximates the token count of s as ceil(chars/3).
// This is a fixed heuristic, not a real tokenizer; the same estimate is
// used by every budget in the pipeline and must not drift.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return (n + 2) / 3
}
