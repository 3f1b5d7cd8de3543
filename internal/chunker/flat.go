package chunker

import (
	"strings"
)

// DefaultMaxChunkSize is the flat chunker's per-chunk character limit.
const DefaultMaxChunkSize = 1000

// NormalizeAndChunk chunks plain, unstructured text: whitespace runs
// collapse to single spaces, sentences split on `. ! ?` boundaries with
// the delimiter retained, and sentences pack greedily up to maxChunkSize
// characters. A single sentence over the limit is hard-wrapped by
// character slice. Empty input yields nil.
func NormalizeAndChunk(raw string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	if text == "" {
		return nil
	}

	var chunks []string
	cur := ""

	for _, sentence := range splitFlatSentences(text) {
		cand := sentence
		if cur != "" {
			cand = cur + " " + sentence
		}
		if runeLen(cand) <= maxChunkSize {
			cur = cand
			continue
		}

		if cur != "" {
			chunks = append(chunks, cur)
		}
		cur = sentence
		if runeLen(cur) > maxChunkSize {
			chunks = append(chunks, hardWrap(cur, maxChunkSize)...)
			cur = ""
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}

	return chunks
}

// splitFlatSentences splits after `.`, `!` or `?` followed by a space.
// The space is consumed; the delimiter stays on the left sentence.
func splitFlatSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] != ' ' {
				continue
			}
			sentences = append(sentences, string(runes[start:i+1]))
			j := i + 1
			for j < len(runes) && runes[j] == ' ' {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
