// Package chunker provides deterministic text chunking for ingestion.
//
// Two strategies are implemented: a structure-aware chunker for converted
// documents (heading, list and fence markers guide block formation) and a
// flat sentence chunker for plain text. Both are pure functions of their
// input and parameters.
package chunker

import (
	"regexp"
	"strings"
)

// Default token budgets for the structured chunker.
const (
	// DefaultMinTokens is the merge floor: consecutive blocks are merged
	// until the estimated token count reaches this value.
	DefaultMinTokens = 120

	// DefaultMaxTokens is the hard ceiling per emitted chunk.
	DefaultMaxTokens = 800
)

var (
	headingRe = regexp.MustCompile(`^\s{0,3}#{1,6} \S`)
	listRe    = regexp.MustCompile(`^\s{0,3}(?:[-*+] |\d+\. )\S`)
	fenceRe   = regexp.MustCompile("^\\s*```")

	headingMarkerRe = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	listMarkerRe    = regexp.MustCompile(`(?m)^\s{0,3}(?:[-*+] |\d+\. )`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Structured splits normalised line-oriented text into bounded chunks
// using its structure signals: headings start their own blocks, blank
// lines separate paragraphs, list items group together, and fenced code
// is buffered verbatim. Small blocks merge up to the minimum token
// budget; large ones split at sentence boundaries to stay under the
// maximum.
type Structured struct {
	minTokens int
	maxTokens int
}

// Option configures the structured chunker.
type Option func(*Structured)

// WithMinTokens sets the merge floor in estimated tokens.
func WithMinTokens(n int) Option {
	return func(c *Structured) {
		if n > 0 {
			c.minTokens = n
		}
	}
}

// WithMaxTokens sets the per-chunk ceiling in estimated tokens.
func WithMaxTokens(n int) Option {
	return func(c *Structured) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewStructured creates a structured chunker with the given options.
func NewStructured(opts ...Option) *Structured {
	c := &Structured{
		minTokens: DefaultMinTokens,
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// The floor must stay below the ceiling for merging to terminate.
	if c.minTokens >= c.maxTokens {
		c.minTokens = c.maxTokens / 2
	}

	return c
}

// block is an intermediate unit between line walking and merging.
// Code blocks stay opaque: they are never merged or sentence-split.
type block struct {
	text string
	code bool
}

// Split chunks text into an ordered sequence of chunk strings.
// Empty or whitespace-only input yields nil.
func (c *Structured) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	blocks := formBlocks(strings.Split(text, "\n"))
	cleaned := cleanBlocks(blocks)

	return c.mergeAndSplit(cleaned)
}

// formBlocks walks lines and groups them into logical blocks.
func formBlocks(lines []string) []block {
	var blocks []block
	var buf []string
	inCode := false

	flush := func(code bool) {
		if len(buf) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		if joined != "" {
			blocks = append(blocks, block{text: joined, code: code})
		}
		buf = buf[:0]
	}

	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")

		if fenceRe.MatchString(ln) {
			if inCode {
				// Closing fence terminates the code block.
				buf = append(buf, ln)
				flush(true)
				inCode = false
			} else {
				flush(false)
				inCode = true
				buf = append(buf, ln)
			}
			continue
		}
		if inCode {
			buf = append(buf, ln)
			continue
		}

		if strings.TrimSpace(ln) == "" {
			flush(false)
			continue
		}

		if headingRe.MatchString(ln) {
			flush(false)
			buf = append(buf, ln)
			flush(false)
			continue
		}

		// List items accumulate into the current block until a blank
		// line or heading ends them.
		buf = append(buf, ln)
	}
	flush(inCode)

	return blocks
}

// cleanBlocks strips syntax markers per block. Fence delimiters are
// removed first, before any other marker stripping or whitespace
// collapse, so the code payload survives cleaning intact. Code payload
// keeps its internal layout; prose collapses to single-spaced text.
func cleanBlocks(blocks []block) []block {
	cleaned := make([]block, 0, len(blocks))
	for _, b := range blocks {
		if b.code {
			payload := stripFences(b.text)
			if payload != "" {
				cleaned = append(cleaned, block{text: payload, code: true})
			}
			continue
		}

		t := headingMarkerRe.ReplaceAllString(b.text, "")
		t = listMarkerRe.ReplaceAllString(t, "")
		t = strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
		if t != "" {
			cleaned = append(cleaned, block{text: t})
		}
	}
	return cleaned
}

// stripFences drops fence delimiter lines, keeping the payload verbatim.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, ln := range lines {
		if fenceRe.MatchString(ln) {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// mergeAndSplit merges small blocks up to minTokens and splits large
// candidates at sentence boundaries to honour maxTokens.
func (c *Structured) mergeAndSplit(blocks []block) []string {
	var chunks []string
	carry := ""

	flushCarry := func() {
		if carry != "" {
			chunks = append(chunks, carry)
			carry = ""
		}
	}

	for _, b := range blocks {
		if b.code {
			// Code is opaque: emit as-is, hard-wrapping only when the
			// payload alone exceeds the ceiling.
			flushCarry()
			if EstimateTokens(b.text) <= c.maxTokens {
				chunks = append(chunks, b.text)
			} else {
				chunks = append(chunks, hardWrap(b.text, c.maxTokens*3)...)
			}
			continue
		}

		candidate := b.text
		if carry != "" {
			candidate = carry + "\n\n" + b.text
		}
		if EstimateTokens(candidate) < c.minTokens {
			carry = candidate
			continue
		}
		carry = ""
		chunks = append(chunks, c.packSentences(candidate)...)
	}
	flushCarry()

	return chunks
}

// packSentences splits text at sentence boundaries and greedily packs
// sentences so each emitted chunk stays within maxTokens.
func (c *Structured) packSentences(text string) []string {
	var chunks []string
	cur := ""

	for _, s := range splitSentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		cand := s
		if cur != "" {
			cand = cur + " " + s
		}
		if EstimateTokens(cand) <= c.maxTokens {
			cur = cand
			continue
		}

		if cur != "" {
			chunks = append(chunks, cur)
		}
		if EstimateTokens(s) <= c.maxTokens {
			cur = s
		} else {
			chunks = append(chunks, hardWrap(s, c.maxTokens*3)...)
			cur = ""
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}

	return chunks
}

// sentenceTerminators end a sentence when followed by whitespace.
const sentenceTerminators = ".!?。！？"

// splitSentences splits after a terminator followed by whitespace. The
// terminator stays with the preceding sentence; the whitespace run that
// follows it is consumed.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(sentenceTerminators, runes[i]) {
			continue
		}
		if i+1 >= len(runes) || !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// hardWrap slices text into fixed-stride pieces on rune boundaries.
// Used for single sentences that alone exceed the chunk ceiling.
func hardWrap(text string, stride int) []string {
	if stride <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += stride {
		end := start + stride
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
