// Package enrich implements the Enrich stage: metadata, algorithmic entity
// extraction, TF-IDF keywords, and the optional LLM-backed
// hypothetical-question generator.
package enrich

import (
	"math"
	"strings"

	"github.com/docpipeline/indexer/chunk"
)

// EnrichedParentChunk is a ParentChunk extended with the fields the Enrich
// stage derives. Keywords, Entities, and HypotheticalQuestions default to
// empty when their enricher is disabled or degrades.
type EnrichedParentChunk struct {
	chunk.ParentChunk

	TokenCount            int
	CharCount             int
	ReadingTimeSeconds    int
	Keywords              []string
	Entities              []string
	HypotheticalQuestions []string
}

// readingWordsPerSecond is the assumed reading speed (200 wpm ≈ 3.33 words/sec).
const readingWordsPerSecond = 3.33

// Metadata computes the always-on derived metadata fields for a parent chunk.
func Metadata(p chunk.ParentChunk) (tokenCount, charCount, readingTimeSeconds int) {
	tokenCount = p.TokenCount
	charCount = len(p.Content)
	wordCount := len(strings.Fields(p.Content))
	readingTimeSeconds = int(math.Ceil(float64(wordCount) / readingWordsPerSecond))
	return
}
