package chunk

import "github.com/docpipeline/indexer/parse"

// sentence is one sentence-granularity unit within a section, with its
// char range (local to the section) and a flag for whether a strong
// boundary immediately precedes it (meaning a parent must not span across
// the gap between this sentence and the previous one).
type sentence struct {
	start, end       int
	tokens           int
	precededByStrong bool
	precededByMedium bool
}

// splitSentences breaks sectionText into sentence units at the weak
// (sentence-level) boundaries supplied by Structure, tagging each unit
// with whether a stronger boundary immediately precedes it so the parent
// packer can honor strong/medium split preferences.
func splitSentences(sectionText string, boundaries []parse.Boundary) []sentence {
	if sectionText == "" {
		return nil
	}

	splitPoints := map[int]bool{0: true, len(sectionText): true}
	strongAt := map[int]bool{}
	mediumAt := map[int]bool{}

	for _, b := range boundaries {
		if b.Offset < 0 || b.Offset > len(sectionText) {
			continue
		}
		switch b.Strength {
		case parse.StrengthStrong:
			splitPoints[b.Offset] = true
			strongAt[b.Offset] = true
		case parse.StrengthMedium:
			splitPoints[b.Offset] = true
			mediumAt[b.Offset] = true
		case parse.StrengthWeak:
			splitPoints[b.Offset] = true
		}
	}

	offsets := make([]int, 0, len(splitPoints))
	for o := range splitPoints {
		offsets = append(offsets, o)
	}
	sortInts(offsets)

	var sentences []sentence
	for i := 0; i < len(offsets)-1; i++ {
		start, end := offsets[i], offsets[i+1]
		if start >= end {
			continue
		}
		sentences = append(sentences, sentence{
			start:            start,
			end:              end,
			tokens:           estimateTokens(sectionText[start:end]),
			precededByStrong: strongAt[start],
			precededByMedium: mediumAt[start],
		})
	}
	return sentences
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
