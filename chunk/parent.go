package chunk

// sentenceRange identifies a contiguous run of sentences, [startIdx, endIdx).
type sentenceRange struct {
	startIdx, endIdx int
}

// packParents greedily groups sentences into parent-sized windows. A
// parent never crosses a sentence preceded by a strong boundary (that
// forces a new parent to start). Once the running total has reached the
// target token count, the next sentence preceded by a medium boundary
// closes the current parent. Otherwise a parent closes only when the next
// sentence would push it past the ceiling: reaching the target alone does
// not close it, so a run of text with no medium boundary fills parents up
// to the ceiling.
func (c *Chunker) packParents(sentences []sentence) []sentenceRange {
	if len(sentences) == 0 {
		return nil
	}

	var groups []sentenceRange
	start := 0
	tokens := 0

	for i, s := range sentences {
		if i > start {
			// A strong boundary immediately before this sentence forces a
			// break here regardless of token count.
			if s.precededByStrong {
				groups = append(groups, sentenceRange{start, i})
				start = i
				tokens = 0
			} else if tokens >= c.cfg.ParentTargetTokens && s.precededByMedium {
				// Preferred close point: we've reached the target window
				// and a medium boundary offers a natural break.
				groups = append(groups, sentenceRange{start, i})
				start = i
				tokens = 0
			} else if tokens+s.tokens > c.cfg.ParentMaxTokens {
				// Forced close: adding this sentence would exceed the
				// ceiling.
				groups = append(groups, sentenceRange{start, i})
				start = i
				tokens = 0
			}
		}
		tokens += s.tokens
	}

	groups = append(groups, sentenceRange{start, len(sentences)})
	return groups
}
