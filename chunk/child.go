package chunk

import "math"

// minChildTokens is the floor below which a trailing child is merged back
// into the previous child rather than emitted on its own.
const minChildTokens = 32

// formChildren sub-chunks a parent's sentence range into children with a
// sliding token window and character-range overlap, emitting one Lineage
// record per child.
func (c *Chunker) formChildren(parent ParentChunk, sentences []sentence, sectionOffset int) ([]ChildChunk, []Lineage) {
	if len(sentences) == 0 {
		return nil, nil
	}

	overlapTokens := int(math.Ceil(float64(c.cfg.ChildTargetTokens) * c.cfg.ChildOverlapRatio))

	type window struct {
		startIdx, endIdx int
	}
	var windows []window

	i := 0
	for i < len(sentences) {
		tokens := 0
		j := i
		for j < len(sentences) {
			tokens += sentences[j].tokens
			j++
			if tokens >= c.cfg.ChildTargetTokens {
				break
			}
		}
		windows = append(windows, window{i, j})
		if j >= len(sentences) {
			break
		}

		// Step back from j to find the overlap start k: include trailing
		// sentences from the window just closed until their combined
		// tokens meet the overlap target.
		backTokens := 0
		k := j
		for k > i && backTokens < overlapTokens {
			k--
			backTokens += sentences[k].tokens
		}
		if k <= i {
			// No room to overlap without looping forever; advance past
			// the window entirely.
			k = j
		}
		i = k
	}

	// Merge a too-short trailing window into its predecessor.
	if len(windows) > 1 {
		last := windows[len(windows)-1]
		lastTokens := 0
		for idx := last.startIdx; idx < last.endIdx; idx++ {
			lastTokens += sentences[idx].tokens
		}
		if lastTokens < minChildTokens {
			windows[len(windows)-2].endIdx = last.endIdx
			windows = windows[:len(windows)-1]
		}
	}

	baseOffset := sentences[0].start // start of the parent's sentence range, local to the section
	parentLocalStart := baseOffset

	var children []ChildChunk
	var lineage []Lineage

	for ord, w := range windows {
		start := sentences[w.startIdx].start
		end := sentences[w.endIdx-1].end
		content := parent.Content[charOffsetInParent(start, parentLocalStart):charOffsetInParent(end, parentLocalStart)]

		child := ChildChunk{
			ID:         newChunkID(),
			ParentID:   parent.ID,
			Content:    content,
			TokenCount: estimateTokens(content),
			Ordinal:    ord,
		}

		if ord > 0 {
			prevEnd := sentences[windows[ord-1].endIdx-1].end
			overlapStart := charOffsetInParent(start, parentLocalStart)
			overlapEnd := charOffsetInParent(min(prevEnd, end), parentLocalStart)
			if overlapEnd > overlapStart {
				child.OverlapStart = overlapStart
				child.OverlapEnd = overlapEnd
			}
		}

		children = append(children, child)
		lineage = append(lineage, Lineage{
			ChildID:     child.ID,
			ParentID:    parent.ID,
			DocumentID:  parent.DocumentID,
			FileID:      parent.FileID,
			SectionPath: parent.SectionPath,
		})
	}

	return children, lineage
}

// charOffsetInParent converts a section-local character offset into an
// offset within the parent's own (untrimmed) content string.
func charOffsetInParent(sectionLocalOffset, parentLocalStart int) int {
	off := sectionLocalOffset - parentLocalStart
	if off < 0 {
		off = 0
	}
	return off
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
