// Package chunk implements the Chunk stage: it consumes the flat section
// list produced by the structure package and produces parent chunks, child
// chunks, and the lineage records that bridge them.
package chunk

import (
	"strings"

	"github.com/docpipeline/indexer/parse"
	"github.com/docpipeline/indexer/structure"
)

// Config controls parent/child sizing. Zero-value fields fall back to the
// spec defaults.
type Config struct {
	ParentTargetTokens int     // default 768
	ParentMaxTokens    int     // hard ceiling, default 2048
	ChildTargetTokens  int     // default 192
	ChildOverlapRatio  float64 // default 0.15
}

func (c Config) withDefaults() Config {
	if c.ParentTargetTokens == 0 {
		c.ParentTargetTokens = 768
	}
	if c.ParentMaxTokens == 0 {
		c.ParentMaxTokens = 2048
	}
	if c.ChildTargetTokens == 0 {
		c.ChildTargetTokens = 192
	}
	if c.ChildOverlapRatio == 0 {
		c.ChildOverlapRatio = 0.15
	}
	return c
}

// ParentChunk is a coarse retrieval unit returned at query time.
type ParentChunk struct {
	ID          string
	FileID      string
	DocumentID  string
	Content     string
	SectionPath string
	TokenCount  int
	CharStart   int
	CharEnd     int
	Ordinal     int
}

// ChildChunk is a fine-grained embedding unit. Content is always a
// contiguous substring of its parent's Content.
type ChildChunk struct {
	ID           string
	ParentID     string
	Content      string
	TokenCount   int
	Ordinal      int
	OverlapStart int // char offset within parent content where overlap with the previous child begins
	OverlapEnd   int // char offset within parent content where overlap with the previous child ends
}

// Lineage bridges a child chunk back to its parent, document, and file —
// the structure consulted at retrieval time to materialize full context
// from a matched child embedding.
type Lineage struct {
	ChildID     string
	ParentID    string
	DocumentID  string
	FileID      string
	SectionPath string
}

// Chunker converts flat sections into parent/child chunks and lineage.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration. Zero-value fields are
// replaced with the spec's defaults.
func New(cfg Config) *Chunker {
	return &Chunker{cfg: cfg.withDefaults()}
}

// Result is the Chunk stage's complete output for one document.
type Result struct {
	Parents  []ParentChunk
	Children []ChildChunk
	Lineage  []Lineage
}

// Chunk converts a document's flat sections into parents, children, and
// lineage. boundaries is the full merged boundary list produced by the
// Structure stage, used to locate strong (never-cross) and medium
// (preferred) split points inside each section's text.
func (c *Chunker) Chunk(fileID, documentID string, fullText string, sections []structure.FlatSection, boundaries []parse.Boundary) Result {
	var result Result
	parentOrdinal := 0

	for _, sec := range sections {
		sectionText := sliceText(fullText, sec.StartOffset, sec.EndOffset)
		if strings.TrimSpace(sectionText) == "" {
			continue
		}

		localBoundaries := localize(boundaries, sec.StartOffset, sec.EndOffset)
		sentences := splitSentences(sectionText, localBoundaries)
		if len(sentences) == 0 {
			continue
		}

		if isAtomicCodeBlock(sectionText, localBoundaries) {
			parent := c.newParent(fileID, documentID, sec, sectionText, 0, len(sectionText), parentOrdinal)
			result.Parents = append(result.Parents, parent)
			children, lineage := c.chunkChildren(parent, &result)
			result.Children = append(result.Children, children...)
			result.Lineage = append(result.Lineage, lineage...)
			parentOrdinal++
			continue
		}

		groups := c.packParents(sentences)
		for _, g := range groups {
			start := sentences[g.startIdx].start
			end := sentences[g.endIdx-1].end
			content := sectionText[start:end]
			parent := c.newParent(fileID, documentID, sec, content, start, end, parentOrdinal)
			result.Parents = append(result.Parents, parent)

			children, lineage := c.formChildren(parent, sentences[g.startIdx:g.endIdx], start)
			result.Children = append(result.Children, children...)
			result.Lineage = append(result.Lineage, lineage...)

			parentOrdinal++
		}
	}

	return result
}

// newParent builds a ParentChunk from an exact [localStart,localEnd) slice
// of the section's text. The content is used verbatim, untrimmed — child
// char ranges are computed relative to it, and trimming here would shift
// every subsequent offset out from under the substring invariant.
func (c *Chunker) newParent(fileID, documentID string, sec structure.FlatSection, content string, localStart, localEnd, ordinal int) ParentChunk {
	return ParentChunk{
		ID:          newChunkID(),
		FileID:      fileID,
		DocumentID:  documentID,
		Content:     content,
		SectionPath: sec.Path,
		TokenCount:  estimateTokens(content),
		CharStart:   sec.StartOffset + localStart,
		CharEnd:     sec.StartOffset + localEnd,
		Ordinal:     ordinal,
	}
}

// chunkChildren handles the atomic (single-parent, no-split) case: the
// whole parent content becomes its own single child.
func (c *Chunker) chunkChildren(parent ParentChunk, _ *Result) ([]ChildChunk, []Lineage) {
	child := ChildChunk{
		ID:         newChunkID(),
		ParentID:   parent.ID,
		Content:    parent.Content,
		TokenCount: parent.TokenCount,
		Ordinal:    0,
	}
	lineage := Lineage{
		ChildID:     child.ID,
		ParentID:    parent.ID,
		DocumentID:  parent.DocumentID,
		FileID:      parent.FileID,
		SectionPath: parent.SectionPath,
	}
	return []ChildChunk{child}, []Lineage{lineage}
}

func sliceText(fullText string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(fullText) {
		end = len(fullText)
	}
	if start >= end {
		return ""
	}
	return fullText[start:end]
}

// localize filters boundaries to those within [start,end) and rebases
// their offsets to be relative to start.
func localize(boundaries []parse.Boundary, start, end int) []parse.Boundary {
	var out []parse.Boundary
	for _, b := range boundaries {
		if b.Offset >= start && b.Offset < end {
			out = append(out, parse.Boundary{Type: b.Type, Offset: b.Offset - start, Strength: b.Strength})
		}
	}
	return out
}

// isAtomicCodeBlock reports whether a section is exactly one fenced code
// block — the Markdown extractor's signature for this is a single strong
// paragraph boundary at local offset 0 and no other boundaries in the
// section. Such a section becomes one parent with no further splitting;
// the code block is never divided.
func isAtomicCodeBlock(text string, boundaries []parse.Boundary) bool {
	if len(boundaries) != 1 {
		return false
	}
	b := boundaries[0]
	return b.Type == parse.BoundaryParagraph && b.Strength == parse.StrengthStrong && b.Offset == 0
}
