package parse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MarkdownExtractor handles Markdown. ATX headings (# .. ######) map to
// heading boundaries; blank lines separate paragraphs; fenced code blocks
// are preserved verbatim and never split — they are stripped of their
// fence markers but the block's offsets are recorded so the chunker can
// treat them as atomic.
type MarkdownExtractor struct{}

var atxHeading = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t]*#*[ \t]*$`)
var fence = regexp.MustCompile("^(```|~~~)")

func (p *MarkdownExtractor) Parse(ctx context.Context, data []byte) (*Result, error) {
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("parse: markdown file is empty")
	}

	lines := strings.Split(text, "\n")
	var b strings.Builder
	var boundaries []Boundary
	var headings []ExtractedHeading

	inFence := false
	var fenceStart int
	blankRun := 0

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		if fence.MatchString(strings.TrimSpace(trimmed)) {
			if !inFence {
				inFence = true
				fenceStart = b.Len()
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				continue
			}
			inFence = false
			b.WriteString("\n")
			boundaries = append(boundaries, Boundary{Type: BoundaryParagraph, Offset: fenceStart, Strength: StrengthStrong})
			continue
		}

		if inFence {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString(trimmed)
			continue
		}

		if strings.TrimSpace(trimmed) == "" {
			blankRun++
			continue
		}

		if m := atxHeading.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			offset := b.Len()
			if b.Len() > 0 {
				b.WriteString("\n\n")
				offset += 2
			}
			b.WriteString(title)
			headings = append(headings, ExtractedHeading{Offset: offset, Level: level, Title: title})
			boundaries = append(boundaries, Boundary{Type: BoundaryHeading, Offset: offset, Strength: StrengthStrong})
			blankRun = 0
			continue
		}

		offset := b.Len()
		if blankRun > 0 && b.Len() > 0 {
			b.WriteString("\n\n")
			offset += 2
			boundaries = append(boundaries, Boundary{Type: BoundaryParagraph, Offset: offset, Strength: StrengthMedium})
		} else if b.Len() > 0 {
			b.WriteString("\n")
			offset += 1
		}
		b.WriteString(trimmed)
		blankRun = 0
	}

	fullText := b.String()
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("parse: no extractable text in markdown")
	}

	return &Result{
		FullText:          fullText,
		Boundaries:        boundaries,
		ExtractedHeadings: headings,
	}, nil
}
