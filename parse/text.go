package parse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TextExtractor handles plain text. It has no heading information of its
// own: paragraph boundaries are emitted at blank-line runs, and sentence
// boundaries are deliberately left to the Structure stage as the spec
// requires.
type TextExtractor struct{}

var blankLineRun = regexp.MustCompile(`\n[ \t]*\n+`)

func (p *TextExtractor) Parse(ctx context.Context, data []byte) (*Result, error) {
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("parse: text file is empty")
	}

	var boundaries []Boundary
	locs := blankLineRun.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		boundaries = append(boundaries, Boundary{
			Type:     BoundaryParagraph,
			Offset:   loc[0],
			Strength: StrengthMedium,
		})
	}

	return &Result{
		FullText:   text,
		Boundaries: boundaries,
	}, nil
}
