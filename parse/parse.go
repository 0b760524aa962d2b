// Package parse implements the Parse stage: it dispatches on MIME type to a
// per-format extractor and produces linearized text plus the boundary and
// heading hints that the Structure stage needs to rebuild a hierarchy.
package parse

import "context"

// Boundary marks a permissible split point in the document's linearized
// text. Offsets are monotonically non-decreasing within a Result's
// Boundaries slice.
type Boundary struct {
	Type     BoundaryType
	Offset   int
	Strength Strength
}

// BoundaryType classifies the kind of split point a Boundary marks.
type BoundaryType string

const (
	BoundaryParagraph BoundaryType = "paragraph"
	BoundarySentence  BoundaryType = "sentence"
	BoundaryHeading   BoundaryType = "heading"
	BoundaryPageBreak BoundaryType = "pageBreak"
)

// Strength hints how willing the chunker should be to split at a boundary.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
)

// rank orders strengths so the strongest of two competing boundaries at the
// same offset can be kept.
func (s Strength) rank() int {
	switch s {
	case StrengthStrong:
		return 3
	case StrengthMedium:
		return 2
	case StrengthWeak:
		return 1
	default:
		return 0
	}
}

// Stronger reports whether s is a stronger split hint than other.
func (s Strength) Stronger(other Strength) bool {
	return s.rank() > other.rank()
}

// ExtractedHeading is a heading-aware format's native heading: the format
// told us directly where a section starts, what its nesting level is, and
// its title, so Structure does not need to guess.
type ExtractedHeading struct {
	Offset int
	Level  int
	Title  string
}

// Result is what a format extractor produces from a document's bytes.
type Result struct {
	FullText          string
	Boundaries        []Boundary
	ExtractedHeadings []ExtractedHeading
	Metadata          map[string]string
}

// Extractor parses a specific document format into a Result.
type Extractor interface {
	Parse(ctx context.Context, data []byte) (*Result, error)
}
