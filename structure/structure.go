package structure

import (
	"strings"

	"github.com/docpipeline/indexer/parse"
)

// Analysis is the complete output of the Structure stage for one document.
type Analysis struct {
	Tree            *Tree
	Boundaries      []parse.Boundary
	Sections        []FlatSection
	Stats           Stats
	HasStructure    bool
	DetectionMethod string
}

// Analyze merges the format extractor's boundaries with the heuristic
// detectors, builds a hierarchy tree from whatever headings are available
// (native from the extractor, or heuristically detected when the format
// supplied none), and flattens the tree into the section list the Chunk
// stage consumes.
func Analyze(result *parse.Result) *Analysis {
	boundaries := DetectBoundaries(result.FullText, result.Boundaries)

	headings := result.ExtractedHeadings
	detectionMethod := "native"
	if len(headings) == 0 {
		headings = headingsFromText(result.FullText)
		detectionMethod = "heuristic"
	}

	tree := BuildTree(result.FullText, headings, detectionMethod)
	sections, stats, hasStructure := Flatten(tree, result.FullText)

	return &Analysis{
		Tree:            tree,
		Boundaries:      boundaries,
		Sections:        sections,
		Stats:           stats,
		HasStructure:    hasStructure,
		DetectionMethod: detectionMethod,
	}
}

// headingsFromText derives ExtractedHeading records from the heading-shaped
// lines the structure-level detector finds, for formats (PDF, plain text)
// whose extractor carries no native heading information.
func headingsFromText(text string) []parse.ExtractedHeading {
	var headings []parse.ExtractedHeading
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if IsHeadingLine(line) {
			headings = append(headings, parse.ExtractedHeading{
				Offset: offset,
				Level:  headingLevelFromLine(trimmed),
				Title:  trimmed,
			})
		}
		offset += len(line) + 1
	}
	return headings
}

// headingLevelFromLine infers a nesting level from a numbered heading line
// ("1.2.3 Title" -> level 3); unnumbered heading-shaped lines (all-caps)
// default to level 1.
func headingLevelFromLine(line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 1
	}
	token := strings.TrimSuffix(fields[0], ".")
	parts := strings.Split(token, ".")
	level := 0
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !isDigits(p) {
			return 1
		}
		level++
	}
	if level == 0 {
		return 1
	}
	return level
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
