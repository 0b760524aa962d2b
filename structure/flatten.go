package structure

import "strings"

// FlatSection is one row of the flattened hierarchy, in depth-first
// document order, carrying its own slice of the document text plus the
// breadcrumb needed
// to prefix chunks with the section path they came from.
type FlatSection struct {
	ID          string
	Level       int
	Title       string
	Path        string
	StartOffset int
	EndOffset   int
	WordCount   int
	Corrected   bool
}

// Stats summarizes a flattened section list.
type Stats struct {
	TotalSections    int
	AvgWordCount     float64
	LargestSectionID string
}

// Flatten walks the tree in document order and emits one FlatSection per
// node (root included only when it is the sole node — an unstructured
// document with no detected headings at all becomes a single section
// spanning the whole text). hasStructure reports whether any heading-based
// sections were found.
func Flatten(tree *Tree, fullText string) ([]FlatSection, Stats, bool) {
	hasStructure := len(tree.Root.Children) > 0

	var sections []FlatSection
	if !hasStructure {
		wc := wordCount(fullText)
		sections = []FlatSection{{
			ID:          "root",
			Level:       0,
			Title:       "",
			Path:        "",
			StartOffset: 0,
			EndOffset:   len(fullText),
			WordCount:   wc,
		}}
		return sections, Stats{TotalSections: 1, AvgWordCount: float64(wc), LargestSectionID: "root"}, false
	}

	Walk(tree.Root, func(n *Node) {
		if n == tree.Root {
			return
		}
		text := sliceText(fullText, n.StartOffset, n.EndOffset)
		sections = append(sections, FlatSection{
			ID:          n.ID,
			Level:       n.Level,
			Title:       n.Title,
			Path:        SectionPath(n),
			StartOffset: n.StartOffset,
			EndOffset:   n.EndOffset,
			WordCount:   wordCount(text),
			Corrected:   n.Corrected,
		})
	})

	return sections, computeStats(sections), true
}

func computeStats(sections []FlatSection) Stats {
	if len(sections) == 0 {
		return Stats{}
	}
	total := 0
	largest := sections[0]
	for _, s := range sections {
		total += s.WordCount
		if s.WordCount > largest.WordCount {
			largest = s
		}
	}
	return Stats{
		TotalSections:    len(sections),
		AvgWordCount:     float64(total) / float64(len(sections)),
		LargestSectionID: largest.ID,
	}
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

func wordCount(s string) int {
	return len(strings.Fields(s))
}
