package structure

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/docpipeline/indexer/parse"
)

// headingPatterns recognize heading-shaped lines when the source format
// supplies no native heading information. Grounded on the same numbered-
// and all-caps-line heuristics the teacher uses to classify section
// headings in unstructured text.
var headingPatterns = []*regexp.Regexp{
	// Numbered: "1.", "1.2", "1.2.3", followed by whitespace and a title.
	regexp.MustCompile(`^\s*(\d+\.)+(\d+)?\s+\S`),
	// ALL-CAPS line, short enough to plausibly be a heading.
	regexp.MustCompile(`^[A-Z][A-Z0-9 \-:]{2,79}$`),
}

// abbreviations are not treated as sentence-ending periods.
var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"sr.": true, "jr.": true, "st.": true, "vs.": true, "etc.": true,
	"e.g.": true, "i.e.": true, "fig.": true, "no.": true, "vol.": true,
	"approx.": true, "dept.": true, "inc.": true, "ltd.": true, "co.": true,
}

// DetectBoundaries runs the heading/paragraph/sentence heuristic detectors
// over text and merges the result with any boundaries the format
// extractor already supplied, deduplicating by (type, offset) with the
// strongest strength winning.
func DetectBoundaries(text string, parserBoundaries []parse.Boundary) []parse.Boundary {
	var all []parse.Boundary
	all = append(all, parserBoundaries...)
	all = append(all, detectHeadings(text)...)
	all = append(all, detectParagraphs(text)...)
	all = append(all, detectSentences(text)...)
	return mergeBoundaries(all)
}

// IsHeadingLine reports whether a line of text looks like a heading.
func IsHeadingLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}
	for _, re := range headingPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func detectHeadings(text string) []parse.Boundary {
	var boundaries []parse.Boundary
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if IsHeadingLine(line) {
			boundaries = append(boundaries, parse.Boundary{
				Type:     parse.BoundaryHeading,
				Offset:   offset,
				Strength: parse.StrengthStrong,
			})
		}
		offset += len(line) + 1
	}
	return boundaries
}

// blankLineRuns matches one or more consecutive blank lines.
var blankLineRuns = regexp.MustCompile(`\n[ \t]*\n+`)

func detectParagraphs(text string) []parse.Boundary {
	var boundaries []parse.Boundary
	for _, loc := range blankLineRuns.FindAllStringIndex(text, -1) {
		boundaries = append(boundaries, parse.Boundary{
			Type:     parse.BoundaryParagraph,
			Offset:   loc[0],
			Strength: parse.StrengthMedium,
		})
	}
	return boundaries
}

// detectSentences finds period/question/exclamation marks followed by
// whitespace then a capital letter or digit, skipping known abbreviations.
func detectSentences(text string) []parse.Boundary {
	var boundaries []parse.Boundary
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		// find the next non-space rune
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j >= len(runes) {
			continue
		}
		if !unicode.IsUpper(runes[j]) && !unicode.IsDigit(runes[j]) {
			continue
		}
		if isAbbreviation(runes, i) {
			continue
		}
		boundaries = append(boundaries, parse.Boundary{
			Type:     parse.BoundarySentence,
			Offset:   byteOffset(text, i+1),
			Strength: parse.StrengthWeak,
		})
	}
	return boundaries
}

// isAbbreviation checks whether the word ending at the period rune index i
// is a known abbreviation.
func isAbbreviation(runes []rune, i int) bool {
	start := i
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	word := strings.ToLower(string(runes[start : i+1]))
	return abbreviations[word]
}

// byteOffset converts a rune index within text into a byte offset.
func byteOffset(text string, runeIdx int) int {
	count := 0
	for i := range text {
		if count == runeIdx {
			return i
		}
		count++
	}
	return len(text)
}

// mergeBoundaries sorts boundaries by offset and deduplicates entries that
// share the same (type, offset), keeping the strongest strength.
func mergeBoundaries(boundaries []parse.Boundary) []parse.Boundary {
	if len(boundaries) == 0 {
		return nil
	}

	type key struct {
		t parse.BoundaryType
		o int
	}
	best := make(map[key]parse.Boundary, len(boundaries))
	order := make([]key, 0, len(boundaries))

	for _, b := range boundaries {
		k := key{b.Type, b.Offset}
		existing, ok := best[k]
		if !ok {
			best[k] = b
			order = append(order, k)
			continue
		}
		if b.Strength.Stronger(existing.Strength) {
			best[k] = b
		}
	}

	out := make([]parse.Boundary, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].Strength.rank() > out[j].Strength.rank()
	})
	return out
}
