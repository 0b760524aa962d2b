package structure

import (
	"testing"

	"github.com/docpipeline/indexer/parse"
)

func TestBuildTreeStrictIncrease(t *testing.T) {
	headings := []parse.ExtractedHeading{
		{Offset: 0, Level: 1, Title: "Intro"},
		{Offset: 10, Level: 2, Title: "Background"},
		{Offset: 20, Level: 2, Title: "Motivation"},
		{Offset: 30, Level: 1, Title: "Methods"},
	}
	tree := BuildTree("x", headings, "native")
	if !IsValid(tree.Root) {
		t.Fatal("expected tree to satisfy the level invariant")
	}
	if tree.CorrectionCount != 0 {
		t.Fatalf("expected no corrections, got %d", tree.CorrectionCount)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 top-level children, got %d", len(tree.Root.Children))
	}
}

func TestBuildTreeLevelSkipIsCorrected(t *testing.T) {
	headings := []parse.ExtractedHeading{
		{Offset: 0, Level: 1, Title: "Intro"},
		{Offset: 10, Level: 4, Title: "Deep subsection"},
	}
	tree := BuildTree("x", headings, "native")
	if !IsValid(tree.Root) {
		t.Fatal("expected tree to satisfy the level invariant after correction")
	}
	if tree.CorrectionCount != 1 {
		t.Fatalf("expected exactly 1 correction, got %d", tree.CorrectionCount)
	}

	deep := tree.Root.Children[0].Children[0]
	if deep.Title != "Deep subsection" {
		t.Fatalf("expected Deep subsection to attach under Intro, got %q", deep.Title)
	}
	if deep.Level != 2 {
		t.Fatalf("expected Deep subsection clamped to level 2 (parent.Level+1), got %d", deep.Level)
	}
	if !deep.Corrected {
		t.Fatal("expected Deep subsection to be flagged as corrected")
	}
}

// TestBuildTreeLevelSkipDownThenUp mirrors the spec's S3 scenario
// directly: headings at levels 1, 3, 2 (# A, ### C, ## B). C attaches
// under A but must be clamped to level 2 (A.Level+1) and flagged as the
// corrected node; B attaches as a sibling of C under A at its own raw
// level 2, uncorrected, since 2 <= A.Level(1)+1 already holds.
func TestBuildTreeLevelSkipDownThenUp(t *testing.T) {
	headings := []parse.ExtractedHeading{
		{Offset: 0, Level: 1, Title: "A"},
		{Offset: 10, Level: 3, Title: "C"},
		{Offset: 20, Level: 2, Title: "B"},
	}
	tree := BuildTree("x", headings, "native")
	if !IsValid(tree.Root) {
		t.Fatal("expected tree to satisfy the level invariant after correction")
	}
	if tree.CorrectionCount != 1 {
		t.Fatalf("expected exactly 1 correction (C only), got %d", tree.CorrectionCount)
	}

	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected A as the sole root child, got %d", len(tree.Root.Children))
	}
	a := tree.Root.Children[0]
	if a.Title != "A" || a.Level != 1 {
		t.Fatalf("expected A at level 1, got %q at level %d", a.Title, a.Level)
	}
	if len(a.Children) != 2 {
		t.Fatalf("expected A to have 2 children (C, B), got %d", len(a.Children))
	}

	c := a.Children[0]
	if c.Title != "C" {
		t.Fatalf("expected C as A's first child, got %q", c.Title)
	}
	if c.Level != 2 {
		t.Fatalf("expected C clamped to level 2, got %d", c.Level)
	}
	if !c.Corrected {
		t.Fatal("expected C to be flagged as corrected")
	}

	b := a.Children[1]
	if b.Title != "B" {
		t.Fatalf("expected B as A's second child, got %q", b.Title)
	}
	if b.Level != 2 {
		t.Fatalf("expected B at its raw level 2, got %d", b.Level)
	}
	if b.Corrected {
		t.Fatal("expected B to not be flagged as corrected — its raw level already satisfies the invariant")
	}
}

func TestBuildTreeOrphanReparenting(t *testing.T) {
	headings := []parse.ExtractedHeading{
		{Offset: 0, Level: 2, Title: "Orphan"},
		{Offset: 10, Level: 1, Title: "TopLevel"},
		{Offset: 20, Level: 3, Title: "Nested"},
	}
	tree := BuildTree("x", headings, "native")
	if !IsValid(tree.Root) {
		t.Fatal("expected valid tree")
	}
	if len(tree.Root.Children) == 0 {
		t.Fatal("expected at least one root child")
	}
}

func TestIsHeadingLine(t *testing.T) {
	cases := map[string]bool{
		"1.2.3 Scope of Work":                 true,
		"INTRODUCTION":                        true,
		"This is just a regular sentence.":    false,
		"":                                    false,
		"A normal line that happens to be all lowercase and long enough to not match anything at all really": false,
	}
	for line, want := range cases {
		if got := IsHeadingLine(line); got != want {
			t.Errorf("IsHeadingLine(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestDetectSentencesSkipsAbbreviations(t *testing.T) {
	text := "Dr. Smith met with Mr. Jones. They discussed the report."
	boundaries := DetectBoundaries(text, nil)
	var sentenceCount int
	for _, b := range boundaries {
		if b.Type == parse.BoundarySentence {
			sentenceCount++
		}
	}
	if sentenceCount != 1 {
		t.Fatalf("expected exactly 1 sentence boundary (after 'Jones.'), got %d", sentenceCount)
	}
}

func TestMergeBoundariesKeepsStrongest(t *testing.T) {
	input := []parse.Boundary{
		{Type: parse.BoundaryParagraph, Offset: 5, Strength: parse.StrengthWeak},
		{Type: parse.BoundaryParagraph, Offset: 5, Strength: parse.StrengthStrong},
		{Type: parse.BoundaryParagraph, Offset: 5, Strength: parse.StrengthMedium},
	}
	merged := mergeBoundaries(input)
	if len(merged) != 1 {
		t.Fatalf("expected deduplication to 1 boundary, got %d", len(merged))
	}
	if merged[0].Strength != parse.StrengthStrong {
		t.Fatalf("expected the strongest strength to win, got %v", merged[0].Strength)
	}
}

func TestSectionPathTruncatesMiddle(t *testing.T) {
	root := &Node{ID: "root", Level: 0}
	long := ""
	for i := 0; i < 50; i++ {
		long += "A Very Long Section Title That Repeats "
	}
	n := &Node{ID: "n1", Level: 1, Title: long, Parent: root}
	root.Children = append(root.Children, n)

	path := SectionPath(n)
	if len(path) > maxSectionPathLen {
		t.Fatalf("expected path truncated to %d chars, got %d", maxSectionPathLen, len(path))
	}
}

func TestSectionPathJoinsAncestors(t *testing.T) {
	root := &Node{ID: "root", Level: 0}
	parent := &Node{ID: "p", Level: 1, Title: "Chapter 1", Parent: root}
	child := &Node{ID: "c", Level: 2, Title: "Section 1.1", Parent: parent}
	root.Children = []*Node{parent}
	parent.Children = []*Node{child}

	path := SectionPath(child)
	want := "Chapter 1 > Section 1.1"
	if path != want {
		t.Fatalf("SectionPath = %q, want %q", path, want)
	}
}

func TestFlattenUnstructuredDocument(t *testing.T) {
	result := &parse.Result{FullText: "just a body of text with no headings at all"}
	analysis := Analyze(result)
	if analysis.HasStructure {
		t.Fatal("expected HasStructure to be false for a heading-less document")
	}
	if len(analysis.Sections) != 1 {
		t.Fatalf("expected exactly 1 fallback section, got %d", len(analysis.Sections))
	}
}

func TestFlattenStructuredDocument(t *testing.T) {
	result := &parse.Result{
		FullText: "Intro\n\nbody text here\n\nMethods\n\nmore body text",
		ExtractedHeadings: []parse.ExtractedHeading{
			{Offset: 0, Level: 1, Title: "Intro"},
			{Offset: 30, Level: 1, Title: "Methods"},
		},
	}
	analysis := Analyze(result)
	if !analysis.HasStructure {
		t.Fatal("expected HasStructure to be true")
	}
	if analysis.DetectionMethod != "native" {
		t.Fatalf("expected native detection method, got %q", analysis.DetectionMethod)
	}
	if len(analysis.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(analysis.Sections))
	}
	if analysis.Stats.TotalSections != 2 {
		t.Fatalf("expected stats.TotalSections == 2, got %d", analysis.Stats.TotalSections)
	}
}

func TestRevalidateReparentsMovedNode(t *testing.T) {
	root := &Node{ID: "root", Level: 0}
	a := &Node{ID: "a", Level: 1, Parent: root}
	b := &Node{ID: "b", Level: 1, Parent: a} // invalid: same level as parent
	root.Children = []*Node{a}
	a.Children = []*Node{b}

	moved := Revalidate(root)
	if moved != 1 {
		t.Fatalf("expected 1 node moved, got %d", moved)
	}
	if !IsValid(root) {
		t.Fatal("expected tree valid after Revalidate")
	}
}
