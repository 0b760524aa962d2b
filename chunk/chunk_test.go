package chunk

import (
	"strings"
	"testing"

	"github.com/docpipeline/indexer/parse"
	"github.com/docpipeline/indexer/structure"
)

func sections(fullText string) ([]structure.FlatSection, []parse.Boundary) {
	analysis := structure.Analyze(&parse.Result{FullText: fullText})
	return analysis.Sections, analysis.Boundaries
}

func TestChunkLineageTotality(t *testing.T) {
	text := strings.Repeat("This is a reasonably long sentence about widgets. ", 80)
	secs, bounds := sections(text)

	c := New(Config{})
	result := c.Chunk("file-1", "doc-1", text, secs, bounds)

	if len(result.Lineage) != len(result.Children) {
		t.Fatalf("lineage count %d != child count %d", len(result.Lineage), len(result.Children))
	}

	parentIDs := map[string]bool{}
	for _, p := range result.Parents {
		parentIDs[p.ID] = true
	}
	childIDs := map[string]bool{}
	for _, c := range result.Children {
		childIDs[c.ID] = true
	}
	seen := map[string]bool{}
	for _, l := range result.Lineage {
		if seen[l.ChildID] {
			t.Fatalf("duplicate lineage entry for child %q", l.ChildID)
		}
		seen[l.ChildID] = true
		if !childIDs[l.ChildID] {
			t.Fatalf("lineage references unknown child %q", l.ChildID)
		}
		if !parentIDs[l.ParentID] {
			t.Fatalf("lineage references unknown parent %q", l.ParentID)
		}
	}
}

func TestChunkSubstringProperty(t *testing.T) {
	text := strings.Repeat("Widgets are small mechanical devices used in testing. ", 60)
	secs, bounds := sections(text)

	c := New(Config{})
	result := c.Chunk("file-1", "doc-1", text, secs, bounds)

	parents := map[string]ParentChunk{}
	for _, p := range result.Parents {
		parents[p.ID] = p
	}
	for _, child := range result.Children {
		parent, ok := parents[child.ParentID]
		if !ok {
			t.Fatalf("child %q references unknown parent %q", child.ID, child.ParentID)
		}
		if !strings.Contains(parent.Content, child.Content) {
			t.Fatalf("child content is not a substring of its parent's content")
		}
	}
}

func TestChunkOrdinalsArePrefixes(t *testing.T) {
	text := strings.Repeat("Another sentence describing the protocol in detail. ", 80)
	secs, bounds := sections(text)

	c := New(Config{})
	result := c.Chunk("file-1", "doc-1", text, secs, bounds)

	for i, p := range result.Parents {
		if p.Ordinal != i {
			t.Fatalf("parent ordinal at index %d = %d, want %d", i, p.Ordinal, i)
		}
	}

	byParent := map[string][]ChildChunk{}
	for _, c := range result.Children {
		byParent[c.ParentID] = append(byParent[c.ParentID], c)
	}
	for parentID, children := range byParent {
		for i, c := range children {
			if c.Ordinal != i {
				t.Fatalf("parent %q: child ordinal at index %d = %d, want %d", parentID, i, c.Ordinal, i)
			}
		}
	}
}

func TestChunkNeverCrossesStrongBoundary(t *testing.T) {
	text := "Page one content here. " + strings.Repeat("filler text. ", 5)
	boundary := []parse.Boundary{
		{Type: parse.BoundaryPageBreak, Offset: 24, Strength: parse.StrengthStrong},
	}
	secs := []structure.FlatSection{{ID: "root", StartOffset: 0, EndOffset: len(text)}}

	c := New(Config{ParentTargetTokens: 1000, ParentMaxTokens: 2000})
	result := c.Chunk("file-1", "doc-1", text, secs, boundary)

	for _, p := range result.Parents {
		if p.CharStart < 24 && p.CharEnd > 24 {
			t.Fatalf("parent spans the strong boundary at offset 24: [%d,%d)", p.CharStart, p.CharEnd)
		}
	}
}

func TestChunkEmptySectionProducesNoParents(t *testing.T) {
	secs := []structure.FlatSection{{ID: "root", StartOffset: 0, EndOffset: 0}}
	c := New(Config{})
	result := c.Chunk("file-1", "doc-1", "", secs, nil)
	if len(result.Parents) != 0 {
		t.Fatalf("expected no parents for an empty section, got %d", len(result.Parents))
	}
}

func TestChunkAtomicCodeBlockSection(t *testing.T) {
	text := "func main() {\n\tprintln(\"hi\")\n}"
	boundary := []parse.Boundary{
		{Type: parse.BoundaryParagraph, Offset: 0, Strength: parse.StrengthStrong},
	}
	secs := []structure.FlatSection{{ID: "root", StartOffset: 0, EndOffset: len(text)}}

	c := New(Config{})
	result := c.Chunk("file-1", "doc-1", text, secs, boundary)

	if len(result.Parents) != 1 {
		t.Fatalf("expected exactly 1 atomic parent, got %d", len(result.Parents))
	}
	if len(result.Children) != 1 {
		t.Fatalf("expected exactly 1 atomic child, got %d", len(result.Children))
	}
	if result.Children[0].Content != result.Parents[0].Content {
		t.Fatal("expected the atomic child to carry the whole parent content")
	}
}

func TestEstimateTokensDeterministic(t *testing.T) {
	text := "The quick, brown fox jumps over the lazy dog!"
	a := estimateTokens(text)
	b := estimateTokens(text)
	if a != b {
		t.Fatalf("estimateTokens not deterministic: %d != %d", a, b)
	}
	if a == 0 {
		t.Fatal("expected a non-zero token count")
	}
}
