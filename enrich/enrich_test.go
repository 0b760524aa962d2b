package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/docpipeline/indexer/chunk"
	"github.com/docpipeline/indexer/llm"
)

func TestMetadataReadingTime(t *testing.T) {
	p := chunk.ParentChunk{Content: "one two three four five six seven"}
	tokenCount, charCount, readingTime := Metadata(p)
	if charCount != len(p.Content) {
		t.Fatalf("charCount = %d, want %d", charCount, len(p.Content))
	}
	if tokenCount != p.TokenCount {
		t.Fatalf("tokenCount = %d, want %d", tokenCount, p.TokenCount)
	}
	// 7 words / 3.33 wps = 2.1 -> ceil to 3
	if readingTime != 3 {
		t.Fatalf("readingTime = %d, want 3", readingTime)
	}
}

func TestExtractEntitiesFindsAllKinds(t *testing.T) {
	text := "Contact Jane Smith at jane@example.com or visit https://example.com/docs on 2026-07-30 for a $1,200.50 refund."
	entities := ExtractEntities(text)

	want := map[string]bool{
		"jane@example.com":         false,
		"https://example.com/docs": false,
		"2026-07-30":               false,
		"$1,200.50":                false,
	}
	for _, e := range entities {
		if _, ok := want[e]; ok {
			want[e] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected entity %q to be extracted, entities=%v", k, entities)
		}
	}
}

func TestExtractEntitiesDeduplicates(t *testing.T) {
	text := "Email a@b.com twice: a@b.com again."
	entities := ExtractEntities(text)
	count := 0
	for _, e := range entities {
		if e == "a@b.com" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected the email to be deduplicated, got %d occurrences", count)
	}
}

func TestKeywordsRespectsTopK(t *testing.T) {
	docs := []string{
		"database indexing vector search retrieval augmented generation pipeline chunking",
		"orchestrator worker pool job queue retry backoff circuit breaker resilience",
	}
	lists := Keywords(docs, 3)
	for i, kws := range lists {
		if len(kws) > 3 {
			t.Fatalf("doc %d: got %d keywords, want <= 3", i, len(kws))
		}
	}
}

func TestKeywordsDegradesGracefullyOnEmptyDoc(t *testing.T) {
	docs := []string{"!!! ... ,,, ---", "meaningful content about widgets and gadgets here"}
	lists := Keywords(docs, 10)
	if len(lists[0]) != 0 {
		t.Fatalf("expected empty keyword list for punctuation-only doc, got %v", lists[0])
	}
}

func TestTokenizeForKeywordsKeepsHyphensAndApostrophes(t *testing.T) {
	toks := tokenizeForKeywords("State-of-the-art don't split apart.")
	joined := map[string]bool{}
	for _, tok := range toks {
		joined[tok] = true
	}
	if !joined["state-of-the-art"] {
		t.Errorf("expected hyphenated token preserved, got %v", toks)
	}
	if !joined["don't"] {
		t.Errorf("expected apostrophe token preserved, got %v", toks)
	}
}

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.response}, nil
}

func TestHypotheticalQuestionGeneratorParsesJSONArray(t *testing.T) {
	gen := NewHypotheticalQuestionGenerator(&stubProvider{response: `["What is a widget?", "How does it work?"]`}, "test-model", 5)
	out := gen.Generate(context.Background(), []string{"widgets are small mechanical devices"})
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if len(out[0]) != 2 {
		t.Fatalf("expected 2 questions, got %v", out[0])
	}
}

func TestHypotheticalQuestionGeneratorDegradesOnError(t *testing.T) {
	gen := NewHypotheticalQuestionGenerator(&stubProvider{err: errors.New("provider down")}, "test-model", 5)
	out := gen.Generate(context.Background(), []string{"content"})
	if len(out) != 1 || len(out[0]) != 0 {
		t.Fatalf("expected a single empty result on provider failure, got %v", out)
	}
}

func TestEnricherEnrichAlwaysRunsAlgorithmicStages(t *testing.T) {
	e := New(Config{}, nil)
	parents := []chunk.ParentChunk{
		{ID: "p1", Content: "Visit https://example.com for details about widgets and gadgets and more widgets."},
	}
	out := e.Enrich(context.Background(), parents)
	if len(out) != 1 {
		t.Fatalf("expected 1 enriched parent, got %d", len(out))
	}
	if len(out[0].Entities) == 0 {
		t.Error("expected at least one entity extracted")
	}
	if out[0].HypotheticalQuestions != nil {
		t.Error("expected no hypothetical questions when the LLM enricher is disabled")
	}
}
