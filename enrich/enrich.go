package enrich

import (
	"context"

	"github.com/docpipeline/indexer/chunk"
)

// Config controls which enrichers the stage runs.
type Config struct {
	EnableLLMEnricher           bool
	EnableHypotheticalQuestions bool
	TopKKeywords                int
	MaxEntitiesPerChunk         int
}

// Enricher runs the Enrich stage's sequence of enrichers over a document's
// parent chunks. Algorithmic enrichers (metadata, entities, keywords)
// always run; the LLM enricher is optional and only invoked when both the
// stage config and a non-nil question generator say so.
type Enricher struct {
	cfg       Config
	questions *HypotheticalQuestionGenerator
}

// New returns an Enricher. questions may be nil — in that case the LLM
// enricher never runs regardless of config.
func New(cfg Config, questions *HypotheticalQuestionGenerator) *Enricher {
	if cfg.TopKKeywords <= 0 {
		cfg.TopKKeywords = 10
	}
	if cfg.MaxEntitiesPerChunk <= 0 {
		cfg.MaxEntitiesPerChunk = 50
	}
	return &Enricher{cfg: cfg, questions: questions}
}

// Enrich runs every configured enricher over parents, returning one
// EnrichedParentChunk per input parent in the same order.
func (e *Enricher) Enrich(ctx context.Context, parents []chunk.ParentChunk) []EnrichedParentChunk {
	enriched := make([]EnrichedParentChunk, len(parents))
	for i, p := range parents {
		tokenCount, charCount, readingTime := Metadata(p)
		entities := ExtractEntities(p.Content)
		if len(entities) > e.cfg.MaxEntitiesPerChunk {
			entities = entities[:e.cfg.MaxEntitiesPerChunk]
		}

		enriched[i] = EnrichedParentChunk{
			ParentChunk:        p,
			TokenCount:         tokenCount,
			CharCount:          charCount,
			ReadingTimeSeconds: readingTime,
			Entities:           entities,
			Keywords:           []string{},
		}
	}

	docs := make([]string, len(parents))
	for i, p := range parents {
		docs[i] = p.Content
	}
	keywordLists := Keywords(docs, e.cfg.TopKKeywords)
	for i, kws := range keywordLists {
		enriched[i].Keywords = kws
	}

	if e.cfg.EnableLLMEnricher && e.cfg.EnableHypotheticalQuestions && e.questions != nil {
		questionLists := e.questions.Generate(ctx, docs)
		for i, qs := range questionLists {
			enriched[i].HypotheticalQuestions = qs
		}
	}

	return enriched
}
