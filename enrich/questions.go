package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docpipeline/indexer/llm"
	"github.com/docpipeline/indexer/resilience"
)

// HypotheticalQuestionGenerator takes a batch of parent chunks and asks an
// LLM provider, with one request per parent, to produce the questions each
// parent would plausibly answer. Parents are not combined into a single
// request.
// Every call goes through a circuit breaker: once the provider starts
// failing persistently, the generator stops paying its latency cost and
// every parent in the batch is returned with no questions rather than
// blocking the job.
type HypotheticalQuestionGenerator struct {
	provider     llm.Provider
	breaker      *resilience.Breaker
	maxPerParent int
	model        string
}

// NewHypotheticalQuestionGenerator wires a provider behind a circuit
// breaker. maxPerParent bounds how many questions are kept per parent.
func NewHypotheticalQuestionGenerator(provider llm.Provider, model string, maxPerParent int) *HypotheticalQuestionGenerator {
	if maxPerParent <= 0 {
		maxPerParent = 3
	}
	return &HypotheticalQuestionGenerator{
		provider:     provider,
		breaker:      resilience.NewBreaker(resilience.DefaultBreakerOpts),
		maxPerParent: maxPerParent,
		model:        model,
	}
}

// Generate produces hypothetical questions for each of contents, in order.
// A failure for any individual parent — a provider error, a breaker trip,
// a malformed response — degrades to an empty slice for that parent rather
// than failing the batch; the error is logged, never returned.
func (g *HypotheticalQuestionGenerator) Generate(ctx context.Context, contents []string) [][]string {
	out := make([][]string, len(contents))

	for i, content := range contents {
		var questions []string
		err := g.breaker.Call(ctx, func(ctx context.Context) error {
			qs, genErr := g.generateOne(ctx, content)
			if genErr != nil {
				return genErr
			}
			questions = qs
			return nil
		})
		if err != nil {
			slog.Warn("enrich: hypothetical question generation degraded", "error", err)
			out[i] = []string{}
			continue
		}
		out[i] = questions
	}

	return out
}

// llmCallBudget bounds one parent's LLM call, retries included.
const llmCallBudget = 30 * time.Second

func (g *HypotheticalQuestionGenerator) generateOne(ctx context.Context, content string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, llmCallBudget)
	defer cancel()

	prompt := fmt.Sprintf(
		"Given the following passage, list up to %d questions it directly answers. "+
			"Respond with a JSON array of strings only, no other text.\n\nPassage:\n%s",
		g.maxPerParent, content,
	)

	resp, err := g.provider.Chat(ctx, llm.ChatRequest{
		Model:          g.model,
		Messages:       []llm.Message{{Role: "user", Content: prompt}},
		Temperature:    0.2,
		ResponseFormat: "json_object",
	})
	if err != nil {
		return nil, fmt.Errorf("llm chat: %w", err)
	}

	var questions []string
	trimmed := strings.TrimSpace(resp.Content)
	if err := json.Unmarshal([]byte(trimmed), &questions); err != nil {
		// Some providers wrap the array in an object; try a single-key fallback.
		var wrapped map[string][]string
		if werr := json.Unmarshal([]byte(trimmed), &wrapped); werr == nil {
			for _, v := range wrapped {
				questions = v
				break
			}
		} else {
			return nil, fmt.Errorf("decoding questions response: %w", err)
		}
	}

	if len(questions) > g.maxPerParent {
		questions = questions[:g.maxPerParent]
	}
	return questions, nil
}
