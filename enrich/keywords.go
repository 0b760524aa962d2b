package enrich

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// keywordStopWords lists common function words, dropped so TF-IDF does
// not surface them as keywords.
var keywordStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"shall": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "which": true, "who": true, "whom": true,
	"where": true, "when": true, "how": true, "why": true, "not": true,
	"no": true, "nor": true, "if": true, "then": true, "than": true,
	"so": true, "as": true, "about": true, "into": true, "between": true,
}

// keywordToken matches a run of letters/digits with interior hyphens or
// apostrophes kept intact ("state-of-the-art", "don't").
var keywordToken = regexp.MustCompile(`[a-z0-9]+(?:['\-][a-z0-9]+)*`)

const minKeywordTokenLen = 3

// tokenizeForKeywords lowercases text, strips punctuation (keeping
// intra-word hyphens and apostrophes), splits on whitespace, and drops
// tokens shorter than minKeywordTokenLen or on the stop-word list. This
// exact procedure is the tokenizer's fixed contract — every caller must
// use it unchanged so TF-IDF scores are reproducible.
func tokenizeForKeywords(text string) []string {
	lower := strings.ToLower(text)
	raw := keywordToken.FindAllString(lower, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, "-'")
		if len(tok) < minKeywordTokenLen || keywordStopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Keywords computes the top-K TF-IDF terms for each document in `docs`
// (parallel to the returned slice), using the full set as the corpus. A
// document that tokenizes to nothing gets an empty keyword list rather
// than an error — keyword
// extraction degrades gracefully and never fails the pipeline.
func Keywords(docs []string, topK int) [][]string {
	if topK <= 0 {
		topK = 10
	}

	tokenized := make([][]string, len(docs))
	docFreq := map[string]int{}

	for i, d := range docs {
		toks := tokenizeForKeywords(d)
		tokenized[i] = toks
		seen := map[string]bool{}
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				docFreq[t]++
			}
		}
	}

	n := float64(len(docs))
	result := make([][]string, len(docs))

	for i, toks := range tokenized {
		if len(toks) == 0 {
			result[i] = []string{}
			continue
		}

		termFreq := map[string]int{}
		for _, t := range toks {
			termFreq[t]++
		}

		type scored struct {
			term  string
			score float64
		}
		scores := make([]scored, 0, len(termFreq))
		for term, tf := range termFreq {
			idf := math.Log(float64(1+n) / float64(1+docFreq[term]))
			score := float64(tf) * idf
			scores = append(scores, scored{term, score})
		}

		sort.SliceStable(scores, func(a, b int) bool {
			if scores[a].score != scores[b].score {
				return scores[a].score > scores[b].score
			}
			return scores[a].term < scores[b].term
		})

		k := topK
		if k > len(scores) {
			k = len(scores)
		}
		top := make([]string, k)
		for j := 0; j < k; j++ {
			top[j] = scores[j].term
		}
		result[i] = top
	}

	return result
}
