package enrich

import (
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// ISO dates and common long forms ("January 2, 2026", "2026-07-30", "2/1/2026").
	isoDatePattern    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashDatePattern  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	longDatePattern   = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	moneyPattern      = regexp.MustCompile(`[$€£]\s?\d[\d,]*(\.\d+)?|\b\d[\d,]*(\.\d+)?\s?(USD|EUR|GBP)\b`)
	properNounPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){1,4})\b`)
)

// ExtractEntities pulls URLs, email addresses, dates, monetary amounts, and
// capitalized multi-word proper-noun candidates out of text, deduplicating
// case-insensitively. Order is deterministic: URLs, emails, dates, money,
// then proper nouns, each group in first-seen order.
func ExtractEntities(text string) []string {
	var entities []string
	seen := map[string]bool{}

	add := func(matches []string) {
		for _, m := range matches {
			key := strings.ToLower(strings.TrimSpace(m))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			entities = append(entities, m)
		}
	}

	add(urlPattern.FindAllString(text, -1))
	add(emailPattern.FindAllString(text, -1))
	add(isoDatePattern.FindAllString(text, -1))
	add(slashDatePattern.FindAllString(text, -1))
	add(longDatePattern.FindAllString(text, -1))
	add(moneyPattern.FindAllString(text, -1))
	add(properNounPattern.FindAllString(text, -1))

	return entities
}
