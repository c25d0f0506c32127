package heuristics

import (
	"strings"

	"github.com/poiesic/civicfaq/core"
)

// Score weights.
const (
	titleMatchPoints     = 10
	titleWordPoints      = 2
	longKeywordPoints    = 6
	shortKeywordPoints   = 4
	keywordWordPoints    = 1
	serviceMatchPoints   = 2
	synonymMatchPoints   = 1
	longKeywordMinLength = 10
	minWordLength        = 4
)

// Score computes the lexical relevance of entry to message.
//
// The result is additive and unbounded. It is a diagnostic signal and is not
// comparable with cosine similarity.
func (v *Vocabulary) Score(message string, entry *core.FAQEntry) int {
	if entry == nil {
		return 0
	}
	msg := core.Normalize(message)
	if msg == "" {
		return 0
	}

	score := 0

	if title := core.Normalize(entry.Title); title != "" {
		if strings.Contains(msg, title) {
			score += titleMatchPoints
		}
		for _, w := range core.Tokenize(title) {
			if len(w) >= minWordLength && strings.Contains(msg, w) {
				score += titleWordPoints
			}
		}
	}

	for _, k := range entry.Keywords {
		kw := core.Normalize(k)
		if kw == "" {
			continue
		}
		if strings.Contains(msg, kw) {
			if len(kw) >= longKeywordMinLength {
				score += longKeywordPoints
			} else {
				score += shortKeywordPoints
			}
			continue
		}
		for _, w := range core.Tokenize(kw) {
			if len(w) >= minWordLength && strings.Contains(msg, w) {
				score += keywordWordPoints
			}
		}
	}

	if svc := core.Normalize(entry.Service); svc != "" && strings.Contains(msg, svc) {
		score += serviceMatchPoints
	}

	for _, syn := range v.Synonyms(entry.Service) {
		if s := core.Normalize(syn); s != "" && strings.Contains(msg, s) {
			score += synonymMatchPoints
		}
	}

	return score
}
