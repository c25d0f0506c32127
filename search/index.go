package search

import (
	"sort"

	"github.com/poiesic/civicfaq/core"
)

// Index is an immutable list of FAQ entries and their embeddings.
type Index struct {
	items []core.CachedItem
}

// NewIndex builds an Index from cache output. The slice is copied, so later
// changes by the caller do not affect the index.
func NewIndex(items []core.CachedItem) *Index {
	copied := make([]core.CachedItem, len(items))
	copy(copied, items)
	return &Index{items: copied}
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.items)
}

// Entries returns the indexed FAQ entries in insertion order.
func (ix *Index) Entries() []core.FAQEntry {
	if ix == nil {
		return nil
	}
	out := make([]core.FAQEntry, len(ix.items))
	for i := range ix.items {
		out[i] = ix.items[i].FAQ
	}
	return out
}

// BestMatch returns the entry with the highest cosine similarity to query.
// It returns (nil, 0) when the index is empty. Ties keep the earliest entry.
func (ix *Index) BestMatch(query []float32) (*core.FAQEntry, float32) {
	if ix.Len() == 0 {
		return nil, 0
	}

	best := -1
	var bestScore float32
	for i := range ix.items {
		score := Cosine(query, ix.items[i].Embedding)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	return &ix.items[best].FAQ, bestScore
}

// TopK returns up to k matches in descending score order.
// Entries with equal scores keep their insertion order.
func (ix *Index) TopK(query []float32, k int) []core.Match {
	if k <= 0 || ix.Len() == 0 {
		return []core.Match{}
	}

	matches := make([]core.Match, len(ix.items))
	for i := range ix.items {
		matches[i] = core.Match{
			FAQ:   &ix.items[i].FAQ,
			Score: Cosine(query, ix.items[i].Embedding),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}
