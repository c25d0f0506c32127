package heuristics

import (
	"strings"

	"github.com/poiesic/civicfaq/core"
)

// Detect returns the name of the first group, in table order, that has a
// phrase contained in normMsg. Phrases are normalized before comparison.
// It returns "" when nothing matches.
func Detect(normMsg string, groups []Group) string {
	if normMsg == "" {
		return ""
	}
	for _, g := range groups {
		for _, phrase := range g.Phrases {
			p := core.Normalize(phrase)
			if p != "" && strings.Contains(normMsg, p) {
				return g.Name
			}
		}
	}
	return ""
}
