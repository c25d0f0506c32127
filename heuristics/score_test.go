package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/civicfaq/core"
)

func TestScore(t *testing.T) {
	v := DefaultVocabulary()

	entry := &core.FAQEntry{
		Service:  "Council Tax",
		Title:    "Pay my bill",
		Keywords: []string{"pay", "direct debit setup"},
		Answer:   "Visit the portal.",
	}

	tests := []struct {
		name    string
		message string
		want    int
	}{
		{name: "empty message", message: "", want: 0},
		{name: "unrelated", message: "library opening hours", want: 0},
		// "pay my bill": title +10, "bill" word +2, keyword "pay" +4, synonym "bill" +1
		{name: "title contained", message: "How can I pay my bill?", want: 17},
		// keyword "pay" +4, service +2, synonyms "council tax" "tax" +2
		{name: "service mention", message: "pay council tax", want: 8},
		// "direct debit setup" not contained; "direct" +1 "debit" +1 "setup" +1; synonym "direct debit" +1
		{name: "keyword words", message: "cancel direct debit and setup again", want: 4},
		// long keyword contained +6, synonym "direct debit" +1
		{name: "long keyword", message: "direct debit setup", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Score(tt.message, entry))
		})
	}
}

func TestScore_NilEntry(t *testing.T) {
	assert.Equal(t, 0, DefaultVocabulary().Score("anything", nil))
}

func TestScore_ServiceWithoutSynonyms(t *testing.T) {
	entry := &core.FAQEntry{Service: "Parking", Title: "Permits"}
	// title +10, "permits" +2, service +2
	assert.Equal(t, 14, DefaultVocabulary().Score("parking permits", entry))
}
