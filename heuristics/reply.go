package heuristics

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/poiesic/civicfaq/core"
)

// ReplyPicker selects the reply text for a matched entry.
// It is safe for concurrent use.
type ReplyPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewReplyPicker returns a picker seeded from the clock.
func NewReplyPicker() *ReplyPicker {
	return NewSeededReplyPicker(uint64(time.Now().UnixNano()))
}

// NewSeededReplyPicker returns a picker with a fixed seed, giving a
// repeatable sequence of choices.
func NewSeededReplyPicker(seed uint64) *ReplyPicker {
	return NewReplyPickerFromSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewReplyPickerFromSource returns a picker drawing from src.
func NewReplyPickerFromSource(src rand.Source) *ReplyPicker {
	return &ReplyPicker{rng: rand.New(src)}
}

// Pick returns a uniformly random element of entry.Responses, or
// entry.Answer when there are no alternative responses.
func (p *ReplyPicker) Pick(entry *core.FAQEntry) string {
	if entry == nil {
		return ""
	}
	if len(entry.Responses) == 0 {
		return entry.Answer
	}

	p.mu.Lock()
	i := p.rng.IntN(len(entry.Responses))
	p.mu.Unlock()

	return entry.Responses[i]
}
