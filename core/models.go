package core

import "time"

// UnknownTopic is the sentinel topic returned when no service could be resolved.
// It is never stored as a session's remembered topic.
const UnknownTopic = "Unknown"

// FAQEntry is a single curated answer in the knowledge base.
type FAQEntry struct {
	Service      string   `json:"service" yaml:"service"`           // Topic label, e.g. "Council Tax"
	Title        string   `json:"title" yaml:"title"`
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Answer       string   `json:"answer" yaml:"answer"`             // Canonical reply text
	NextStepsURL string   `json:"nextStepsUrl" yaml:"nextStepsUrl"` // Empty means no link
	Responses    []string `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// EmbeddingText returns the text sent to the embedding provider for this entry.
func (f *FAQEntry) EmbeddingText() string {
	return f.Service + "\n" + f.Title + "\n" + f.Answer
}

// Sanitize replaces nil collections with empty ones so callers never see nil slices.
func (f *FAQEntry) Sanitize() {
	if f.Keywords == nil {
		f.Keywords = []string{}
	}
	if f.Responses == nil {
		f.Responses = []string{}
	}
}

// Embedding is a fixed-length vector produced by the embedding provider.
// A zero-length embedding means "no embedding" and compares as similarity 0.
type Embedding = []float32

// CachedItem pairs an FAQ entry with its embedding.
type CachedItem struct {
	FAQ       FAQEntry  `json:"faq"`
	Embedding Embedding `json:"embedding"`
}

// CachedEmbeddingSet is the persisted form of the embedding cache.
type CachedEmbeddingSet struct {
	Fingerprint string       `json:"fingerprint"`
	Items       []CachedItem `json:"items"`
}

// Match is a scored retrieval hit.
type Match struct {
	FAQ   *FAQEntry
	Score float32
}

// SessionTopic is the last confidently resolved topic for a session.
type SessionTopic struct {
	SessionID string
	Topic     string
	UpdatedAt time.Time
	ExpiresAt time.Time // Zero means the entry never expires
}

// Expired reports whether the entry is no longer valid at now.
func (s *SessionTopic) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TurnResult is the outcome of a single dialogue turn.
type TurnResult struct {
	Reply        string
	Topic        string
	NextStepsURL string
	Score        float32 // Semantic similarity of the best match (0 when not computed)

	// Diagnostics. These never influence the threshold decision.
	LexicalScore int     // Keyword score of the best match against the message
	Alternatives []Match // Top-k candidates in descending score order
	Degraded     bool    // Set when the embedding provider could not be reached
}
