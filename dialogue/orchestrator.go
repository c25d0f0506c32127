// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/heuristics"
	"github.com/poiesic/civicfaq/search"
)

const (
	// DefaultThreshold is the minimum similarity for a confident match.
	DefaultThreshold float32 = 0.55

	// DefaultTopK is the number of alternatives attached to each result.
	DefaultTopK = 3
)

// TopicMemory remembers the last confident topic per session.
type TopicMemory interface {
	// LastTopic returns the remembered topic or core.UnknownTopic.
	LastTopic(ctx context.Context, sessionID string) string
	// SetLastTopic stores topic; blank and unknown topics are ignored.
	SetLastTopic(ctx context.Context, sessionID, topic string)
}

// ScheduleAnswerer answers structured lookups, such as bin collection days,
// that retrieval over FAQ prose cannot.
type ScheduleAnswerer interface {
	// Answer returns a reply for message. inTopic reports that the message
	// already names the answerer's topic. ok is false when the message
	// should go to retrieval instead.
	Answer(message string, inTopic bool) (reply string, ok bool)
}

// Orchestrator turns a session's message into a single answer.
// It is safe for concurrent use.
type Orchestrator struct {
	index     atomic.Pointer[search.Index]
	embedder  ai.Embedder
	memory    TopicMemory
	vocab     *heuristics.Vocabulary
	picker    *heuristics.ReplyPicker
	threshold float32
	topK      int
	monitor   TurnMonitor
	logger    *slog.Logger

	schedules     ScheduleAnswerer
	scheduleTopic string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithThreshold sets the minimum similarity for a confident match.
// It must be in (0, 1]; a score of 0 means "no similarity" and never counts
// as confident. Default is 0.55.
func WithThreshold(threshold float32) Option {
	return func(o *Orchestrator) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		o.threshold = threshold
		return nil
	}
}

// WithTopK sets how many alternatives are attached to each result.
// Zero disables alternatives.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k < 0 {
			k = 0
		}
		o.topK = k
		return nil
	}
}

// WithVocabulary sets the phrase tables and reply templates.
// Default is heuristics.DefaultVocabulary().
func WithVocabulary(v *heuristics.Vocabulary) Option {
	return func(o *Orchestrator) error {
		if v == nil {
			return ErrVocabularyRequired
		}
		o.vocab = v
		return nil
	}
}

// WithReplyPicker sets the picker used to choose among alternative responses.
// Default is a clock-seeded picker.
func WithReplyPicker(p *heuristics.ReplyPicker) Option {
	return func(o *Orchestrator) error {
		if p != nil {
			o.picker = p
		}
		return nil
	}
}

// WithSchedules answers lookups for topic from answerer before retrieval
// runs. Replies are filed under topic and remembered for the session.
func WithSchedules(answerer ScheduleAnswerer, topic string) Option {
	return func(o *Orchestrator) error {
		if answerer == nil {
			return nil
		}
		if !core.IsStorableTopic(topic) {
			return ErrInvalidScheduleTopic
		}
		o.schedules = answerer
		o.scheduleTopic = topic
		return nil
	}
}

// WithMonitor sets a monitor that observes every turn.
func WithMonitor(m TurnMonitor) Option {
	return func(o *Orchestrator) error {
		if m == nil {
			m = &noopMonitor{}
		}
		o.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an Orchestrator serving index. A nil index behaves as empty.
func New(embedder ai.Embedder, memory TopicMemory, index *search.Index, opts ...Option) (*Orchestrator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if memory == nil {
		return nil, ErrMemoryRequired
	}

	o := &Orchestrator{
		embedder:  embedder,
		memory:    memory,
		vocab:     heuristics.DefaultVocabulary(),
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.picker == nil {
		o.picker = heuristics.NewReplyPicker()
	}
	o.logger = o.logger.With("component", "orchestrator")
	o.SwapIndex(index)

	return o, nil
}

// SwapIndex replaces the served index. In-flight turns finish against the
// index they started with.
func (o *Orchestrator) SwapIndex(index *search.Index) {
	if index == nil {
		index = search.NewIndex(nil)
	}
	o.index.Store(index)
}

// Index returns the index currently being served.
func (o *Orchestrator) Index() *search.Index {
	return o.index.Load()
}

// Threshold returns the confident-match threshold.
func (o *Orchestrator) Threshold() float32 {
	return o.threshold
}

// Vocabulary returns the phrase tables in use.
func (o *Orchestrator) Vocabulary() *heuristics.Vocabulary {
	return o.vocab
}

// HandleTurn resolves message for sessionID.
//
// Generic greetings get the service menu without touching retrieval. A
// confident match answers with the entry and becomes the session topic.
// Schedule lookups, when configured, answer before retrieval. Otherwise the
// reply asks a follow-up about the topic in context: an
// explicit topic mention wins over the remembered one.
//
// When the embedding provider cannot be reached the turn degrades to an
// apology with Degraded set and a nil error. Cancellation of ctx returns the
// context error. Memory is written only once the result is complete.
// Every sessionID is its own memory key, the empty string included.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) (core.TurnResult, error) {
	o.monitor.Start(sessionID, message)

	norm := core.Normalize(message)
	override := o.vocab.DetectTopic(norm)
	if override != "" {
		o.monitor.TopicOverride(override)
	}

	if override == "" && o.vocab.IsGeneric(norm) {
		return o.finish(core.TurnResult{
			Reply: o.vocab.Templates.Menu,
			Topic: core.UnknownTopic,
		}, OutcomeGeneric), nil
	}

	if o.schedules != nil && (override == "" || override == o.scheduleTopic) {
		if reply, ok := o.schedules.Answer(message, override == o.scheduleTopic); ok {
			o.memory.SetLastTopic(ctx, sessionID, o.scheduleTopic)
			return o.finish(core.TurnResult{
				Reply: reply,
				Topic: o.scheduleTopic,
			}, OutcomeSchedule), nil
		}
	}

	started := time.Now()
	vec, err := o.embedder.EmbedText(ctx, message)
	o.monitor.AfterEmbedding(time.Since(started), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.TurnResult{}, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return core.TurnResult{}, err
		}
		o.logger.Warn("embedding unavailable, degrading turn",
			"session", sessionID, "err", err,
			"provider_unavailable", errors.Is(err, ai.ErrProviderUnavailable))
		return o.finish(core.TurnResult{
			Reply:    o.vocab.Templates.Unavailable,
			Topic:    core.UnknownTopic,
			Degraded: true,
		}, OutcomeDegraded), nil
	}

	index := o.index.Load()
	best, score := index.BestMatch(vec)
	alternatives := index.TopK(vec, o.topK)
	o.monitor.AfterRetrieval(best, score, alternatives)

	lexical := 0
	if best != nil {
		lexical = o.vocab.Score(message, best)
	}

	if best == nil || score < o.threshold {
		contextTopic := override
		if contextTopic == "" {
			contextTopic = o.memory.LastTopic(ctx, sessionID)
		}
		if !core.IsStorableTopic(contextTopic) {
			contextTopic = core.UnknownTopic
		}

		result := core.TurnResult{
			Topic:        contextTopic,
			Score:        score,
			LexicalScore: lexical,
			Alternatives: alternatives,
		}

		if contextTopic == core.UnknownTopic {
			result.Reply = o.vocab.Templates.AskTopic
			return o.finish(result, OutcomeAskTopic), nil
		}

		result.Reply = o.vocab.Templates.FollowUp(o.vocab.DetectIntent(norm), contextTopic)
		o.memory.SetLastTopic(ctx, sessionID, contextTopic)
		return o.finish(result, OutcomeClarify), nil
	}

	result := core.TurnResult{
		Reply:        o.picker.Pick(best),
		Topic:        best.Service,
		NextStepsURL: best.NextStepsURL,
		Score:        score,
		LexicalScore: lexical,
		Alternatives: alternatives,
	}
	o.memory.SetLastTopic(ctx, sessionID, best.Service)

	o.logger.Debug("confident match",
		"session", sessionID, "service", best.Service, "title", best.Title,
		"score", score, "lexical", lexical)
	return o.finish(result, OutcomeMatch), nil
}

func (o *Orchestrator) finish(result core.TurnResult, outcome Outcome) core.TurnResult {
	o.monitor.Finish(result, outcome)
	return result
}
