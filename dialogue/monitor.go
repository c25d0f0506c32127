package dialogue

import (
	"time"

	"github.com/poiesic/civicfaq/core"
)

// Outcome names the path a turn took through the orchestrator.
type Outcome string

const (
	OutcomeGeneric  Outcome = "generic"
	OutcomeMatch    Outcome = "match"
	OutcomeClarify  Outcome = "clarify"
	OutcomeAskTopic Outcome = "ask_topic"
	OutcomeDegraded Outcome = "degraded"
	OutcomeSchedule Outcome = "schedule"
)

// TurnMonitor provides hooks to observe a turn.
// Implementations must be safe for concurrent use.
type TurnMonitor interface {
	Start(sessionID, message string)
	TopicOverride(topic string)
	AfterEmbedding(elapsed time.Duration, err error)
	AfterRetrieval(best *core.FAQEntry, score float32, alternatives []core.Match)
	Finish(result core.TurnResult, outcome Outcome)
}

// noopMonitor is a no-op implementation of TurnMonitor
type noopMonitor struct{}

var _ TurnMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                                          {}
func (n *noopMonitor) TopicOverride(_ string)                                     {}
func (n *noopMonitor) AfterEmbedding(_ time.Duration, _ error)                    {}
func (n *noopMonitor) AfterRetrieval(_ *core.FAQEntry, _ float32, _ []core.Match) {}
func (n *noopMonitor) Finish(_ core.TurnResult, _ Outcome)                        {}
