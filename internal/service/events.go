package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Lifecycle event subjects.
const (
	subjectInterviewStarted   = "interview.started"
	subjectInterviewCompleted = "interview.completed"
)

type lifecycleEvent struct {
	CandidateID string    `json:"candidateId"`
	FinalScore  *int      `json:"finalScore,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// LifecyclePublisher emits interview lifecycle events for downstream
// consumers. Nil receiver and nil connection are both no-ops so the engine
// runs unchanged without a broker.
type LifecyclePublisher struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

// NewLifecyclePublisher wraps a NATS connection; conn may be nil.
func NewLifecyclePublisher(conn *nats.Conn, logger zerolog.Logger) *LifecyclePublisher {
	return &LifecyclePublisher{
		nc:     conn,
		logger: logger.With().Str("component", "lifecycle_publisher").Logger(),
	}
}

// InterviewStarted publishes the begin-interview event.
func (p *LifecyclePublisher) InterviewStarted(candidateID string) {
	p.publish(subjectInterviewStarted, lifecycleEvent{CandidateID: candidateID, OccurredAt: time.Now().UTC()})
}

// InterviewCompleted publishes the completion event with the final score.
func (p *LifecyclePublisher) InterviewCompleted(candidateID string, finalScore int) {
	p.publish(subjectInterviewCompleted, lifecycleEvent{CandidateID: candidateID, FinalScore: &finalScore, OccurredAt: time.Now().UTC()})
}

func (p *LifecyclePublisher) publish(subject string, event lifecycleEvent) {
	if p == nil || p.nc == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to marshal lifecycle event")
		return
	}

	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish lifecycle event")
	}
}
