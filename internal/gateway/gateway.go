// Package gateway holds the outbound collaborator contracts: question
// generation and answer scoring. Both calls may suspend for a network round
// trip; the orchestrator re-reads session state after they return.
package gateway

import (
	"context"
	"fmt"

	"github.com/swipehire/interview-api/internal/models"
)

// QuestionProvider fetches the question set for a role.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, role string) ([]models.Question, error)
}

// AnswerScorer grades one question/answer pair. Implementations return an
// integer in 0..100; the engine maps any failure to a zero score and keeps
// going, so a scoring outage never stalls an interview.
type AnswerScorer interface {
	Score(ctx context.Context, questionText, answerText string) (int, error)
}

// QuestionGenerationError is the only gateway failure surfaced to the user.
// It aborts the begin-interview transition; the caller must re-trigger.
type QuestionGenerationError struct {
	Message string
	cause   error
}

func (e *QuestionGenerationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("question generation failed: %s", e.Message)
	}
	return "question generation failed"
}

func (e *QuestionGenerationError) Unwrap() error { return e.cause }

// UserMessage is the provider-supplied text shown verbatim, or a generic
// fallback when the provider gave none.
func (e *QuestionGenerationError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Failed to generate questions"
}

func newGenerationError(message string, cause error) *QuestionGenerationError {
	return &QuestionGenerationError{Message: message, cause: cause}
}

// clampScore bounds a raw score to the 0..100 contract.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// validateQuestionSet enforces the shape contract: non-empty set with ids
// unique within the session.
func validateQuestionSet(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("empty question set")
	}
	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
