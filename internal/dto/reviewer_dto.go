package dto

import (
	"time"

	"github.com/swipehire/interview-api/internal/models"
)

// CandidateSummary is one row of the reviewer dashboard list.
type CandidateSummary struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	Status     models.Status `json:"status"`
	Answered   int           `json:"answered"`
	Questions  int           `json:"questions"`
	FinalScore *int          `json:"finalScore,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// CandidateDetail is the full reviewer view: transcript plus per-question
// answers in question order.
type CandidateDetail struct {
	CandidateSummary
	Chats   []models.ChatMessage `json:"chats"`
	Results []QuestionResult     `json:"results"`
}

// QuestionResult pairs a question with its persisted answer, if any.
type QuestionResult struct {
	Question models.Question `json:"question"`
	Answer   *models.Answer  `json:"answer,omitempty"`
}

// CandidateListResponse wraps the dashboard list with a cache marker.
type CandidateListResponse struct {
	Candidates []CandidateSummary `json:"candidates"`
	CacheHit   bool               `json:"cacheHit"`
}

// NewCandidateSummary maps a candidate onto its dashboard row.
func NewCandidateSummary(candidate models.Candidate) CandidateSummary {
	return CandidateSummary{
		ID:         candidate.ID,
		Name:       candidate.Profile.Name,
		Email:      candidate.Profile.Email,
		Phone:      candidate.Profile.Phone,
		Status:     candidate.Status,
		Answered:   len(candidate.Answers),
		Questions:  len(candidate.Questions),
		FinalScore: candidate.FinalScore,
		UpdatedAt:  candidate.UpdatedAt,
	}
}
