package dto

import "github.com/swipehire/interview-api/internal/models"

// ExtractedRequest carries a document-extraction result into the engine.
// An empty candidate id starts a fresh session.
type ExtractedRequest struct {
	CandidateID string         `json:"candidateId"`
	Profile     models.Profile `json:"profile"`
}

// FieldRequest supplies one required profile field during waitingInfo.
type FieldRequest struct {
	Field string `json:"field" validate:"required,oneof=name email phone"`
	Value string `json:"value" validate:"required"`
}

// AnswerRequest submits the draft answer for the active question. Auto marks
// a timer-driven submission.
type AnswerRequest struct {
	Text string `json:"text"`
	Auto bool   `json:"auto"`
}

// SessionView is the read model a client renders from. It is fully
// reconstructable from the persisted candidate, so a reloaded client resumes
// exactly where it left off.
type SessionView struct {
	CandidateID      string               `json:"candidateId"`
	Status           models.Status        `json:"status"`
	Chats            []models.ChatMessage `json:"chats"`
	MissingFields    []string             `json:"missingFields,omitempty"`
	AwaitingField    string               `json:"awaitingField,omitempty"`
	CurrentQuestion  *models.Question     `json:"currentQuestion,omitempty"`
	QuestionNumber   int                  `json:"questionNumber,omitempty"`
	TotalQuestions   int                  `json:"totalQuestions,omitempty"`
	TimerRemaining   int                  `json:"timerRemaining"`
	RunningScore     int                  `json:"runningScore"`
	FinalScore       *int                 `json:"finalScore,omitempty"`
	LoadingQuestions bool                 `json:"loadingQuestions"`
}

// ResumableResponse points a returning client at its open session, if any.
type ResumableResponse struct {
	CandidateID string        `json:"candidateId"`
	Status      models.Status `json:"status"`
}
