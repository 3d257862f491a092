// Package session holds the interview state machine. Transitions are pure
// functions over a candidate snapshot: each consumes one event and returns
// the resulting status plus its side effects as data (messages to append,
// profile merge, questions to install, timer to arm, answer to persist),
// which the orchestrator applies against the record store. This keeps every
// rule testable without a transport or rendering layer.
package session

import (
	"strings"

	"github.com/swipehire/interview-api/internal/models"
)

// DefaultRole is the role every interview is generated for.
const DefaultRole = "full stack developer"

// NoAnswerSentinel is persisted when the timer expires on an empty draft.
const NoAnswerSentinel = "[No answer]"

// Messages posted by the engine.
const (
	msgAllExtracted  = "All information extracted. Ready to start interview!"
	msgAllReceived   = "Thank you! All information received. Ready to start interview!"
	msgInterviewDone = "Interview complete!"
)

// TimerArm asks the runtime to start a countdown for a question.
type TimerArm struct {
	QuestionIndex int
	Seconds       int
}

// AnswerEffect persists one write-once answer.
type AnswerEffect struct {
	QuestionID int
	Text       string
	Score      int
}

// FinishEffect completes the session with the aggregate score.
type FinishEffect struct {
	Score int
}

// Effects is the declarative outcome of one transition. Zero values mean
// "no change": an empty Status leaves the stored status untouched.
type Effects struct {
	Status           models.Status
	MergeProfile     *models.Profile
	Messages         []models.ChatMessage
	InstallQuestions []models.Question
	PostedQuestionID *int
	ArmTimer         *TimerArm
	CancelTimer      bool
	SaveAnswer       *AnswerEffect
	Finish           *FinishEffect
	AwaitField       string
	BeginInterview   bool
}

func botMessage(text string) models.ChatMessage {
	return models.ChatMessage{From: models.MessageFromBot, Text: text}
}

func userMessage(text string) models.ChatMessage {
	return models.ChatMessage{From: models.MessageFromUser, Text: text}
}

// OnDocumentExtracted consumes an extraction result. Missing fields send the
// session to waitingInfo with a prompt for the first gap; a complete profile
// requests the begin-interview sub-transition.
func OnDocumentExtracted(candidate models.Candidate, extracted models.Profile) Effects {
	merged := candidate.Profile.Merge(extracted)
	missing := MissingFields(merged)

	effects := Effects{MergeProfile: &extracted}
	if len(missing) > 0 {
		effects.Status = models.StatusWaitingInfo
		effects.AwaitField = missing[0]
		effects.Messages = []models.ChatMessage{botMessage(PromptFor(missing[0]))}
		return effects
	}

	// Status is not advanced here: in-progress is entered by
	// OnQuestionsFetched, so a failed fetch leaves the session untouched.
	effects.Messages = []models.ChatMessage{botMessage(msgAllExtracted)}
	effects.BeginInterview = true
	return effects
}

// OnFieldSupplied merges one manually supplied field. The supplied field is
// always considered satisfied, even when its value would fail re-validation:
// user-entered values are trusted as-is.
func OnFieldSupplied(candidate models.Candidate, field, value string) Effects {
	partial := PartialProfile(field, value)
	merged := candidate.Profile.Merge(partial)

	remaining := make([]string, 0, len(RequiredFields))
	for _, missing := range MissingFields(merged) {
		if missing != field {
			remaining = append(remaining, missing)
		}
	}

	effects := Effects{
		MergeProfile: &partial,
		Messages:     []models.ChatMessage{userMessage(value)},
	}

	if len(remaining) > 0 {
		effects.Status = models.StatusWaitingInfo
		effects.AwaitField = remaining[0]
		effects.Messages = append(effects.Messages, botMessage(PromptFor(remaining[0])))
		return effects
	}

	effects.Messages = append(effects.Messages, botMessage(msgAllReceived))
	effects.BeginInterview = true
	return effects
}

// OnQuestionsFetched completes the begin-interview transition once the
// provider has answered: install the set, post the first question and arm
// its timer. Callers must not invoke this on a fetch failure; a failed
// fetch aborts the transition with status and question list untouched.
func OnQuestionsFetched(candidate models.Candidate, questions []models.Question) Effects {
	first := questions[0]
	firstID := first.ID

	return Effects{
		Status:           models.StatusInProgress,
		InstallQuestions: questions,
		Messages:         []models.ChatMessage{botMessage(first.Text)},
		PostedQuestionID: &firstID,
		ArmTimer:         &TimerArm{QuestionIndex: 0, Seconds: first.Timer},
	}
}

// SubmissionText normalises the draft for a submission event. Auto-submission
// with an empty draft yields the no-answer sentinel.
func SubmissionText(draft string, auto bool) string {
	text := strings.TrimSpace(draft)
	if auto && text == "" {
		return NoAnswerSentinel
	}
	return text
}

// OnAnswerScored finishes a submission after the scoring gateway has spoken:
// persist the answer, echo it into the transcript, cancel the pending timer,
// then either advance to the next question or complete the interview.
// questionPosted reports whether the engine has already announced the next
// question (the duplicate-suppression bookkeeping, keyed by question id).
func OnAnswerScored(candidate models.Candidate, index int, answerText string, score int, questionPosted func(questionID int) bool) Effects {
	current := candidate.Questions[index]

	effects := Effects{
		Status:      models.StatusInProgress,
		CancelTimer: true,
		SaveAnswer:  &AnswerEffect{QuestionID: current.ID, Text: answerText, Score: score},
		Messages:    []models.ChatMessage{userMessage(answerText)},
	}

	next := index + 1
	if next < len(candidate.Questions) {
		question := candidate.Questions[next]
		if !questionPosted(question.ID) && !lastBotMessageIs(candidate, question.Text) {
			effects.Messages = append(effects.Messages, botMessage(question.Text))
			questionID := question.ID
			effects.PostedQuestionID = &questionID
		}
		effects.ArmTimer = &TimerArm{QuestionIndex: next, Seconds: question.Timer}
		return effects
	}

	total := candidate.RunningScore() + score
	effects.Status = models.StatusCompleted
	effects.Finish = &FinishEffect{Score: total}
	effects.Messages = append(effects.Messages,
		botMessage(msgInterviewDone),
		finalScoreMessage(total),
	)
	return effects
}

// lastBotMessageIs is the secondary duplicate guard: replayed transcripts
// carry no question ids, so the literal text of the most recent bot entry
// still vetoes a re-post.
func lastBotMessageIs(candidate models.Candidate, text string) bool {
	for i := len(candidate.Chats) - 1; i >= 0; i-- {
		if candidate.Chats[i].From == models.MessageFromBot {
			return candidate.Chats[i].Text == text
		}
	}
	return false
}
