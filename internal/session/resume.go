package session

import (
	"fmt"

	"github.com/swipehire/interview-api/internal/models"
)

func finalScoreMessage(total int) models.ChatMessage {
	return botMessage(fmt.Sprintf("Final Score: %d.", total))
}

// ResumeState is the transient UI state reconstructed for a re-attaching
// client. It is derived purely from the persisted answers and question set,
// so replaying it any number of times yields the same result.
type ResumeState struct {
	Index        int
	Remaining    int
	RunningScore int
	AwaitField   string
	Completed    bool
}

// Replay rebuilds the active question index, remaining timer and running
// score for a persisted candidate: the index is the first question without
// an answer, the timer restarts at that question's configured duration, and
// the score is the sum of all persisted answer scores.
//
// A session whose every question is answered should already be completed;
// if it is not, the inconsistency is displayed as completed-equivalent
// rather than re-scored.
func Replay(candidate models.Candidate) ResumeState {
	state := ResumeState{RunningScore: candidate.RunningScore()}

	if candidate.Status == models.StatusWaitingInfo {
		if missing := MissingFields(candidate.Profile); len(missing) > 0 {
			state.AwaitField = missing[0]
		}
		return state
	}

	if candidate.Status == models.StatusCompleted {
		state.Index = len(candidate.Questions)
		state.Completed = true
		return state
	}

	state.Index = candidate.FirstUnansweredIndex()
	if len(candidate.Questions) > 0 && state.Index >= len(candidate.Questions) {
		state.Completed = true
		return state
	}

	if state.Index < len(candidate.Questions) {
		state.Remaining = candidate.Questions[state.Index].Timer
	}
	return state
}

// PostedQuestionIDs rebuilds the duplicate-suppression bookkeeping from the
// transcript: a question id counts as posted when its text appears as a bot
// entry.
func PostedQuestionIDs(candidate models.Candidate) map[int]bool {
	botTexts := make(map[string]bool, len(candidate.Chats))
	for _, message := range candidate.Chats {
		if message.From == models.MessageFromBot {
			botTexts[message.Text] = true
		}
	}

	posted := make(map[int]bool, len(candidate.Questions))
	for _, question := range candidate.Questions {
		if botTexts[question.Text] {
			posted[question.ID] = true
		}
	}
	return posted
}
