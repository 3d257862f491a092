package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swipehire/interview-api/internal/models"
)

func questionSet() []models.Question {
	return []models.Question{
		{ID: 1, Text: "What is a closure?", Timer: 20, Difficulty: models.DifficultyEasy},
		{ID: 2, Text: "Explain event delegation.", Timer: 20, Difficulty: models.DifficultyEasy},
		{ID: 3, Text: "How does HTTP caching work?", Timer: 60, Difficulty: models.DifficultyMedium},
	}
}

func TestOnDocumentExtractedPromptsForFirstMissingField(t *testing.T) {
	candidate := models.Candidate{ID: "c1", Status: models.StatusNew}

	effects := OnDocumentExtracted(candidate, models.Profile{Email: "jane@example.com"})

	require.Equal(t, models.StatusWaitingInfo, effects.Status)
	require.Equal(t, "name", effects.AwaitField)
	require.False(t, effects.BeginInterview)
	require.Len(t, effects.Messages, 1)
	require.Equal(t, models.MessageFromBot, effects.Messages[0].From)
	require.Equal(t, "Please provide your name.", effects.Messages[0].Text)
}

func TestOnDocumentExtractedCompleteProfileRequestsBegin(t *testing.T) {
	candidate := models.Candidate{ID: "c1", Status: models.StatusNew}
	profile := models.Profile{Name: "Jane Doe", Email: "jane@example.com", Phone: "+1 555 123 4567"}

	effects := OnDocumentExtracted(candidate, profile)

	require.True(t, effects.BeginInterview)
	require.Empty(t, effects.AwaitField)
	// Status only advances once the question fetch succeeds.
	require.Empty(t, effects.Status)
	require.Equal(t, msgAllExtracted, effects.Messages[0].Text)
}

func TestFieldCollectionIsOrderIndependent(t *testing.T) {
	orders := [][]struct{ field, value string }{
		{{"name", "Jane"}, {"email", "jane@example.com"}, {"phone", "5551234567"}},
		{{"phone", "5551234567"}, {"name", "Jane"}, {"email", "jane@example.com"}},
		{{"email", "jane@example.com"}, {"phone", "5551234567"}, {"name", "Jane"}},
	}

	for _, order := range orders {
		candidate := models.Candidate{ID: "c1", Status: models.StatusWaitingInfo}
		var began bool
		for _, step := range order {
			effects := OnFieldSupplied(candidate, step.field, step.value)
			candidate.Profile = candidate.Profile.Merge(*effects.MergeProfile)
			began = effects.BeginInterview
		}

		require.True(t, began)
		require.Empty(t, MissingFields(candidate.Profile))
	}
}

func TestOnFieldSuppliedPromptsForNextGap(t *testing.T) {
	candidate := models.Candidate{
		ID:      "c1",
		Status:  models.StatusWaitingInfo,
		Profile: models.Profile{Email: "jane@example.com"},
	}

	effects := OnFieldSupplied(candidate, "name", "Jane Doe")

	require.Equal(t, models.StatusWaitingInfo, effects.Status)
	require.Equal(t, "phone", effects.AwaitField)
	require.False(t, effects.BeginInterview)
	// User entry is echoed before the next prompt.
	require.Equal(t, models.MessageFromUser, effects.Messages[0].From)
	require.Equal(t, "Jane Doe", effects.Messages[0].Text)
	require.Equal(t, "Please provide your phone.", effects.Messages[1].Text)
}

func TestOnFieldSuppliedTrustsValueForItsOwnField(t *testing.T) {
	candidate := models.Candidate{
		ID:      "c1",
		Status:  models.StatusWaitingInfo,
		Profile: models.Profile{Name: "Jane", Phone: "5551234567"},
	}

	// A value that would fail email validation still satisfies the field.
	effects := OnFieldSupplied(candidate, "email", "not-an-email")

	require.True(t, effects.BeginInterview)
	require.Equal(t, msgAllReceived, effects.Messages[1].Text)
}

func TestOnQuestionsFetchedPostsFirstQuestionAndArmsTimer(t *testing.T) {
	candidate := models.Candidate{ID: "c1", Status: models.StatusNew}
	questions := questionSet()

	effects := OnQuestionsFetched(candidate, questions)

	require.Equal(t, models.StatusInProgress, effects.Status)
	require.Equal(t, questions, effects.InstallQuestions)
	require.Len(t, effects.Messages, 1)
	require.Equal(t, questions[0].Text, effects.Messages[0].Text)
	require.NotNil(t, effects.PostedQuestionID)
	require.Equal(t, 1, *effects.PostedQuestionID)
	require.NotNil(t, effects.ArmTimer)
	require.Equal(t, 0, effects.ArmTimer.QuestionIndex)
	require.Equal(t, 20, effects.ArmTimer.Seconds)
}

func TestSubmissionText(t *testing.T) {
	require.Equal(t, "my answer", SubmissionText("  my answer  ", false))
	require.Equal(t, NoAnswerSentinel, SubmissionText("", true))
	require.Equal(t, NoAnswerSentinel, SubmissionText("   ", true))
	require.Equal(t, "typed", SubmissionText("typed", true))
	require.Equal(t, "", SubmissionText("   ", false))
}

func TestOnAnswerScoredAdvancesAndPostsNextQuestion(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers:   map[int]models.Answer{},
		Chats:     []models.ChatMessage{botMessage(questions[0].Text)},
	}

	effects := OnAnswerScored(candidate, 0, "closures capture scope", 80, func(int) bool { return false })

	require.True(t, effects.CancelTimer)
	require.NotNil(t, effects.SaveAnswer)
	require.Equal(t, 1, effects.SaveAnswer.QuestionID)
	require.Equal(t, 80, effects.SaveAnswer.Score)
	require.Nil(t, effects.Finish)

	require.Len(t, effects.Messages, 2)
	require.Equal(t, "closures capture scope", effects.Messages[0].Text)
	require.Equal(t, questions[1].Text, effects.Messages[1].Text)
	require.NotNil(t, effects.PostedQuestionID)
	require.Equal(t, 2, *effects.PostedQuestionID)
	require.NotNil(t, effects.ArmTimer)
	require.Equal(t, 1, effects.ArmTimer.QuestionIndex)
}

func TestOnAnswerScoredSuppressesAlreadyPostedQuestion(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers:   map[int]models.Answer{},
	}

	effects := OnAnswerScored(candidate, 0, "answer", 50, func(id int) bool { return id == 2 })

	// The next question was announced already; only the echo is appended,
	// but the timer is still re-armed for it.
	require.Len(t, effects.Messages, 1)
	require.Nil(t, effects.PostedQuestionID)
	require.NotNil(t, effects.ArmTimer)
	require.Equal(t, 1, effects.ArmTimer.QuestionIndex)
}

func TestOnAnswerScoredTranscriptGuardSuppressesRepost(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers:   map[int]models.Answer{},
		Chats: []models.ChatMessage{
			botMessage(questions[0].Text),
			botMessage(questions[1].Text),
		},
	}

	// Runtime bookkeeping is empty (fresh process after restart) but the
	// transcript already ends with the next question.
	effects := OnAnswerScored(candidate, 0, "answer", 50, func(int) bool { return false })

	require.Len(t, effects.Messages, 1)
	require.Nil(t, effects.PostedQuestionID)
}

func TestOnAnswerScoredLastQuestionCompletes(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers: map[int]models.Answer{
			1: {Answer: "a", Score: 70},
			2: {Answer: NoAnswerSentinel, Score: 0},
		},
	}

	effects := OnAnswerScored(candidate, 2, "caching layers", 90, func(int) bool { return false })

	require.Equal(t, models.StatusCompleted, effects.Status)
	require.NotNil(t, effects.Finish)
	require.Equal(t, 160, effects.Finish.Score)
	require.Nil(t, effects.ArmTimer)

	require.Len(t, effects.Messages, 3)
	require.Equal(t, msgInterviewDone, effects.Messages[1].Text)
	require.Equal(t, "Final Score: 160.", effects.Messages[2].Text)
}

func TestReplayReconstructsPosition(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers: map[int]models.Answer{
			1: {Answer: "a", Score: 40},
		},
	}

	state := Replay(candidate)

	require.Equal(t, 1, state.Index)
	// The timer restarts at the configured duration regardless of how much
	// had elapsed before the client went away.
	require.Equal(t, 20, state.Remaining)
	require.Equal(t, 40, state.RunningScore)
	require.False(t, state.Completed)

	// Replay is idempotent.
	require.Equal(t, state, Replay(candidate))
}

func TestReplayWaitingInfoYieldsAwaitedField(t *testing.T) {
	candidate := models.Candidate{
		ID:      "c1",
		Status:  models.StatusWaitingInfo,
		Profile: models.Profile{Name: "Jane"},
	}

	state := Replay(candidate)

	require.Equal(t, "email", state.AwaitField)
	require.False(t, state.Completed)
}

func TestReplayFullyAnsweredIsCompletedEquivalent(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		ID:        "c1",
		Status:    models.StatusInProgress,
		Questions: questions,
		Answers: map[int]models.Answer{
			1: {Score: 10}, 2: {Score: 20}, 3: {Score: 30},
		},
	}

	state := Replay(candidate)

	require.True(t, state.Completed)
	require.Equal(t, 60, state.RunningScore)
}

func TestPostedQuestionIDsRebuiltFromTranscript(t *testing.T) {
	questions := questionSet()
	candidate := models.Candidate{
		Questions: questions,
		Chats: []models.ChatMessage{
			botMessage("Please provide your name."),
			userMessage("Jane"),
			botMessage(questions[0].Text),
			userMessage("an answer"),
			botMessage(questions[1].Text),
		},
	}

	posted := PostedQuestionIDs(candidate)

	require.True(t, posted[1])
	require.True(t, posted[2])
	require.False(t, posted[3])
}

func TestMissingFieldsOrder(t *testing.T) {
	require.Equal(t, []string{"name", "email", "phone"}, MissingFields(models.Profile{}))
	require.Equal(t, []string{"phone"}, MissingFields(models.Profile{Name: "a", Email: "b"}))
	require.Empty(t, MissingFields(models.Profile{Name: "a", Email: "b", Phone: "c"}))
}
