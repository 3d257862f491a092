package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swipehire/interview-api/internal/models"
)

func newSQLiteRepo(t *testing.T) CandidateRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	return NewGormCandidateRepository(db, zerolog.Nop())
}

func TestGormRepoRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "c1", models.Profile{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, created.Status)

	require.NoError(t, repo.AppendChat(ctx, "c1", models.ChatMessage{From: models.MessageFromBot, Text: "hello"}))
	require.NoError(t, repo.AppendChat(ctx, "c1", models.ChatMessage{From: models.MessageFromUser, Text: "hi"}))

	questions := []models.Question{
		{ID: 1, Text: "q1", Timer: 20, Difficulty: models.DifficultyEasy},
		{ID: 2, Text: "q2", Timer: 60, Difficulty: models.DifficultyMedium},
	}
	require.NoError(t, repo.SetQuestions(ctx, "c1", questions))
	require.NoError(t, repo.SaveAnswer(ctx, "c1", 1, "an answer", 70))
	require.NoError(t, repo.SetStatus(ctx, "c1", models.StatusInProgress))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, candidate.Status)
	require.Equal(t, questions, candidate.Questions)
	require.Equal(t, models.Answer{Answer: "an answer", Score: 70}, candidate.Answers[1])
	// Transcript order survives the JSON round trip.
	require.Equal(t, "hello", candidate.Chats[0].Text)
	require.Equal(t, "hi", candidate.Chats[1].Text)
}

func TestGormRepoCreateExistingIDLeavesRowUntouched(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{Name: "Jane"})
	require.NoError(t, err)

	again, err := repo.Create(ctx, "c1", models.Profile{Name: "Impostor"})
	require.NoError(t, err)
	require.Equal(t, "Jane", again.Profile.Name)
}

func TestGormRepoWriteOnceInvariants(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)

	first := []models.Question{{ID: 1, Text: "q1", Timer: 20}}
	require.NoError(t, repo.SetQuestions(ctx, "c1", first))
	require.NoError(t, repo.SetQuestions(ctx, "c1", []models.Question{{ID: 5, Text: "other"}}))

	require.NoError(t, repo.SaveAnswer(ctx, "c1", 1, "first", 90))
	require.NoError(t, repo.SaveAnswer(ctx, "c1", 1, "second", 5))
	require.NoError(t, repo.SaveAnswer(ctx, "c1", 42, "unknown question", 5))
	require.NoError(t, repo.SaveAnswer(ctx, "ghost", 1, "unknown candidate", 5))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, first, candidate.Questions)
	require.Len(t, candidate.Answers, 1)
	require.Equal(t, models.Answer{Answer: "first", Score: 90}, candidate.Answers[1])
}

func TestGormRepoFinishAndResetAll(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "c2", models.Profile{})
	require.NoError(t, err)

	require.NoError(t, repo.Finish(ctx, "c1", 150, nil))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, candidate.Status)
	require.NotNil(t, candidate.FinalScore)
	require.Equal(t, 150, *candidate.FinalScore)

	require.NoError(t, repo.ResetAll(ctx))

	candidates, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, candidates)
}
