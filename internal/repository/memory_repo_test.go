package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/swipehire/interview-api/internal/models"
)

func TestMemoryRepoCreateIsIdempotent(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	first, err := repo.Create(ctx, "c1", models.Profile{Name: "Jane"})
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, first.Status)
	require.Equal(t, "Jane", first.Profile.Name)

	// A second create with the same id returns the existing record untouched.
	second, err := repo.Create(ctx, "c1", models.Profile{Name: "Someone Else"})
	require.NoError(t, err)
	require.Equal(t, "Jane", second.Profile.Name)
}

func TestMemoryRepoGetUnknown(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestMemoryRepoGetReturnsDeepCopy(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)
	require.NoError(t, repo.AppendChat(ctx, "c1", models.ChatMessage{From: models.MessageFromBot, Text: "hello"}))

	copy1, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	copy1.Chats[0].Text = "mutated"
	copy1.Answers[99] = models.Answer{Score: 100}

	copy2, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "hello", copy2.Chats[0].Text)
	require.Empty(t, copy2.Answers)
}

func TestMemoryRepoListOrderedByID(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		_, err := repo.Create(ctx, id, models.Profile{})
		require.NoError(t, err)
	}

	candidates, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	require.Equal(t, "alpha", candidates[0].ID)
	require.Equal(t, "bravo", candidates[1].ID)
	require.Equal(t, "charlie", candidates[2].ID)
}

func TestMemoryRepoUpdateProfileMergesNonEmpty(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{Name: "Jane"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(ctx, "c1", models.Profile{Email: "jane@example.com"}))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Jane", candidate.Profile.Name)
	require.Equal(t, "jane@example.com", candidate.Profile.Email)
}

func TestMemoryRepoSetQuestionsHonouredOnce(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)

	first := []models.Question{{ID: 1, Text: "q1", Timer: 20}}
	require.NoError(t, repo.SetQuestions(ctx, "c1", first))
	require.NoError(t, repo.SetQuestions(ctx, "c1", []models.Question{{ID: 9, Text: "other"}}))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, first, candidate.Questions)
}

func TestMemoryRepoSaveAnswerWriteOnce(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)
	require.NoError(t, repo.SetQuestions(ctx, "c1", []models.Question{{ID: 1, Text: "q1", Timer: 20}}))

	require.NoError(t, repo.SaveAnswer(ctx, "c1", 1, "first", 80))
	// The duplicate write is a silent no-op.
	require.NoError(t, repo.SaveAnswer(ctx, "c1", 1, "second", 10))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.Answer{Answer: "first", Score: 80}, candidate.Answers[1])
}

func TestMemoryRepoSaveAnswerIgnoresUnknownTargets(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	// Unknown candidate.
	require.NoError(t, repo.SaveAnswer(ctx, "ghost", 1, "a", 10))

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)
	require.NoError(t, repo.SetQuestions(ctx, "c1", []models.Question{{ID: 1, Text: "q1"}}))

	// Unknown question id.
	require.NoError(t, repo.SaveAnswer(ctx, "c1", 42, "a", 10))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, candidate.Answers)
}

func TestMemoryRepoFinishSetsStatusAndScoreTogether(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Create(ctx, "c1", models.Profile{})
	require.NoError(t, err)

	require.NoError(t, repo.Finish(ctx, "c1", 230, nil))

	candidate, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, candidate.Status)
	require.NotNil(t, candidate.FinalScore)
	require.Equal(t, 230, *candidate.FinalScore)
	require.Nil(t, candidate.Summary)
}

func TestMemoryRepoResetAll(t *testing.T) {
	repo := NewMemoryCandidateRepository(zerolog.Nop())
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, id, models.Profile{})
		require.NoError(t, err)
	}

	require.NoError(t, repo.ResetAll(ctx))

	candidates, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, candidates)

	_, err = repo.Get(ctx, "a")
	require.ErrorIs(t, err, ErrCandidateNotFound)
}
