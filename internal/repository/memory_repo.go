package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swipehire/interview-api/internal/models"
)

// In-memory, key-ordered Store implementation.
//
// Ordering: candidate id ASC (deterministic). A sorted id index sits next
// to the map so List walks candidates in key order without re-sorting.

type memoryCandidateRepository struct {
	mu         sync.RWMutex
	candidates map[string]*models.Candidate
	ids        []string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewMemoryCandidateRepository constructs the default in-memory record store.
func NewMemoryCandidateRepository(logger zerolog.Logger) CandidateRepository {
	return &memoryCandidateRepository{
		candidates: make(map[string]*models.Candidate),
		logger:     logger.With().Str("component", "candidate_store").Logger(),
		now:        time.Now,
	}
}

func (r *memoryCandidateRepository) Create(ctx context.Context, id string, profile models.Profile) (models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.candidates[id]; ok {
		return existing.Clone(), nil
	}

	now := r.now()
	candidate := &models.Candidate{
		ID:        id,
		Profile:   profile,
		Chats:     []models.ChatMessage{},
		Questions: []models.Question{},
		Answers:   map[int]models.Answer{},
		Status:    models.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.candidates[id] = candidate

	at := sort.SearchStrings(r.ids, id)
	r.ids = append(r.ids, "")
	copy(r.ids[at+1:], r.ids[at:])
	r.ids[at] = id

	return candidate.Clone(), nil
}

func (r *memoryCandidateRepository) Get(ctx context.Context, id string) (models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidate, ok := r.candidates[id]
	if !ok {
		return models.Candidate{}, ErrCandidateNotFound
	}
	return candidate.Clone(), nil
}

func (r *memoryCandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Candidate, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.candidates[id].Clone())
	}
	return out, nil
}

func (r *memoryCandidateRepository) UpdateProfile(ctx context.Context, id string, partial models.Profile) error {
	return r.mutate(id, "update_profile", func(c *models.Candidate) {
		c.Profile = c.Profile.Merge(partial)
	})
}

func (r *memoryCandidateRepository) AppendChat(ctx context.Context, id string, message models.ChatMessage) error {
	return r.mutate(id, "append_chat", func(c *models.Candidate) {
		c.Chats = append(c.Chats, message)
	})
}

func (r *memoryCandidateRepository) SetQuestions(ctx context.Context, id string, questions []models.Question) error {
	return r.mutate(id, "set_questions", func(c *models.Candidate) {
		if len(c.Questions) > 0 {
			r.logger.Warn().Str("candidate_id", id).Msg("question set already installed, ignoring")
			return
		}
		c.Questions = append([]models.Question(nil), questions...)
	})
}

func (r *memoryCandidateRepository) SaveAnswer(ctx context.Context, id string, questionID int, answer string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate, ok := r.candidates[id]
	if !ok {
		r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("save answer for unknown candidate, ignoring")
		return nil
	}
	if _, ok := candidate.QuestionByID(questionID); !ok {
		r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("save answer for unknown question, ignoring")
		return nil
	}
	if _, exists := candidate.Answers[questionID]; exists {
		r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("answer already recorded, ignoring")
		return nil
	}

	candidate.Answers[questionID] = models.Answer{Answer: answer, Score: score}
	candidate.UpdatedAt = r.now()
	return nil
}

func (r *memoryCandidateRepository) SetStatus(ctx context.Context, id string, status models.Status) error {
	return r.mutate(id, "set_status", func(c *models.Candidate) {
		c.Status = status
	})
}

func (r *memoryCandidateRepository) Finish(ctx context.Context, id string, score int, summary *string) error {
	return r.mutate(id, "finish", func(c *models.Candidate) {
		c.Status = models.StatusCompleted
		c.FinalScore = &score
		c.Summary = summary
	})
}

func (r *memoryCandidateRepository) ResetAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.candidates = make(map[string]*models.Candidate)
	r.ids = nil
	return nil
}

func (r *memoryCandidateRepository) mutate(id, op string, apply func(*models.Candidate)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate, ok := r.candidates[id]
	if !ok {
		r.logger.Warn().Str("candidate_id", id).Str("op", op).Msg("mutation for unknown candidate, ignoring")
		return ErrCandidateNotFound
	}

	apply(candidate)
	candidate.UpdatedAt = r.now()
	return nil
}
