package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/swipehire/interview-api/internal/dto"
	"github.com/swipehire/interview-api/internal/repository"
)

const reviewerListCacheKey = "reviewer:candidates"

// ReviewerService backs the interviewer-facing dashboard: the scored
// candidate list, per-candidate detail and the bulk reset.
type ReviewerService interface {
	ListCandidates(ctx context.Context) (dto.CandidateListResponse, error)
	GetCandidate(ctx context.Context, candidateID string) (dto.CandidateDetail, error)
	DeleteAll(ctx context.Context) error
}

type reviewerService struct {
	repo      repository.CandidateRepository
	interview InterviewService
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewReviewerService builds the dashboard service. cache may be nil.
func NewReviewerService(repo repository.CandidateRepository, interview InterviewService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReviewerService {
	return &reviewerService{
		repo:      repo,
		interview: interview,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "reviewer_service").Logger(),
	}
}

func (s *reviewerService) ListCandidates(ctx context.Context) (dto.CandidateListResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, reviewerListCacheKey).Result(); err == nil {
			var summaries []dto.CandidateSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summaries); unmarshalErr == nil {
				s.logger.Debug().Msg("candidate list cache hit")
				return dto.CandidateListResponse{Candidates: summaries, CacheHit: true}, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read candidate list cache")
		}
	}

	candidates, err := s.repo.List(ctx)
	if err != nil {
		return dto.CandidateListResponse{}, err
	}

	summaries := make([]dto.CandidateSummary, 0, len(candidates))
	for _, candidate := range candidates {
		summaries = append(summaries, dto.NewCandidateSummary(candidate))
	}

	// Highest final score first; unfinished sessions trail, newest first.
	sort.SliceStable(summaries, func(i, j int) bool {
		left, right := summaries[i].FinalScore, summaries[j].FinalScore
		switch {
		case left != nil && right != nil:
			return *left > *right
		case left != nil:
			return true
		case right != nil:
			return false
		default:
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
	})

	if s.cache != nil {
		if payload, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, reviewerListCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store candidate list cache")
			}
		}
	}

	return dto.CandidateListResponse{Candidates: summaries}, nil
}

func (s *reviewerService) GetCandidate(ctx context.Context, candidateID string) (dto.CandidateDetail, error) {
	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			return dto.CandidateDetail{}, ErrSessionNotFound
		}
		return dto.CandidateDetail{}, err
	}

	results := make([]dto.QuestionResult, 0, len(candidate.Questions))
	for _, question := range candidate.Questions {
		result := dto.QuestionResult{Question: question}
		if answer, ok := candidate.Answers[question.ID]; ok {
			a := answer
			result.Answer = &a
		}
		results = append(results, result)
	}

	return dto.CandidateDetail{
		CandidateSummary: dto.NewCandidateSummary(candidate),
		Chats:            candidate.Chats,
		Results:          results,
	}, nil
}

func (s *reviewerService) DeleteAll(ctx context.Context) error {
	if err := s.interview.ResetAll(ctx); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, reviewerListCacheKey).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate candidate list cache")
		}
	}

	s.logger.Info().Msg("all candidates deleted")
	return nil
}
