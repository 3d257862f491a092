package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swipehire/interview-api/internal/models"
)

// CandidateRecord is the persisted row shape. Transcript, question set and
// answers are stored as JSON so the durable contract round-trips exactly,
// including chat insertion order and the answer key set.
type CandidateRecord struct {
	ID         string `gorm:"primaryKey"`
	Name       string
	Email      string
	Phone      string
	Chats      datatypes.JSON
	Questions  datatypes.JSON
	Answers    datatypes.JSON
	Status     string `gorm:"index"`
	FinalScore *int
	Summary    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName keeps the table name stable across gorm naming strategies.
func (CandidateRecord) TableName() string { return "candidates" }

type gormCandidateRepository struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewGormCandidateRepository constructs a record store backed by GORM.
func NewGormCandidateRepository(db *gorm.DB, logger zerolog.Logger) CandidateRepository {
	return &gormCandidateRepository{
		db:     db,
		logger: logger.With().Str("component", "candidate_store").Logger(),
	}
}

// Migrate creates the candidates table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CandidateRecord{})
}

func (r *gormCandidateRepository) Create(ctx context.Context, id string, profile models.Profile) (models.Candidate, error) {
	candidate := models.Candidate{
		ID:        id,
		Profile:   profile,
		Chats:     []models.ChatMessage{},
		Questions: []models.Question{},
		Answers:   map[int]models.Answer{},
		Status:    models.StatusNew,
	}

	record, err := toRecord(candidate)
	if err != nil {
		return models.Candidate{}, err
	}

	// Creating an id that already exists leaves the existing row untouched.
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return models.Candidate{}, result.Error
	}

	return r.Get(ctx, id)
}

func (r *gormCandidateRepository) Get(ctx context.Context, id string) (models.Candidate, error) {
	var record CandidateRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Candidate{}, ErrCandidateNotFound
		}
		return models.Candidate{}, err
	}
	return fromRecord(record)
}

func (r *gormCandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	var records []CandidateRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(records))
	for _, record := range records {
		candidate, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate)
	}
	return out, nil
}

func (r *gormCandidateRepository) UpdateProfile(ctx context.Context, id string, partial models.Profile) error {
	return r.mutate(ctx, id, func(c *models.Candidate) bool {
		c.Profile = c.Profile.Merge(partial)
		return true
	})
}

func (r *gormCandidateRepository) AppendChat(ctx context.Context, id string, message models.ChatMessage) error {
	return r.mutate(ctx, id, func(c *models.Candidate) bool {
		c.Chats = append(c.Chats, message)
		return true
	})
}

func (r *gormCandidateRepository) SetQuestions(ctx context.Context, id string, questions []models.Question) error {
	return r.mutate(ctx, id, func(c *models.Candidate) bool {
		if len(c.Questions) > 0 {
			r.logger.Warn().Str("candidate_id", id).Msg("question set already installed, ignoring")
			return false
		}
		c.Questions = append([]models.Question(nil), questions...)
		return true
	})
}

func (r *gormCandidateRepository) SaveAnswer(ctx context.Context, id string, questionID int, answer string, score int) error {
	err := r.mutate(ctx, id, func(c *models.Candidate) bool {
		if _, ok := c.QuestionByID(questionID); !ok {
			r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("save answer for unknown question, ignoring")
			return false
		}
		if _, exists := c.Answers[questionID]; exists {
			r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("answer already recorded, ignoring")
			return false
		}
		c.Answers[questionID] = models.Answer{Answer: answer, Score: score}
		return true
	})
	if errors.Is(err, ErrCandidateNotFound) {
		r.logger.Warn().Str("candidate_id", id).Int("question_id", questionID).Msg("save answer for unknown candidate, ignoring")
		return nil
	}
	return err
}

func (r *gormCandidateRepository) SetStatus(ctx context.Context, id string, status models.Status) error {
	return r.mutate(ctx, id, func(c *models.Candidate) bool {
		c.Status = status
		return true
	})
}

func (r *gormCandidateRepository) Finish(ctx context.Context, id string, score int, summary *string) error {
	return r.mutate(ctx, id, func(c *models.Candidate) bool {
		c.Status = models.StatusCompleted
		c.FinalScore = &score
		c.Summary = summary
		return true
	})
}

func (r *gormCandidateRepository) ResetAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CandidateRecord{}).Error
}

// mutate applies a read-modify-write inside a transaction with a row lock so
// single-candidate updates stay atomic.
func (r *gormCandidateRepository) mutate(ctx context.Context, id string, apply func(*models.Candidate) bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record CandidateRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCandidateNotFound
			}
			return err
		}

		candidate, err := fromRecord(record)
		if err != nil {
			return err
		}

		if !apply(&candidate) {
			return nil
		}

		updated, err := toRecord(candidate)
		if err != nil {
			return err
		}
		updated.CreatedAt = record.CreatedAt

		return tx.Save(&updated).Error
	})
}

func toRecord(candidate models.Candidate) (CandidateRecord, error) {
	chats, err := json.Marshal(candidate.Chats)
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("marshal chats: %w", err)
	}
	questions, err := json.Marshal(candidate.Questions)
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(candidate.Answers)
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("marshal answers: %w", err)
	}

	return CandidateRecord{
		ID:         candidate.ID,
		Name:       candidate.Profile.Name,
		Email:      candidate.Profile.Email,
		Phone:      candidate.Profile.Phone,
		Chats:      datatypes.JSON(chats),
		Questions:  datatypes.JSON(questions),
		Answers:    datatypes.JSON(answers),
		Status:     string(candidate.Status),
		FinalScore: candidate.FinalScore,
		Summary:    candidate.Summary,
		CreatedAt:  candidate.CreatedAt,
		UpdatedAt:  candidate.UpdatedAt,
	}, nil
}

func fromRecord(record CandidateRecord) (models.Candidate, error) {
	candidate := models.Candidate{
		ID: record.ID,
		Profile: models.Profile{
			Name:  record.Name,
			Email: record.Email,
			Phone: record.Phone,
		},
		Chats:      []models.ChatMessage{},
		Questions:  []models.Question{},
		Answers:    map[int]models.Answer{},
		Status:     models.Status(record.Status),
		FinalScore: record.FinalScore,
		Summary:    record.Summary,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}

	if len(record.Chats) > 0 {
		if err := json.Unmarshal(record.Chats, &candidate.Chats); err != nil {
			return models.Candidate{}, fmt.Errorf("unmarshal chats: %w", err)
		}
	}
	if len(record.Questions) > 0 {
		if err := json.Unmarshal(record.Questions, &candidate.Questions); err != nil {
			return models.Candidate{}, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	if len(record.Answers) > 0 {
		if err := json.Unmarshal(record.Answers, &candidate.Answers); err != nil {
			return models.Candidate{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}

	return candidate, nil
}
