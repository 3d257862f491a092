package repository

import (
	"context"
	"errors"

	"github.com/swipehire/interview-api/internal/models"
)

// ErrCandidateNotFound indicates the candidate id is unknown to the store.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateRepository is the record store for interview sessions. All
// mutations are atomic with respect to a single candidate id; no partial
// update is ever observable. SaveAnswer and SetQuestions treat invariant
// violations (unknown candidate or question, duplicate writes) as silent
// no-ops that are logged rather than surfaced.
type CandidateRepository interface {
	// Create registers a new candidate with the given profile in status "new".
	Create(ctx context.Context, id string, profile models.Profile) (models.Candidate, error)
	// Get returns a deep copy of the candidate or ErrCandidateNotFound.
	Get(ctx context.Context, id string) (models.Candidate, error)
	// List returns copies of every candidate ordered by id.
	List(ctx context.Context) ([]models.Candidate, error)
	// UpdateProfile shallow-merges the non-empty fields of partial into the profile.
	UpdateProfile(ctx context.Context, id string, partial models.Profile) error
	// AppendChat appends one transcript entry.
	AppendChat(ctx context.Context, id string, message models.ChatMessage) error
	// SetQuestions installs the question set. It is honoured at most once per session.
	SetQuestions(ctx context.Context, id string, questions []models.Question) error
	// SaveAnswer records a write-once answer keyed by question id.
	SaveAnswer(ctx context.Context, id string, questionID int, answer string, score int) error
	// SetStatus moves the candidate to the given status.
	SetStatus(ctx context.Context, id string, status models.Status) error
	// Finish sets status to completed atomically with the final score.
	Finish(ctx context.Context, id string, score int, summary *string) error
	// ResetAll irreversibly clears every candidate.
	ResetAll(ctx context.Context) error
}
