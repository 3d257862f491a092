package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/swipehire/interview-api/internal/dto"
	"github.com/swipehire/interview-api/internal/gateway"
	"github.com/swipehire/interview-api/internal/models"
	"github.com/swipehire/interview-api/internal/observability"
	"github.com/swipehire/interview-api/internal/repository"
	"github.com/swipehire/interview-api/internal/session"
)

// Service-level failures mapped to user-facing errors by the handlers.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotAwaitingInfo     = errors.New("session is not collecting profile fields")
	ErrNotInProgress       = errors.New("session is not in progress")
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrUnknownField        = errors.New("unknown profile field")
	ErrEmptyValue          = errors.New("value must not be empty")
	ErrEmptyAnswer         = errors.New("answer must not be empty")
	ErrFetchInFlight       = errors.New("question fetch already in flight")
	ErrSubmissionInFlight  = errors.New("a submission is already being scored")
	ErrProfileIncomplete   = errors.New("profile is incomplete")
	ErrInterviewNotStarted = errors.New("interview has not started")
)

const expiryTimeout = 30 * time.Second

// InterviewService is the session orchestrator: it consumes client events,
// drives the state machine against the record store, calls the question and
// scoring gateways, and owns every per-question countdown.
type InterviewService interface {
	// DocumentExtracted consumes an extraction result; an empty candidate id
	// starts a new session.
	DocumentExtracted(ctx context.Context, req dto.ExtractedRequest) (dto.SessionView, error)
	// FieldSupplied merges one manually supplied required field.
	FieldSupplied(ctx context.Context, candidateID, field, value string) (dto.SessionView, error)
	// BeginInterview retries the begin-interview transition after a failed
	// question fetch.
	BeginInterview(ctx context.Context, candidateID string) (dto.SessionView, error)
	// SubmitAnswer submits the draft for the active question.
	SubmitAnswer(ctx context.Context, candidateID, text string, auto bool) (dto.SessionView, error)
	// View returns the read model, re-arming the countdown on resume.
	View(ctx context.Context, candidateID string) (dto.SessionView, error)
	// Resumable returns the most recently touched resumable session, if any.
	Resumable(ctx context.Context) (*dto.ResumableResponse, error)
	// ResetAll clears every candidate and cancels all timers. Irreversible.
	ResetAll(ctx context.Context) error
	// Close cancels outstanding timers during shutdown.
	Close()
}

// sessionRuntime is the transient, non-persisted state of one session:
// the armed countdown, duplicate-post bookkeeping and in-flight guards.
// Its mutex serialises event processing per candidate.
type sessionRuntime struct {
	mu       sync.Mutex
	timer    *session.Countdown
	posted   map[int]bool
	fetching bool
	scoring  bool
}

func (rt *sessionRuntime) cancelTimer() {
	if rt.timer != nil {
		rt.timer.Cancel()
		rt.timer = nil
	}
}

type interviewService struct {
	repo      repository.CandidateRepository
	provider  gateway.QuestionProvider
	scorer    gateway.AnswerScorer
	events    *LifecyclePublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	tick      time.Duration

	mu       sync.Mutex
	runtimes map[string]*sessionRuntime
}

// InterviewOption customises the interview service.
type InterviewOption func(*interviewService)

// WithTickInterval overrides the countdown tick, used by tests.
func WithTickInterval(interval time.Duration) InterviewOption {
	return func(s *interviewService) {
		s.tick = interval
	}
}

// NewInterviewService constructs the orchestrator.
func NewInterviewService(repo repository.CandidateRepository, provider gateway.QuestionProvider, scorer gateway.AnswerScorer, events *LifecyclePublisher, logger zerolog.Logger, opts ...InterviewOption) InterviewService {
	s := &interviewService{
		repo:      repo,
		provider:  provider,
		scorer:    scorer,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "interview_service").Logger(),
		tracer:    otel.Tracer("github.com/swipehire/interview-api/internal/service/interview"),
		tick:      time.Second,
		runtimes:  make(map[string]*sessionRuntime),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *interviewService) runtime(candidateID string) *sessionRuntime {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.runtimes[candidateID]
	if !ok {
		rt = &sessionRuntime{posted: make(map[int]bool)}
		s.runtimes[candidateID] = rt
	}
	return rt
}

func (s *interviewService) DocumentExtracted(ctx context.Context, req dto.ExtractedRequest) (dto.SessionView, error) {
	candidateID := strings.TrimSpace(req.CandidateID)
	if candidateID == "" {
		candidateID = uuid.NewString()
	}

	ctx, span := s.tracer.Start(ctx, "interview.document_extracted", trace.WithAttributes(
		attribute.String("candidate_id", candidateID),
	))
	defer span.End()

	if _, err := s.repo.Create(ctx, candidateID, models.Profile{}); err != nil {
		return dto.SessionView{}, err
	}

	rt := s.runtime(candidateID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return dto.SessionView{}, s.mapStoreErr(err)
	}
	if candidate.Status == models.StatusCompleted {
		return dto.SessionView{}, ErrSessionCompleted
	}

	extracted := models.Profile{
		Name:  s.clean(req.Profile.Name),
		Email: s.clean(req.Profile.Email),
		Phone: s.clean(req.Profile.Phone),
	}

	effects := session.OnDocumentExtracted(candidate, extracted)
	if err := s.apply(ctx, rt, candidateID, candidate, effects); err != nil {
		return dto.SessionView{}, err
	}

	if effects.BeginInterview {
		return s.begin(ctx, rt, candidateID)
	}
	return s.viewLocked(ctx, rt, candidateID)
}

func (s *interviewService) FieldSupplied(ctx context.Context, candidateID, field, value string) (dto.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "interview.field_supplied", trace.WithAttributes(
		attribute.String("candidate_id", candidateID),
		attribute.String("field", field),
	))
	defer span.End()

	if !session.IsRequiredField(field) {
		return dto.SessionView{}, ErrUnknownField
	}
	value = s.clean(value)
	if value == "" {
		return dto.SessionView{}, ErrEmptyValue
	}

	rt := s.runtime(candidateID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return dto.SessionView{}, s.mapStoreErr(err)
	}
	if candidate.Status != models.StatusWaitingInfo {
		return dto.SessionView{}, ErrNotAwaitingInfo
	}

	effects := session.OnFieldSupplied(candidate, field, value)
	if err := s.apply(ctx, rt, candidateID, candidate, effects); err != nil {
		return dto.SessionView{}, err
	}

	if effects.BeginInterview {
		return s.begin(ctx, rt, candidateID)
	}
	return s.viewLocked(ctx, rt, candidateID)
}

func (s *interviewService) BeginInterview(ctx context.Context, candidateID string) (dto.SessionView, error) {
	rt := s.runtime(candidateID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return dto.SessionView{}, s.mapStoreErr(err)
	}

	switch {
	case candidate.Status == models.StatusCompleted:
		return dto.SessionView{}, ErrSessionCompleted
	case len(candidate.Questions) > 0:
		// Already begun; nothing to retry.
		return s.viewLocked(ctx, rt, candidateID)
	case len(session.MissingFields(candidate.Profile)) > 0:
		return dto.SessionView{}, ErrProfileIncomplete
	}

	return s.begin(ctx, rt, candidateID)
}

// begin runs the begin-interview sub-transition. Called and returning with
// rt.mu held; the lock is released for the duration of the provider call.
func (s *interviewService) begin(ctx context.Context, rt *sessionRuntime, candidateID string) (dto.SessionView, error) {
	if rt.fetching {
		return dto.SessionView{}, ErrFetchInFlight
	}

	rt.fetching = true
	rt.mu.Unlock()
	questions, fetchErr := s.provider.FetchQuestions(ctx, session.DefaultRole)
	rt.mu.Lock()
	rt.fetching = false

	if fetchErr != nil {
		// Abort: status and question list stay untouched; caller re-triggers.
		s.logger.Warn().Err(fetchErr).Str("candidate_id", candidateID).Msg("question fetch failed")
		return dto.SessionView{}, fetchErr
	}

	// The snapshot taken before the round trip may be stale; re-read.
	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		s.logger.Warn().Str("candidate_id", candidateID).Msg("candidate vanished during question fetch, discarding result")
		return dto.SessionView{}, s.mapStoreErr(err)
	}
	if len(candidate.Questions) > 0 {
		return s.viewLocked(ctx, rt, candidateID)
	}

	effects := session.OnQuestionsFetched(candidate, questions)
	if err := s.apply(ctx, rt, candidateID, candidate, effects); err != nil {
		return dto.SessionView{}, err
	}

	observability.SessionsStarted().Inc()
	s.events.InterviewStarted(candidateID)

	return s.viewLocked(ctx, rt, candidateID)
}

func (s *interviewService) SubmitAnswer(ctx context.Context, candidateID, text string, auto bool) (dto.SessionView, error) {
	return s.submit(ctx, candidateID, text, auto, nil)
}

// submit processes one submission event. expectIndex is set by timer expiry
// so a stale countdown firing against an advanced session is discarded.
func (s *interviewService) submit(ctx context.Context, candidateID, text string, auto bool, expectIndex *int) (dto.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "interview.submit_answer", trace.WithAttributes(
		attribute.String("candidate_id", candidateID),
		attribute.Bool("auto", auto),
	))
	defer span.End()

	rt := s.runtime(candidateID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return dto.SessionView{}, s.mapStoreErr(err)
	}
	if candidate.Status != models.StatusInProgress {
		if auto {
			return s.viewLocked(ctx, rt, candidateID)
		}
		return dto.SessionView{}, ErrNotInProgress
	}
	if len(candidate.Questions) == 0 {
		return dto.SessionView{}, ErrInterviewNotStarted
	}

	state := session.Replay(candidate)
	if state.Completed || state.Index >= len(candidate.Questions) {
		return dto.SessionView{}, ErrSessionCompleted
	}
	if expectIndex != nil && *expectIndex != state.Index {
		// Stale expiry from a superseded countdown.
		return s.viewLocked(ctx, rt, candidateID)
	}

	question := candidate.Questions[state.Index]
	answerText := session.SubmissionText(s.clean(text), auto)
	if answerText == "" {
		return dto.SessionView{}, ErrEmptyAnswer
	}
	if rt.scoring {
		return dto.SessionView{}, ErrSubmissionInFlight
	}

	rt.scoring = true
	rt.mu.Unlock()
	score := s.scoreAnswer(ctx, question.Text, answerText)
	rt.mu.Lock()
	rt.scoring = false

	// Re-read: a reset or concurrent event may have invalidated the snapshot
	// captured before the scoring round trip.
	candidate, err = s.repo.Get(ctx, candidateID)
	if err != nil {
		s.logger.Warn().Str("candidate_id", candidateID).Msg("candidate vanished during scoring, discarding result")
		return dto.SessionView{}, s.mapStoreErr(err)
	}
	if candidate.Status != models.StatusInProgress {
		return s.viewLocked(ctx, rt, candidateID)
	}
	if _, answered := candidate.Answers[question.ID]; answered {
		return s.viewLocked(ctx, rt, candidateID)
	}
	state = session.Replay(candidate)
	if state.Index >= len(candidate.Questions) || candidate.Questions[state.Index].ID != question.ID {
		return s.viewLocked(ctx, rt, candidateID)
	}

	effects := session.OnAnswerScored(candidate, state.Index, answerText, score, s.questionPosted(rt, candidate))
	if err := s.apply(ctx, rt, candidateID, candidate, effects); err != nil {
		return dto.SessionView{}, err
	}

	kind := "manual"
	if auto {
		kind = "auto"
	}
	observability.AnswersScored().WithLabelValues(kind).Inc()

	return s.viewLocked(ctx, rt, candidateID)
}

func (s *interviewService) View(ctx context.Context, candidateID string) (dto.SessionView, error) {
	rt := s.runtime(candidateID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return s.viewLocked(ctx, rt, candidateID)
}

func (s *interviewService) Resumable(ctx context.Context) (*dto.ResumableResponse, error) {
	candidates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var latest *models.Candidate
	for i := range candidates {
		candidate := candidates[i]
		if !candidate.Status.Resumable() {
			continue
		}
		if latest == nil || candidate.UpdatedAt.After(latest.UpdatedAt) {
			latest = &candidate
		}
	}

	if latest == nil {
		return nil, nil
	}
	return &dto.ResumableResponse{CandidateID: latest.ID, Status: latest.Status}, nil
}

func (s *interviewService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	for _, rt := range s.runtimes {
		rt.cancelTimer()
	}
	s.runtimes = make(map[string]*sessionRuntime)
	s.mu.Unlock()

	return s.repo.ResetAll(ctx)
}

func (s *interviewService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rt := range s.runtimes {
		rt.cancelTimer()
	}
}

// apply writes one transition's effects to the store and runtime in
// transcript order. The Finish effect persists status and score atomically;
// a plain status change goes through SetStatus.
func (s *interviewService) apply(ctx context.Context, rt *sessionRuntime, candidateID string, candidate models.Candidate, effects session.Effects) error {
	if effects.MergeProfile != nil {
		if err := s.repo.UpdateProfile(ctx, candidateID, *effects.MergeProfile); err != nil {
			return err
		}
	}
	if len(effects.InstallQuestions) > 0 {
		if err := s.repo.SetQuestions(ctx, candidateID, effects.InstallQuestions); err != nil {
			return err
		}
	}
	if effects.CancelTimer {
		rt.cancelTimer()
	}
	if effects.SaveAnswer != nil {
		if err := s.repo.SaveAnswer(ctx, candidateID, effects.SaveAnswer.QuestionID, effects.SaveAnswer.Text, effects.SaveAnswer.Score); err != nil {
			return err
		}
	}
	for _, message := range effects.Messages {
		if err := s.repo.AppendChat(ctx, candidateID, message); err != nil {
			return err
		}
	}
	if effects.PostedQuestionID != nil {
		rt.posted[*effects.PostedQuestionID] = true
	}

	switch {
	case effects.Finish != nil:
		if err := s.repo.Finish(ctx, candidateID, effects.Finish.Score, nil); err != nil {
			return err
		}
		observability.SessionsCompleted().Inc()
		s.events.InterviewCompleted(candidateID, effects.Finish.Score)
	case effects.Status != "" && effects.Status != candidate.Status:
		if err := s.repo.SetStatus(ctx, candidateID, effects.Status); err != nil {
			return err
		}
	}

	if effects.ArmTimer != nil {
		s.armTimer(rt, candidateID, effects.ArmTimer.QuestionIndex, effects.ArmTimer.Seconds)
	}
	return nil
}

// questionPosted is the duplicate-suppression predicate: a question counts
// as announced when the runtime has posted it or the persisted transcript
// already carries its text.
func (s *interviewService) questionPosted(rt *sessionRuntime, candidate models.Candidate) func(int) bool {
	replayed := session.PostedQuestionIDs(candidate)
	return func(questionID int) bool {
		return rt.posted[questionID] || replayed[questionID]
	}
}

func (s *interviewService) armTimer(rt *sessionRuntime, candidateID string, index, seconds int) {
	rt.cancelTimer()
	rt.timer = session.NewCountdown(index, seconds, s.tick, func(questionIndex int) {
		s.handleExpiry(candidateID, questionIndex)
	})
}

func (s *interviewService) handleExpiry(candidateID string, questionIndex int) {
	observability.TimerExpiries().Inc()

	ctx, cancel := context.WithTimeout(context.Background(), expiryTimeout)
	defer cancel()

	if _, err := s.submit(ctx, candidateID, "", true, &questionIndex); err != nil {
		s.logger.Warn().Err(err).Str("candidate_id", candidateID).Int("question_index", questionIndex).Msg("auto-submit failed")
	}
}

// scoreAnswer degrades to the fallback score on any gateway failure so an
// outage never stalls the interview.
func (s *interviewService) scoreAnswer(ctx context.Context, questionText, answerText string) int {
	if s.scorer == nil {
		return 0
	}

	score, err := s.scorer.Score(ctx, questionText, answerText)
	if err != nil {
		s.logger.Warn().Err(err).Msg("scoring failed, falling back to zero")
		return 0
	}
	return score
}

// viewLocked builds the read model. Resuming an in-progress session re-arms
// the countdown at the active question's configured duration when no live
// timer exists for it.
func (s *interviewService) viewLocked(ctx context.Context, rt *sessionRuntime, candidateID string) (dto.SessionView, error) {
	candidate, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return dto.SessionView{}, s.mapStoreErr(err)
	}

	state := session.Replay(candidate)
	view := dto.SessionView{
		CandidateID:      candidate.ID,
		Status:           candidate.Status,
		Chats:            candidate.Chats,
		RunningScore:     state.RunningScore,
		FinalScore:       candidate.FinalScore,
		LoadingQuestions: rt.fetching,
	}

	switch {
	case candidate.Status == models.StatusWaitingInfo:
		view.MissingFields = session.MissingFields(candidate.Profile)
		view.AwaitingField = state.AwaitField
	case candidate.Status == models.StatusInProgress && !state.Completed && state.Index < len(candidate.Questions):
		question := candidate.Questions[state.Index]
		view.CurrentQuestion = &question
		view.QuestionNumber = state.Index + 1
		view.TotalQuestions = len(candidate.Questions)

		if rt.timer != nil && rt.timer.Index() == state.Index {
			view.TimerRemaining = rt.timer.Remaining()
		} else {
			view.TimerRemaining = state.Remaining
			s.armTimer(rt, candidateID, state.Index, state.Remaining)
		}
	}

	return view, nil
}

func (s *interviewService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *interviewService) mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrCandidateNotFound) {
		return ErrSessionNotFound
	}
	return err
}
