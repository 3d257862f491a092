package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/swipehire/interview-api/internal/dto"
	"github.com/swipehire/interview-api/internal/extractor"
	"github.com/swipehire/interview-api/internal/gateway"
	"github.com/swipehire/interview-api/internal/service"
	"github.com/swipehire/interview-api/internal/utils"
	"github.com/swipehire/interview-api/pkg/archive"
)

// InterviewHandler wires the candidate-facing session endpoints.
type InterviewHandler struct {
	service   service.InterviewService
	extractor *extractor.Extractor
	archive   *archive.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewInterviewHandler constructs the handler. archive may be nil.
func NewInterviewHandler(svc service.InterviewService, ext *extractor.Extractor, store *archive.Store, validate *validator.Validate, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service:   svc,
		extractor: ext,
		archive:   store,
		validator: validate,
		logger:    logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register attaches the session endpoints to the router group.
func (h *InterviewHandler) Register(router fiber.Router) {
	router.Post("/extracted", h.extracted)
	router.Post("/upload", h.upload)
	router.Get("/resumable", h.resumable)
	router.Get("/:id", h.view)
	router.Post("/:id/field", h.field)
	router.Post("/:id/begin", h.begin)
	router.Post("/:id/answer", h.answer)
}

func (h *InterviewHandler) extracted(c *fiber.Ctx) error {
	var payload dto.ExtractedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.service.DocumentExtracted(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "extraction processed", view)
}

// upload accepts the raw resume, extracts a profile guess from it and feeds
// the result through the same transition as a pre-extracted payload. A
// conversion failure degrades to an empty profile; the engine then prompts
// for every field.
func (h *InterviewHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer reader.Close()

	profile, err := h.extractor.Extract(file.Filename, reader)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", file.Filename).Msg("extraction failed, continuing with empty profile")
	}

	req := dto.ExtractedRequest{
		CandidateID: c.FormValue("candidateId"),
		Profile:     profile,
	}

	view, svcErr := h.service.DocumentExtracted(c.Context(), req)
	if svcErr != nil {
		return h.handleError(c, svcErr)
	}

	if h.archive != nil {
		if archived, openErr := file.Open(); openErr == nil {
			if _, saveErr := h.archive.SaveResume(c.Context(), view.CandidateID, file.Filename, archived); saveErr != nil {
				h.logger.Warn().Err(saveErr).Str("candidate_id", view.CandidateID).Msg("resume archival failed")
			}
			archived.Close()
		}
	}

	return utils.SendSuccess(c, "resume processed", view)
}

func (h *InterviewHandler) field(c *fiber.Ctx) error {
	var payload dto.FieldRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.FieldSupplied(c.Context(), c.Params("id"), payload.Field, payload.Value)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "field recorded", view)
}

func (h *InterviewHandler) begin(c *fiber.Ctx) error {
	view, err := h.service.BeginInterview(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview started", view)
}

func (h *InterviewHandler) answer(c *fiber.Ctx) error {
	var payload dto.AnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.service.SubmitAnswer(c.Context(), c.Params("id"), payload.Text, payload.Auto)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer recorded", view)
}

func (h *InterviewHandler) view(c *fiber.Ctx) error {
	view, err := h.service.View(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session retrieved", view)
}

func (h *InterviewHandler) resumable(c *fiber.Ctx) error {
	resumable, err := h.service.Resumable(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "resumable session", resumable)
}

func (h *InterviewHandler) handleError(c *fiber.Ctx, err error) error {
	var generationErr *gateway.QuestionGenerationError
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrEmptyValue),
		errors.Is(err, service.ErrEmptyAnswer):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrNotAwaitingInfo),
		errors.Is(err, service.ErrNotInProgress),
		errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, service.ErrProfileIncomplete),
		errors.Is(err, service.ErrInterviewNotStarted),
		errors.Is(err, service.ErrFetchInFlight),
		errors.Is(err, service.ErrSubmissionInFlight):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &generationErr):
		// The provider's own message travels to the user untouched.
		return utils.SendError(c, fiber.StatusBadGateway, generationErr.UserMessage())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
