package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/swipehire/interview-api/internal/service"
	"github.com/swipehire/interview-api/internal/utils"
)

// ReviewerHandler wires the interviewer dashboard endpoints.
type ReviewerHandler struct {
	service service.ReviewerService
	logger  zerolog.Logger
}

// NewReviewerHandler constructs the handler.
func NewReviewerHandler(svc service.ReviewerService, logger zerolog.Logger) *ReviewerHandler {
	return &ReviewerHandler{
		service: svc,
		logger:  logger.With().Str("component", "reviewer_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints to the router group.
func (h *ReviewerHandler) Register(router fiber.Router) {
	router.Get("/candidates", h.list)
	router.Get("/candidates/:id", h.get)
	router.Delete("/candidates", h.deleteAll)
}

func (h *ReviewerHandler) list(c *fiber.Ctx) error {
	response, err := h.service.ListCandidates(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "candidates retrieved", response)
}

func (h *ReviewerHandler) get(c *fiber.Ctx) error {
	detail, err := h.service.GetCandidate(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "candidate retrieved", detail)
}

func (h *ReviewerHandler) deleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.Context()); err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "all candidates deleted", nil)
}

func (h *ReviewerHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
