package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// SubmissionHandler exposes submission lifecycle endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
}

// NewSubmissionHandler constructs a SubmissionHandler.
func NewSubmissionHandler(submissions service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Register mounts submission routes under the given group. Middleware passed
// via expensive is attached to the create and reprocess routes only, since
// those trigger OCR and LLM calls downstream.
func (h *SubmissionHandler) Register(router fiber.Router, expensive ...fiber.Handler) {
	router.Post("/submissions", guarded(expensive, h.create)...)
	router.Get("/submissions", h.list)
	router.Get("/submissions/:id", h.get)
	router.Get("/submissions/:id/status", h.status)
	router.Post("/submissions/:id/reprocess", guarded(expensive, h.reprocess)...)
	router.Delete("/submissions/:id", h.remove)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.submissions.Create(c.Context(), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendCreated(c, "submission accepted", response)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	responses, err := h.submissions.List(c.Context(), userID, filter)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", responses)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	response, err := h.submissions.Get(c.Context(), id, userID, currentUserRole(c))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", response)
}

func (h *SubmissionHandler) status(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	response, err := h.submissions.Status(c.Context(), id, userID, currentUserRole(c))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "submission status", response)
}

func (h *SubmissionHandler) reprocess(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	response, err := h.submissions.Reprocess(c.Context(), id, userID, currentUserRole(c))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "reprocessing queued", response)
}

func (h *SubmissionHandler) remove(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.submissions.Delete(c.Context(), id, userID, currentUserRole(c)); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}
