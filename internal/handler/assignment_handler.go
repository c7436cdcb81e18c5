package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	assignments service.AssignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(assignments service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Register mounts read routes available to any authenticated user.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/assignments", h.list)
	router.Get("/assignments/:id", h.get)
}

// RegisterTeacher mounts write routes with the provided guards attached per
// route, keeping the role check off the rest of the API surface.
func (h *AssignmentHandler) RegisterTeacher(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/assignments", guarded(guards, h.create)...)
	router.Put("/assignments/:id", guarded(guards, h.update)...)
	router.Delete("/assignments/:id", guarded(guards, h.remove)...)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	classroomID, err := parseOptionalUintQuery(c, "classroom_id")
	if err != nil {
		return err
	}

	responses, err := h.assignments.List(c.Context(), userID, classroomID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", responses)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	response, err := h.assignments.Get(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", response)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.assignments.Create(c.Context(), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendCreated(c, "assignment created", response)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.assignments.Update(c.Context(), userID, id, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", response)
}

func (h *AssignmentHandler) remove(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.assignments.Delete(c.Context(), userID, id); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}
