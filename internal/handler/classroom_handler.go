package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// ClassroomHandler exposes classroom and enrollment endpoints.
type ClassroomHandler struct {
	classrooms service.ClassroomService
}

// NewClassroomHandler constructs a ClassroomHandler.
func NewClassroomHandler(classrooms service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// Register mounts routes available to any authenticated user.
func (h *ClassroomHandler) Register(router fiber.Router) {
	router.Get("/classrooms", h.list)
	router.Get("/classrooms/:id", h.get)
	router.Get("/classrooms/:id/members", h.members)
	router.Post("/classrooms/join", h.join)
}

// RegisterTeacher mounts write routes with the provided guards attached per
// route.
func (h *ClassroomHandler) RegisterTeacher(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/classrooms", guarded(guards, h.create)...)
	router.Put("/classrooms/:id", guarded(guards, h.update)...)
	router.Delete("/classrooms/:id", guarded(guards, h.remove)...)
}

func (h *ClassroomHandler) list(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	responses, err := h.classrooms.List(c.Context(), userID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "classrooms retrieved", responses)
}

func (h *ClassroomHandler) get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	response, err := h.classrooms.Get(c.Context(), id, userID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "classroom retrieved", response)
}

func (h *ClassroomHandler) members(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	responses, err := h.classrooms.Members(c.Context(), id, userID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "members retrieved", responses)
}

func (h *ClassroomHandler) join(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var payload dto.ClassroomJoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.classrooms.Join(c.Context(), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "classroom joined", response)
}

func (h *ClassroomHandler) create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var payload dto.ClassroomCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.classrooms.Create(c.Context(), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendCreated(c, "classroom created", response)
}

func (h *ClassroomHandler) update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var payload dto.ClassroomUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.classrooms.Update(c.Context(), userID, id, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "classroom updated", response)
}

func (h *ClassroomHandler) remove(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.classrooms.Delete(c.Context(), userID, id); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "classroom deleted", nil)
}
