package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// UploadHandler exposes file upload endpoints.
type UploadHandler struct {
	uploads service.UploadService
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(uploads service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Register mounts upload routes under the given group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/uploads", h.store)
	router.Get("/uploads", h.list)
}

func (h *UploadHandler) store(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unreadable file")
	}
	defer file.Close()

	upload, err := h.uploads.Store(c.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendCreated(c, "file uploaded", dto.NewUploadResponse(upload))
}

func (h *UploadHandler) list(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	uploads, err := h.uploads.ListByUser(c.Context(), userID)
	if err != nil {
		return handleError(c, err)
	}

	responses := make([]dto.UploadResponse, 0, len(uploads))
	for _, upload := range uploads {
		responses = append(responses, dto.NewUploadResponse(upload))
	}

	return utils.SendSuccess(c, "uploads retrieved", responses)
}
