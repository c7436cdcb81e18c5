package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// KnowledgePointHandler exposes the knowledge point taxonomy.
type KnowledgePointHandler struct {
	knowledge service.KnowledgeService
}

// NewKnowledgePointHandler constructs a KnowledgePointHandler.
func NewKnowledgePointHandler(knowledge service.KnowledgeService) *KnowledgePointHandler {
	return &KnowledgePointHandler{knowledge: knowledge}
}

// Register mounts knowledge point routes under the given group.
func (h *KnowledgePointHandler) Register(router fiber.Router) {
	router.Get("/knowledge-points", h.list)
}

func (h *KnowledgePointHandler) list(c *fiber.Ctx) error {
	responses, err := h.knowledge.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "knowledge points retrieved", responses)
}
