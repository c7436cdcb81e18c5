package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// DashboardHandler exposes the per-user analytics dashboard.
type DashboardHandler struct {
	dashboard service.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboard service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Register mounts the dashboard route under the given group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.show)
}

func (h *DashboardHandler) show(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	response, err := h.dashboard.Dashboard(c.Context(), userID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}
