package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// ReviewHandler exposes the spaced-repetition review queue.
type ReviewHandler struct {
	reviews service.ReviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Register mounts review routes under the given group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/reviews", h.queue)
}

func (h *ReviewHandler) queue(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	response, err := h.reviews.Queue(c.Context(), userID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "review queue retrieved", response)
}
